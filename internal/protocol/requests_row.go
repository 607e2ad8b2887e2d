package protocol

// PutOption selects the conditional-put variant (spec §4.1).
type PutOption int

const (
	PutUnconditional PutOption = iota
	PutIfAbsent
	PutIfPresent
	PutIfVersion
)

// Version is the opaque row-version token returned with every row and
// accepted by if-version put/delete (spec §3: "row version opaque token").
type Version []byte

// Consumed reports read/write units charged for an operation, carried on
// every Result kind (spec §3).
type Consumed struct {
	ReadUnits  int32
	WriteUnits int32
	ReadKB     int32
	WriteKB    int32
}

func writeConsumed(w *Message, c Consumed) {
	w.WritePackedInt32(c.ReadUnits)
	w.WritePackedInt32(c.WriteUnits)
	w.WritePackedInt32(c.ReadKB)
	w.WritePackedInt32(c.WriteKB)
}

func readConsumed(m *Message) (Consumed, error) {
	var c Consumed
	var err error
	if c.ReadUnits, err = m.ReadPackedInt32(); err != nil {
		return c, err
	}
	if c.WriteUnits, err = m.ReadPackedInt32(); err != nil {
		return c, err
	}
	if c.ReadKB, err = m.ReadPackedInt32(); err != nil {
		return c, err
	}
	if c.WriteKB, err = m.ReadPackedInt32(); err != nil {
		return c, err
	}
	return c, nil
}

// GetRequest reads a single row by primary key.
type GetRequest struct {
	RequestBase

	TableName string
	Key       []byte // opaque driver-side encoded primary key
	Consistency byte // 0 = eventual, 1 = absolute
}

func (r *GetRequest) OpCode() OpCode { return OpGet }

func (r *GetRequest) Validate() error {
	if r.TableName == "" {
		return NewError(KindArgument, "get request requires a table name")
	}
	if len(r.Key) == 0 {
		return NewError(KindArgument, "get request requires a primary key")
	}
	return nil
}

func (r *GetRequest) RateLimitInfo() (string, string, int) { return r.TableName, "read", 1 }

func (r *GetRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.TableName)
	if err := w.WriteByte(r.Consistency); err != nil {
		return err
	}
	w.WriteOpaque(r.Key)
	return nil
}

// GetResult is the response to GetRequest.
type GetResult struct {
	Consumed Consumed
	Value    []byte // nil: row not found
	Version  Version
	ExpirationTime int64 // millis since epoch; 0 = none
}

func (*GetResult) isResult() {}

func (r *GetRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	consumed, err := readConsumed(m)
	if err != nil {
		return nil, err
	}
	found, err := m.ReadBool()
	if err != nil {
		return nil, err
	}
	result := &GetResult{Consumed: consumed}
	if !found {
		return result, nil
	}
	if result.Value, err = m.ReadOpaque(); err != nil {
		return nil, err
	}
	version, err := m.ReadOpaque()
	if err != nil {
		return nil, err
	}
	result.Version = Version(version)
	if result.ExpirationTime, err = m.ReadPackedInt64(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *GetRequest) ApplyResult(Result) {}

// PutRequest writes a row under one of the conditional variants of PutOption.
type PutRequest struct {
	RequestBase

	TableName      string
	Value          []byte // opaque driver-side encoded row
	Option         PutOption
	MatchVersion   Version // required when Option == PutIfVersion
	ReturnExisting bool
	TTLDays        int32 // 0: no TTL update
	UpdateTTL      bool
}

func (r *PutRequest) OpCode() OpCode { return OpPut }

func (r *PutRequest) Validate() error {
	if r.TableName == "" {
		return NewError(KindArgument, "put request requires a table name")
	}
	if len(r.Value) == 0 {
		return NewError(KindArgument, "put request requires a row value")
	}
	if r.Option == PutIfVersion && len(r.MatchVersion) == 0 {
		return NewError(KindArgument, "put-if-version requires a match version")
	}
	return nil
}

func (r *PutRequest) RateLimitInfo() (string, string, int) { return r.TableName, "write", 1 }

func (r *PutRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.TableName)
	if err := w.WriteByte(byte(r.Option)); err != nil {
		return err
	}
	w.WriteOpaque(r.Value)
	if r.Option == PutIfVersion {
		w.WriteOpaque(r.MatchVersion)
	}
	w.WriteBool(r.ReturnExisting)
	w.WriteBool(r.UpdateTTL)
	if r.UpdateTTL {
		w.WritePackedInt32(r.TTLDays)
	}
	return nil
}

// PutResult is the response to PutRequest.
type PutResult struct {
	Consumed       Consumed
	Success        bool
	Version        Version // set iff Success
	ExistingValue  []byte  // set iff ReturnExisting and the condition failed
	ExistingVersion Version
}

func (*PutResult) isResult() {}

func (r *PutRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	consumed, err := readConsumed(m)
	if err != nil {
		return nil, err
	}
	success, err := m.ReadBool()
	if err != nil {
		return nil, err
	}
	result := &PutResult{Consumed: consumed, Success: success}
	if success {
		version, err := m.ReadOpaque()
		if err != nil {
			return nil, err
		}
		result.Version = Version(version)
		return result, nil
	}
	hasExisting, err := m.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasExisting {
		if result.ExistingValue, err = m.ReadOpaque(); err != nil {
			return nil, err
		}
		existingVersion, err := m.ReadOpaque()
		if err != nil {
			return nil, err
		}
		result.ExistingVersion = Version(existingVersion)
	}
	return result, nil
}

func (r *PutRequest) ApplyResult(Result) {}

// DeleteRequest removes a single row, optionally conditioned on MatchVersion.
type DeleteRequest struct {
	RequestBase

	TableName      string
	Key            []byte
	MatchVersion   Version // nil: unconditional
	ReturnExisting bool
}

func (r *DeleteRequest) OpCode() OpCode { return OpDelete }

func (r *DeleteRequest) Validate() error {
	if r.TableName == "" {
		return NewError(KindArgument, "delete request requires a table name")
	}
	if len(r.Key) == 0 {
		return NewError(KindArgument, "delete request requires a primary key")
	}
	return nil
}

func (r *DeleteRequest) RateLimitInfo() (string, string, int) { return r.TableName, "write", 1 }

func (r *DeleteRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.TableName)
	w.WriteOpaque(r.Key)
	if len(r.MatchVersion) > 0 {
		w.WriteBool(true)
		w.WriteOpaque(r.MatchVersion)
	} else {
		w.WriteBool(false)
	}
	w.WriteBool(r.ReturnExisting)
	return nil
}

// DeleteResult is the response to DeleteRequest.
type DeleteResult struct {
	Consumed        Consumed
	Success         bool
	ExistingValue   []byte
	ExistingVersion Version
}

func (*DeleteResult) isResult() {}

func (r *DeleteRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	consumed, err := readConsumed(m)
	if err != nil {
		return nil, err
	}
	success, err := m.ReadBool()
	if err != nil {
		return nil, err
	}
	result := &DeleteResult{Consumed: consumed, Success: success}
	hasExisting, err := m.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasExisting {
		if result.ExistingValue, err = m.ReadOpaque(); err != nil {
			return nil, err
		}
		existingVersion, err := m.ReadOpaque()
		if err != nil {
			return nil, err
		}
		result.ExistingVersion = Version(existingVersion)
	}
	return result, nil
}

func (r *DeleteRequest) ApplyResult(Result) {}

// MultiDeleteRequest atomically (single-shot) or incrementally (paged, per
// spec §4.6) deletes all rows sharing a partial primary key / shard key.
type MultiDeleteRequest struct {
	RequestBase

	TableName        string
	PartialKey       []byte
	MaxWriteKB       int32
	ContinuationKey  []byte // nil: first page
}

func (r *MultiDeleteRequest) OpCode() OpCode { return OpMultiDelete }

func (r *MultiDeleteRequest) Validate() error {
	if r.TableName == "" {
		return NewError(KindArgument, "delete-range request requires a table name")
	}
	if len(r.PartialKey) == 0 {
		return NewError(KindArgument, "delete-range request requires a partial key")
	}
	return nil
}

func (r *MultiDeleteRequest) RateLimitInfo() (string, string, int) { return r.TableName, "write", 1 }

func (r *MultiDeleteRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.TableName)
	w.WriteOpaque(r.PartialKey)
	w.WritePackedInt32(r.MaxWriteKB)
	w.WriteOpaque(r.ContinuationKey)
	return nil
}

// MultiDeleteResult is the response to MultiDeleteRequest; a nil
// ContinuationKey signals the final page (spec §4.6).
type MultiDeleteResult struct {
	Consumed        Consumed
	DeletedCount    int32
	ContinuationKey []byte
}

func (*MultiDeleteResult) isResult() {}

func (r *MultiDeleteRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	consumed, err := readConsumed(m)
	if err != nil {
		return nil, err
	}
	count, err := m.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, Wrap(KindBadProtocol, ErrBadProtocol, "received invalid deleted-count field: %d", count)
	}
	continuation, err := m.ReadOpaque()
	if err != nil {
		return nil, err
	}
	result := &MultiDeleteResult{Consumed: consumed, DeletedCount: count}
	if len(continuation) > 0 {
		result.ContinuationKey = continuation
	}
	return result, nil
}

func (r *MultiDeleteRequest) ApplyResult(res Result) {
	if mr, ok := res.(*MultiDeleteResult); ok {
		r.ContinuationKey = mr.ContinuationKey
	}
}

// WriteOperation is one entry of a WriteManyRequest: either a put or a
// delete, optionally marked "abort-if-fails" for the batch's atomic variant.
type WriteOperation struct {
	IsPut         bool
	Put           *PutRequest
	Delete        *DeleteRequest
	AbortIfFails  bool
}

// WriteManyRequest batches a mix of puts and deletes against rows sharing
// the same shard key, applied transactionally (spec §4.1 "batch").
type WriteManyRequest struct {
	RequestBase

	TableName  string
	Operations []WriteOperation
}

func (r *WriteManyRequest) OpCode() OpCode { return OpWriteMultiple }

func (r *WriteManyRequest) Validate() error {
	if r.TableName == "" {
		return NewError(KindArgument, "write-many request requires a table name")
	}
	if len(r.Operations) == 0 {
		return NewError(KindArgument, "write-many request requires at least one operation")
	}
	for i, op := range r.Operations {
		if op.IsPut && op.Put == nil {
			return NewError(KindArgument, "write-many operation %d: missing put", i)
		}
		if !op.IsPut && op.Delete == nil {
			return NewError(KindArgument, "write-many operation %d: missing delete", i)
		}
	}
	return nil
}

func (r *WriteManyRequest) RateLimitInfo() (string, string, int) {
	return r.TableName, "write", len(r.Operations)
}

func (r *WriteManyRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.TableName)
	w.WritePackedInt32(int32(len(r.Operations)))
	for _, op := range r.Operations {
		w.WriteBool(op.IsPut)
		w.WriteBool(op.AbortIfFails)
		if op.IsPut {
			if err := op.Put.Serialize(w, serial, query); err != nil {
				return err
			}
		} else {
			if err := op.Delete.Serialize(w, serial, query); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteManyResult is the response to WriteManyRequest: one sub-result per
// operation unless the batch aborted, in which case FailedOperationIndex
// identifies the offending entry.
type WriteManyResult struct {
	Consumed            Consumed
	Success              bool
	PutResults           []*PutResult
	DeleteResults        []*DeleteResult
	FailedOperationIndex int // -1 when Success
}

func (*WriteManyResult) isResult() {}

func (r *WriteManyRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	consumed, err := readConsumed(m)
	if err != nil {
		return nil, err
	}
	success, err := m.ReadBool()
	if err != nil {
		return nil, err
	}
	result := &WriteManyResult{Consumed: consumed, Success: success, FailedOperationIndex: -1}
	if !success {
		idx, err := m.ReadPackedInt32()
		if err != nil {
			return nil, err
		}
		result.FailedOperationIndex = int(idx)
		return result, nil
	}
	count, err := m.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, Wrap(KindBadProtocol, ErrBadProtocol, "received invalid write-many result count: %d", count)
	}
	for i := int32(0); i < count; i++ {
		isPut, err := m.ReadBool()
		if err != nil {
			return nil, err
		}
		if isPut {
			put := &PutRequest{}
			pr, err := put.Deserialize(m, serial, query)
			if err != nil {
				return nil, err
			}
			result.PutResults = append(result.PutResults, pr.(*PutResult))
		} else {
			del := &DeleteRequest{}
			dr, err := del.Deserialize(m, serial, query)
			if err != nil {
				return nil, err
			}
			result.DeleteResults = append(result.DeleteResults, dr.(*DeleteResult))
		}
	}
	return result, nil
}

func (r *WriteManyRequest) ApplyResult(Result) {}
