package protocol

import "time"

// TableLimits carries the provisioned throughput and storage caps for a
// table, set on create and updatable via a limits-only TableRequest
// (spec §6.1's "optional-block limits").
type TableLimits struct {
	ReadUnits    int32
	WriteUnits   int32
	StorageGB    int32
	TableHasSet  bool // whether this TableLimits block was present on the wire
}

// TableResult is the table descriptor returned by TableRequest and GetTable
// (spec §3).
type TableResult struct {
	CompartmentID string
	TableName     string
	State         TableState
	Schema        string
	Limits        TableLimits
	OperationID   string
	MatchETag     string
}

func (*TableResult) isResult() {}

// DefaultPollRequestTimeout bounds a single poll attempt inside the DDL
// Completion Waiter (spec §4.5): "the poll timeout for each individual
// request defaults to TableDDLRequest.DefaultPollRequestTimeout unless the
// overall poll-timeout is smaller."
const DefaultPollRequestTimeout = 10 * time.Second

// DefaultTablePollDelay is the interval between polls absent an override.
const DefaultTablePollDelay = time.Second

// TableRequest issues a DDL statement (create/alter/drop table, or a
// limits-only update) against a table.
type TableRequest struct {
	RequestBase

	CompartmentID string
	NamespaceName string
	TableName     string
	Statement     string
	Limits        *TableLimits // nil: no limits block on the wire
	MatchETag     string

	// target, when non-empty, is the state the DDL Completion Waiter should
	// converge on after this request succeeds. It does not affect
	// serialization.
	target TableState
	hasTarget bool
}

func (r *TableRequest) OpCode() OpCode { return OpTableRequest }

// SetTargetState records the state a completion wait should converge on.
func (r *TableRequest) SetTargetState(s TableState) {
	r.target = s
	r.hasTarget = true
}

// TargetState reports the state recorded by SetTargetState.
func (r *TableRequest) TargetState() (TableState, bool) {
	return r.target, r.hasTarget
}

func (r *TableRequest) Validate() error {
	if r.Statement == "" && r.Limits == nil {
		return NewError(KindArgument, "table request requires a statement or limits update")
	}
	return nil
}

func (r *TableRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.TableName)
	w.WriteString(r.Statement)
	if r.Limits != nil {
		w.WriteBool(true)
		serializerFor(serial).WriteTableLimits(w, *r.Limits)
	} else {
		w.WriteBool(false)
	}
	if r.NamespaceName != "" {
		w.WriteBool(true)
		w.WriteString(r.NamespaceName)
	} else {
		w.WriteBool(false)
	}
	return nil
}

func (r *TableRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	return deserializeTableResult(m, serial)
}

func (r *TableRequest) ApplyResult(Result) {}

func deserializeTableResult(m *Message, serial SerialVersion) (*TableResult, error) {
	compartment, err := m.ReadString()
	if err != nil {
		return nil, err
	}
	name, err := m.ReadString()
	if err != nil {
		return nil, err
	}
	stateByte, err := m.ReadByte()
	if err != nil {
		return nil, err
	}
	state := TableState(stateByte)
	if state < TableCreating || state > TableUnknown {
		return nil, Wrap(KindBadProtocol, ErrBadProtocol, "received invalid table state %d", stateByte)
	}
	schema, err := m.ReadString()
	if err != nil {
		return nil, err
	}
	hasLimits, err := m.ReadBool()
	if err != nil {
		return nil, err
	}
	var limits TableLimits
	if hasLimits {
		limits, err = serializerFor(serial).ReadTableLimits(m)
		if err != nil {
			return nil, err
		}
	}
	opID, err := m.ReadString()
	if err != nil {
		return nil, err
	}
	etag, err := m.ReadString()
	if err != nil {
		return nil, err
	}
	return &TableResult{
		CompartmentID: compartment,
		TableName:     name,
		State:         state,
		Schema:        schema,
		Limits:        limits,
		OperationID:   opID,
		MatchETag:     etag,
	}, nil
}

// GetTableRequest fetches current table metadata, optionally for a specific
// in-flight OperationID (used by the completion waiter to poll a DDL
// operation rather than the table's latest state).
type GetTableRequest struct {
	RequestBase

	CompartmentID string
	NamespaceName string
	TableName     string
	OperationID   string
}

func (r *GetTableRequest) OpCode() OpCode { return OpGetTable }

func (r *GetTableRequest) Validate() error {
	if r.TableName == "" {
		return NewError(KindArgument, "get table request requires a table name")
	}
	return nil
}

func (r *GetTableRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.TableName)
	w.WriteString(r.OperationID)
	return nil
}

func (r *GetTableRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	return deserializeTableResult(m, serial)
}

func (r *GetTableRequest) ApplyResult(Result) {}

// ListTablesRequest lists table names in a compartment/namespace, paged by a
// numeric FromIndex cursor (spec §4.6).
type ListTablesRequest struct {
	RequestBase

	CompartmentID string
	NamespaceName string
	FromIndex     int32
	Limit         int32
}

func (r *ListTablesRequest) OpCode() OpCode { return OpListTables }

func (r *ListTablesRequest) Validate() error {
	if r.FromIndex < 0 {
		return NewError(KindArgument, "list tables request requires a non-negative FromIndex")
	}
	return nil
}

func (r *ListTablesRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteUnpackedInt32(r.FromIndex)
	w.WriteUnpackedInt32(r.Limit)
	return nil
}

// ListTablesResult is the response to ListTablesRequest.
type ListTablesResult struct {
	TableNames []string
	NextIndex  int32
}

func (*ListTablesResult) isResult() {}

func (r *ListTablesRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	count, err := m.ReadUnpackedInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, Wrap(KindBadProtocol, ErrBadProtocol, "received invalid table count field: %d", count)
	}
	names := make([]string, 0, count)
	for i := int32(0); i < count; i++ {
		name, err := m.ReadString()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	nextIndex, err := m.ReadUnpackedInt32()
	if err != nil {
		return nil, err
	}
	return &ListTablesResult{TableNames: names, NextIndex: nextIndex}, nil
}

func (r *ListTablesRequest) ApplyResult(Result) {}
