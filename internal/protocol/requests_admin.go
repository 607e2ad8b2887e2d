package protocol

// SystemRequest issues an administrative DDL statement (CREATE NAMESPACE,
// CREATE USER, CREATE ROLE, SHOW ... AS JSON, and similar) not scoped to a
// single table (spec §4.1 "Admin DDL").
type SystemRequest struct {
	RequestBase

	Statement string

	target    AdminState
	hasTarget bool
}

func (r *SystemRequest) OpCode() OpCode { return OpSystemRequest }

// SetTargetState records the state a completion wait should converge on.
func (r *SystemRequest) SetTargetState(s AdminState) {
	r.target = s
	r.hasTarget = true
}

// TargetState reports the state recorded by SetTargetState.
func (r *SystemRequest) TargetState() (AdminState, bool) {
	return r.target, r.hasTarget
}

func (r *SystemRequest) Validate() error {
	if r.Statement == "" {
		return NewError(KindArgument, "admin request requires a statement")
	}
	return nil
}

func (r *SystemRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.Statement)
	return nil
}

func (r *SystemRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	return deserializeSystemResult(m)
}

func (r *SystemRequest) ApplyResult(Result) {}

// SystemResult is the response to SystemRequest and SystemStatusRequest: the
// operation's id, its completion state, and (for SHOW ... AS JSON
// statements) the raw admin-JSON output the caller decodes (spec §4.1
// "list namespaces/users/roles derived from admin SHOW ... AS JSON").
type SystemResult struct {
	OperationID string
	State       AdminState
	Statement   string
	ResultJSON  string
}

func (*SystemResult) isResult() {}

func deserializeSystemResult(m *Message) (*SystemResult, error) {
	opID, err := m.ReadString()
	if err != nil {
		return nil, err
	}
	stateByte, err := m.ReadByte()
	if err != nil {
		return nil, err
	}
	state := AdminState(stateByte)
	if state != AdminInProgress && state != AdminComplete {
		return nil, Wrap(KindBadProtocol, ErrBadProtocol, "received invalid admin state %d", stateByte)
	}
	statement, err := m.ReadString()
	if err != nil {
		return nil, err
	}
	resultJSON, err := m.ReadString()
	if err != nil {
		return nil, err
	}
	return &SystemResult{OperationID: opID, State: state, Statement: statement, ResultJSON: resultJSON}, nil
}

// SystemStatusRequest polls the completion state of an admin operation
// previously started by SystemRequest.
type SystemStatusRequest struct {
	RequestBase

	OperationID string
	Statement   string
}

func (r *SystemStatusRequest) OpCode() OpCode { return OpSystemStatusRequest }

func (r *SystemStatusRequest) Validate() error {
	if r.OperationID == "" {
		return NewError(KindArgument, "admin status request requires an operation id")
	}
	return nil
}

func (r *SystemStatusRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.OperationID)
	w.WriteString(r.Statement)
	return nil
}

func (r *SystemStatusRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	return deserializeSystemResult(m)
}

func (r *SystemStatusRequest) ApplyResult(Result) {}

// ReplicaOperation selects add or drop for AddReplicaRequest/DropReplicaRequest's
// shared wire shape.
type ReplicaOperation byte

const (
	ReplicaAdd ReplicaOperation = iota
	ReplicaDrop
)

// ReplicaRequest adds or removes a replica region from a table (spec §4.1
// "add/drop replica").
type ReplicaRequest struct {
	RequestBase

	TableName  string
	RegionName string
	ReadUnits  int32
	WriteUnits int32
	Op         ReplicaOperation
}

func (r *ReplicaRequest) OpCode() OpCode {
	if r.Op == ReplicaDrop {
		return OpDropReplica
	}
	return OpAddReplica
}

func (r *ReplicaRequest) Validate() error {
	if r.TableName == "" {
		return NewError(KindArgument, "replica request requires a table name")
	}
	if r.RegionName == "" {
		return NewError(KindArgument, "replica request requires a region name")
	}
	return nil
}

func (r *ReplicaRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.TableName)
	w.WriteString(r.RegionName)
	if r.Op == ReplicaAdd {
		w.WritePackedInt32(r.ReadUnits)
		w.WritePackedInt32(r.WriteUnits)
	}
	return nil
}

func (r *ReplicaRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	return deserializeTableResult(m, serial)
}

func (r *ReplicaRequest) ApplyResult(Result) {}

// ReplicaStatsRequest retrieves replication-lag statistics per region for a
// table, paged by a start-time cursor.
type ReplicaStatsRequest struct {
	RequestBase

	TableName   string
	RegionName  string // "": all regions
	StartTime   int64  // millis since epoch
	Limit       int32
}

func (r *ReplicaStatsRequest) OpCode() OpCode { return OpGetReplicaStats }

func (r *ReplicaStatsRequest) Validate() error {
	if r.TableName == "" {
		return NewError(KindArgument, "replica stats request requires a table name")
	}
	return nil
}

func (r *ReplicaStatsRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.TableName)
	w.WriteString(r.RegionName)
	w.WritePackedInt64(r.StartTime)
	w.WritePackedInt32(r.Limit)
	return nil
}

// ReplicaStatRecord is one sample of per-region replication lag.
type ReplicaStatRecord struct {
	Time       int64
	ReplicaLag int32
}

// ReplicaStatsResult is the response to ReplicaStatsRequest.
type ReplicaStatsResult struct {
	TableName string
	Stats     map[string][]ReplicaStatRecord
	NextStartTime int64
}

func (*ReplicaStatsResult) isResult() {}

func (r *ReplicaStatsRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	table, err := m.ReadString()
	if err != nil {
		return nil, err
	}
	regionCount, err := m.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	if regionCount < 0 {
		return nil, Wrap(KindBadProtocol, ErrBadProtocol, "received invalid replica-region count: %d", regionCount)
	}
	stats := make(map[string][]ReplicaStatRecord, regionCount)
	for i := int32(0); i < regionCount; i++ {
		region, err := m.ReadString()
		if err != nil {
			return nil, err
		}
		recordCount, err := m.ReadPackedInt32()
		if err != nil {
			return nil, err
		}
		if recordCount < 0 {
			return nil, Wrap(KindBadProtocol, ErrBadProtocol, "received invalid replica-record count: %d", recordCount)
		}
		records := make([]ReplicaStatRecord, 0, recordCount)
		for j := int32(0); j < recordCount; j++ {
			t, err := m.ReadPackedInt64()
			if err != nil {
				return nil, err
			}
			lag, err := m.ReadPackedInt32()
			if err != nil {
				return nil, err
			}
			records = append(records, ReplicaStatRecord{Time: t, ReplicaLag: lag})
		}
		stats[region] = records
	}
	nextStart, err := m.ReadPackedInt64()
	if err != nil {
		return nil, err
	}
	return &ReplicaStatsResult{TableName: table, Stats: stats, NextStartTime: nextStart}, nil
}

func (r *ReplicaStatsRequest) ApplyResult(Result) {}
