package protocol

// PreparedStatement is the opaque server-issued handle for a parsed SQL
// query (spec §3). It is reused as the key for repeated executions of the
// same statement.
type PreparedStatement struct {
	TableName      string
	DriverPlan     []byte // opaque reduced-plan bytes for advanced queries; nil for simple queries
	ProxyStatement []byte // the server's own serialized form, replayed verbatim on later pages
	TopologyInfo   int32  // topology-version snapshot the plan was compiled against
}

func (*PreparedStatement) isResult() {}

// PrepareRequest compiles a SQL statement into a PreparedStatement.
type PrepareRequest struct {
	RequestBase

	Statement     string
	CompartmentID string
	NamespaceName string
	GetQueryPlan  bool
}

func (r *PrepareRequest) OpCode() OpCode { return OpPrepare }

func (r *PrepareRequest) Validate() error {
	if r.Statement == "" {
		return NewError(KindArgument, "prepare request requires a statement")
	}
	return nil
}

func (r *PrepareRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.Statement)
	w.WriteBool(r.GetQueryPlan)
	return nil
}

func (r *PrepareRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	table, err := m.ReadString()
	if err != nil {
		return nil, err
	}
	plan, err := m.ReadOpaque()
	if err != nil {
		return nil, err
	}
	proxy, err := m.ReadOpaque()
	if err != nil {
		return nil, err
	}
	topo, err := m.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	return &PreparedStatement{TableName: table, DriverPlan: plan, ProxyStatement: proxy, TopologyInfo: topo}, nil
}

func (r *PrepareRequest) ApplyResult(Result) {}

// QueryContinuationKey is the cursor driving a paged query (spec §4.6): a
// server-side token plus, for advanced queries, the in-flight driver-side
// plan runtime state and the prepared statement it was built against.
type QueryContinuationKey struct {
	ServerToken   []byte
	PlanRuntime   []byte // opaque driver-side reduced-plan state; nil for simple queries
	Prepared      *PreparedStatement
}

// QueryRequest executes a SQL query, single-shot or as the first/continuing
// page of a paged sequence.
type QueryRequest struct {
	RequestBase

	Statement     string
	CompartmentID string
	NamespaceName string
	Prepared      *PreparedStatement // nil: server must prepare before executing
	Continuation  *QueryContinuationKey
	MaxReadKB     int32
	Limit         int32
	Consistency   byte
}

func (r *QueryRequest) OpCode() OpCode { return OpQuery }

func (r *QueryRequest) Validate() error {
	if r.Statement == "" && r.Prepared == nil {
		return NewError(KindArgument, "query request requires a statement or a prepared statement")
	}
	return nil
}

func (r *QueryRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	if r.Prepared != nil {
		w.WriteBool(true)
		w.WriteString(r.Prepared.TableName)
		w.WriteOpaque(r.Prepared.ProxyStatement)
	} else {
		w.WriteBool(false)
		w.WriteString(r.Statement)
	}
	if err := w.WriteByte(r.Consistency); err != nil {
		return err
	}
	w.WritePackedInt32(r.MaxReadKB)
	w.WritePackedInt32(r.Limit)
	if r.Continuation != nil {
		w.WriteBool(true)
		w.WriteOpaque(r.Continuation.ServerToken)
		w.WriteOpaque(r.Continuation.PlanRuntime)
	} else {
		w.WriteBool(false)
	}
	return nil
}

// QueryResult is the response to QueryRequest: a page of opaque rows plus,
// when more pages remain, a continuation key (spec §4.6).
type QueryResult struct {
	Consumed       Consumed
	Rows           [][]byte
	Prepared       *PreparedStatement // set when the server prepared the statement on this call
	ContinuationKey *QueryContinuationKey
}

func (*QueryResult) isResult() {}

func (r *QueryRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	consumed, err := readConsumed(m)
	if err != nil {
		return nil, err
	}

	result := &QueryResult{Consumed: consumed}

	hasPrepared, err := m.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasPrepared {
		prep, err := (&PrepareRequest{}).Deserialize(m, serial, query)
		if err != nil {
			return nil, err
		}
		result.Prepared = prep.(*PreparedStatement)
	}

	count, err := m.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, Wrap(KindBadProtocol, ErrBadProtocol, "received invalid query row count: %d", count)
	}
	result.Rows = make([][]byte, 0, count)
	for i := int32(0); i < count; i++ {
		row, err := m.ReadOpaque()
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
	}

	hasContinuation, err := m.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasContinuation {
		token, err := m.ReadOpaque()
		if err != nil {
			return nil, err
		}
		planRuntime, err := m.ReadOpaque()
		if err != nil {
			return nil, err
		}
		result.ContinuationKey = &QueryContinuationKey{ServerToken: token, PlanRuntime: planRuntime}
	}

	return result, nil
}

// ApplyResult installs the server-chosen prepared statement (if this call
// triggered an implicit prepare) so the iterator's follow-up page reuses it,
// and stitches the continuation key's Prepared reference (spec §4.6: "the
// query request captures the prepared statement as part of its own state").
func (r *QueryRequest) ApplyResult(res Result) {
	qr, ok := res.(*QueryResult)
	if !ok {
		return
	}
	if qr.Prepared != nil {
		r.Prepared = qr.Prepared
	}
	if qr.ContinuationKey != nil && r.Prepared != nil {
		qr.ContinuationKey.Prepared = r.Prepared
	}
}
