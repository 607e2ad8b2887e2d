package protocol

// OpCode identifies the kind of request on the wire (spec §6.1).
type OpCode uint8

// Request opcodes, in the order the serial-version-4 wire format assigns
// them.
const (
	OpDelete OpCode = iota
	OpPut
	OpQuery
	OpPrepare
	OpWriteMultiple
	OpMultiDelete
	OpGetTable
	OpGetIndexes
	OpGetTableUsage
	OpListTables
	OpTableRequest
	OpScan
	OpIndexScan
	OpCreateTable
	OpSystemRequest
	OpSystemStatusRequest
	OpGet
	OpRequest
	OpAddReplica
	OpDropReplica
	OpGetReplicaStats
)

// Human-readable description of a request opcode, used in error messages
// and log lines.
func (c OpCode) String() string {
	switch c {
	case OpDelete:
		return "Delete"
	case OpPut:
		return "Put"
	case OpQuery:
		return "Query"
	case OpPrepare:
		return "Prepare"
	case OpWriteMultiple:
		return "WriteMultiple"
	case OpMultiDelete:
		return "DeleteRange"
	case OpGetTable:
		return "GetTable"
	case OpGetIndexes:
		return "GetIndexes"
	case OpGetTableUsage:
		return "GetTableUsage"
	case OpListTables:
		return "ListTables"
	case OpTableRequest:
		return "TableRequest"
	case OpSystemRequest:
		return "Admin"
	case OpSystemStatusRequest:
		return "GetAdminStatus"
	case OpGet:
		return "Get"
	case OpAddReplica:
		return "AddReplica"
	case OpDropReplica:
		return "DropReplica"
	case OpGetReplicaStats:
		return "GetReplicaStats"
	default:
		return "Unknown"
	}
}

// SerialVersion identifies the wire encoding generation (spec §4.4).
type SerialVersion int

const (
	// SerialVersion4 is the newest wire format, introducing the V4 named-value
	// and query framing used by query_version V4.
	SerialVersion4 SerialVersion = 4
	// SerialVersion3 is the fallback family understood by older servers.
	SerialVersion3 SerialVersion = 3
)

// QueryVersion identifies the query-plan wire generation (spec §4.4).
type QueryVersion int

const (
	QueryVersion4 QueryVersion = 4
	QueryVersion3 QueryVersion = 3
)

// TableState is a TableResult's position in the DDL state machine (spec §3).
type TableState int

const (
	TableCreating TableState = iota
	TableUpdating
	TableActive
	TableDropping
	TableDropped
	TableUnknown
)

// String implements the Stringer interface.
func (s TableState) String() string {
	switch s {
	case TableCreating:
		return "CREATING"
	case TableUpdating:
		return "UPDATING"
	case TableActive:
		return "ACTIVE"
	case TableDropping:
		return "DROPPING"
	case TableDropped:
		return "DROPPED"
	default:
		return "UNKNOWN"
	}
}

// AdminState is the completion state of an administrative DDL operation.
type AdminState int

const (
	AdminInProgress AdminState = iota
	AdminComplete
)

// String implements the Stringer interface.
func (s AdminState) String() string {
	if s == AdminComplete {
		return "COMPLETE"
	}
	return "IN_PROGRESS"
}

// ServiceType identifies the deployment flavor a Config targets (spec §6.2).
type ServiceType int

const (
	ServiceTypeUnspecified ServiceType = iota
	ServiceTypeCloudSim
	ServiceTypeCloud
	ServiceTypeOnPrem
)
