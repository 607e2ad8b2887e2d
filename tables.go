package nosqldb

import (
	"context"
	"time"

	"github.com/nosqldb/nosqldb-go/internal/protocol"
)

// TableState mirrors a table's position in the DDL state machine (spec §3).
type TableState = protocol.TableState

// Table states, re-exported for caller-facing comparisons.
const (
	TableCreating = protocol.TableCreating
	TableUpdating = protocol.TableUpdating
	TableActive   = protocol.TableActive
	TableDropping = protocol.TableDropping
	TableDropped  = protocol.TableDropped
	TableUnknown  = protocol.TableUnknown
)

// TableLimits carries provisioned throughput and storage caps.
type TableLimits = protocol.TableLimits

// TableResult is the table descriptor returned by table operations.
type TableResult = protocol.TableResult

// TableOptions configures a table DDL request (create/alter/drop/limits).
type TableOptions struct {
	CompartmentID string
	NamespaceName string
	MatchETag     string
	Timeout       time.Duration

	// WaitForCompletion, when true, polls for the DDL operation to reach
	// its natural target state before returning (spec §4.1 "with-completion
	// variants").
	WaitForCompletion bool
	PollTimeout       time.Duration
	PollDelay         time.Duration
}

// DoTableRequest issues a DDL statement (CREATE TABLE, ALTER TABLE, DROP
// TABLE) against tableName.
func (c *Client) DoTableRequest(ctx context.Context, tableName, statement string, opts TableOptions) (*TableResult, error) {
	return c.doTable(ctx, tableName, statement, nil, opts)
}

// SetTableLimits updates a table's provisioned throughput and storage caps
// without an accompanying DDL statement.
func (c *Client) SetTableLimits(ctx context.Context, tableName string, limits TableLimits, opts TableOptions) (*TableResult, error) {
	return c.doTable(ctx, tableName, "", &limits, opts)
}

func (c *Client) doTable(ctx context.Context, tableName, statement string, limits *TableLimits, opts TableOptions) (*TableResult, error) {
	req := &protocol.TableRequest{
		CompartmentID: opts.CompartmentID,
		NamespaceName: opts.NamespaceName,
		TableName:     tableName,
		Statement:     statement,
		Limits:        limits,
		MatchETag:     opts.MatchETag,
	}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(opts.Timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	result := res.(*TableResult)

	if !opts.WaitForCompletion {
		return result, nil
	}
	return c.waitForTableTarget(ctx, result, opts)
}

func (c *Client) waitForTableTarget(ctx context.Context, started *TableResult, opts TableOptions) (*TableResult, error) {
	target := started.State
	switch target {
	case TableCreating:
		target = TableActive
	case TableDropping:
		target = TableDropped
	case TableUpdating:
		target = TableActive
	}

	pollTimeout := opts.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = c.cfg.defaultPollTimeout
	}
	pollDelay := opts.PollDelay
	if pollDelay <= 0 {
		pollDelay = c.cfg.defaultPollDelay
	}

	getReq := &protocol.GetTableRequest{
		CompartmentID: opts.CompartmentID,
		NamespaceName: opts.NamespaceName,
		TableName:     started.TableName,
		OperationID:   started.OperationID,
	}
	return c.waiter.WaitForTable(ctx, getReq, started.State, target, pollTimeout, pollDelay)
}

// GetTableOptions configures a GetTable call.
type GetTableOptions struct {
	CompartmentID string
	NamespaceName string
	OperationID   string
	Timeout       time.Duration
}

// GetTable fetches current metadata for tableName.
func (c *Client) GetTable(ctx context.Context, tableName string, opts GetTableOptions) (*TableResult, error) {
	req := &protocol.GetTableRequest{
		CompartmentID: opts.CompartmentID,
		NamespaceName: opts.NamespaceName,
		TableName:     tableName,
		OperationID:   opts.OperationID,
	}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(opts.Timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.(*TableResult), nil
}

// WaitForTableState polls until tableName reaches target, bounded by
// pollTimeout (spec §4.5).
func (c *Client) WaitForTableState(ctx context.Context, tableName string, target TableState, pollTimeout, pollDelay time.Duration, opts GetTableOptions) (*TableResult, error) {
	if pollTimeout <= 0 {
		pollTimeout = c.cfg.defaultPollTimeout
	}
	if pollDelay <= 0 {
		pollDelay = c.cfg.defaultPollDelay
	}
	getReq := &protocol.GetTableRequest{
		CompartmentID: opts.CompartmentID,
		NamespaceName: opts.NamespaceName,
		TableName:     tableName,
		OperationID:   opts.OperationID,
	}
	return c.waiter.WaitForTable(ctx, getReq, TableUnknown, target, pollTimeout, pollDelay)
}

// ListTablesOptions configures a ListTables call.
type ListTablesOptions struct {
	CompartmentID string
	NamespaceName string
	Limit         int32
}

// ListTablesIterator is the lazy paged sequence over table names (spec
// §4.6).
type ListTablesIterator struct {
	inner *protocol.ListTablesIterator
}

// Next returns the next page of table names.
func (it *ListTablesIterator) Next(ctx context.Context) (names []string, done bool, err error) {
	return it.inner.Next(ctx)
}

// ListTables returns a paged iterator over every table's name, starting at
// fromIndex.
func (c *Client) ListTables(fromIndex int32, opts ListTablesOptions) *ListTablesIterator {
	req := &protocol.ListTablesRequest{
		CompartmentID: opts.CompartmentID,
		NamespaceName: opts.NamespaceName,
		FromIndex:     fromIndex,
		Limit:         opts.Limit,
	}
	return &ListTablesIterator{inner: protocol.NewListTablesIterator(c.executor, req)}
}

// AddReplica adds a replica region to tableName.
func (c *Client) AddReplica(ctx context.Context, tableName, regionName string, readUnits, writeUnits int32, timeout time.Duration) (*TableResult, error) {
	return c.replicaOp(ctx, tableName, regionName, readUnits, writeUnits, protocol.ReplicaAdd, timeout)
}

// DropReplica removes a replica region from tableName.
func (c *Client) DropReplica(ctx context.Context, tableName, regionName string, timeout time.Duration) (*TableResult, error) {
	return c.replicaOp(ctx, tableName, regionName, 0, 0, protocol.ReplicaDrop, timeout)
}

func (c *Client) replicaOp(ctx context.Context, tableName, regionName string, readUnits, writeUnits int32, op protocol.ReplicaOperation, timeout time.Duration) (*TableResult, error) {
	req := &protocol.ReplicaRequest{
		TableName:  tableName,
		RegionName: regionName,
		ReadUnits:  readUnits,
		WriteUnits: writeUnits,
		Op:         op,
	}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.(*TableResult), nil
}

// ReplicaStatRecord is one sample of per-region replication lag.
type ReplicaStatRecord = protocol.ReplicaStatRecord

// GetReplicaStats retrieves replication-lag statistics for tableName,
// optionally scoped to a single region, paged by startTime.
func (c *Client) GetReplicaStats(ctx context.Context, tableName, regionName string, startTime time.Time, limit int32, timeout time.Duration) (map[string][]ReplicaStatRecord, int64, error) {
	req := &protocol.ReplicaStatsRequest{
		TableName:  tableName,
		RegionName: regionName,
		StartTime:  startTime.UnixMilli(),
		Limit:      limit,
	}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	result := res.(*protocol.ReplicaStatsResult)
	return result.Stats, result.NextStartTime, nil
}

// IndexInfo describes one secondary index.
type IndexInfo = protocol.IndexInfo

// GetIndexes lists the secondary indexes on tableName, or just indexName if
// non-empty.
func (c *Client) GetIndexes(ctx context.Context, tableName, indexName string, timeout time.Duration) ([]IndexInfo, error) {
	req := &protocol.GetIndexesRequest{TableName: tableName, IndexName: indexName}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.(*protocol.GetIndexesResult).Indexes, nil
}
