package nosqldb

import (
	"context"
	"time"

	"github.com/nosqldb/nosqldb-go/internal/protocol"
)

// PreparedStatement is the opaque server-issued handle for a parsed SQL
// query, reusable as the key for repeated executions (spec §3).
type PreparedStatement = protocol.PreparedStatement

// PrepareOptions configures a Prepare call.
type PrepareOptions struct {
	CompartmentID string
	NamespaceName string
	GetQueryPlan  bool
	Timeout       time.Duration
}

// Prepare compiles statement into a reusable PreparedStatement.
func (c *Client) Prepare(ctx context.Context, statement string, opts PrepareOptions) (*PreparedStatement, error) {
	req := &protocol.PrepareRequest{
		Statement:     statement,
		CompartmentID: opts.CompartmentID,
		NamespaceName: opts.NamespaceName,
		GetQueryPlan:  opts.GetQueryPlan,
	}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(opts.Timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.(*PreparedStatement), nil
}

// QueryOptions configures a Query call.
type QueryOptions struct {
	CompartmentID string
	NamespaceName string
	MaxReadKB     int32
	Limit         int32
	Consistency   Consistency
	Timeout       time.Duration
}

// QueryResult is a single page of a query's results.
type QueryResult = protocol.QueryResult

// Query executes statement (or, if prepared is non-nil, the already-parsed
// statement) and returns a single page of results. Use NewQueryIterator to
// consume a query as a lazy paged sequence (spec §4.6).
func (c *Client) Query(ctx context.Context, statement string, prepared *PreparedStatement, opts QueryOptions) (*QueryResult, error) {
	req := c.buildQueryRequest(statement, prepared, nil, opts)
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(opts.Timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.(*QueryResult), nil
}

func (c *Client) buildQueryRequest(statement string, prepared *PreparedStatement, continuation *protocol.QueryContinuationKey, opts QueryOptions) *protocol.QueryRequest {
	return &protocol.QueryRequest{
		Statement:     statement,
		CompartmentID: opts.CompartmentID,
		NamespaceName: opts.NamespaceName,
		Prepared:      prepared,
		Continuation:  continuation,
		MaxReadKB:     opts.MaxReadKB,
		Limit:         opts.Limit,
		Consistency:   byte(opts.Consistency),
	}
}

// QueryIterator is the lazy paged sequence over a query's result rows (spec
// §4.6).
type QueryIterator struct {
	inner *protocol.QueryIterator
}

// Next returns the next page of opaque row values.
func (it *QueryIterator) Next(ctx context.Context) (rows [][]byte, done bool, err error) {
	return it.inner.Next(ctx)
}

// Done reports whether the sequence has been fully consumed.
func (it *QueryIterator) Done() bool { return it.inner.Done() }

// NewQueryIterator returns a paged iterator over statement's results. If
// prepared is nil, the first page implicitly prepares the statement and the
// iterator transparently fetches the real first page of rows before
// returning (spec §4.6).
func (c *Client) NewQueryIterator(statement string, prepared *PreparedStatement, opts QueryOptions) *QueryIterator {
	req := c.buildQueryRequest(statement, prepared, nil, opts)
	return &QueryIterator{inner: protocol.NewQueryIterator(c.executor, req)}
}
