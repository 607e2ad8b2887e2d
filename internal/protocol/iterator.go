package protocol

import "context"

// ListTablesIterator is the lazy paged sequence over ListTablesRequest,
// driven by a numeric FromIndex cursor (spec §4.6). It stops when a page
// comes back empty or shorter than the requested limit.
type ListTablesIterator struct {
	executor *Executor
	req      *ListTablesRequest
	done     bool
}

// NewListTablesIterator builds an iterator starting from req's current
// FromIndex. req is not mutated by construction; each Next call issues a
// fresh request carrying the updated cursor, so the iterator is restartable
// by building a new one from the original FromIndex.
func NewListTablesIterator(executor *Executor, req *ListTablesRequest) *ListTablesIterator {
	clone := *req
	return &ListTablesIterator{executor: executor, req: &clone}
}

// Next returns the next page of table names, or done == true once the
// sequence is exhausted. The call that reaches the end returns the final
// page's names together with done == true; every later call returns no
// names and done == true without issuing a request, since the continuation
// token is single-use from the client's perspective (spec §4.6) and must
// not be replayed.
func (it *ListTablesIterator) Next(ctx context.Context) (names []string, done bool, err error) {
	if it.done {
		return nil, true, nil
	}

	page := &ListTablesRequest{
		CompartmentID: it.req.CompartmentID,
		NamespaceName: it.req.NamespaceName,
		FromIndex:     it.req.FromIndex,
		Limit:         it.req.Limit,
	}
	res, err := it.executor.Execute(ctx, page)
	if err != nil {
		return nil, false, err
	}

	result := res.(*ListTablesResult)
	it.req.FromIndex = result.NextIndex

	if len(result.TableNames) == 0 || (it.req.Limit > 0 && int32(len(result.TableNames)) < it.req.Limit) {
		it.done = true
	}

	return result.TableNames, it.done, nil
}

// DeleteRangeIterator is the lazy paged sequence over MultiDeleteRequest,
// driven by an opaque ContinuationKey (spec §4.6). It stops when the server
// returns a nil continuation.
type DeleteRangeIterator struct {
	executor     *Executor
	req          *MultiDeleteRequest
	continuation []byte
	started      bool
	done         bool
}

// NewDeleteRangeIterator builds an iterator for req's partial key. The
// sequence starts from no continuation (the first page).
func NewDeleteRangeIterator(executor *Executor, req *MultiDeleteRequest) *DeleteRangeIterator {
	clone := *req
	clone.ContinuationKey = nil
	return &DeleteRangeIterator{executor: executor, req: &clone}
}

// Next issues the next page of deletions and returns the count deleted.
func (it *DeleteRangeIterator) Next(ctx context.Context) (deleted int32, done bool, err error) {
	if it.done {
		return 0, true, nil
	}

	page := &MultiDeleteRequest{
		TableName:       it.req.TableName,
		PartialKey:      it.req.PartialKey,
		MaxWriteKB:      it.req.MaxWriteKB,
		ContinuationKey: it.continuation,
	}
	res, err := it.executor.Execute(ctx, page)
	if err != nil {
		return 0, false, err
	}

	result := res.(*MultiDeleteResult)
	it.started = true
	if len(result.ContinuationKey) == 0 {
		it.done = true
	} else {
		it.continuation = result.ContinuationKey
	}

	return result.DeletedCount, it.done, nil
}

// Done reports whether the sequence has been fully consumed.
func (it *DeleteRangeIterator) Done() bool { return it.done }

// QueryIterator is the lazy paged sequence over QueryRequest (spec §4.6). On
// the first page, if the statement was not pre-prepared, the server returns
// the prepared statement with no rows; the iterator immediately issues a
// follow-up page using the obtained plan rather than surfacing an empty
// page to the caller.
type QueryIterator struct {
	executor *Executor
	base     *QueryRequest
	prepared *PreparedStatement
	cont     *QueryContinuationKey
	started  bool
	done     bool
}

// NewQueryIterator builds an iterator for req. If req.Prepared is nil, the
// first Next call causes the server to implicitly prepare the statement.
func NewQueryIterator(executor *Executor, req *QueryRequest) *QueryIterator {
	clone := *req
	return &QueryIterator{executor: executor, base: &clone, prepared: req.Prepared}
}

// Next returns the next page of opaque row values.
func (it *QueryIterator) Next(ctx context.Context) (rows [][]byte, done bool, err error) {
	if it.done {
		return nil, true, nil
	}

	for {
		page := &QueryRequest{
			Statement:     it.base.Statement,
			CompartmentID: it.base.CompartmentID,
			NamespaceName: it.base.NamespaceName,
			Prepared:      it.prepared,
			Continuation:  it.cont,
			MaxReadKB:     it.base.MaxReadKB,
			Limit:         it.base.Limit,
			Consistency:   it.base.Consistency,
		}
		res, err := it.executor.Execute(ctx, page)
		if err != nil {
			return nil, false, err
		}

		result := res.(*QueryResult)
		it.started = true

		if result.Prepared != nil {
			it.prepared = result.Prepared
		}
		if result.ContinuationKey != nil {
			result.ContinuationKey.Prepared = it.prepared
			it.cont = result.ContinuationKey
		} else {
			it.cont = nil
			it.done = true
		}

		// An implicit prepare returns the statement with no rows: loop once
		// more immediately rather than surfacing an empty page (spec §4.6).
		if len(result.Rows) == 0 && result.Prepared != nil && !it.done {
			continue
		}

		return result.Rows, it.done, nil
	}
}

// Done reports whether the sequence has been fully consumed.
func (it *QueryIterator) Done() bool { return it.done }
