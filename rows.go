package nosqldb

import (
	"context"
	"time"

	"github.com/nosqldb/nosqldb-go/internal/protocol"
)

// Version is the opaque row-version token returned with every row and
// accepted by if-version put/delete (spec §3).
type Version = protocol.Version

// Consumed reports read/write capacity charged for an operation.
type Consumed = protocol.Consumed

// PutOption selects the conditional-put variant (spec §4.1).
type PutOption = protocol.PutOption

// Put option constants, re-exported for caller-facing use.
const (
	PutIfAbsent     = protocol.PutIfAbsent
	PutIfPresent    = protocol.PutIfPresent
	PutIfVersion    = protocol.PutIfVersion
	PutUnconditional = protocol.PutUnconditional
)

// Consistency selects eventual or absolute read consistency.
type Consistency byte

const (
	ConsistencyEventual Consistency = 0
	ConsistencyAbsolute Consistency = 1
)

// GetOptions configures a Get call.
type GetOptions struct {
	Consistency Consistency
	Timeout     time.Duration
}

// GetResult is the response to Get.
type GetResult = protocol.GetResult

// Get reads a single row by its opaque, driver-encoded primary key.
func (c *Client) Get(ctx context.Context, tableName string, key []byte, opts GetOptions) (*GetResult, error) {
	req := &protocol.GetRequest{
		TableName:   tableName,
		Key:         key,
		Consistency: byte(opts.Consistency),
	}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(opts.Timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.(*GetResult), nil
}

// PutOptions configures a Put call.
type PutOptions struct {
	Option         PutOption
	MatchVersion   Version
	ReturnExisting bool
	TTLDays        int32
	UpdateTTL      bool
	Timeout        time.Duration
}

// PutResult is the response to Put.
type PutResult = protocol.PutResult

// Put writes an opaque, driver-encoded row under the conditional variant
// selected by opts.Option (default: unconditional).
func (c *Client) Put(ctx context.Context, tableName string, value []byte, opts PutOptions) (*PutResult, error) {
	req := &protocol.PutRequest{
		TableName:      tableName,
		Value:          value,
		Option:         opts.Option,
		MatchVersion:   opts.MatchVersion,
		ReturnExisting: opts.ReturnExisting,
		TTLDays:        opts.TTLDays,
		UpdateTTL:      opts.UpdateTTL,
	}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(opts.Timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.(*PutResult), nil
}

// DeleteOptions configures a Delete call.
type DeleteOptions struct {
	MatchVersion   Version // nil: unconditional
	ReturnExisting bool
	Timeout        time.Duration
}

// DeleteResult is the response to Delete.
type DeleteResult = protocol.DeleteResult

// Delete removes a single row by primary key, optionally conditioned on
// opts.MatchVersion.
func (c *Client) Delete(ctx context.Context, tableName string, key []byte, opts DeleteOptions) (*DeleteResult, error) {
	req := &protocol.DeleteRequest{
		TableName:      tableName,
		Key:            key,
		MatchVersion:   opts.MatchVersion,
		ReturnExisting: opts.ReturnExisting,
	}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(opts.Timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.(*DeleteResult), nil
}

// DeleteRangeOptions configures a DeleteRange call.
type DeleteRangeOptions struct {
	MaxWriteKB int32
	Timeout    time.Duration
}

// DeleteRange atomically deletes every row sharing partialKey in a single
// round trip, subject to MaxWriteKB; use DeleteRangeIterator for a range
// that may require multiple pages.
func (c *Client) DeleteRange(ctx context.Context, tableName string, partialKey []byte, opts DeleteRangeOptions) (deleted int32, continuationKey []byte, err error) {
	req := &protocol.MultiDeleteRequest{
		TableName:  tableName,
		PartialKey: partialKey,
		MaxWriteKB: opts.MaxWriteKB,
	}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(opts.Timeout))

	res, rerr := c.execute(ctx, req)
	if rerr != nil {
		return 0, nil, rerr
	}
	result := res.(*protocol.MultiDeleteResult)
	return result.DeletedCount, result.ContinuationKey, nil
}

// DeleteRangeIterator is the lazy paged sequence over DeleteRange (spec
// §4.6).
type DeleteRangeIterator struct {
	inner *protocol.DeleteRangeIterator
}

// Next deletes and returns the count deleted in the next page.
func (it *DeleteRangeIterator) Next(ctx context.Context) (deleted int32, done bool, err error) {
	return it.inner.Next(ctx)
}

// Done reports whether the sequence has been fully consumed.
func (it *DeleteRangeIterator) Done() bool { return it.inner.Done() }

// NewDeleteRangeIterator returns a paged iterator over every row sharing
// partialKey, stopping when the server returns a nil continuation.
func (c *Client) NewDeleteRangeIterator(tableName string, partialKey []byte, opts DeleteRangeOptions) *DeleteRangeIterator {
	req := &protocol.MultiDeleteRequest{
		TableName:  tableName,
		PartialKey: partialKey,
		MaxWriteKB: opts.MaxWriteKB,
	}
	return &DeleteRangeIterator{inner: protocol.NewDeleteRangeIterator(c.executor, req)}
}
