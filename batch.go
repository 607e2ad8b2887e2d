package nosqldb

import (
	"context"
	"time"

	"github.com/nosqldb/nosqldb-go/internal/protocol"
)

// WriteOp is one entry of a WriteMany batch: either a put or a delete,
// optionally marked AbortIfFails so a failure aborts the whole batch rather
// than being absorbed as a per-operation failure (spec §4.1 "batch").
type WriteOp struct {
	IsPut        bool
	TableName    string
	Value        []byte // set when IsPut
	Key          []byte // set when !IsPut
	MatchVersion Version
	Option       PutOption // used when IsPut
	AbortIfFails bool
}

// PutOp builds an unconditional-by-default put batch entry.
func PutOp(tableName string, value []byte, option PutOption) WriteOp {
	return WriteOp{IsPut: true, TableName: tableName, Value: value, Option: option}
}

// DeleteOp builds a batch entry deleting key, optionally if-version.
func DeleteOp(tableName string, key []byte, matchVersion Version) WriteOp {
	return WriteOp{IsPut: false, TableName: tableName, Key: key, MatchVersion: matchVersion}
}

// WriteManyResult is the response to WriteMany.
type WriteManyResult = protocol.WriteManyResult

// WriteMany executes a mixed batch of puts and deletes against rows sharing
// the same shard key, transactionally: either all operations apply or none
// do (spec §4.1 "write-many (mixed put/delete with transactional
// semantics)").
func (c *Client) WriteMany(ctx context.Context, tableName string, ops []WriteOp, timeout time.Duration) (*WriteManyResult, error) {
	req := &protocol.WriteManyRequest{TableName: tableName}
	for _, op := range ops {
		entry := protocol.WriteOperation{IsPut: op.IsPut, AbortIfFails: op.AbortIfFails}
		if op.IsPut {
			entry.Put = &protocol.PutRequest{TableName: op.TableName, Value: op.Value, Option: op.Option, MatchVersion: op.MatchVersion}
		} else {
			entry.Delete = &protocol.DeleteRequest{TableName: op.TableName, Key: op.Key, MatchVersion: op.MatchVersion}
		}
		req.Operations = append(req.Operations, entry)
	}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.(*WriteManyResult), nil
}

// PutMany is a WriteMany batch of puts only, all under the same option.
func (c *Client) PutMany(ctx context.Context, tableName string, values [][]byte, option PutOption, timeout time.Duration) (*WriteManyResult, error) {
	ops := make([]WriteOp, len(values))
	for i, v := range values {
		ops[i] = PutOp(tableName, v, option)
	}
	return c.WriteMany(ctx, tableName, ops, timeout)
}

// DeleteMany is a WriteMany batch of unconditional deletes only.
func (c *Client) DeleteMany(ctx context.Context, tableName string, keys [][]byte, timeout time.Duration) (*WriteManyResult, error) {
	ops := make([]WriteOp, len(keys))
	for i, k := range keys {
		ops[i] = DeleteOp(tableName, k, nil)
	}
	return c.WriteMany(ctx, tableName, ops, timeout)
}
