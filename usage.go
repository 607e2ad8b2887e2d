package nosqldb

import (
	"context"
	"time"

	"github.com/nosqldb/nosqldb-go/internal/protocol"
)

// TableUsageRecord is one sample of a table's throughput/storage usage over
// a period.
type TableUsageRecord = protocol.TableUsageRecord

// TableUsageOptions configures a GetTableUsage call.
type TableUsageOptions struct {
	StartTime time.Time
	EndTime   time.Time
	Limit     int32
	Timeout   time.Duration
}

// GetTableUsage retrieves usage records for tableName over the requested
// time window, paged by a numeric start index (spec §4.1 "table usage
// records over a time window (paged)").
func (c *Client) GetTableUsage(ctx context.Context, tableName string, startIndex int32, opts TableUsageOptions) ([]TableUsageRecord, int32, error) {
	req := &protocol.TableUsageRequest{
		TableName:  tableName,
		StartTime:  millisOrZero(opts.StartTime),
		EndTime:    millisOrZero(opts.EndTime),
		Limit:      opts.Limit,
		StartIndex: startIndex,
	}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(opts.Timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, 0, err
	}
	result := res.(*protocol.TableUsageResult)
	return result.Records, result.NextStartIndex, nil
}

func millisOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
