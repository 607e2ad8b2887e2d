package protocol

// TableUsageRequest retrieves per-second/per-hour usage records for a table
// over a time window, paged by StartIndex (spec §4.1 "table usage records
// over a time window (paged)").
type TableUsageRequest struct {
	RequestBase

	TableName string
	StartTime int64 // millis since epoch; 0 = unbounded
	EndTime   int64
	Limit     int32
	StartIndex int32
}

func (r *TableUsageRequest) OpCode() OpCode { return OpGetTableUsage }

func (r *TableUsageRequest) Validate() error {
	if r.TableName == "" {
		return NewError(KindArgument, "table usage request requires a table name")
	}
	if r.EndTime != 0 && r.StartTime != 0 && r.EndTime < r.StartTime {
		return NewError(KindArgument, "table usage request end time precedes start time")
	}
	return nil
}

func (r *TableUsageRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.TableName)
	w.WritePackedInt64(r.StartTime)
	w.WritePackedInt64(r.EndTime)
	w.WritePackedInt32(r.Limit)
	w.WritePackedInt32(r.StartIndex)
	return nil
}

// TableUsageRecord is one sample in a TableUsageResult.
type TableUsageRecord struct {
	StartTime      int64
	SecondsInPeriod int32
	ReadUnits      int32
	WriteUnits     int32
	StorageGB      int32
	ReadThrottleCount  int32
	WriteThrottleCount int32
}

// TableUsageResult is the response to TableUsageRequest.
type TableUsageResult struct {
	TableName     string
	Records       []TableUsageRecord
	NextStartIndex int32
}

func (*TableUsageResult) isResult() {}

func (r *TableUsageRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	table, err := m.ReadString()
	if err != nil {
		return nil, err
	}
	count, err := m.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, Wrap(KindBadProtocol, ErrBadProtocol, "received invalid table-usage record count: %d", count)
	}
	records := make([]TableUsageRecord, 0, count)
	for i := int32(0); i < count; i++ {
		var rec TableUsageRecord
		if rec.StartTime, err = m.ReadPackedInt64(); err != nil {
			return nil, err
		}
		if rec.SecondsInPeriod, err = m.ReadPackedInt32(); err != nil {
			return nil, err
		}
		if rec.ReadUnits, err = m.ReadPackedInt32(); err != nil {
			return nil, err
		}
		if rec.WriteUnits, err = m.ReadPackedInt32(); err != nil {
			return nil, err
		}
		if rec.StorageGB, err = m.ReadPackedInt32(); err != nil {
			return nil, err
		}
		if rec.ReadThrottleCount, err = m.ReadPackedInt32(); err != nil {
			return nil, err
		}
		if rec.WriteThrottleCount, err = m.ReadPackedInt32(); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	nextIndex, err := m.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	return &TableUsageResult{TableName: table, Records: records, NextStartIndex: nextIndex}, nil
}

func (r *TableUsageRequest) ApplyResult(Result) {}

// IndexInfo describes one secondary index.
type IndexInfo struct {
	IndexName string
	FieldNames []string
}

// GetIndexesRequest lists the secondary indexes defined on a table.
type GetIndexesRequest struct {
	RequestBase

	TableName string
	IndexName string // "": all indexes
}

func (r *GetIndexesRequest) OpCode() OpCode { return OpGetIndexes }

func (r *GetIndexesRequest) Validate() error {
	if r.TableName == "" {
		return NewError(KindArgument, "get indexes request requires a table name")
	}
	return nil
}

func (r *GetIndexesRequest) Serialize(w *Message, serial SerialVersion, query QueryVersion) error {
	w.WriteString(r.TableName)
	w.WriteString(r.IndexName)
	return nil
}

// GetIndexesResult is the response to GetIndexesRequest.
type GetIndexesResult struct {
	Indexes []IndexInfo
}

func (*GetIndexesResult) isResult() {}

func (r *GetIndexesRequest) Deserialize(m *Message, serial SerialVersion, query QueryVersion) (Result, error) {
	count, err := m.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, Wrap(KindBadProtocol, ErrBadProtocol, "received invalid index field count: %d", count)
	}
	indexes := make([]IndexInfo, 0, count)
	for i := int32(0); i < count; i++ {
		name, err := m.ReadString()
		if err != nil {
			return nil, err
		}
		fieldCount, err := m.ReadPackedInt32()
		if err != nil {
			return nil, err
		}
		if fieldCount < 0 {
			return nil, Wrap(KindBadProtocol, ErrBadProtocol, "received invalid index field count: %d", fieldCount)
		}
		fields := make([]string, 0, fieldCount)
		for j := int32(0); j < fieldCount; j++ {
			field, err := m.ReadString()
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		}
		indexes = append(indexes, IndexInfo{IndexName: name, FieldNames: fields})
	}
	return &GetIndexesResult{Indexes: indexes}, nil
}

func (r *GetIndexesRequest) ApplyResult(Result) {}
