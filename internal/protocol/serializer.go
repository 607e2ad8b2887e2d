package protocol

// Serializer encodes the handful of wire fields whose representation is
// documented as changing between protocol generations (spec §4.4, §6.1);
// every other field (strings, packed integers, booleans, opaque blobs) is
// version-invariant and encoded directly through Message. Keeping the
// version-sensitive fields behind this seam is what gives the
// ProtocolHandler's V4→V3 fallback (protocolhandler.go) an actual effect on
// the bytes placed on the wire, rather than only steering transport.go's
// request path.
type Serializer interface {
	// WriteTableLimits and ReadTableLimits encode and decode a table's
	// provisioned-throughput block (spec §6.1's TableDDL example).
	WriteTableLimits(w *Message, limits TableLimits)
	ReadTableLimits(m *Message) (TableLimits, error)
}

// serializerFor selects the codec family in effect for a negotiated serial
// version. The families are only known to diverge at the V3/V4 boundary;
// any version newer than V4 reuses the V4 family until this is extended.
func serializerFor(serial SerialVersion) Serializer {
	if serial <= SerialVersion3 {
		return v3Serializer{}
	}
	return v4Serializer{}
}

// v4Serializer is the current wire family. Table limits pack as three
// sortable varints, matching the compact integer encoding V4 uses
// throughout the rest of the request body.
type v4Serializer struct{}

func (v4Serializer) WriteTableLimits(w *Message, limits TableLimits) {
	w.WritePackedInt32(limits.ReadUnits)
	w.WritePackedInt32(limits.WriteUnits)
	w.WritePackedInt32(limits.StorageGB)
}

func (v4Serializer) ReadTableLimits(m *Message) (TableLimits, error) {
	var limits TableLimits
	var err error
	if limits.ReadUnits, err = m.ReadPackedInt32(); err != nil {
		return limits, err
	}
	if limits.WriteUnits, err = m.ReadPackedInt32(); err != nil {
		return limits, err
	}
	if limits.StorageGB, err = m.ReadPackedInt32(); err != nil {
		return limits, err
	}
	limits.TableHasSet = true
	return limits, nil
}

// v3Serializer is the fallback family negotiated down to when a server
// rejects V4 (spec §4.4). Table limits use the older fixed-width unpacked
// int32 encoding, per spec §6.1's worked TableDDL example.
type v3Serializer struct{}

func (v3Serializer) WriteTableLimits(w *Message, limits TableLimits) {
	w.WriteUnpackedInt32(limits.ReadUnits)
	w.WriteUnpackedInt32(limits.WriteUnits)
	w.WriteUnpackedInt32(limits.StorageGB)
}

func (v3Serializer) ReadTableLimits(m *Message) (TableLimits, error) {
	var limits TableLimits
	var err error
	if limits.ReadUnits, err = m.ReadUnpackedInt32(); err != nil {
		return limits, err
	}
	if limits.WriteUnits, err = m.ReadUnpackedInt32(); err != nil {
		return limits, err
	}
	if limits.StorageGB, err = m.ReadUnpackedInt32(); err != nil {
		return limits, err
	}
	limits.TableHasSet = true
	return limits, nil
}
