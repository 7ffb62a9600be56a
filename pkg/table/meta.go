package table

import "encoding/binary"

// encodeTableMeta serializes the layout descriptor a checkpoint
// records: total row count, segment count, and column count. It is
// intentionally minimal — just enough to validate a reload against
// the live schema — since page-level block persistence is handled by
// storagemgr/buffer, not by this package.
func encodeTableMeta(totalRows, segmentCount, columnCount int64) []byte {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(totalRows))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(segmentCount))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(columnCount))
	return buf
}

// DecodeTableMeta parses the bytes encodeTableMeta produced.
func DecodeTableMeta(meta []byte) (totalRows, segmentCount, columnCount int64) {
	totalRows = int64(binary.LittleEndian.Uint64(meta[0:8]))
	segmentCount = int64(binary.LittleEndian.Uint64(meta[8:16]))
	columnCount = int64(binary.LittleEndian.Uint64(meta[16:24]))
	return
}
