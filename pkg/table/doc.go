/*
Package table implements the columnar row store: Segment (a 1024-row
block pairing a vector.Chunk with an mvcc.Chain), RowGroup (an ordered
list of segments), and Table (the public data_table surface of §4.2:
append, update, delete_rows, scan, fetch, scan_segment, compact,
checkpoint, cleanup_versions, and the commit/revert pairs that
finalize a transaction's pending append or delete).
*/
package table
