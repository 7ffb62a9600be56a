/*
Package mvcc implements the version-chain state a row group keeps per
row slot — insert/delete version info tagged either committed-at-cid
or pending-by-transaction — plus the visibility rule and cleanup pass
that collapse history older than the oldest active reader.

Nothing here touches disk or vectors; table.Segment embeds a Chain per
1024-row block and calls into this package on every mutating path.
*/
package mvcc
