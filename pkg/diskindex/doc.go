/*
Package diskindex implements the per-index disk agent of §3.5/§4.6: a
small actor that mirrors one in-memory index.Index to a B+-tree on
disk, exactly as pkg/storage/boltdb.go mirrors Warren's cluster state
to BoltDB. The mirror applies only at commit time — InsertMany and
RemoveMany are called from index.Engine.CommitInsert/CommitDelete,
never from the pending-entry path — and a failure here is logged, not
propagated: per §4.6/§7, crash recovery restores consistency via WAL
replay plus LoadAll rebuilding the in-memory index from this file.
*/
package diskindex
