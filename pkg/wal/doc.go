/*
Package wal implements the write-ahead log of §4.4. Every mutation and
DDL change is framed as a raft.Log — Index doubling as wal_id, Data
holding a JSON-encoded Record — the same frame WarrenFSM.Apply consumes
from a committed Raft entry, and raftboltdb.BoltStore is reused purely
as a durable physical log store; there is no leader election or
replication here, raft is borrowed for its on-disk log format only.

Replay walks the log from a given wal_id and applies each record
directly against an Applier: no MVCC bookkeeping, no dedup, no NOT-NULL
re-validation, because a record's presence in the log already proves
its original write passed every check once.
*/
package wal
