/*
Package engine wires the storage manager, index manager, WAL manager
and catalog into the single component the §6 message surface describes
(`storage_append`, `storage_commit_append`, `register_collection`,
`commit_insert`, `checkpoint_all`, ...), the same role pkg/manager
plays over storage.Store/WarrenFSM/raft in the teacher: one struct that
owns every long-lived component and exposes the operations callers
actually invoke. Operations run on the caller's goroutine; they are not
routed through an actor.Mailbox, and concurrent callers are serialized
only by the mutexes of the components they touch.

Engine.Open recovers a data directory by loading the catalog, recreating
each collection's storage entry and index set, and replaying the WAL
from its earliest retained record — matching storagemgr's documented
recovery contract (see LoadStorageDisk) that row content is rebuilt by
replay rather than by a page-level row format.
*/
package engine
