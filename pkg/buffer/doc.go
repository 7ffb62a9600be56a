/*
Package buffer implements page-level storage for data segments: a
BlockManager allocating fixed-size blocks either from process memory
or from a single backing file, and a Pool layering pin/unpin and LRU
eviction on top of it.

The on-disk layout is a single file (conventionally named
"table.otbx"): page 0 is a header recording the metadata block
pointer, the free-list root, and a magic value; the free list itself is
a linked chain of block pointers threaded through metadata blocks. This
mirrors disk_t/agent_disk_t's page file in the reference engine this
package is modeled on, simplified to one block manager per table file
instead of one per database.
*/
package buffer
