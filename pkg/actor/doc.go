/*
Package actor implements the single-threaded mailbox that every
manager-like component (storage manager, index manager, disk agents,
WAL manager) runs on.

A Mailbox owns its state exclusively; callers never touch that state
directly, they submit a closure and wait for its result. At most one
closure runs at a time per mailbox, so a handler body never races with
another handler body on the same mailbox — the only way two mailboxes
interleave is through an explicit cross-mailbox Call, which is a
suspension point for the caller but not for the callee's own queue.

This mirrors the dependency pack's channel-based broker
(events.Broker.run/broadcast) generalized from fire-and-forget
broadcast to a request/response call with a correlation id, since each
manager here needs an answer back rather than just a notification.
*/
package actor
