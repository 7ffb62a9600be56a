/*
Package log provides structured logging for quilldb using zerolog.

Every long-lived component — the storage manager, the index manager,
the per-index disk agents, the WAL manager — logs through a
component-scoped child logger obtained from the package-level global
logger, so a single process's logs can be filtered by component
without touching call sites.

# Usage

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	logger := log.WithComponent("storage-manager")
	logger.Info().Str("collection", name).Msg("storage created")

# Levels

Debug is for segment/page-level tracing, Info for lifecycle events
(collection created, checkpoint completed), Warn for recoverable
anomalies (disk-agent flush failure, dedup dropped rows), Error for
failed operations that the caller must handle.
*/
package log
