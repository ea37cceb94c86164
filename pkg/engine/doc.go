// Package engine evaluates sliding-window rate thresholds for a token and a
// metric, and dispatches the configured actions when a threshold is breached.
//
// The engine is stateless: every event lives in the counter store, and the
// threshold ladder is immutable once the engine is built. An Engine is safe for
// concurrent use.
//
// The engine fails open. A missing store, a store error or a store call that
// exceeds the store timeout counts as zero events for that threshold, so the
// token passes and no action fires. Failed writes are logged and skipped.
//
// Enforcement is eventual, not strict. Two concurrent Incr calls for the same
// token may both pass before either sees the other's event.
package engine
