// Package panel owns the collection of browser panel instances. It is
// structured into small files by concern:
//
//   - registry.go: Registry type, lookups, liveness view for focus tracking.
//   - config.go: RegistryConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: EngineState, PanelMode, DockState, Info, EnsureRequest.
//   - identity.go: id normalization and random id generation.
//   - record.go: per-instance record, native handle ownership, state transitions.
//   - ensure.go: EnsureAndMaybeNavigate and the asynchronous init pipeline.
//   - callbacks.go: engine and window completions, re-validated on arrival.
//   - purge.go: PurgeDead, Close, Shutdown.
//   - commands.go: host verbs (open, navigate, find, focus) with active-instance fallback.
//   - persist.go: Persister hooks (SaveAll, LoadAll, RestoreAlways).
//   - events.go, eventpub_memory.go: lifecycle events.
//   - errors.go: error types and helpers (IsInstanceNotFound, IsInvalidURL).
//   - metrics.go: Prometheus collectors.
//   - status_report.go: Status projection for the HTTP and TUI hosts.
//
// Concurrency: every exported method is safe for concurrent use. Engine and
// window callbacks arrive through a uiloop.Poster and never run inline, so the
// registry may call engine methods while holding its lock. Callbacks carry
// only an instance id plus a generation and re-validate the record before
// touching it; nothing outside this package holds a record pointer.
package panel
