// Package find implements the per-instance find-in-page session: a small
// state machine (Closed, Active) layered over an engine's optional native
// find capability.
//
// The owner (the panel registry) attaches the engine finder once the
// instance is ready and forwards every index/count change event to Sync
// after re-checking that the instance is still alive. Sessions are not safe
// for concurrent use; the owner serializes access.
package find
