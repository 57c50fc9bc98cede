// Package session provides durable persistence for the client-side forum session: the access
// token, the refresh token, and the user profile, each stored as an independently addressable
// entry so that partial writes remain representable.
//
// # Backends
//
//   - [RedisStore]: shared storage keyed by namespace, written with MULTI/EXEC pipelines.
//   - [SQLiteStore]: single-file storage for CLI and desktop hosts.
//   - [MemoryStore]: process-local storage for tests and ephemeral clients.
//
// # Profile encoding
//
// User profiles are stored as a one-byte format version followed by JSON. Bare JSON objects
// written by the browser client are read as legacy records and rewritten on the next save.
//
// # Architecture boundaries
//
// This package owns the [Store] contract and the [Record], [UserProfile] and [AuthResult]
// models. It does NOT hold in-memory session state, or decide when a session is revoked. The
// root package owns those.
//
// # What this package must NOT do
//
//   - Import goSession or forum (no upward imports).
//   - Treat a missing entry as an error; absence is "" or nil.
//   - Exchange or validate tokens.
package session
