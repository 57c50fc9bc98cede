// Package goSession manages the client side of a forum API session: it holds the signed-in
// user and tokens in memory, mirrors them to a durable [session.Store] so they survive restarts,
// attaches the access token to outgoing requests, and tears the session down when the backend
// rejects it.
//
// A [Client] is assembled with [Builder.Build]. Build reads the store once and seeds the
// in-memory [State] and [TokenSlot] before it returns, so the first request already carries the
// persisted token. [Client.Reconcile] repairs the case where the store holds a complete session
// that the in-memory state missed.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Client], [Builder], [Config], [State],
// [Dispatcher], [Hydrator] and the [Snapshot] value type. Persistence lives in the session
// sub-package; request builders for the forum endpoints live in forum and depend only on the
// [forum.Requester] contract that [Dispatcher] satisfies.
//
// # Failure handling
//
// A 401 is the only signal that a session is no longer valid:
//
//   - on an authentication page (/login, /register by default) it is returned untouched;
//   - with a token attached, the store and token slot are wiped synchronously and the
//     in-memory state is cleared on a separate goroutine;
//   - without a token it is returned untouched.
//
// Nothing is retried and no refresh token exchange is attempted.
//
// # What this package must NOT do
//
//   - Issue, validate, or refresh tokens.
//   - Treat storage errors as fatal; unreadable entries are absent.
//   - Hold package-level session state. Every Client owns its slot and state.
package goSession
