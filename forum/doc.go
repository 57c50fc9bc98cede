// Package forum holds thin request builders for the forum API: categories, threads and
// replies, moderation, and the login/register endpoints.
//
// Every call goes through a [Requester], normally the session dispatcher, so tokens are
// attached and 401s are handled before a result reaches this package.
//
// # Failure policy
//
// List reads (Categories.List, Threads.List, Moderation.Reports) never fail: transport errors,
// non-2xx statuses and bodies whose container field is not a JSON array are logged and replaced
// by an empty default. Everything else, including mutations and the auth endpoints, returns
// the error unchanged. Moderation.Stats and Moderation.Actions are reads but propagate errors.
package forum
