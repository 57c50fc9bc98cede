// Package forumtest runs an in-process fake of the forum API for tests and demos.
//
// The fake mirrors the backend's route map under /api/v1, issues signed access tokens on
// login and register, and answers every authentication failure with a 401 carrying the
// backend's error body ({message, code, request_id}). Tokens can be revoked at any time to
// force the 401 path in a client.
//
// # What this package must NOT do
//
//   - Enforce password strength. Passwords are stored as cheap argon2id hashes only.
//   - Persist anything beyond the lifetime of a [Server].
package forumtest
