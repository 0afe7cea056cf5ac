// Package auth implements the identity provider and the access policy.
//
// Identity: registration with bcrypt password hashes, login with
// constant-time verification, and signed HS256 bearer tokens carrying the
// user's id, email and role for a fixed validity window.
//
// Access policy: gin middleware that authenticates the bearer token into the
// request context, and a RequireRole predicate gating admin operations.
// Authentication failures (missing, malformed, expired token) and
// authorization failures (valid token, wrong role) are distinct error kinds
// mapped to 401 and 403 respectively.
package auth
