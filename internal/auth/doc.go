// Package auth implements the authentication gateway for dropnest.
//
// # Credential Verification
//
// Two stateless checks:
//
//   - Picture login: VerifySequence compares a submitted list of grid-cell
//     indices against the configured sequence, ordered and element-wise.
//
//   - Admin password: AdminVerifier compares a plaintext password against a
//     stored bcrypt hash. bcrypt's comparison is one-way and timing-safe.
//
// # Attempt Throttling
//
// Throttle counts consecutive failed attempts per key with a fixed ceiling
// and no time decay. Two instances run in production: one keyed by client
// network origin (login endpoint), one keyed by authenticated identity
// (admin password re-check). A key at the ceiling is refused before the
// verifier is ever consulted.
//
// # Sessions
//
// Successful verification mints a bearer token via TokenMinter: an HS256
// JWT whose subject is the SHA-256 of the accepted sequence, with no
// issued-at or expiry claims. Minting is therefore deterministic — the same
// sequence always produces the same token — which lets a client that stored
// its token keep using it across server restarts without re-entering the
// sequence. The flip side: the token is secret-equivalent, so the signing
// secret and the sequence must both stay confidential.
//
// SessionStore is the in-memory capability registry:
//
//	token, err := sessions.Issue(identity)
//	identity, ok := sessions.Validate(token)
//	sessions.Revoke(token)
//
// Validate re-admits an unknown token whose signature verifies, which is
// what makes restart persistence work without server-side session state.
// Revocations are honored until restart.
//
// # HTTP Middleware
//
// Middleware extracts the token from the Authorization header (or a token
// query parameter for routes that opt in), validates it, and attaches a
// Session to the request context:
//
//	sess := auth.FromContext(r.Context())
package auth
