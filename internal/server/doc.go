// Package server wires the dropnest HTTP surface.
//
// # Routes
//
// Public:
//
//	POST /login                 picture-sequence login, returns a bearer token
//	GET  /health                liveness probe
//
// Protected (Authorization: Bearer <token>):
//
//	POST   /logout                     revoke the presented token
//	POST   /admin/check-password       re-verify the admin password
//	POST   /upload                     multipart upload into the shared drop box
//	GET    /files                      listing with image/document partition
//	GET    /download/{filename}        attachment stream (also ?token=)
//	GET    /images/{filename}          inline stream (also ?token=)
//	GET/POST /notes, PUT/DELETE /notes/{id}
//	GET/POST /passwords, PUT/DELETE /passwords/{id}
//
// The download and image routes accept a token query parameter because they
// are fetched from contexts (img tags, download links) that cannot set
// headers.
//
// # Request Lifecycle
//
// Every protected request passes through the auth middleware before its
// handler runs; handlers read the resolved identity from the request
// context and never see an unauthenticated request. Failures map to exactly
// one terminal response: 400 client input, 401/403 auth, 404 missing, 429
// throttled, 500 I/O. Nothing here retries, and no failure crashes the
// process.
package server
