// Package records implements the flat-file stores behind the notes and
// password-vault endpoints.
//
// Each record type persists as a single JSON file (notes.json,
// passwords.json) mapping identity to a list of flat records. There is
// deliberately no schema beyond the reserved id/created_at/updated_at keys
// and no cross-record invariant beyond id uniqueness per identity; the
// endpoints are a direct CRUD passthrough.
//
// Mutations rewrite the whole file through a temp-file rename, so a crash
// mid-write never leaves a truncated store behind.
package records
