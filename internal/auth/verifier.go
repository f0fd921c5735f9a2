// ABOUTME: Credential verification for the picture login and admin password
// ABOUTME: Pure comparisons with no state; bcrypt for the admin password

package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// VerifySequence reports whether got matches want element-wise, in order.
// A length mismatch fails; there is no subsequence or set matching.
func VerifySequence(got, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// AdminVerifier checks a plaintext password against a stored bcrypt hash.
// The zero-value hash matches nothing, so an unconfigured verifier fails closed.
type AdminVerifier struct {
	hash []byte
}

// NewAdminVerifier creates a verifier for the given bcrypt hash.
func NewAdminVerifier(hash string) *AdminVerifier {
	return &AdminVerifier{hash: []byte(hash)}
}

// Configured reports whether a hash has been set.
func (v *AdminVerifier) Configured() bool {
	return len(v.hash) > 0
}

// Verify reports whether password matches the stored hash. The comparison
// is one-way and does not leak the position of a mismatch.
func (v *AdminVerifier) Verify(password string) bool {
	return bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
}
