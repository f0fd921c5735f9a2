// ABOUTME: Session token minting and the in-memory session registry
// ABOUTME: Tokens are deterministic HS256 JWTs so retained tokens survive restarts

package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingClaim = errors.New("missing required claim")
)

// MinSecretLength is the minimum length for the token signing secret.
const MinSecretLength = 32

// IdentityForSequence returns the stable identity derived from a grid
// sequence. The same sequence always yields the same identity, which doubles
// as the partition key for a user's notes and vault entries.
func IdentityForSequence(seq []int) string {
	parts := make([]string, len(seq))
	for i, cell := range seq {
		parts[i] = strconv.Itoa(cell)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, ",")))
	return hex.EncodeToString(sum[:])
}

// TokenMinter derives bearer tokens from authenticated identities using
// HS256 signing with a configured secret.
//
// Minting is deterministic: tokens carry no issued-at or expiry claims, so
// the signed string is a pure function of the identity and the secret. A
// client that kept its token across a server restart stays logged in as long
// as the configured secret is unchanged.
type TokenMinter struct {
	secret []byte
}

// NewTokenMinter creates a minter with the given secret.
// The secret must be at least MinSecretLength bytes.
func NewTokenMinter(secret []byte) (*TokenMinter, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("token secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	return &TokenMinter{secret: secret}, nil
}

// Mint signs a token whose subject is the given identity.
func (m *TokenMinter) Mint(identity string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": identity,
	})
	return token.SignedString(m.secret)
}

// Verify validates a token signature and extracts the identity from the
// "sub" claim.
func (m *TokenMinter) Verify(tokenString string) (identity string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return sub, nil
}

// SessionStore is the process-wide registry of issued tokens. It is the
// capability registry: a token authenticates iff it is registered (or can be
// re-admitted, see Validate) and has not been revoked.
type SessionStore struct {
	mu      sync.Mutex
	minter  *TokenMinter
	active  map[string]string // token -> identity
	revoked map[string]struct{}
}

// NewSessionStore creates an empty registry backed by the given minter.
func NewSessionStore(minter *TokenMinter) *SessionStore {
	return &SessionStore{
		minter:  minter,
		active:  make(map[string]string),
		revoked: make(map[string]struct{}),
	}
}

// Issue mints and registers a token for identity. Issuing clears any earlier
// revocation of the same token.
func (s *SessionStore) Issue(identity string) (string, error) {
	token, err := s.minter.Mint(identity)
	if err != nil {
		return "", fmt.Errorf("minting token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.revoked, token)
	s.active[token] = identity
	return token, nil
}

// Validate resolves a token to its identity. Revoked tokens fail until
// re-issued. A token missing from the registry (for example, one a client
// retained across a server restart) is re-admitted if its signature still
// verifies; the revocation set itself is in-memory, so restarts forget
// revocations along with sessions.
func (s *SessionStore) Validate(token string) (identity string, ok bool) {
	s.mu.Lock()
	if _, gone := s.revoked[token]; gone {
		s.mu.Unlock()
		return "", false
	}
	if id, found := s.active[token]; found {
		s.mu.Unlock()
		return id, true
	}
	s.mu.Unlock()

	id, err := s.minter.Verify(token)
	if err != nil {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, gone := s.revoked[token]; gone {
		return "", false
	}
	s.active[token] = id
	return id, true
}

// Revoke removes a token from the registry. The token stays unusable until
// the identity logs in again or the process restarts.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, token)
	s.revoked[token] = struct{}{}
}
