// ABOUTME: Tests for login, logout, and the login throttle
// ABOUTME: Includes the full throttle scenario and token determinism

package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	rec := do(t, srv, jsonRequest(t, http.MethodPost, "/login", `{"imageSequence":[2,6,4,8]}`, ""))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "login successful", body["message"])
	assert.NotEmpty(t, body["token"])
}

func TestLogin_WrongSequence(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	for _, seq := range []string{
		`[1,2,3,4]`,   // all wrong
		`[6,2,4,8]`,   // permutation
		`[2,6,4]`,     // prefix
		`[2,6,4,8,1]`, // superset
		`[]`,          // empty
	} {
		rec := do(t, srv, jsonRequest(t, http.MethodPost, "/login", `{"imageSequence":`+seq+`}`, ""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "sequence %s", seq)
	}
}

func TestLogin_InvalidBody(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	for name, body := range map[string]string{
		"not json":        `not json at all`,
		"missing field":   `{}`,
		"null field":      `{"imageSequence":null}`,
		"string sequence": `{"imageSequence":"2648"}`,
		"number":          `{"imageSequence":2648}`,
	} {
		rec := do(t, srv, jsonRequest(t, http.MethodPost, "/login", body, ""))
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestLogin_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	rec := do(t, srv, jsonRequest(t, http.MethodGet, "/login", "", ""))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// TestLogin_ThrottleScenario walks the full guessing scenario: with a
// ceiling of 5, five wrong attempts each get 401; from then on every
// attempt gets 429, even with the correct sequence. A fresh process starts
// clean, and logging in twice yields the identical token.
func TestLogin_ThrottleScenario(t *testing.T) {
	cfg := newTestConfig(t)
	srv := newTestServer(t, cfg)

	for i := 0; i < 5; i++ {
		rec := do(t, srv, jsonRequest(t, http.MethodPost, "/login", `{"imageSequence":[1,2,3,4]}`, ""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "failed attempt %d", i+1)
	}

	// Ceiling reached: correctness no longer matters.
	rec := do(t, srv, jsonRequest(t, http.MethodPost, "/login", `{"imageSequence":[2,6,4,8]}`, ""))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	rec = do(t, srv, jsonRequest(t, http.MethodPost, "/login", `{"imageSequence":[1,2,3,4]}`, ""))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Process restart clears the counters.
	fresh := newTestServer(t, cfg)
	first := login(t, fresh)
	second := login(t, fresh)
	assert.Equal(t, first, second, "same sequence must yield the same token")
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))

	for i := 0; i < 4; i++ {
		rec := do(t, srv, jsonRequest(t, http.MethodPost, "/login", `{"imageSequence":[9,9,9,9]}`, ""))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	login(t, srv)

	// Counter is back to zero: four more misses are tolerated again.
	for i := 0; i < 4; i++ {
		rec := do(t, srv, jsonRequest(t, http.MethodPost, "/login", `{"imageSequence":[9,9,9,9]}`, ""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestLogin_TokenDeterministicAcrossRestarts(t *testing.T) {
	cfg := newTestConfig(t)

	before := login(t, newTestServer(t, cfg))
	after := login(t, newTestServer(t, cfg))
	assert.Equal(t, before, after)
}

func TestRetainedTokenSurvivesRestart(t *testing.T) {
	cfg := newTestConfig(t)
	token := login(t, newTestServer(t, cfg))

	// A new server models a restart: the in-memory registry is empty, but
	// the retained token still authenticates.
	fresh := newTestServer(t, cfg)
	rec := do(t, fresh, jsonRequest(t, http.MethodGet, "/files", "", token))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t, newTestConfig(t))
	token := login(t, srv)

	rec := do(t, srv, jsonRequest(t, http.MethodGet, "/files", "", token))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, jsonRequest(t, http.MethodPost, "/logout", "", token))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, jsonRequest(t, http.MethodGet, "/files", "", token))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Logging in again re-issues the same token and clears the revocation.
	again := login(t, srv)
	assert.Equal(t, token, again)
	rec = do(t, srv, jsonRequest(t, http.MethodGet, "/files", "", again))
	assert.Equal(t, http.StatusOK, rec.Code)
}
