// ABOUTME: Per-key failed-attempt counter gating credential verification
// ABOUTME: Fixed ceiling with no time decay; counters reset only on success

package auth

import (
	"sync"
)

// DefaultMaxAttempts is the attempt ceiling used when none is configured.
const DefaultMaxAttempts = 5

// Throttle counts consecutive failed verification attempts per key and
// refuses further attempts once a key reaches the ceiling. Counters never
// decay: a key at the ceiling stays blocked until a successful Record for
// that key or a process restart.
type Throttle struct {
	mu       sync.Mutex
	ceiling  int
	attempts map[string]int
}

// NewThrottle creates a throttle with the given ceiling. Non-positive
// ceilings fall back to DefaultMaxAttempts.
func NewThrottle(ceiling int) *Throttle {
	if ceiling <= 0 {
		ceiling = DefaultMaxAttempts
	}
	return &Throttle{
		ceiling:  ceiling,
		attempts: make(map[string]int),
	}
}

// Check reports whether key may attempt verification. Callers must not
// consult the credential verifier when Check returns false.
func (t *Throttle) Check(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts[key] < t.ceiling
}

// Record notes the outcome of a verification attempt for key. A success
// resets the counter to zero; a failure increments it.
func (t *Throttle) Record(key string, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if success {
		delete(t.attempts, key)
		return
	}
	t.attempts[key]++
}

// Remaining returns how many attempts key has left before the ceiling.
func (t *Throttle) Remaining(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	left := t.ceiling - t.attempts[key]
	if left < 0 {
		return 0
	}
	return left
}
