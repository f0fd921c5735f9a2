// ABOUTME: Tests for the failed-attempt throttle
// ABOUTME: Covers ceiling enforcement, success resets, and key independence

package auth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThrottle_CeilingBlocks(t *testing.T) {
	th := NewThrottle(5)

	for i := 0; i < 4; i++ {
		assert.True(t, th.Check("10.0.0.1"), "attempt %d should be allowed", i+1)
		th.Record("10.0.0.1", false)
	}

	// Fifth failure reaches the ceiling.
	assert.True(t, th.Check("10.0.0.1"))
	th.Record("10.0.0.1", false)

	// Blocked from here on, with no decay.
	assert.False(t, th.Check("10.0.0.1"))
	assert.False(t, th.Check("10.0.0.1"))
	assert.Equal(t, 0, th.Remaining("10.0.0.1"))
}

func TestThrottle_SuccessResets(t *testing.T) {
	th := NewThrottle(5)

	for i := 0; i < 4; i++ {
		th.Record("10.0.0.1", false)
	}
	assert.Equal(t, 1, th.Remaining("10.0.0.1"))

	th.Record("10.0.0.1", true)
	assert.Equal(t, 5, th.Remaining("10.0.0.1"))
	assert.True(t, th.Check("10.0.0.1"))
}

func TestThrottle_KeysAreIndependent(t *testing.T) {
	th := NewThrottle(2)

	th.Record("a", false)
	th.Record("a", false)

	assert.False(t, th.Check("a"))
	assert.True(t, th.Check("b"))
}

func TestThrottle_DefaultCeiling(t *testing.T) {
	th := NewThrottle(0)

	for i := 0; i < DefaultMaxAttempts; i++ {
		th.Record("k", false)
	}
	assert.False(t, th.Check("k"))
}

func TestThrottle_ConcurrentRecords(t *testing.T) {
	th := NewThrottle(1000)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			th.Record("k", false)
		}()
	}
	wg.Wait()

	assert.Equal(t, 900, th.Remaining("k"))
}
