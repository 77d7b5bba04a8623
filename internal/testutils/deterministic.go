// Package testutils provides deterministic generators and test doubles for examprep.
// The generators are also used at runtime in test mode so golden output stays stable.
package testutils

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// Thread-safe counter for deterministic ID generation
	idCounter uint64
	idMutex   sync.Mutex
)

// GenerateClientID returns a random UUID, or a deterministic one in test mode.
// Test mode UUIDs look like 00000001-0000-4000-8000-000000000001.
func GenerateClientID(testMode bool) string {
	if testMode {
		return getDeterministicUUID()
	}
	return uuid.New().String()
}

func getDeterministicUUID() string {
	idMutex.Lock()
	defer idMutex.Unlock()

	idCounter++

	// Format: xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx
	return fmt.Sprintf("%08x-0000-4000-8000-%012x", idCounter, idCounter)
}

// ResetTestCounters resets the deterministic counters for testing.
func ResetTestCounters() {
	idMutex.Lock()
	defer idMutex.Unlock()
	idCounter = 0
}

// FixedClock is a manually advanced clock.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock starts a clock at 2025-01-01T00:00:00Z.
func NewFixedClock() *FixedClock {
	return &FixedClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Now returns the current clock reading.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SequenceCodes returns a code generator that yields codes in order and then
// fails once they run out.
func SequenceCodes(codes ...string) func() (string, error) {
	var mu sync.Mutex
	next := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(codes) {
			return "", fmt.Errorf("no more scripted codes")
		}
		code := codes[next]
		next++
		return code, nil
	}
}
