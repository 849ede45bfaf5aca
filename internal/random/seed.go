// Package random provides seeded pseudo-random sources.
//
// Seeds come from crypto/rand; the resulting generators are math/rand so a
// fixed seed replays the same picks in tests.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Locked is a *rand.Rand safe for concurrent use.
type Locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocked returns a concurrency-safe generator for seed.
func NewLocked(seed int64) *Locked {
	return &Locked{rng: rand.New(rand.NewSource(seed))}
}

// NewLockedFromCrypto seeds a Locked generator from crypto/rand.
func NewLockedFromCrypto() (*Locked, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewLocked(seed), nil
}

// Intn returns a value in [0, n).
func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}
