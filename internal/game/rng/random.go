// Package rng provides the seeded random source threaded through a match.
//
// Every shuffle and draw in a match goes through one SeededRandom. The
// generator counts each entropy-consuming call so a replay can be checked
// against the live session call for call.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// streamSalt separates the two PCG words derived from one seed.
const streamSalt = 0x9e3779b97f4a7c15

// SeededRandom is a deterministic PRNG keyed by an integer seed.
type SeededRandom struct {
	seed  int64
	calls int64
	src   *rand.Rand
}

// New creates a generator for seed.
func New(seed int64) *SeededRandom {
	s := uint64(seed)
	return &SeededRandom{
		seed: seed,
		src:  rand.New(rand.NewPCG(s, s^streamSalt)),
	}
}

// Seed returns the seed the generator was built with.
func (r *SeededRandom) Seed() int64 {
	return r.seed
}

// Calls returns the number of entropy-consuming calls made so far.
func (r *SeededRandom) Calls() int64 {
	return r.calls
}

// Intn returns a value in [0, n). n <= 0 returns 0 without consuming entropy.
func (r *SeededRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	r.calls++
	return r.src.IntN(n)
}

// Shuffle permutes n elements with Fisher-Yates, drawing n-1 values.
func (r *SeededRandom) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}

// NewSeed draws a fresh seed from crypto/rand. It is only meant for choosing
// the seed of a new match, never for anything inside one.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1), nil
}
