package rng

import "testing"

func TestSameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)

	for i := 0; i < 50; i++ {
		x, y := a.Intn(1000), b.Intn(1000)
		if x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
	if a.Calls() != 50 || b.Calls() != 50 {
		t.Fatalf("expected 50 calls each, got %d and %d", a.Calls(), b.Calls())
	}
}

func TestShuffleCountsDraws(t *testing.T) {
	r := New(7)
	items := []int{0, 1, 2, 3, 4, 5}
	r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	if r.Calls() != int64(len(items)-1) {
		t.Fatalf("expected %d calls, got %d", len(items)-1, r.Calls())
	}

	seen := make(map[int]bool)
	for _, v := range items {
		seen[v] = true
	}
	if len(seen) != 6 {
		t.Fatalf("shuffle lost elements: %v", items)
	}
}

func TestIntnNonPositiveDoesNotConsume(t *testing.T) {
	r := New(1)
	if got := r.Intn(0); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	r.Shuffle(1, func(i, j int) {})
	if r.Calls() != 0 {
		t.Fatalf("expected no calls, got %d", r.Calls())
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 20; i++ {
		if a.Intn(1<<30) != b.Intn(1<<30) {
			same = false
		}
	}
	if same {
		t.Fatal("expected different seeds to produce different sequences")
	}
}

func TestNewSeedNonNegative(t *testing.T) {
	seed, err := NewSeed()
	if err != nil {
		t.Fatalf("NewSeed returned error: %v", err)
	}
	if seed < 0 {
		t.Fatalf("seed = %d, want non-negative", seed)
	}
}
