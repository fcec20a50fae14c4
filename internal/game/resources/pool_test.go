package resources

import (
	"testing"
)

func TestPool_Add(t *testing.T) {
	pool := NewPool()

	pool.Add(Power, 2)
	if pool.Get(Power) != 2 {
		t.Errorf("Expected 2 power, got %d", pool.Get(Power))
	}

	pool.Add(Influence, 1)
	if pool.Get(Influence) != 1 {
		t.Errorf("Expected 1 influence, got %d", pool.Get(Influence))
	}

	pool.Add(VictoryPoints, -3)
	if pool.Get(VictoryPoints) != 0 {
		t.Errorf("Expected negative add to be ignored, got %d", pool.Get(VictoryPoints))
	}
}

func TestPool_Spend(t *testing.T) {
	pool := NewPool()
	pool.Add(Power, 3)
	pool.Add(Influence, 2)

	if !pool.Spend(Power, 2) {
		t.Error("Expected to spend 2 power")
	}
	if pool.Get(Power) != 1 {
		t.Errorf("Expected 1 power remaining, got %d", pool.Get(Power))
	}

	// All-or-nothing
	if pool.Spend(Power, 5) {
		t.Error("Expected to fail spending 5 power when only 1 available")
	}
	if pool.Get(Power) != 1 {
		t.Errorf("Expected failed spend to leave 1 power, got %d", pool.Get(Power))
	}

	if !pool.Spend(Influence, 0) {
		t.Error("Expected zero spend to succeed")
	}
}

func TestParseResource(t *testing.T) {
	res, err := ParseResource("INFLUENCE")
	if err != nil || res != Influence {
		t.Fatalf("ParseResource(INFLUENCE) = %q, %v", res, err)
	}
	if _, err := ParseResource("GOLD"); err == nil {
		t.Fatal("expected error for unknown resource")
	}
}
