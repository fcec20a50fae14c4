package player

import (
	"testing"

	"github.com/undercity/undercity-server-go/internal/game/resources"
)

func TestParseColor(t *testing.T) {
	for _, c := range append([]Color{ColorNeutral}, PlayerColors...) {
		got, err := ParseColor(string(c))
		if err != nil || got != c {
			t.Fatalf("ParseColor(%q) = %q, %v", c, got, err)
		}
	}
	if got, err := ParseColor("NONE"); err != nil || got != ColorNone {
		t.Fatalf("ParseColor(NONE) = %q, %v", got, err)
	}
	if _, err := ParseColor("PURPLE"); err == nil {
		t.Fatal("expected error for unknown color")
	}
}

func TestIsPlayer(t *testing.T) {
	if ColorNeutral.IsPlayer() || ColorNone.IsPlayer() {
		t.Fatal("neutral and none are not player colors")
	}
	if !ColorBlue.IsPlayer() {
		t.Fatal("blue is a player color")
	}
}

func TestGrant(t *testing.T) {
	p := New(0, "Alice", ColorRed, 40, 5)
	p.Grant(resources.Power, 2)
	if p.Power() != 2 {
		t.Fatalf("expected 2 power, got %d", p.Power())
	}
}
