// Package player holds player identity, colors and per-player resources.
package player

import (
	"fmt"

	"github.com/undercity/undercity-server-go/internal/game/cards"
	"github.com/undercity/undercity-server-go/internal/game/resources"
)

// Color identifies who occupies a node or owns a spy marker.
type Color string

const (
	ColorNone    Color = ""
	ColorNeutral Color = "NEUTRAL"
	ColorRed     Color = "RED"
	ColorBlue    Color = "BLUE"
	ColorGreen   Color = "GREEN"
	ColorYellow  Color = "YELLOW"
)

// PlayerColors lists the colors a seat may take, in canonical order.
var PlayerColors = []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow}

// IsPlayer reports whether c is a real player color.
func (c Color) IsPlayer() bool {
	switch c {
	case ColorRed, ColorBlue, ColorGreen, ColorYellow:
		return true
	default:
		return false
	}
}

func (c Color) String() string {
	if c == ColorNone {
		return "NONE"
	}
	return string(c)
}

// ParseColor converts a recorded color name back into a Color.
func ParseColor(name string) (Color, error) {
	switch Color(name) {
	case ColorNeutral, ColorRed, ColorBlue, ColorGreen, ColorYellow:
		return Color(name), nil
	case ColorNone, "NONE":
		return ColorNone, nil
	default:
		return ColorNone, fmt.Errorf("unknown color: %q", name)
	}
}

// Player is one seat in a match. Seat never changes and is the identity used
// by replay records; it is not the player's position in turn order.
type Player struct {
	Seat     int
	Name     string
	Color    Color
	Pool     *resources.Pool
	Troops   int
	Spies    int
	Trophies int
	Zones    cards.Zones
}

// New creates a player with empty zones.
func New(seat int, name string, color Color, troops, spies int) *Player {
	return &Player{
		Seat:   seat,
		Name:   name,
		Color:  color,
		Pool:   resources.NewPool(),
		Troops: troops,
		Spies:  spies,
	}
}

// Grant adds a resource reward to the player's pool.
func (p *Player) Grant(res resources.Resource, amount int) {
	p.Pool.Add(res, amount)
}

// Power is a shorthand for the player's current power.
func (p *Player) Power() int {
	return p.Pool.Get(resources.Power)
}
