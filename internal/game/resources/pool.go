package resources

import "fmt"

// Resource represents a spendable player resource.
type Resource string

const (
	Power         Resource = "POWER"
	Influence     Resource = "INFLUENCE"
	VictoryPoints Resource = "VICTORY_POINTS"
	// None marks a site slot that grants nothing.
	None Resource = ""
)

// ParseResource converts a resource name into a Resource.
func ParseResource(name string) (Resource, error) {
	switch Resource(name) {
	case Power, Influence, VictoryPoints, None:
		return Resource(name), nil
	default:
		return None, fmt.Errorf("unknown resource: %q", name)
	}
}

// Pool holds a player's power, influence and victory points.
// Pools are owned by the simulation goroutine and are not locked.
type Pool struct {
	Power         int
	Influence     int
	VictoryPoints int
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Add adds amount of the given resource. Non-positive amounts are ignored.
func (p *Pool) Add(res Resource, amount int) {
	if amount <= 0 {
		return
	}
	switch res {
	case Power:
		p.Power += amount
	case Influence:
		p.Influence += amount
	case VictoryPoints:
		p.VictoryPoints += amount
	}
}

// Get returns the current amount of a resource.
func (p *Pool) Get(res Resource) int {
	switch res {
	case Power:
		return p.Power
	case Influence:
		return p.Influence
	case VictoryPoints:
		return p.VictoryPoints
	default:
		return 0
	}
}

// CanSpend reports whether amount of res is available.
func (p *Pool) CanSpend(res Resource, amount int) bool {
	return amount <= 0 || p.Get(res) >= amount
}

// Spend removes amount of res. It is all-or-nothing: if the pool cannot
// cover the amount nothing is deducted and false is returned.
func (p *Pool) Spend(res Resource, amount int) bool {
	if amount <= 0 {
		return true
	}
	if !p.CanSpend(res, amount) {
		return false
	}
	switch res {
	case Power:
		p.Power -= amount
	case Influence:
		p.Influence -= amount
	case VictoryPoints:
		p.VictoryPoints -= amount
	default:
		return false
	}
	return true
}
