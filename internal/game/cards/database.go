package cards

// Database is the card catalogue collaborator.
//
// MarketDeck makes no ordering promise; callers that mix it with randomness
// must impose their own order first.
type Database interface {
	Card(id string) (Card, bool)
	StarterDeck() []string
	MarketDeck() []string
}

// StaticDatabase is the built-in catalogue.
type StaticDatabase struct {
	cards   map[string]Card
	starter []string
	market  map[string]int // card id -> copies in the market deck
}

// NewStaticDatabase builds the default catalogue.
func NewStaticDatabase() *StaticDatabase {
	db := &StaticDatabase{
		cards:  make(map[string]Card),
		market: make(map[string]int),
	}

	db.add(Card{ID: "noble", Name: "Noble", Effects: []Effect{{Kind: EffectGainInfluence, Amount: 1}}}, 0)
	db.add(Card{ID: "soldier", Name: "Soldier", Effects: []Effect{{Kind: EffectGainPower, Amount: 1}}}, 0)
	for i := 0; i < 7; i++ {
		db.starter = append(db.starter, "noble")
	}
	for i := 0; i < 3; i++ {
		db.starter = append(db.starter, "soldier")
	}

	db.add(Card{
		ID: "advocate", Name: "Advocate", Aspect: AspectObedience, Cost: 3, DeckVP: 1, InnerCircleVP: 3,
		Effects:      []Effect{{Kind: EffectGainInfluence, Amount: 2}},
		FocusEffects: []Effect{{Kind: EffectPromote, Amount: 1}},
	}, 2)
	db.add(Card{
		ID: "zealot", Name: "Zealot", Aspect: AspectObedience, Cost: 2, DeckVP: 1, InnerCircleVP: 2,
		Effects: []Effect{{Kind: EffectGainPower, Amount: 1}, {Kind: EffectPromote, Amount: 1}},
	}, 2)
	db.add(Card{
		ID: "exile-warden", Name: "Exile Warden", Aspect: AspectObedience, Cost: 3, DeckVP: 1, InnerCircleVP: 3,
		Effects: []Effect{{Kind: EffectReturnTroop, Amount: 1}},
	}, 2)
	db.add(Card{
		ID: "assassin", Name: "Assassin", Aspect: AspectMalice, Cost: 4, DeckVP: 2, InnerCircleVP: 4,
		Effects: []Effect{{Kind: EffectAssassinate, Amount: 1}},
	}, 2)
	db.add(Card{
		ID: "ghoul", Name: "Ghoul", Aspect: AspectMalice, Cost: 4, DeckVP: 2, InnerCircleVP: 4,
		Effects: []Effect{{Kind: EffectDevour, Amount: 1, Then: &Effect{Kind: EffectSupplant, Amount: 1}}},
	}, 2)
	db.add(Card{
		ID: "spymaster", Name: "Spymaster", Aspect: AspectGuile, Cost: 4, DeckVP: 2, InnerCircleVP: 4,
		Effects:      []Effect{{Kind: EffectPlaceSpy, Amount: 1}},
		FocusEffects: []Effect{{Kind: EffectDraw, Amount: 1}},
	}, 2)
	db.add(Card{
		ID: "infiltrator", Name: "Infiltrator", Aspect: AspectGuile, Cost: 3, DeckVP: 1, InnerCircleVP: 3,
		Effects: []Effect{{Kind: EffectReturnSpy, Amount: 1}, {Kind: EffectGainPower, Amount: 1}},
	}, 2)
	db.add(Card{
		ID: "courier", Name: "Courier", Aspect: AspectGuile, Cost: 2, DeckVP: 1, InnerCircleVP: 2,
		Effects: []Effect{{Kind: EffectDraw, Amount: 2}},
	}, 2)
	db.add(Card{
		ID: "enforcer", Name: "Enforcer", Aspect: AspectConquest, Cost: 3, DeckVP: 1, InnerCircleVP: 3,
		Effects: []Effect{{Kind: EffectDeploy, Amount: 2}},
	}, 2)
	db.add(Card{
		ID: "war-chief", Name: "War Chief", Aspect: AspectConquest, Cost: 5, DeckVP: 3, InnerCircleVP: 5,
		Effects:      []Effect{{Kind: EffectSupplant, Amount: 1}},
		FocusEffects: []Effect{{Kind: EffectGainPower, Amount: 2}},
	}, 2)
	db.add(Card{
		ID: "tunnel-guide", Name: "Tunnel Guide", Aspect: AspectAmbition, Cost: 2, DeckVP: 1, InnerCircleVP: 2,
		Effects: []Effect{{Kind: EffectMove, Amount: 1}},
	}, 2)
	db.add(Card{
		ID: "matron", Name: "Matron", Aspect: AspectAmbition, Cost: 5, DeckVP: 3, InnerCircleVP: 5,
		Effects:      []Effect{{Kind: EffectGainPower, Amount: 3}},
		FocusEffects: []Effect{{Kind: EffectDraw, Amount: 1}},
	}, 2)

	return db
}

func (db *StaticDatabase) add(card Card, marketCopies int) {
	db.cards[card.ID] = card
	if marketCopies > 0 {
		db.market[card.ID] = marketCopies
	}
}

// Card looks up a card definition by id.
func (db *StaticDatabase) Card(id string) (Card, bool) {
	card, ok := db.cards[id]
	return card, ok
}

// StarterDeck returns the ids every player starts with.
func (db *StaticDatabase) StarterDeck() []string {
	out := make([]string, len(db.starter))
	copy(out, db.starter)
	return out
}

// MarketDeck returns the market card ids, one entry per copy, in no
// particular order.
func (db *StaticDatabase) MarketDeck() []string {
	out := make([]string, 0, 2*len(db.market))
	for id, copies := range db.market {
		for i := 0; i < copies; i++ {
			out = append(out, id)
		}
	}
	return out
}
