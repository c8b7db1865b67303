// Package character defines the read-only character value the roll engine
// operates on. Characters are owned by the remote character service; the
// engine never mutates one except to track the single edge point a roll
// spends, and that spend is persisted by the caller, not by the engine.
package character

// GMHandle is the sentinel handle for the game master pseudo-character.
// The GM has no edge economy and never stores last-roll snapshots.
const GMHandle = "GM"

// Spell is one spell from a character's grimoire.
type Spell struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Drain is the drain code, e.g. "F-3": force minus three.
	Drain string `json:"drain"`
}

// Character is a character snapshot from the character service. Attribute
// values arrive already modified by active status effects.
type Character struct {
	ID         string `json:"id"`
	Handle     string `json:"handle"`
	CampaignID string `json:"campaignId"`

	Body      int `json:"body"`
	Agility   int `json:"agility"`
	Reaction  int `json:"reaction"`
	Strength  int `json:"strength"`
	Willpower int `json:"willpower"`
	Logic     int `json:"logic"`
	Intuition int `json:"intuition"`
	Charisma  int `json:"charisma"`
	Magic     int `json:"magic"`
	Resonance int `json:"resonance"`

	// Edge is the attribute maximum; EdgeCurrent is what is left to spend.
	Edge        int `json:"edge"`
	EdgeCurrent int `json:"edgeCurrent"`

	// InitiativeBonus and InitiativeDiceBonus are status-effect adjustments
	// (e.g. wired reflexes) applied on top of reaction + intuition and the
	// single base initiative die.
	InitiativeBonus     int `json:"initiativeBonus"`
	InitiativeDiceBonus int `json:"initiativeDiceBonus"`

	// Soak is the derived damage-resistance pool (body + armor).
	Soak int `json:"soak"`
	// SocialLimit caps successes on social tests such as negotiation.
	SocialLimit int `json:"socialLimit"`

	// Negotiation is the negotiation skill level, 0 when unskilled.
	Negotiation int `json:"negotiation"`
	// Influence is the influence skill-group level, 0 when absent.
	Influence int `json:"influence"`
	// Spellcasting is the spellcasting skill level, 0 when absent.
	Spellcasting int `json:"spellcasting"`

	Spells []Spell `json:"spells,omitempty"`
}

// NewGM returns the game-master pseudo-character.
//
// Postcondition: result.IsGM() is true and EdgeCurrent is zero.
func NewGM() *Character {
	return &Character{Handle: GMHandle}
}

// IsGM reports whether this is the game-master sentinel.
func (c *Character) IsGM() bool {
	return c.Handle == GMHandle
}

// HasEdge reports whether the character has edge left to spend.
func (c *Character) HasEdge() bool {
	return c.EdgeCurrent > 0
}

// SpellByID finds a spell in the character's grimoire.
func (c *Character) SpellByID(id string) (Spell, bool) {
	for _, s := range c.Spells {
		if s.ID == id {
			return s, true
		}
	}
	return Spell{}, false
}

// NegotiationDice returns the dice contributed by the character's negotiation
// ability: the negotiation skill when present, otherwise the influence skill
// group, otherwise -1 (defaulting on an unskilled test).
func (c *Character) NegotiationDice() int {
	if c.Negotiation > 0 {
		return c.Negotiation
	}
	if c.Influence > 0 {
		return c.Influence
	}
	return -1
}
