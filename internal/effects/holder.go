package effects

import "github.com/KirkDiggler/tactics-engine/internal/formula"

// Holder is the slice of a combatant the effect system reads and mutates
type Holder interface {
	ID() string
	Name() string
	IsAlive() bool

	// Variables returns the combatant's current formula bindings
	Variables() formula.Bindings

	// TakeDamage applies resistances and returns the damage actually dealt
	TakeDamage(amount int, damageType DamageType) int

	// Heal raises HP up to the maximum and returns the amount healed
	Heal(amount int) int

	// SaveModifier is the bonus added to a d20 saving throw
	SaveModifier(ability Ability) int
}
