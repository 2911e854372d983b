package entities

import (
	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
)

// Stats is the stat block a combatant is built from
type Stats struct {
	Name  string         `json:"name" yaml:"name"`
	Team  targeting.Team `json:"team" yaml:"team"`
	Level int            `json:"level" yaml:"level"`

	HP   int `json:"hp" yaml:"hp"`
	Mind int `json:"mind" yaml:"mind"`
	AC   int `json:"ac" yaml:"ac"`

	// AttackBonus applies to weapon attacks; spell attacks use
	// Spellcasting + Proficiency.
	AttackBonus  int `json:"attack_bonus" yaml:"attack_bonus"`
	Spellcasting int `json:"spellcasting" yaml:"spellcasting"`
	Proficiency  int `json:"proficiency" yaml:"proficiency"`

	// Abilities holds ability modifiers, used for saving throws
	Abilities map[effects.Ability]int `json:"abilities" yaml:"abilities"`

	Resistances     []effects.DamageType `json:"resistances" yaml:"resistances"`
	Vulnerabilities []effects.DamageType `json:"vulnerabilities" yaml:"vulnerabilities"`

	// Actions lists content IDs the combatant can use
	Actions []string `json:"actions" yaml:"actions"`
}

// Combatant is a participant in an encounter
type Combatant struct {
	id    string
	stats Stats

	HP   HPResource
	Mind MindResource
}

// NewCombatant creates a combatant at full HP and MIND
func NewCombatant(id string, stats Stats) *Combatant {
	return &Combatant{
		id:    id,
		stats: stats,
		HP:    HPResource{Current: stats.HP, Max: stats.HP},
		Mind:  MindResource{Current: stats.Mind, Max: stats.Mind},
	}
}

// ID is the combatant's handle within its encounter
func (c *Combatant) ID() string { return c.id }

// Name is the display name
func (c *Combatant) Name() string { return c.stats.Name }

// Team is the side the combatant fights on
func (c *Combatant) Team() targeting.Team { return c.stats.Team }

// Stats returns the stat block
func (c *Combatant) Stats() Stats { return c.stats }

// IsAlive reports whether HP is above zero
func (c *Combatant) IsAlive() bool { return c.HP.Current > 0 }

// CurrentHP returns current hit points
func (c *Combatant) CurrentHP() int { return c.HP.Current }

// MaxHP returns maximum hit points
func (c *Combatant) MaxHP() int { return c.HP.Max }

// AvailableMind returns the unspent MIND pool
func (c *Combatant) AvailableMind() int { return c.Mind.Current }

// SpendMind deducts from the MIND pool
func (c *Combatant) SpendMind(amount int) { c.Mind.Spend(amount) }

// AC is the base armor class before effect modifiers
func (c *Combatant) AC() int { return c.stats.AC }

// AttackBonus is the weapon attack bonus before effect modifiers
func (c *Combatant) AttackBonus() int { return c.stats.AttackBonus }

// SpellAttackBonus is the spell attack bonus before effect modifiers
func (c *Combatant) SpellAttackBonus() int {
	return c.stats.Spellcasting + c.stats.Proficiency
}

// SaveModifier returns the ability modifier used for a saving throw
func (c *Combatant) SaveModifier(ability effects.Ability) int {
	return c.stats.Abilities[ability]
}

// Variables binds the combatant's stats for formula evaluation
func (c *Combatant) Variables() formula.Bindings {
	vars := formula.Bindings{
		formula.VarMind:         c.Mind.Current,
		formula.VarSpellcasting: c.stats.Spellcasting,
		formula.VarProficiency:  c.stats.Proficiency,
		formula.VarLevel:        c.stats.Level,
		"HP":                    c.HP.Current,
		"HP_MAX":                c.HP.Max,
		"MIND_MAX":              c.Mind.Max,
		"AC":                    c.stats.AC,
	}
	for ability, mod := range c.stats.Abilities {
		vars.Set(string(ability), mod)
	}
	return vars
}

// TakeDamage applies resistance (halved, rounded down) and vulnerability
// (doubled) and returns the damage dealt
func (c *Combatant) TakeDamage(amount int, damageType effects.DamageType) int {
	if amount <= 0 {
		return 0
	}
	if damageType != "" {
		if contains(c.stats.Resistances, damageType) {
			amount /= 2
		}
		if contains(c.stats.Vulnerabilities, damageType) {
			amount *= 2
		}
	}
	return c.HP.Damage(amount)
}

// Heal restores HP up to the maximum and returns the amount healed
func (c *Combatant) Heal(amount int) int {
	if !c.IsAlive() {
		return 0
	}
	return c.HP.Heal(amount)
}

func contains(types []effects.DamageType, t effects.DamageType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
