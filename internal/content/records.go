package content

import (
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/tactics-engine/internal/entities"
)

// Document is one content file. JSON documents decode through the same
// tags since JSON is valid YAML.
type Document struct {
	Actions    []ActionRecord            `yaml:"actions"`
	Combatants map[string]entities.Stats `yaml:"combatants"`
}

// ActionRecord is the declarative form of an action, discriminated by Class
type ActionRecord struct {
	ID                    string         `yaml:"id"`
	Class                 string         `yaml:"class"`
	Name                  string         `yaml:"name"`
	Description           string         `yaml:"description"`
	Type                  string         `yaml:"type"`
	Level                 int            `yaml:"level"`
	MindCost              []int          `yaml:"mind_cost"`
	Cooldown              int            `yaml:"cooldown"`
	TargetRestrictions    []string       `yaml:"target_restrictions"`
	TargetExpr            string         `yaml:"target_expr"`
	RequiresConcentration bool           `yaml:"requires_concentration"`
	HealRoll              string         `yaml:"heal_roll"`
	AttackBonus           string         `yaml:"attack_bonus"`
	Damage                []DamageRecord `yaml:"damage"`
	Effect                *EffectRecord  `yaml:"effect"`
}

// DamageRecord pairs a damage expression with its type
type DamageRecord struct {
	DamageRoll string `yaml:"damage_roll"`
	DamageType string `yaml:"damage_type"`
}

// ModifierRecord is one buff or debuff modifier. Value is either an
// expression or a damage record.
type ModifierRecord struct {
	BonusType string    `yaml:"bonus_type"`
	Value     yaml.Node `yaml:"value"`
}

// EffectRecord is the declarative form of an effect, discriminated by Type
type EffectRecord struct {
	Type        string `yaml:"type"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Duration    int    `yaml:"duration"`

	// MaxDuration is accepted as an older spelling of Duration
	MaxDuration int `yaml:"max_duration"`

	Modifiers []ModifierRecord `yaml:"modifiers"`

	Damage      *DamageRecord `yaml:"damage"`
	HealRoll    string        `yaml:"heal_roll"`
	HealPerTurn string        `yaml:"heal_per_turn"`

	IncapacitationType string `yaml:"incapacitation_type"`
	SaveEnds           *bool  `yaml:"save_ends"`
	SaveDC             int    `yaml:"save_dc"`
	SaveStat           string `yaml:"save_stat"`

	DamageBonus       []DamageRecord `yaml:"damage_bonus"`
	TriggerEffects    []EffectRecord `yaml:"trigger_effects"`
	ConsumesOnTrigger *bool          `yaml:"consumes_on_trigger"`
}

func (r *EffectRecord) duration() int {
	if r.Duration == 0 {
		return r.MaxDuration
	}
	return r.Duration
}
