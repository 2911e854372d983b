package actions

import (
	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
)

// Outcome is the full record of one action use
type Outcome struct {
	ID         string `json:"id"`
	ActionID   string `json:"action_id"`
	Action     string `json:"action"`
	Class      Class  `json:"class"`
	CasterID   string `json:"caster_id"`
	Caster     string `json:"caster"`
	PowerLevel int    `json:"power_level"`
	MindSpent  int    `json:"mind_spent"`

	// Cooldown is copied from the action so the turn loop can start it
	Cooldown int `json:"cooldown,omitempty"`

	// HealRoll is set when one heal roll was shared by every target
	HealRoll *formula.ResolvedRoll `json:"heal_roll,omitempty"`

	// ConcentrationBroken lists the caster's previous concentration effects
	ConcentrationBroken []EffectRef `json:"concentration_broken,omitempty"`

	Targets []*TargetOutcome `json:"targets"`
}

// TotalDamage sums the damage dealt to every target
func (o *Outcome) TotalDamage() int {
	total := 0
	for _, t := range o.Targets {
		total += t.TotalDamage()
	}
	return total
}

// TotalHealed sums the healing done to every target
func (o *Outcome) TotalHealed() int {
	total := 0
	for _, t := range o.Targets {
		total += t.Healed
	}
	return total
}

// TargetOutcome is what the action did to one target
type TargetOutcome struct {
	TargetID string `json:"target_id"`
	Target   string `json:"target"`

	Attack *AttackRoll `json:"attack,omitempty"`
	Hit    bool        `json:"hit"`

	Damage []*DamageDealt `json:"damage,omitempty"`

	Healed   int                   `json:"healed,omitempty"`
	HealRoll *formula.ResolvedRoll `json:"heal_roll,omitempty"`

	// Save is the immediate saving throw against an incapacitating debuff
	Save *effects.SaveResult `json:"save,omitempty"`

	Trigger *TriggerOutcome  `json:"trigger,omitempty"`
	Effects []*AppliedEffect `json:"effects,omitempty"`

	Killed bool `json:"killed,omitempty"`
}

// TotalDamage sums damage dealt, including trigger damage
func (t *TargetOutcome) TotalDamage() int {
	total := 0
	for _, d := range t.Damage {
		total += d.Dealt
	}
	if t.Trigger != nil {
		for _, d := range t.Trigger.Damage {
			total += d.Dealt
		}
	}
	for _, e := range t.Effects {
		total += e.Damaged
	}
	return total
}

// AttackRoll is a d20 attack against armor class
type AttackRoll struct {
	Natural  int  `json:"natural"`
	Bonus    int  `json:"bonus"`
	Modifier int  `json:"modifier"`
	Total    int  `json:"total"`
	AC       int  `json:"ac"`
	Crit     bool `json:"crit,omitempty"`
	Fumble   bool `json:"fumble,omitempty"`

	ModifierRolls []*formula.ResolvedRoll `json:"modifier_rolls,omitempty"`
	ACRolls       []*formula.ResolvedRoll `json:"ac_rolls,omitempty"`
}

// DamageDealt is damage of one type. Rolled is before resistances.
type DamageDealt struct {
	Type   effects.DamageType      `json:"type"`
	Rolled int                     `json:"rolled"`
	Dealt  int                     `json:"dealt"`
	Rolls  []*formula.ResolvedRoll `json:"rolls"`
}

// TriggerOutcome records an on-hit trigger that fired
type TriggerOutcome struct {
	Effect   string           `json:"effect"`
	Consumed bool             `json:"consumed"`
	Damage   []*DamageDealt   `json:"damage,omitempty"`
	Effects  []*AppliedEffect `json:"effects,omitempty"`
}

// EffectRef names an effect instance
type EffectRef struct {
	InstanceID string `json:"instance_id"`
	Effect     string `json:"effect"`
	HolderID   string `json:"holder_id"`
}

// AppliedEffect records one effect attachment
type AppliedEffect struct {
	InstanceID string       `json:"instance_id"`
	Effect     string       `json:"effect"`
	Kind       effects.Kind `json:"kind"`
	Remaining  int          `json:"remaining"`
	Attached   bool         `json:"attached"`
	Refreshed  bool         `json:"refreshed,omitempty"`
	Refused    bool         `json:"refused,omitempty"`

	Healed  int                     `json:"healed,omitempty"`
	Damaged int                     `json:"damaged,omitempty"`
	Rolls   []*formula.ResolvedRoll `json:"rolls,omitempty"`

	Displaced []EffectRef `json:"displaced,omitempty"`
}

func newAppliedEffect(app *effects.Application) *AppliedEffect {
	out := &AppliedEffect{
		InstanceID: app.Instance.ID,
		Effect:     app.Instance.Name(),
		Kind:       app.Instance.Kind(),
		Remaining:  app.Instance.Remaining,
		Attached:   app.Attached,
		Refreshed:  app.Refreshed,
		Refused:    app.Refused,
		Healed:     app.Healed,
		Damaged:    app.Damaged,
		Rolls:      app.Rolls,
	}
	out.Displaced = refs(app.Displaced)
	return out
}

func refs(instances []*effects.Instance) []EffectRef {
	if len(instances) == 0 {
		return nil
	}
	out := make([]EffectRef, len(instances))
	for i, inst := range instances {
		out[i] = EffectRef{InstanceID: inst.ID, Effect: inst.Name(), HolderID: inst.HolderID}
	}
	return out
}
