package effects

import (
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
)

// Builder helps create effect definitions. Expression errors are collected
// and reported by the Build methods.
type Builder struct {
	header    Header
	modifiers []Modifier
	err       error
}

// NewBuilder creates a new effect builder
func NewBuilder(name string) *Builder {
	return &Builder{
		header:    Header{Name: name},
		modifiers: []Modifier{},
	}
}

// WithDescription adds a description
func (b *Builder) WithDescription(desc string) *Builder {
	b.header.Description = desc
	return b
}

// WithDuration sets the duration in turns
func (b *Builder) WithDuration(turns int) *Builder {
	b.header.Duration = turns
	return b
}

// AddModifier adds a value modifier such as (ATTACK, "1D4")
func (b *Builder) AddModifier(bonus BonusType, value string) *Builder {
	expr := b.parse(value)
	b.modifiers = append(b.modifiers, Modifier{Bonus: bonus, Value: expr})
	return b
}

// AddDamageModifier adds typed bonus damage dealt on every hit
func (b *Builder) AddDamageModifier(roll string, damageType DamageType) *Builder {
	expr := b.parse(roll)
	b.modifiers = append(b.modifiers, Modifier{
		Bonus:  BonusDamage,
		Damage: &DamageRoll{Roll: expr, Type: damageType},
	})
	return b
}

// BuildBuff returns the constructed buff
func (b *Builder) BuildBuff() (*Buff, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Buff{Header: b.header, Modifiers: b.modifiers}, nil
}

// BuildDebuff returns the constructed debuff
func (b *Builder) BuildDebuff() (*Debuff, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Debuff{Header: b.header, Modifiers: b.modifiers}, nil
}

// BuildDamageOverTime returns a DoT dealing roll damage each turn
func (b *Builder) BuildDamageOverTime(roll string, damageType DamageType) (*DamageOverTime, error) {
	expr := b.parse(roll)
	if b.err != nil {
		return nil, b.err
	}
	return &DamageOverTime{Header: b.header, Damage: DamageRoll{Roll: expr, Type: damageType}}, nil
}

// BuildHealingOverTime returns a HoT healing roll each turn
func (b *Builder) BuildHealingOverTime(roll string) (*HealingOverTime, error) {
	expr := b.parse(roll)
	if b.err != nil {
		return nil, b.err
	}
	return &HealingOverTime{Header: b.header, HealRoll: expr}, nil
}

// BuildIncapacitating returns an incapacitation. A zero DC means no save ends it.
func (b *Builder) BuildIncapacitating(kind string, saveDC int, saveStat Ability) (*Incapacitating, error) {
	if b.err != nil {
		return nil, b.err
	}
	if saveStat == "" {
		saveStat = AbilityConstitution
	}
	return &Incapacitating{
		Header:             b.header,
		IncapacitationType: kind,
		SaveEnds:           saveDC > 0,
		SaveDC:             saveDC,
		SaveStat:           saveStat,
	}, nil
}

// TriggerBuilder assembles an OnHitTrigger
type TriggerBuilder struct {
	*Builder
	bonus    []DamageRoll
	triggers []Definition
	consumes bool
}

// NewTriggerBuilder creates a builder for an on-hit trigger
func NewTriggerBuilder(name string) *TriggerBuilder {
	return &TriggerBuilder{Builder: NewBuilder(name)}
}

// WithDuration sets the duration in turns
func (t *TriggerBuilder) WithDuration(turns int) *TriggerBuilder {
	t.Builder.WithDuration(turns)
	return t
}

// AddDamageBonus adds bonus damage applied when the trigger fires
func (t *TriggerBuilder) AddDamageBonus(roll string, damageType DamageType) *TriggerBuilder {
	expr := t.parse(roll)
	t.bonus = append(t.bonus, DamageRoll{Roll: expr, Type: damageType})
	return t
}

// AddTriggerEffect adds an effect applied to the struck target
func (t *TriggerBuilder) AddTriggerEffect(def Definition) *TriggerBuilder {
	t.triggers = append(t.triggers, def)
	return t
}

// ConsumesOnTrigger removes the trigger the first time it fires
func (t *TriggerBuilder) ConsumesOnTrigger() *TriggerBuilder {
	t.consumes = true
	return t
}

// Build returns the constructed trigger
func (t *TriggerBuilder) Build() (*OnHitTrigger, error) {
	if t.err != nil {
		return nil, t.err
	}
	return &OnHitTrigger{
		Header:            t.header,
		DamageBonus:       t.bonus,
		TriggerEffects:    t.triggers,
		ConsumesOnTrigger: t.consumes,
	}, nil
}

func (b *Builder) parse(source string) *formula.Expression {
	expr, err := formula.Parse(source)
	if err != nil && b.err == nil {
		b.err = errors.Wrapf(err, "effect %s", b.header.Name)
	}
	return expr
}
