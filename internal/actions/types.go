// Package actions defines spells and attacks and resolves their use into
// state changes on combatants.
package actions

import (
	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
)

// ActionType is the part of the turn an action consumes
type ActionType string

const (
	ActionStandard ActionType = "STANDARD"
	ActionBonus    ActionType = "BONUS"
	ActionReaction ActionType = "REACTION"
)

// Class names an action variant
type Class string

const (
	ClassSpellHeal    Class = "SpellHeal"
	ClassSpellBuff    Class = "SpellBuff"
	ClassSpellDebuff  Class = "SpellDebuff"
	ClassSpellAttack  Class = "SpellAttack"
	ClassWeaponAttack Class = "WeaponAttack"
)

// Base holds the fields every action shares
type Base struct {
	ID          string
	Name        string
	Description string
	Type        ActionType
	Level       int

	// MindCost has one entry per castable power level. Weapon attacks leave
	// it empty and have a single free level 0.
	MindCost []int

	// Cooldown is the number of the user's turns the action is unavailable
	// after use; zero means none
	Cooldown int

	TargetRestrictions    []targeting.Restriction
	TargetExpr            *formula.Expression
	RequiresConcentration bool
}

func (b *Base) base() *Base { return b }

// Levels is the number of power levels the action can be used at
func (b *Base) Levels() int {
	if len(b.MindCost) == 0 {
		return 1
	}
	return len(b.MindCost)
}

// Cost returns the MIND paid at a power level
func (b *Base) Cost(level int) (int, error) {
	if level < 0 || level >= b.Levels() {
		return 0, errors.InvalidPowerLevel(level, b.Levels()).WithMeta("action", b.Name)
	}
	if len(b.MindCost) == 0 {
		return 0, nil
	}
	return b.MindCost[level], nil
}

// Definition is one of SpellHeal, SpellBuff, SpellDebuff, SpellAttack or
// WeaponAttack
type Definition interface {
	base() *Base
}

// BaseOf returns the shared fields of an action
func BaseOf(d Definition) *Base {
	return d.base()
}

// ClassOf returns the variant of an action
func ClassOf(d Definition) Class {
	switch d.(type) {
	case *SpellHeal:
		return ClassSpellHeal
	case *SpellBuff:
		return ClassSpellBuff
	case *SpellDebuff:
		return ClassSpellDebuff
	case *SpellAttack:
		return ClassSpellAttack
	case *WeaponAttack:
		return ClassWeaponAttack
	}
	return ""
}

// SpellHeal restores hit points
type SpellHeal struct {
	Base
	HealRoll *formula.Expression
}

// SpellBuff attaches an effect to allies
type SpellBuff struct {
	Base
	Effect effects.Definition
}

// SpellDebuff attaches an effect to enemies. Incapacitating effects with a
// save DC allow an immediate saving throw.
type SpellDebuff struct {
	Base
	Effect effects.Definition
}

// SpellAttack rolls a spell attack against each target
type SpellAttack struct {
	Base
	Damage []effects.DamageRoll

	// Effect, if set, is attached to every target hit
	Effect effects.Definition
}

// WeaponAttack rolls a weapon attack. AttackBonus, if set, is added to the
// wielder's attack bonus.
type WeaponAttack struct {
	Base
	AttackBonus *formula.Expression
	Damage      []effects.DamageRoll
	Effect      effects.Definition
}

// effectOf returns the embedded effect of an action, if any
func effectOf(d Definition) effects.Definition {
	switch a := d.(type) {
	case *SpellBuff:
		return a.Effect
	case *SpellDebuff:
		return a.Effect
	case *SpellAttack:
		return a.Effect
	case *WeaponAttack:
		return a.Effect
	}
	return nil
}

// damageOf returns the damage entries of an attack
func damageOf(d Definition) []effects.DamageRoll {
	switch a := d.(type) {
	case *SpellAttack:
		return a.Damage
	case *WeaponAttack:
		return a.Damage
	}
	return nil
}

// Expressions lists every expression an action evaluates, including those
// of nested effects
func Expressions(d Definition) []*formula.Expression {
	b := d.base()
	var out []*formula.Expression
	if b.TargetExpr != nil {
		out = append(out, b.TargetExpr)
	}
	switch a := d.(type) {
	case *SpellHeal:
		out = append(out, a.HealRoll)
	case *WeaponAttack:
		if a.AttackBonus != nil {
			out = append(out, a.AttackBonus)
		}
	}
	for _, dmg := range damageOf(d) {
		out = append(out, dmg.Roll)
	}
	if eff := effectOf(d); eff != nil {
		out = append(out, effects.Expressions(eff)...)
	}
	return out
}
