package actions

import (
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
)

// MinDamage is the least damage one hit of an attack can roll
func MinDamage(action Definition, caster Combatant, level int) (int, error) {
	return previewDamage(action, caster, level, formula.ModeMinimum)
}

// MaxDamage is the most damage one non-critical hit of an attack can roll
func MaxDamage(action Definition, caster Combatant, level int) (int, error) {
	return previewDamage(action, caster, level, formula.ModeMaximum)
}

// MinHeal is the least a heal can restore to one target
func MinHeal(action Definition, caster Combatant, level int) (int, error) {
	return previewHeal(action, caster, level, formula.ModeMinimum)
}

// MaxHeal is the most a heal can restore to one target
func MaxHeal(action Definition, caster Combatant, level int) (int, error) {
	return previewHeal(action, caster, level, formula.ModeMaximum)
}

func previewDamage(action Definition, caster Combatant, level int, mode formula.Mode) (int, error) {
	damage := damageOf(action)
	if damage == nil {
		return 0, errors.InvalidArgumentf("%s does not deal damage", BaseOf(action).Name)
	}

	_, bindings, err := CastBindings(action, caster, level)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, d := range damage {
		roll, err := d.Roll.Evaluate(bindings, nil, formula.WithMode(mode))
		if err != nil {
			return 0, errors.Wrapf(err, "previewing %s", BaseOf(action).Name)
		}
		total += roll.Total
	}
	return total, nil
}

func previewHeal(action Definition, caster Combatant, level int, mode formula.Mode) (int, error) {
	heal, ok := action.(*SpellHeal)
	if !ok {
		return 0, errors.InvalidArgumentf("%s does not heal", BaseOf(action).Name)
	}

	_, bindings, err := CastBindings(action, caster, level)
	if err != nil {
		return 0, err
	}

	roll, err := heal.HealRoll.Evaluate(bindings, nil, formula.WithMode(mode))
	if err != nil {
		return 0, errors.Wrapf(err, "previewing %s", heal.Name)
	}
	return roll.Total, nil
}

// WouldBeUseful reports whether using a heal now restores at least its
// minimum roll to some target, so healers do not waste MIND on full allies
func WouldBeUseful(action Definition, caster Combatant, level int, targets []Combatant) bool {
	switch action.(type) {
	case *SpellHeal:
		least, err := MinHeal(action, caster, level)
		if err != nil {
			return false
		}
		for _, t := range targets {
			if t.IsAlive() && t.MaxHP()-t.CurrentHP() >= least {
				return true
			}
		}
		return false
	default:
		if _, _, err := CastBindings(action, caster, level); err != nil {
			return false
		}
		for _, t := range targets {
			if t.IsAlive() {
				return true
			}
		}
		return false
	}
}
