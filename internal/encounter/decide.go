package encounter

import (
	"context"
	"sort"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
)

// NewSimpleDecider returns the default combat AI. It heals wounded allies
// first, then uses the hardest-hitting attack, then debuffs and buffs
// targets that lack the effect. Every action is used at the highest
// affordable power level.
func NewSimpleDecider(registry *effects.Registry) DecideFunc {
	return func(_ context.Context, view *TurnView) (*Decision, error) {
		if d := decideHeal(view); d != nil {
			return d, nil
		}
		if d := decideAttack(view); d != nil {
			return d, nil
		}
		return decideEffect(registry, view), nil
	}
}

func decideHeal(view *TurnView) *Decision {
	for _, action := range view.Available {
		if _, ok := action.(*actions.SpellHeal); !ok {
			continue
		}
		level, ok := HighestAffordable(action, view.Actor)
		if !ok {
			continue
		}

		allowed := allowedTargets(action, view.Actor, view.Allies)
		if !actions.WouldBeUseful(action, view.Actor, level, allowed) {
			continue
		}

		least, err := actions.MinHeal(action, view.Actor, level)
		if err != nil {
			continue
		}
		var wounded []actions.Combatant
		for _, c := range allowed {
			if c.MaxHP()-c.CurrentHP() >= least {
				wounded = append(wounded, c)
			}
		}
		sort.SliceStable(wounded, func(i, j int) bool {
			return missing(wounded[i]) > missing(wounded[j])
		})

		limit := targetLimit(action, view.Actor, level)
		if len(wounded) > limit {
			wounded = wounded[:limit]
		}
		return &Decision{Action: action, PowerLevel: level, Targets: wounded}
	}
	return nil
}

func decideAttack(view *TurnView) *Decision {
	var (
		best      actions.Definition
		bestLevel int
		bestScore = -1
	)
	for _, action := range view.Available {
		switch action.(type) {
		case *actions.SpellAttack, *actions.WeaponAttack:
		default:
			continue
		}
		level, ok := HighestAffordable(action, view.Actor)
		if !ok {
			continue
		}
		if !actions.WouldBeUseful(action, view.Actor, level, allowedTargets(action, view.Actor, view.Enemies)) {
			continue
		}

		low, err := actions.MinDamage(action, view.Actor, level)
		if err != nil {
			continue
		}
		high, err := actions.MaxDamage(action, view.Actor, level)
		if err != nil {
			continue
		}
		if score := (low + high) * targetLimit(action, view.Actor, level); score > bestScore {
			best, bestLevel, bestScore = action, level, score
		}
	}
	if best == nil {
		return nil
	}
	return &Decision{Action: best, PowerLevel: bestLevel}
}

// decideEffect picks the first buff or debuff that some valid target does
// not already carry
func decideEffect(registry *effects.Registry, view *TurnView) *Decision {
	for _, action := range view.Available {
		var (
			effect effects.Definition
			pool   []actions.Combatant
		)
		switch a := action.(type) {
		case *actions.SpellBuff:
			effect, pool = a.Effect, view.Allies
		case *actions.SpellDebuff:
			effect, pool = a.Effect, view.Enemies
		default:
			continue
		}

		level, ok := HighestAffordable(action, view.Actor)
		if !ok {
			continue
		}

		name := effects.HeaderOf(effect).Name
		var targets []actions.Combatant
		for _, c := range allowedTargets(action, view.Actor, pool) {
			if m, ok := registry.Manager(c.ID()); ok && m.Has(name) {
				continue
			}
			targets = append(targets, c)
		}
		if len(targets) == 0 {
			continue
		}

		limit := targetLimit(action, view.Actor, level)
		if len(targets) > limit {
			targets = targets[:limit]
		}
		return &Decision{Action: action, PowerLevel: level, Targets: targets}
	}
	return nil
}

func allowedTargets(action actions.Definition, actor actions.Combatant, pool []actions.Combatant) []actions.Combatant {
	restrictions := actions.BaseOf(action).TargetRestrictions
	var out []actions.Combatant
	for _, c := range pool {
		if targeting.Allows(restrictions, actor, c) {
			out = append(out, c)
		}
	}
	return out
}

// targetLimit evaluates the action's target count, treating dice as their
// minimum
func targetLimit(action actions.Definition, actor actions.Combatant, level int) int {
	expr := actions.BaseOf(action).TargetExpr
	if expr == nil {
		return 1
	}
	_, bindings, err := actions.CastBindings(action, actor, level)
	if err != nil {
		return 1
	}
	roll, err := expr.Evaluate(bindings, nil, formula.WithMode(formula.ModeMinimum))
	if err != nil || roll.Total < 1 {
		return 1
	}
	return roll.Total
}

func missing(c actions.Combatant) int {
	return c.MaxHP() - c.CurrentHP()
}
