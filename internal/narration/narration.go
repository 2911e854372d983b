// Package narration renders outcomes, effect ticks and turns as combat log
// lines.
package narration

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/encounter"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
)

var (
	lower = cases.Lower(language.English)
	title = cases.Title(language.English)
)

// Outcome describes one action use, one line per target followed by any
// effects it attached
func Outcome(o *actions.Outcome) []string {
	if o == nil {
		return nil
	}

	var lines []string
	for _, ref := range o.ConcentrationBroken {
		lines = append(lines, fmt.Sprintf("%s stops concentrating on %s", o.Caster, ref.Effect))
	}

	if len(o.Targets) == 0 {
		return append(lines, fmt.Sprintf("%s %s %s: no valid targets", o.Caster, verb(o), o.Action))
	}

	for _, t := range o.Targets {
		lines = append(lines, fmt.Sprintf("%s %s %s on %s: %s", o.Caster, verb(o), o.Action, t.Target, result(o, t)))

		if t.Trigger != nil {
			lines = append(lines, trigger(t))
		}
		for _, e := range t.Effects {
			lines = append(lines, applied(t.Target, e)...)
		}
	}
	return lines
}

func verb(o *actions.Outcome) string {
	if o.Class == actions.ClassWeaponAttack {
		return "swings"
	}
	return "casts"
}

func result(o *actions.Outcome, t *actions.TargetOutcome) string {
	var parts []string

	if t.Attack != nil {
		parts = append(parts, attack(t))
	}
	if t.Hit && len(t.Damage) > 0 {
		parts = append(parts, damage(t.Damage))
	}

	roll := t.HealRoll
	if roll == nil {
		roll = o.HealRoll
	}
	if roll != nil {
		if t.Healed == roll.Total {
			parts = append(parts, "heals "+roll.Describe())
		} else {
			parts = append(parts, fmt.Sprintf("heals %d (rolled %s)", t.Healed, roll.Describe()))
		}
	}

	if t.Save != nil {
		parts = append(parts, save(t.Save))
	}

	if len(parts) == 0 {
		return "takes effect"
	}
	return strings.Join(parts, ", ")
}

func attack(t *actions.TargetOutcome) string {
	a := t.Attack
	roll := fmt.Sprintf("%d + %d", a.Natural, a.Bonus)
	if a.Modifier != 0 {
		roll += fmt.Sprintf(" %+d", a.Modifier)
	}
	roll = fmt.Sprintf("%s = %d vs AC %d", roll, a.Total, a.AC)

	switch {
	case a.Crit:
		return "critical hit (" + roll + ")"
	case a.Fumble:
		return "critical miss (" + roll + ")"
	case t.Hit:
		return "hits (" + roll + ")"
	default:
		return "misses (" + roll + ")"
	}
}

func damage(list []*actions.DamageDealt) string {
	parts := make([]string, 0, len(list))
	for _, d := range list {
		part := fmt.Sprintf("%d %s", d.Dealt, lower.String(string(d.Type)))
		if d.Dealt != d.Rolled {
			part += fmt.Sprintf(" (rolled %d)", d.Rolled)
		}
		if rolls := describe(d.Rolls); rolls != "" {
			part += " [" + rolls + "]"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " + ")
}

func describe(rolls []*formula.ResolvedRoll) string {
	parts := make([]string, 0, len(rolls))
	for _, r := range rolls {
		parts = append(parts, r.Describe())
	}
	return strings.Join(parts, ", ")
}

func save(s *effects.SaveResult) string {
	verdict := "fails"
	if s.Success {
		verdict = "resists"
	}
	return fmt.Sprintf("%s (%s save %d vs DC %d)", verdict, s.Ability, s.Total, s.DC)
}

func trigger(t *actions.TargetOutcome) string {
	line := fmt.Sprintf("%s flares on %s", t.Trigger.Effect, t.Target)
	if len(t.Trigger.Damage) > 0 {
		line += ": " + damage(t.Trigger.Damage)
	}
	if t.Trigger.Consumed {
		line += " and is spent"
	}
	lines := []string{line}
	for _, e := range t.Trigger.Effects {
		lines = append(lines, applied(t.Target, e)...)
	}
	return strings.Join(lines, "; ")
}

func applied(target string, e *actions.AppliedEffect) []string {
	var lines []string
	for _, ref := range e.Displaced {
		lines = append(lines, fmt.Sprintf("%s is displaced", ref.Effect))
	}

	switch {
	case e.Refused:
		lines = append(lines, fmt.Sprintf("%s has no effect on %s", e.Effect, target))
	case e.Refreshed:
		lines = append(lines, fmt.Sprintf("%s on %s is refreshed (%s)", e.Effect, target, turns(e.Remaining)))
	case e.Attached:
		lines = append(lines, fmt.Sprintf("%s is affected by %s (%s)", target, e.Effect, turns(e.Remaining)))
	}

	if e.Healed > 0 {
		lines = append(lines, fmt.Sprintf("%s regains %d HP from %s", target, e.Healed, e.Effect))
	}
	if e.Damaged > 0 {
		lines = append(lines, fmt.Sprintf("%s takes %d damage from %s", target, e.Damaged, e.Effect))
	}
	return lines
}

func turns(n int) string {
	if n == 1 {
		return "1 turn"
	}
	return fmt.Sprintf("%d turns", n)
}

// Tick describes what an effect tick did to one holder
func Tick(r *effects.TickReport) []string {
	if r == nil {
		return nil
	}

	lines := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		switch e.Kind {
		case effects.EventDamage:
			lines = append(lines, fmt.Sprintf("%s takes %d %s damage from %s: %s",
				r.Holder, e.Amount, lower.String(string(e.DamageType)), e.Effect, e.Roll.Describe()))
		case effects.EventHeal:
			lines = append(lines, fmt.Sprintf("%s regains %d HP from %s: %s", r.Holder, e.Amount, e.Effect, e.Roll.Describe()))
		case effects.EventSave:
			lines = append(lines, fmt.Sprintf("%s %s against %s", r.Holder, save(e.Save), e.Effect))
		case effects.EventExpired:
			lines = append(lines, fmt.Sprintf("%s on %s wears off", e.Effect, r.Holder))
		case effects.EventRemoved:
			lines = append(lines, fmt.Sprintf("%s is removed from %s (%s)", e.Effect, r.Holder, e.Reason))
		case effects.EventFailed:
			lines = append(lines, fmt.Sprintf("%s on %s fizzles: %s", e.Effect, r.Holder, e.Reason))
		}
	}
	return lines
}

// Turn describes a whole turn in order
func Turn(r *encounter.TurnReport) []string {
	if r == nil {
		return nil
	}

	lines := Tick(r.Start)
	if r.Skipped {
		switch r.SkipReason {
		case encounter.SkipIncapacitated:
			lines = append(lines, fmt.Sprintf("%s is incapacitated and loses the turn", r.Actor))
		case encounter.SkipPassed:
			lines = append(lines, fmt.Sprintf("%s waits", r.Actor))
		case encounter.SkipOnCooldown, encounter.SkipFailed:
			lines = append(lines, fmt.Sprintf("%s hesitates: %s", r.Actor, r.ActionError))
		}
	}
	lines = append(lines, Outcome(r.Outcome)...)

	for _, d := range r.Deaths {
		lines = append(lines, fmt.Sprintf("%s was defeated!", d.Name))
		for _, ref := range d.Removed {
			lines = append(lines, fmt.Sprintf("%s fades", ref.Effect))
		}
	}
	return append(lines, Tick(r.End)...)
}

// Result announces the end of an encounter
func Result(winner targeting.Team, over bool) string {
	switch {
	case !over:
		return "The fight goes on"
	case winner == "":
		return "Nobody is left standing"
	default:
		return fmt.Sprintf("Victory for the %s!", title.String(string(winner)))
	}
}
