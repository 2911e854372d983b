package actions

//go:generate mockgen -destination=mock/mock_resolver.go -package=mockactions github.com/KirkDiggler/tactics-engine/internal/actions Resolver

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/KirkDiggler/tactics-engine/internal/dice"
	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
	"github.com/KirkDiggler/tactics-engine/internal/uuid"
)

const tracerName = "github.com/KirkDiggler/tactics-engine/internal/actions"

// Combatant is the slice of a combatant that actions read and mutate
type Combatant interface {
	effects.Holder
	Team() targeting.Team
	CurrentHP() int
	MaxHP() int
	AvailableMind() int
	SpendMind(amount int)
	AC() int
	AttackBonus() int
	SpellAttackBonus() int
}

// ResolveInput is one use of an action
type ResolveInput struct {
	Action     Definition
	Caster     Combatant
	PowerLevel int

	// Targets are used as given when set. Otherwise targets are picked from
	// Pool by the configured targeting resolver.
	Targets []Combatant
	Pool    []Combatant
}

// Resolver turns an action use into an Outcome. Either the whole action
// applies or, when an error is returned, nothing changed.
type Resolver interface {
	Resolve(ctx context.Context, input *ResolveInput) (*Outcome, error)
}

// ResolverConfig holds the dependencies of the resolver
type ResolverConfig struct {
	Registry      *effects.Registry
	Roller        dice.Roller
	Targeting     targeting.Resolver
	UUIDGenerator uuid.Generator
	Logger        *zap.Logger
	Tracer        trace.Tracer
}

type resolver struct {
	registry  *effects.Registry
	roller    dice.Roller
	targeting targeting.Resolver
	ids       uuid.Generator
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewResolver creates an action resolver
func NewResolver(cfg *ResolverConfig) Resolver {
	if cfg == nil || cfg.Registry == nil {
		panic("action resolver requires an effects registry")
	}

	r := &resolver{
		registry:  cfg.Registry,
		roller:    cfg.Roller,
		targeting: cfg.Targeting,
		ids:       cfg.UUIDGenerator,
		logger:    cfg.Logger,
		tracer:    cfg.Tracer,
	}

	if r.roller == nil {
		r.roller = dice.NewRandomRoller()
	}
	if r.targeting == nil {
		r.targeting = targeting.NewDefaultResolver(nil)
	}
	if r.ids == nil {
		r.ids = uuid.NewGoogleUUIDGenerator()
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	r.logger = r.logger.Named("actions")
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}

	return r
}

// Resolve implements Resolver
func (r *resolver) Resolve(ctx context.Context, input *ResolveInput) (*Outcome, error) {
	if input == nil || input.Action == nil || input.Caster == nil {
		return nil, errors.InvalidArgumentf("resolve needs an action and a caster")
	}
	action := BaseOf(input.Action)

	ctx, span := r.tracer.Start(ctx, "actions.Resolve", trace.WithAttributes(
		attribute.String("action", action.Name),
		attribute.String("caster", input.Caster.Name()),
		attribute.Int("power_level", input.PowerLevel),
	))
	defer span.End()

	out, err := r.resolve(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Warn("action aborted",
			zap.String("caster", input.Caster.Name()),
			zap.String("action", action.Name),
			zap.Int("level", input.PowerLevel),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("targets", len(out.Targets)),
		attribute.Int("damage", out.TotalDamage()),
		attribute.Int("healed", out.TotalHealed()),
	)
	r.logger.Info("action resolved",
		zap.String("caster", out.Caster),
		zap.String("action", out.Action),
		zap.Int("mind", out.MindSpent),
		zap.Int("targets", len(out.Targets)),
		zap.Int("damage", out.TotalDamage()),
		zap.Int("healed", out.TotalHealed()),
	)
	return out, nil
}

// targetPlan is everything rolled for one target before state changes
type targetPlan struct {
	target  Combatant
	effects *effects.Manager
	result  *TargetOutcome

	damage        []*DamageDealt
	heal          int
	trigger       *effects.Trigger
	triggerDamage []*DamageDealt
	attach        bool
}

func (r *resolver) resolve(ctx context.Context, input *ResolveInput) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	action := BaseOf(input.Action)
	caster := input.Caster

	if !caster.IsAlive() {
		return nil, errors.InvalidArgumentf("%s cannot act while down", caster.Name())
	}
	casterEffects, ok := r.registry.Manager(caster.ID())
	if !ok {
		return nil, errors.NotFoundf("caster %s is not registered", caster.ID())
	}

	cost, bindings, err := CastBindings(input.Action, caster, input.PowerLevel)
	if err != nil {
		return nil, err
	}
	if err := checkExpressions(Expressions(input.Action), bindings); err != nil {
		return nil, errors.Wrapf(err, "action %s", action.Name).
			WithMeta("action", action.Name).
			WithMeta("level", input.PowerLevel)
	}
	if action.RequiresConcentration {
		if err := r.registry.ValidateConcentration(caster.ID()); err != nil {
			return nil, err
		}
	}

	targets, err := r.targets(ctx, input, bindings)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		ID:         r.ids.New(),
		ActionID:   action.ID,
		Action:     action.Name,
		Class:      ClassOf(input.Action),
		CasterID:   caster.ID(),
		Caster:     caster.Name(),
		PowerLevel: input.PowerLevel,
		MindSpent:  cost,
		Cooldown:   action.Cooldown,
		Targets:    make([]*TargetOutcome, 0, len(targets)),
	}

	plans := make([]*targetPlan, 0, len(targets))
	for _, target := range targets {
		m, ok := r.registry.Manager(target.ID())
		if !ok {
			return nil, errors.NotFoundf("target %s is not registered", target.ID())
		}
		result := &TargetOutcome{TargetID: target.ID(), Target: target.Name()}
		plans = append(plans, &targetPlan{target: target, effects: m, result: result})
		out.Targets = append(out.Targets, result)
	}

	// Every roll happens before the first mutation
	switch a := input.Action.(type) {
	case *SpellHeal:
		err = r.planHeal(a, bindings, out, plans)
	case *SpellBuff:
		for _, p := range plans {
			p.attach = true
		}
	case *SpellDebuff:
		err = r.planDebuff(a, plans)
	case *SpellAttack:
		err = r.planAttack(input.Action, caster, caster.SpellAttackBonus(), bindings, casterEffects, plans)
	case *WeaponAttack:
		bonus := caster.AttackBonus()
		if a.AttackBonus != nil {
			roll, evalErr := a.AttackBonus.Evaluate(bindings, r.roller)
			if evalErr != nil {
				return nil, errors.Wrapf(evalErr, "attack bonus of %s", a.Name)
			}
			bonus += roll.Total
		}
		err = r.planAttack(input.Action, caster, bonus, bindings, casterEffects, plans)
	default:
		err = errors.Contentf("unsupported action %T", input.Action)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "action %s", action.Name).WithMeta("action", action.Name)
	}

	if err := r.apply(input.Action, caster, bindings, casterEffects, out, plans); err != nil {
		// Validation above makes this unreachable short of a registry bug
		return nil, errors.WrapWithCode(err, errors.CodeStateInvariant, "applying "+action.Name)
	}
	return out, nil
}

// CastBindings returns the MIND cost of using an action at a power level and
// the caster's variables with MIND bound to that cost
func CastBindings(action Definition, caster Combatant, level int) (int, formula.Bindings, error) {
	b := BaseOf(action)
	cost, err := b.Cost(level)
	if err != nil {
		return 0, nil, err
	}
	if have := caster.AvailableMind(); have < cost {
		return 0, nil, errors.InsufficientResource("MIND", have, cost).
			WithMeta("action", b.Name).
			WithMeta("level", level)
	}
	return cost, caster.Variables().With(formula.VarMind, cost), nil
}

// checkExpressions evaluates each expression without dice so unbound
// variables and malformed dice surface before anything is rolled
func checkExpressions(exprs []*formula.Expression, bindings formula.Bindings) error {
	for _, expr := range exprs {
		if expr == nil {
			continue
		}
		if _, err := expr.Evaluate(bindings, nil, formula.WithMode(formula.ModeMinimum)); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) targets(ctx context.Context, input *ResolveInput, bindings formula.Bindings) ([]Combatant, error) {
	action := BaseOf(input.Action)

	if input.Targets == nil {
		pool := make([]targeting.Candidate, len(input.Pool))
		byID := make(map[string]Combatant, len(input.Pool))
		for i, c := range input.Pool {
			pool[i] = c
			byID[c.ID()] = c
		}

		picked, err := r.targeting.ResolveTargets(ctx, &targeting.Request{
			Restrictions: action.TargetRestrictions,
			Count:        action.TargetExpr,
			Bindings:     bindings,
			Caster:       input.Caster,
			Pool:         pool,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "targets for %s", action.Name)
		}

		out := make([]Combatant, 0, len(picked))
		for _, c := range picked {
			combatant, ok := byID[c.ID()]
			if !ok {
				return nil, errors.Internalf("targeting returned %s outside the pool", c.ID())
			}
			out = append(out, combatant)
		}
		return out, nil
	}

	limit := 1
	if action.TargetExpr != nil {
		roll, err := action.TargetExpr.Evaluate(bindings, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "target count of %s", action.Name)
		}
		limit = roll.Total
	}
	if len(input.Targets) > limit {
		return nil, errors.InvalidArgumentf("%s allows %d targets, got %d", action.Name, limit, len(input.Targets))
	}

	seen := make(map[string]bool, len(input.Targets))
	for _, t := range input.Targets {
		if t == nil {
			return nil, errors.InvalidArgumentf("nil target for %s", action.Name)
		}
		if seen[t.ID()] {
			return nil, errors.InvalidArgumentf("%s targeted twice by %s", t.Name(), action.Name)
		}
		seen[t.ID()] = true
		if !targeting.Allows(action.TargetRestrictions, input.Caster, t) {
			return nil, errors.InvalidArgumentf("%s is not a valid target for %s", t.Name(), action.Name)
		}
	}
	return input.Targets, nil
}

func (r *resolver) planHeal(a *SpellHeal, bindings formula.Bindings, out *Outcome, plans []*targetPlan) error {
	// Without a target expression one roll is shared by every target
	if a.TargetExpr == nil {
		roll, err := a.HealRoll.Evaluate(bindings, r.roller)
		if err != nil {
			return err
		}
		out.HealRoll = roll
		for _, p := range plans {
			p.heal = roll.Total
			p.result.HealRoll = roll
		}
		return nil
	}

	for _, p := range plans {
		roll, err := a.HealRoll.Evaluate(bindings, r.roller)
		if err != nil {
			return err
		}
		p.heal = roll.Total
		p.result.HealRoll = roll
	}
	return nil
}

func (r *resolver) planDebuff(a *SpellDebuff, plans []*targetPlan) error {
	incap, ok := a.Effect.(*effects.Incapacitating)
	for _, p := range plans {
		if !ok || incap.SaveDC <= 0 {
			p.attach = true
			continue
		}
		save, err := p.effects.SavingThrow(incap.SaveStat, incap.SaveDC)
		if err != nil {
			return err
		}
		p.result.Save = save
		p.attach = !save.Success
	}
	return nil
}

func (r *resolver) planAttack(
	action Definition,
	caster Combatant,
	bonus int,
	bindings formula.Bindings,
	casterEffects *effects.Manager,
	plans []*targetPlan,
) error {
	base := BaseOf(action)
	name := base.Name
	hasEffect := effectOf(action) != nil
	triggerSpent := false

	for _, p := range plans {
		d20, err := r.roller.Roll(1, 20, 0)
		if err != nil {
			return errors.Wrap(err, "attack roll")
		}
		natural := d20.RawTotal

		mod, modRolls, err := casterEffects.RollModifiers(effects.BonusAttack)
		if err != nil {
			return err
		}
		acMod, acRolls, err := p.effects.RollModifiers(effects.BonusAC)
		if err != nil {
			return err
		}

		attack := &AttackRoll{
			Natural:       natural,
			Bonus:         bonus,
			Modifier:      mod,
			Total:         natural + bonus + mod,
			AC:            p.target.AC() + acMod,
			Crit:          natural == 20,
			Fumble:        natural == 1,
			ModifierRolls: modRolls,
			ACRolls:       acRolls,
		}
		p.result.Attack = attack
		p.result.Hit = !attack.Fumble && (attack.Crit || attack.Total >= attack.AC)
		if !p.result.Hit {
			continue
		}

		var opts []formula.Option
		if attack.Crit {
			opts = append(opts, formula.WithDiceMultiplier(2))
		}

		for _, dmg := range damageOf(action) {
			roll, err := dmg.Roll.Evaluate(bindings, r.roller, opts...)
			if err != nil {
				return err
			}
			p.damage = addDamage(p.damage, dmg.Type, roll)
		}

		for _, active := range casterEffects.ActiveModifiers(effects.BonusDamage) {
			extra := active.Modifier
			switch {
			case extra.Damage != nil:
				roll, err := extra.Damage.Roll.Evaluate(active.Bindings, r.roller, opts...)
				if err != nil {
					return errors.Wrapf(err, "damage modifier from %s", active.Effect)
				}
				p.damage = addDamage(p.damage, extra.Damage.Type, roll)
			case extra.Value != nil:
				roll, err := extra.Value.Evaluate(active.Bindings, r.roller, opts...)
				if err != nil {
					return errors.Wrapf(err, "damage modifier from %s", active.Effect)
				}
				var first effects.DamageType
				if len(p.damage) > 0 {
					first = p.damage[0].Type
				}
				p.damage = addDamage(p.damage, first, roll)
			}
		}

		if !triggerSpent {
			trigger := casterEffects.PeekTrigger()
			if trigger != nil && base.RequiresConcentration && ownConcentration(trigger.Instance, caster.ID()) {
				// Casting this ends the caster's concentration first, trigger included
				trigger = nil
			}
			if trigger != nil {
				for _, nested := range trigger.TriggerEffects {
					if err := checkExpressions(effects.Expressions(nested), trigger.Bindings); err != nil {
						return errors.Wrapf(err, "trigger %s", trigger.Instance.Name())
					}
				}
				for _, extra := range trigger.DamageBonus {
					roll, err := extra.Roll.Evaluate(trigger.Bindings, r.roller, opts...)
					if err != nil {
						return errors.Wrapf(err, "trigger %s", trigger.Instance.Name())
					}
					p.triggerDamage = addDamage(p.triggerDamage, extra.Type, roll)
				}
				p.trigger = trigger
				triggerSpent = trigger.Consumed
			}
		}

		p.attach = hasEffect
		r.logger.Debug("attack hit",
			zap.String("action", name),
			zap.String("target", p.target.Name()),
			zap.Int("roll", attack.Total),
			zap.Int("ac", attack.AC),
			zap.Bool("crit", attack.Crit),
		)
	}
	return nil
}

func ownConcentration(inst *effects.Instance, casterID string) bool {
	return inst.Concentration && inst.SourceID == casterID
}

func (r *resolver) apply(
	action Definition,
	caster Combatant,
	bindings formula.Bindings,
	casterEffects *effects.Manager,
	out *Outcome,
	plans []*targetPlan,
) error {
	base := BaseOf(action)
	eff := effectOf(action)

	if out.MindSpent > 0 {
		caster.SpendMind(out.MindSpent)
	}
	if base.RequiresConcentration {
		out.ConcentrationBroken = refs(r.registry.BreakConcentration(caster.ID()))
	}

	for _, p := range plans {
		target := p.target
		wasAlive := target.IsAlive()

		for _, d := range p.damage {
			d.Dealt = target.TakeDamage(d.Rolled, d.Type)
		}
		p.result.Damage = p.damage

		if p.heal > 0 {
			p.result.Healed = target.Heal(p.heal)
		}

		if p.trigger != nil {
			fired := casterEffects.ConsumeIfTriggered(effects.AttackContext{TargetID: target.ID(), Action: base.Name})
			if fired == nil {
				return errors.Internalf("trigger %s vanished before it fired", p.trigger.Instance.Name())
			}
			to := &TriggerOutcome{Effect: fired.Instance.Name(), Consumed: fired.Consumed}
			for _, d := range p.triggerDamage {
				d.Dealt = target.TakeDamage(d.Rolled, d.Type)
			}
			to.Damage = p.triggerDamage

			for _, def := range fired.TriggerEffects {
				app, err := r.registry.Attach(&effects.AttachRequest{
					Definition: def,
					SourceID:   fired.Instance.SourceID,
					TargetID:   target.ID(),
					Bindings:   fired.Bindings,
				})
				if err != nil {
					return err
				}
				to.Effects = append(to.Effects, newAppliedEffect(app))
			}
			p.result.Trigger = to
		}

		if p.attach && eff != nil {
			app, err := r.registry.Attach(&effects.AttachRequest{
				Definition:    eff,
				SourceID:      caster.ID(),
				TargetID:      target.ID(),
				Bindings:      bindings,
				Concentration: base.RequiresConcentration,
				CastID:        out.ID,
			})
			if err != nil {
				return err
			}
			p.result.Effects = append(p.result.Effects, newAppliedEffect(app))
		}

		p.result.Killed = wasAlive && !target.IsAlive()
	}
	return nil
}

// addDamage merges a roll into the entry for its damage type
func addDamage(list []*DamageDealt, damageType effects.DamageType, roll *formula.ResolvedRoll) []*DamageDealt {
	for _, d := range list {
		if d.Type == damageType {
			d.Rolled += roll.Total
			d.Rolls = append(d.Rolls, roll)
			return list
		}
	}
	return append(list, &DamageDealt{Type: damageType, Rolled: roll.Total, Rolls: []*formula.ResolvedRoll{roll}})
}
