package encounter

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
)

// Decision is what a combatant chose to do with its turn. A nil Action
// passes the turn. Targets left empty are picked by the resolver from the
// living combatants.
type Decision struct {
	Action     actions.Definition
	PowerLevel int
	Targets    []actions.Combatant
}

// TurnView is what a decider sees when choosing an action
type TurnView struct {
	Round     int
	Actor     actions.Combatant
	Effects   *effects.Manager
	Available []actions.Definition
	Allies    []actions.Combatant
	Enemies   []actions.Combatant
}

// DecideFunc chooses the actor's action for a turn
type DecideFunc func(ctx context.Context, view *TurnView) (*Decision, error)

// SkipReason explains a turn with no action
type SkipReason string

const (
	SkipDead          SkipReason = "dead"
	SkipIncapacitated SkipReason = "incapacitated"
	SkipPassed        SkipReason = "passed"
	SkipOnCooldown    SkipReason = "on cooldown"
	SkipFailed        SkipReason = "action failed"
)

// TurnReport is everything that happened during one turn
type TurnReport struct {
	Round       int                 `json:"round"`
	ActorID     string              `json:"actor_id"`
	Actor       string              `json:"actor"`
	Start       *effects.TickReport `json:"start,omitempty"`
	Skipped     bool                `json:"skipped,omitempty"`
	SkipReason  SkipReason          `json:"skip_reason,omitempty"`
	Outcome     *actions.Outcome    `json:"outcome,omitempty"`
	ActionError string              `json:"action_error,omitempty"`
	End         *effects.TickReport `json:"end,omitempty"`
	Deaths      []Death             `json:"deaths,omitempty"`

	used actions.Definition
}

// TakeTurn runs the current combatant's turn: start-of-turn ticks, the
// incapacitation check, the chosen action, end-of-turn ticks and cooldowns.
// Actions that fail validation are reported on the TurnReport and leave the
// encounter untouched; only state invariant violations are returned.
func (e *Encounter) TakeTurn(ctx context.Context, decide DecideFunc) (*TurnReport, error) {
	if e.Status != StatusActive {
		return nil, errors.InvalidArgumentf("encounter %s is not active", e.ID)
	}
	if decide == nil {
		return nil, errors.InvalidArgumentf("decide func is required")
	}

	actor, ok := e.Current()
	if !ok {
		return nil, errors.Internalf("encounter %s has no current combatant", e.ID)
	}

	ctx, span := e.tracer.Start(ctx, "encounter.TakeTurn", trace.WithAttributes(
		attribute.String("encounter", e.ID),
		attribute.String("actor", actor.Name()),
		attribute.Int("round", e.Round),
	))
	defer span.End()

	report, err := e.takeTurn(ctx, actor, decide)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	e.advance()
	if e.Status == StatusCompleted {
		winner, _ := e.Winner()
		e.logger.Info("encounter over",
			zap.Int("round", e.Round),
			zap.String("winner", string(winner)),
		)
	}
	e.publish(report)
	return report, nil
}

func (e *Encounter) takeTurn(ctx context.Context, actor actions.Combatant, decide DecideFunc) (*TurnReport, error) {
	report := &TurnReport{
		Round:   e.Round,
		ActorID: actor.ID(),
		Actor:   actor.Name(),
	}

	manager, ok := e.registry.Manager(actor.ID())
	if !ok {
		report.Skipped = true
		report.SkipReason = SkipDead
		return report, nil
	}

	report.Start = manager.TickTurnStart()
	report.Deaths = append(report.Deaths, e.reap()...)

	switch {
	case !actor.IsAlive():
		report.Skipped = true
		report.SkipReason = SkipDead
		return report, nil
	case manager.BlocksActions():
		report.Skipped = true
		report.SkipReason = SkipIncapacitated
		e.logger.Debug("turn skipped", zap.String("caster", actor.Name()), zap.String("reason", string(SkipIncapacitated)))
	default:
		if err := e.act(ctx, actor, manager, decide, report); err != nil {
			return nil, err
		}
	}

	// the action may have killed the actor
	if _, ok := e.registry.Manager(actor.ID()); ok {
		report.End = manager.TickTurnEnd()
	}
	e.tickCooldowns(actor.ID(), report.used)

	return report, nil
}

func (e *Encounter) act(ctx context.Context, actor actions.Combatant, manager *effects.Manager, decide DecideFunc, report *TurnReport) error {
	decision, err := decide(ctx, e.view(actor, manager))
	if err != nil {
		return errors.Wrapf(err, "deciding turn for %s", actor.Name())
	}
	if decision == nil || decision.Action == nil {
		report.Skipped = true
		report.SkipReason = SkipPassed
		return nil
	}

	action := actions.BaseOf(decision.Action)
	if e.Cooldown(actor.ID(), decision.Action) > 0 {
		report.Skipped = true
		report.SkipReason = SkipOnCooldown
		report.ActionError = errors.InvalidArgumentf("%s is on cooldown", action.Name).Error()
		return nil
	}

	input := &actions.ResolveInput{
		Action:     decision.Action,
		Caster:     actor,
		PowerLevel: decision.PowerLevel,
	}
	if len(decision.Targets) > 0 {
		input.Targets = decision.Targets
	} else {
		input.Pool = e.Living()
	}

	outcome, err := e.resolver.Resolve(ctx, input)
	if err != nil {
		if errors.IsStateInvariant(err) || ctx.Err() != nil {
			return err
		}
		report.Skipped = true
		report.SkipReason = SkipFailed
		report.ActionError = err.Error()
		return nil
	}
	report.Outcome = outcome
	report.used = decision.Action

	if e.journal != nil {
		if err := e.journal.Append(ctx, e.ID, outcome); err != nil {
			e.logger.Warn("failed to journal outcome",
				zap.String("action", outcome.Action),
				zap.Error(err),
			)
		}
	}

	report.Deaths = append(report.Deaths, e.reap()...)
	return nil
}

func (e *Encounter) view(actor actions.Combatant, manager *effects.Manager) *TurnView {
	view := &TurnView{
		Round:     e.Round,
		Actor:     actor,
		Effects:   manager,
		Available: e.Available(actor.ID()),
	}
	for _, c := range e.Living() {
		if c.Team() == actor.Team() {
			view.Allies = append(view.Allies, c)
		} else {
			view.Enemies = append(view.Enemies, c)
		}
	}
	return view
}

// tickCooldowns counts down the actor's cooldowns, then starts the one for
// the action it just used so it is unavailable for that many later turns
func (e *Encounter) tickCooldowns(actorID string, used actions.Definition) {
	counters := e.cooldowns[actorID]
	for key, left := range counters {
		if left <= 1 {
			delete(counters, key)
			continue
		}
		counters[key] = left - 1
	}

	if used == nil {
		return
	}
	if cooldown := actions.BaseOf(used).Cooldown; cooldown > 0 {
		counters[cooldownKey(used)] = cooldown
	}
}

// Run takes turns until the encounter is over or maxRounds have passed. A
// maxRounds of zero means no limit.
func (e *Encounter) Run(ctx context.Context, decide DecideFunc, maxRounds int) ([]*TurnReport, error) {
	if e.Status == StatusSetup {
		if err := e.Start(); err != nil {
			return nil, err
		}
	}

	var reports []*TurnReport
	for e.Status == StatusActive {
		if maxRounds > 0 && e.Round > maxRounds {
			break
		}
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		report, err := e.TakeTurn(ctx, decide)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
