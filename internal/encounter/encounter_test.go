package encounter_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
	mockactions "github.com/KirkDiggler/tactics-engine/internal/actions/mock"
	mockdice "github.com/KirkDiggler/tactics-engine/internal/dice/mock"
	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/encounter"
	"github.com/KirkDiggler/tactics-engine/internal/entities"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/events"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
	mockoutcomes "github.com/KirkDiggler/tactics-engine/internal/repositories/outcomes/mock"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
	"github.com/KirkDiggler/tactics-engine/internal/uuid"
)

type EncounterSuite struct {
	suite.Suite
	ctx      context.Context
	roller   *mockdice.ManualMockRoller
	registry *effects.Registry
	enc      *encounter.Encounter

	cleric  *entities.Combatant
	fighter *entities.Combatant
	goblin  *entities.Combatant
}

func TestEncounterSuite(t *testing.T) {
	suite.Run(t, new(EncounterSuite))
}

func (s *EncounterSuite) SetupTest() {
	s.ctx = context.Background()
	s.roller = mockdice.NewManualMockRoller()
	s.registry = effects.NewRegistry(&effects.RegistryConfig{
		Roller:        s.roller,
		UUIDGenerator: uuid.NewSequential("effect"),
	})
	s.enc = encounter.New(&encounter.Config{
		ID:            "enc-1",
		Roller:        s.roller,
		Registry:      s.registry,
		UUIDGenerator: uuid.NewSequential("outcome"),
	})

	s.cleric = entities.NewCombatant("cleric", entities.Stats{
		Name: "Cleric", Team: targeting.TeamParty, HP: 20, Mind: 10, AC: 12,
		Spellcasting: 3, Proficiency: 2,
	})
	s.fighter = entities.NewCombatant("fighter", entities.Stats{
		Name: "Fighter", Team: targeting.TeamParty, HP: 30, AC: 16,
		AttackBonus: 5,
		Abilities:   map[effects.Ability]int{effects.AbilityStrength: 3},
	})
	s.goblin = entities.NewCombatant("goblin", entities.Stats{
		Name: "Goblin", Team: targeting.TeamOpponents, HP: 40, AC: 13,
	})
}

func (s *EncounterSuite) start(available map[string][]actions.Definition) {
	for _, c := range []*entities.Combatant{s.cleric, s.fighter, s.goblin} {
		s.Require().NoError(s.enc.Add(c, available[c.ID()]))
	}
	s.Require().NoError(s.enc.Start())
}

func pass(context.Context, *encounter.TurnView) (*encounter.Decision, error) {
	return nil, nil
}

// script returns a decider that plays the given decision for an actor and
// passes for everyone else
func script(byActor map[string]func(view *encounter.TurnView) *encounter.Decision) encounter.DecideFunc {
	return func(_ context.Context, view *encounter.TurnView) (*encounter.Decision, error) {
		if play, ok := byActor[view.Actor.ID()]; ok {
			return play(view), nil
		}
		return nil, nil
	}
}

func longsword(cooldown int) *actions.WeaponAttack {
	return &actions.WeaponAttack{
		Base: actions.Base{
			ID: "longsword", Name: "Longsword", Type: actions.ActionStandard,
			Cooldown:           cooldown,
			TargetRestrictions: []targeting.Restriction{targeting.Enemy},
		},
		Damage: []effects.DamageRoll{
			{Roll: formula.MustParse("1D8 + [STR]"), Type: effects.DamageSlashing},
		},
	}
}

func (s *EncounterSuite) bless() *actions.SpellBuff {
	buff, err := effects.NewBuilder("Bless").WithDuration(10).AddModifier(effects.BonusAttack, "1D4").BuildBuff()
	s.Require().NoError(err)
	return &actions.SpellBuff{
		Base: actions.Base{
			ID: "bless", Name: "Bless", Type: actions.ActionStandard, Level: 1,
			MindCost:              []int{1},
			TargetRestrictions:    []targeting.Restriction{targeting.Self, targeting.Ally},
			RequiresConcentration: true,
		},
		Effect: buff,
	}
}

func (s *EncounterSuite) sleep() *actions.SpellDebuff {
	asleep, err := effects.NewBuilder("Sleep").WithDuration(3).
		BuildIncapacitating("asleep", 13, effects.AbilityWisdom)
	s.Require().NoError(err)
	return &actions.SpellDebuff{
		Base: actions.Base{
			ID: "sleep", Name: "Sleep", Type: actions.ActionStandard, Level: 1,
			MindCost:           []int{2},
			TargetRestrictions: []targeting.Restriction{targeting.Enemy},
		},
		Effect: asleep,
	}
}

func (s *EncounterSuite) manager(c *entities.Combatant) *effects.Manager {
	m, ok := s.registry.Manager(c.ID())
	s.Require().True(ok)
	return m
}

func (s *EncounterSuite) TestSetupRules() {
	s.Error(s.enc.Start(), "no combatants")

	s.Require().NoError(s.enc.Add(s.cleric, nil))
	err := s.enc.Add(s.cleric, nil)
	s.True(errors.IsInvalidArgument(err))

	s.Require().NoError(s.enc.Add(s.goblin, nil))
	s.Require().NoError(s.enc.Start())
	s.Equal(encounter.StatusActive, s.enc.Status)
	s.Equal(1, s.enc.Round)

	err = s.enc.Add(s.fighter, nil)
	s.True(errors.IsInvalidArgument(err))
}

func (s *EncounterSuite) TestTurnOrderWrapsIntoNextRound() {
	s.start(nil)

	var actors []string
	for i := 0; i < 4; i++ {
		report, err := s.enc.TakeTurn(s.ctx, pass)
		s.Require().NoError(err)
		s.True(report.Skipped)
		s.Equal(encounter.SkipPassed, report.SkipReason)
		actors = append(actors, report.ActorID)
	}

	s.Equal([]string{"cleric", "fighter", "goblin", "cleric"}, actors)
	s.Equal(2, s.enc.Round)
	current, ok := s.enc.Current()
	s.Require().True(ok)
	s.Equal("fighter", current.ID())
}

func (s *EncounterSuite) TestCooldownBlocksLaterTurns() {
	strike := longsword(1)
	s.start(map[string][]actions.Definition{"fighter": {strike}})

	var seen [][]actions.Definition
	decide := script(map[string]func(*encounter.TurnView) *encounter.Decision{
		"fighter": func(view *encounter.TurnView) *encounter.Decision {
			seen = append(seen, view.Available)
			return &encounter.Decision{Action: strike, Targets: []actions.Combatant{s.goblin}}
		},
	})

	// round 1: the fighter hits for 4 + 3
	s.roller.SetRolls([]int{15, 4})
	reports, err := s.enc.Run(s.ctx, decide, 1)
	s.Require().NoError(err)
	s.Require().Len(reports, 3)
	s.Require().NotNil(reports[1].Outcome)
	s.Equal(7, reports[1].Outcome.TotalDamage())
	s.Equal(33, s.goblin.CurrentHP())
	s.Equal(1, s.enc.Cooldown("fighter", strike))

	// round 2: still cooling down, nothing is rolled
	reports, err = s.enc.Run(s.ctx, decide, 2)
	s.Require().NoError(err)
	s.Require().Len(reports, 3)
	s.Equal(encounter.SkipOnCooldown, reports[1].SkipReason)
	s.NotEmpty(reports[1].ActionError)
	s.Equal(33, s.goblin.CurrentHP())
	s.Equal(0, s.enc.Cooldown("fighter", strike))

	// round 3: available again
	s.roller.SetRolls([]int{15, 2})
	_, err = s.enc.Run(s.ctx, decide, 3)
	s.Require().NoError(err)
	s.Equal(28, s.goblin.CurrentHP())

	s.Require().Len(seen, 3)
	s.Len(seen[0], 1)
	s.Empty(seen[1])
	s.Len(seen[2], 1)
	s.Equal(0, s.roller.Remaining())
}

func (s *EncounterSuite) TestDeathBreaksConcentration() {
	bless := s.bless()
	s.start(map[string][]actions.Definition{"cleric": {bless}})

	report, err := s.enc.TakeTurn(s.ctx, script(map[string]func(*encounter.TurnView) *encounter.Decision{
		"cleric": func(*encounter.TurnView) *encounter.Decision {
			return &encounter.Decision{Action: bless, Targets: []actions.Combatant{s.fighter}}
		},
	}))
	s.Require().NoError(err)
	s.Require().NotNil(report.Outcome)
	s.True(s.manager(s.fighter).Has("Bless"))

	s.cleric.TakeDamage(100, "")

	report, err = s.enc.TakeTurn(s.ctx, pass)
	s.Require().NoError(err)
	s.Equal("fighter", report.ActorID)
	s.Require().Len(report.Deaths, 1)
	s.Equal("cleric", report.Deaths[0].CombatantID)
	s.Require().Len(report.Deaths[0].Removed, 1)
	s.Equal("Bless", report.Deaths[0].Removed[0].Effect)
	s.Equal("fighter", report.Deaths[0].Removed[0].HolderID)
	s.False(s.manager(s.fighter).Has("Bless"))
	s.Empty(s.registry.Concentration("cleric"))

	_, err = s.enc.TakeTurn(s.ctx, pass)
	s.Require().NoError(err)

	// the dead cleric is skipped in round 2
	s.Equal(2, s.enc.Round)
	current, ok := s.enc.Current()
	s.Require().True(ok)
	s.Equal("fighter", current.ID())
	s.False(s.enc.IsOver())
}

func (s *EncounterSuite) TestIncapacitatedSkipsUntilSaved() {
	sleep := s.sleep()
	s.start(map[string][]actions.Definition{"cleric": {sleep}})

	goblinTurns := 0
	decide := script(map[string]func(*encounter.TurnView) *encounter.Decision{
		"cleric": func(view *encounter.TurnView) *encounter.Decision {
			if view.Round > 1 {
				return nil
			}
			return &encounter.Decision{Action: sleep, Targets: []actions.Combatant{s.goblin}}
		},
		"goblin": func(*encounter.TurnView) *encounter.Decision {
			goblinTurns++
			return nil
		},
	})

	// immediate save 5, turn start save 5: still asleep
	s.roller.SetRolls([]int{5, 5})
	reports, err := s.enc.Run(s.ctx, decide, 1)
	s.Require().NoError(err)
	s.Require().Len(reports, 3)

	goblin := reports[2]
	s.True(goblin.Skipped)
	s.Equal(encounter.SkipIncapacitated, goblin.SkipReason)
	s.Require().Len(goblin.Start.Events, 1)
	s.Equal(effects.EventSave, goblin.Start.Events[0].Kind)
	s.Equal(0, goblinTurns)

	effs := s.manager(s.goblin).Effects()
	s.Require().Len(effs, 1)
	s.Equal(2, effs[0].Remaining)

	// turn start save 15 ends it and the goblin acts
	s.roller.SetRolls([]int{15})
	reports, err = s.enc.Run(s.ctx, decide, 2)
	s.Require().NoError(err)
	goblin = reports[2]
	s.Equal(encounter.SkipPassed, goblin.SkipReason)
	s.Equal(1, goblinTurns)
	s.Empty(s.manager(s.goblin).Effects())
}

func (s *EncounterSuite) TestFailedActionChangesNothing() {
	costly := &actions.SpellHeal{
		Base: actions.Base{
			ID: "mass_heal", Name: "Mass Heal", MindCost: []int{20},
			TargetRestrictions: []targeting.Restriction{targeting.Ally},
		},
		HealRoll: formula.MustParse("[MIND]D8"),
	}
	s.start(map[string][]actions.Definition{"cleric": {costly}})

	report, err := s.enc.TakeTurn(s.ctx, script(map[string]func(*encounter.TurnView) *encounter.Decision{
		"cleric": func(*encounter.TurnView) *encounter.Decision {
			return &encounter.Decision{Action: costly, Targets: []actions.Combatant{s.fighter}}
		},
	}))
	s.Require().NoError(err)

	s.Equal(encounter.SkipFailed, report.SkipReason)
	s.Contains(report.ActionError, "MIND")
	s.Nil(report.Outcome)
	s.Equal(10, s.cleric.AvailableMind())

	current, _ := s.enc.Current()
	s.Equal("fighter", current.ID())
}

func (s *EncounterSuite) TestRunToVictory() {
	s.goblin = entities.NewCombatant("goblin", entities.Stats{
		Name: "Goblin", Team: targeting.TeamOpponents, HP: 10, AC: 13,
	})
	s.start(map[string][]actions.Definition{"fighter": {longsword(0)}})

	s.roller.SetRolls([]int{15, 4, 15, 4})
	reports, err := s.enc.Run(s.ctx, encounter.NewSimpleDecider(s.registry), 0)
	s.Require().NoError(err)

	s.Equal(encounter.StatusCompleted, s.enc.Status)
	winner, over := s.enc.Winner()
	s.True(over)
	s.Equal(targeting.TeamParty, winner)
	s.False(s.goblin.IsAlive())
	s.Len(reports, 5)
	s.Require().Len(reports[4].Deaths, 1)
	s.Equal("goblin", reports[4].Deaths[0].CombatantID)
	s.Equal(0, s.roller.Remaining())

	_, err = s.enc.TakeTurn(s.ctx, pass)
	s.True(errors.IsInvalidArgument(err))
}

func (s *EncounterSuite) TestEventsArePublished() {
	bus := events.NewBus(nil)
	var seen []events.EventType
	var died string
	var winner targeting.Team
	record := &events.ListenerFunc{
		Name:  "recorder",
		Order: events.PriorityNarration,
		Handle: func(e events.Event) error {
			seen = append(seen, e.GetType())
			switch ev := e.(type) {
			case *encounter.CombatantDiedEvent:
				died = ev.Death.Name
			case *encounter.EncounterOverEvent:
				winner = ev.Winner
			}
			return nil
		},
	}
	bus.Subscribe(events.EventTypeTurnCompleted, record)
	bus.Subscribe(events.EventTypeCombatantDied, record)
	bus.Subscribe(events.EventTypeEncounterOver, record)
	bus.Subscribe(events.EventTypeTurnCompleted, &events.ListenerFunc{
		Name:   "broken",
		Order:  events.PriorityAudit,
		Handle: func(events.Event) error { return stderrors.New("listener down") },
	})

	s.enc = encounter.New(&encounter.Config{
		ID:            "enc-1",
		Roller:        s.roller,
		Registry:      s.registry,
		Events:        bus,
		UUIDGenerator: uuid.NewSequential("outcome"),
	})
	s.goblin = entities.NewCombatant("goblin", entities.Stats{
		Name: "Goblin", Team: targeting.TeamOpponents, HP: 10, AC: 13,
	})
	s.start(map[string][]actions.Definition{"fighter": {longsword(0)}})

	s.roller.SetRolls([]int{15, 4, 15, 4})
	reports, err := s.enc.Run(s.ctx, encounter.NewSimpleDecider(s.registry), 0)
	s.Require().NoError(err)
	s.Require().Len(reports, 5)

	s.Equal([]events.EventType{
		events.EventTypeTurnCompleted,
		events.EventTypeTurnCompleted,
		events.EventTypeTurnCompleted,
		events.EventTypeTurnCompleted,
		events.EventTypeTurnCompleted,
		events.EventTypeCombatantDied,
		events.EventTypeEncounterOver,
	}, seen)
	s.Equal("Goblin", died)
	s.Equal(targeting.TeamParty, winner)
}

type EncounterMocksSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	resolver *mockactions.MockResolver
	journal  *mockoutcomes.MockRepository
	enc      *encounter.Encounter

	cleric *entities.Combatant
	goblin *entities.Combatant
}

func TestEncounterMocksSuite(t *testing.T) {
	suite.Run(t, new(EncounterMocksSuite))
}

func (s *EncounterMocksSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.resolver = mockactions.NewMockResolver(s.ctrl)
	s.journal = mockoutcomes.NewMockRepository(s.ctrl)

	s.enc = encounter.New(&encounter.Config{
		ID:       "enc-1",
		Roller:   mockdice.NewManualMockRoller(),
		Resolver: s.resolver,
		Journal:  s.journal,
	})

	s.cleric = entities.NewCombatant("cleric", entities.Stats{Name: "Cleric", Team: targeting.TeamParty, HP: 20, Mind: 10})
	s.goblin = entities.NewCombatant("goblin", entities.Stats{Name: "Goblin", Team: targeting.TeamOpponents, HP: 10})
	s.Require().NoError(s.enc.Add(s.cleric, nil))
	s.Require().NoError(s.enc.Add(s.goblin, nil))
	s.Require().NoError(s.enc.Start())
}

func (s *EncounterMocksSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *EncounterMocksSuite) decide(action actions.Definition) encounter.DecideFunc {
	return func(context.Context, *encounter.TurnView) (*encounter.Decision, error) {
		return &encounter.Decision{Action: action}, nil
	}
}

func (s *EncounterMocksSuite) TestOutcomeIsJournaled() {
	action := longsword(0)
	outcome := &actions.Outcome{ID: "outcome-1", ActionID: "longsword", Action: "Longsword"}

	s.resolver.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *actions.ResolveInput) (*actions.Outcome, error) {
			s.Equal(action, input.Action)
			s.Nil(input.Targets)
			s.Len(input.Pool, 2)
			return outcome, nil
		})
	s.journal.EXPECT().Append(gomock.Any(), "enc-1", outcome).Return(nil)

	report, err := s.enc.TakeTurn(context.Background(), s.decide(action))
	s.Require().NoError(err)
	s.Equal(outcome, report.Outcome)
}

func (s *EncounterMocksSuite) TestJournalFailureDoesNotFailTurn() {
	outcome := &actions.Outcome{ID: "outcome-1"}
	s.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(outcome, nil)
	s.journal.EXPECT().Append(gomock.Any(), "enc-1", outcome).Return(errors.Internalf("redis down"))

	report, err := s.enc.TakeTurn(context.Background(), s.decide(longsword(0)))
	s.Require().NoError(err)
	s.Equal(outcome, report.Outcome)
}

func (s *EncounterMocksSuite) TestStateInvariantIsFatal() {
	s.resolver.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(nil, errors.StateInvariantf("concentration map out of sync"))

	_, err := s.enc.TakeTurn(context.Background(), s.decide(longsword(0)))
	s.Require().Error(err)
	s.True(errors.IsStateInvariant(err))

	// the turn did not advance
	current, ok := s.enc.Current()
	s.Require().True(ok)
	s.Equal("cleric", current.ID())
}

func (s *EncounterMocksSuite) TestContentErrorIsReported() {
	s.resolver.EXPECT().
		Resolve(gomock.Any(), gomock.Any()).
		Return(nil, errors.UnboundVariable("STR"))

	report, err := s.enc.TakeTurn(context.Background(), s.decide(longsword(0)))
	s.Require().NoError(err)
	s.Equal(encounter.SkipFailed, report.SkipReason)
	s.Contains(report.ActionError, "STR")
}
