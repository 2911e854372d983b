// Package encounter drives the turn loop of one fight: effect ticks,
// incapacitation, action resolution, cooldowns and death cleanup.
package encounter

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
	"github.com/KirkDiggler/tactics-engine/internal/dice"
	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/events"
	"github.com/KirkDiggler/tactics-engine/internal/repositories/outcomes"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
	"github.com/KirkDiggler/tactics-engine/internal/uuid"
)

const tracerName = "github.com/KirkDiggler/tactics-engine/internal/encounter"

// Status represents the current state of an encounter
type Status string

const (
	StatusSetup     Status = "setup"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Config holds the dependencies of an encounter. Only Roller is required
// in practice; everything else has a default.
type Config struct {
	ID            string
	Roller        dice.Roller
	Registry      *effects.Registry
	Resolver      actions.Resolver
	Journal       outcomes.Repository
	Events        *events.Bus
	UUIDGenerator uuid.Generator
	Logger        *zap.Logger
	Tracer        trace.Tracer
}

// Encounter owns the combatants of one fight, their effects, and cooldowns
type Encounter struct {
	ID     string
	Status Status
	Round  int
	Turn   int

	combatants map[string]actions.Combatant
	order      []string
	available  map[string][]actions.Definition
	cooldowns  map[string]map[string]int
	dead       map[string]bool

	registry *effects.Registry
	resolver actions.Resolver
	journal  outcomes.Repository
	events   *events.Bus
	logger   *zap.Logger
	tracer   trace.Tracer
}

// New creates an encounter in setup
func New(cfg *Config) *Encounter {
	if cfg == nil {
		cfg = &Config{}
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.NewRandomRoller()
	}
	ids := cfg.UUIDGenerator
	if ids == nil {
		ids = uuid.NewGoogleUUIDGenerator()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	registry := cfg.Registry
	if registry == nil {
		registry = effects.NewRegistry(&effects.RegistryConfig{
			Roller:        roller,
			UUIDGenerator: ids,
			Logger:        logger,
		})
	}

	resolver := cfg.Resolver
	if resolver == nil {
		resolver = actions.NewResolver(&actions.ResolverConfig{
			Registry:      registry,
			Roller:        roller,
			UUIDGenerator: ids,
			Logger:        logger,
			Tracer:        tracer,
		})
	}

	id := cfg.ID
	if id == "" {
		id = ids.New()
	}

	return &Encounter{
		ID:         id,
		Status:     StatusSetup,
		combatants: make(map[string]actions.Combatant),
		available:  make(map[string][]actions.Definition),
		cooldowns:  make(map[string]map[string]int),
		dead:       make(map[string]bool),
		registry:   registry,
		resolver:   resolver,
		journal:    cfg.Journal,
		events:     cfg.Events,
		logger:     logger.Named("encounter").With(zap.String("encounter", id)),
		tracer:     tracer,
	}
}

// Add enters a combatant with the actions it may use. Turn order is the
// order of Add calls.
func (e *Encounter) Add(c actions.Combatant, available []actions.Definition) error {
	if c == nil {
		return errors.InvalidArgumentf("combatant cannot be nil")
	}
	if e.Status != StatusSetup {
		return errors.InvalidArgumentf("cannot add %s once the encounter has started", c.Name())
	}
	if _, exists := e.combatants[c.ID()]; exists {
		return errors.InvalidArgumentf("combatant %s already in encounter", c.ID())
	}

	e.combatants[c.ID()] = c
	e.order = append(e.order, c.ID())
	e.available[c.ID()] = available
	e.cooldowns[c.ID()] = make(map[string]int)
	e.registry.Register(c)
	return nil
}

// Start begins round one
func (e *Encounter) Start() error {
	if e.Status != StatusSetup {
		return errors.InvalidArgumentf("encounter %s already started", e.ID)
	}
	if len(e.order) == 0 {
		return errors.InvalidArgumentf("encounter %s has no combatants", e.ID)
	}

	e.Status = StatusActive
	e.Round = 1
	e.Turn = 0
	e.reap()

	if e.IsOver() {
		e.Status = StatusCompleted
		return nil
	}
	e.skipDead()
	return nil
}

// Registry exposes the encounter's effect registry
func (e *Encounter) Registry() *effects.Registry {
	return e.registry
}

// Combatant returns a combatant by ID
func (e *Encounter) Combatant(id string) (actions.Combatant, bool) {
	c, ok := e.combatants[id]
	return c, ok
}

// Combatants returns every combatant in turn order, living or not
func (e *Encounter) Combatants() []actions.Combatant {
	out := make([]actions.Combatant, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.combatants[id])
	}
	return out
}

// Living returns the living combatants in turn order
func (e *Encounter) Living() []actions.Combatant {
	out := make([]actions.Combatant, 0, len(e.order))
	for _, id := range e.order {
		if c := e.combatants[id]; c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

// Current returns the combatant whose turn it is
func (e *Encounter) Current() (actions.Combatant, bool) {
	if e.Status != StatusActive || e.Turn >= len(e.order) {
		return nil, false
	}
	return e.combatants[e.order[e.Turn]], true
}

// Cooldown returns how many more of the combatant's turns an action is
// unavailable for
func (e *Encounter) Cooldown(combatantID string, action actions.Definition) int {
	return e.cooldowns[combatantID][cooldownKey(action)]
}

// Available returns the actions a combatant can use right now: off
// cooldown and affordable at some power level
func (e *Encounter) Available(combatantID string) []actions.Definition {
	c, ok := e.combatants[combatantID]
	if !ok {
		return nil
	}

	var out []actions.Definition
	for _, action := range e.available[combatantID] {
		if e.Cooldown(combatantID, action) > 0 {
			continue
		}
		if _, ok := HighestAffordable(action, c); !ok {
			continue
		}
		out = append(out, action)
	}
	return out
}

// IsOver reports whether one side has no living members
func (e *Encounter) IsOver() bool {
	_, over := e.Winner()
	return over
}

// Winner returns the surviving team once the fight is over. An empty team
// with over set means nobody survived.
func (e *Encounter) Winner() (targeting.Team, bool) {
	alive := make(map[targeting.Team]int)
	for _, c := range e.combatants {
		if c.IsAlive() {
			alive[c.Team()]++
		}
	}

	switch len(alive) {
	case 0:
		return "", true
	case 1:
		for team := range alive {
			return team, true
		}
	}
	return "", false
}

// HighestAffordable returns the highest power level the combatant can pay for
func HighestAffordable(action actions.Definition, c actions.Combatant) (int, bool) {
	base := actions.BaseOf(action)
	for level := base.Levels() - 1; level >= 0; level-- {
		cost, err := base.Cost(level)
		if err != nil {
			continue
		}
		if cost <= c.AvailableMind() {
			return level, true
		}
	}
	return 0, false
}

func cooldownKey(action actions.Definition) string {
	base := actions.BaseOf(action)
	if base.ID != "" {
		return base.ID
	}
	return base.Name
}

// advance moves to the next living combatant, starting a new round when
// the order wraps
func (e *Encounter) advance() {
	if e.IsOver() {
		e.Status = StatusCompleted
		return
	}

	e.Turn++
	e.skipDead()
	if e.Turn < len(e.order) {
		return
	}

	e.Round++
	e.Turn = 0
	e.skipDead()
}

func (e *Encounter) skipDead() {
	for e.Turn < len(e.order) && !e.combatants[e.order[e.Turn]].IsAlive() {
		e.Turn++
	}
}

// Death is a combatant removed from play
type Death struct {
	CombatantID string              `json:"combatant_id"`
	Name        string              `json:"name"`
	Removed     []actions.EffectRef `json:"removed,omitempty"`
}

// reap unregisters newly dead combatants, removing their effects and
// breaking their concentration
func (e *Encounter) reap() []Death {
	var deaths []Death
	for _, id := range e.order {
		c := e.combatants[id]
		if c.IsAlive() || e.dead[id] {
			continue
		}
		e.dead[id] = true

		removed := e.registry.Unregister(id)
		death := Death{CombatantID: id, Name: c.Name()}
		for _, inst := range removed {
			death.Removed = append(death.Removed, actions.EffectRef{
				InstanceID: inst.ID,
				Effect:     inst.Name(),
				HolderID:   inst.HolderID,
			})
		}
		deaths = append(deaths, death)

		e.logger.Info("combatant died",
			zap.String("combatant", c.Name()),
			zap.Int("effects_removed", len(removed)),
		)
	}
	return deaths
}
