package effects

import (
	"go.uber.org/zap"

	"github.com/KirkDiggler/tactics-engine/internal/dice"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
	"github.com/KirkDiggler/tactics-engine/internal/uuid"
)

// RegistryConfig holds the dependencies of a Registry
type RegistryConfig struct {
	Roller        dice.Roller
	UUIDGenerator uuid.Generator
	Logger        *zap.Logger
}

// concentrationRef locates one instance of a concentration cast
type concentrationRef struct {
	holderID   string
	instanceID string
}

// concentrationCast is the single spell a caster concentrates on. One cast
// may hold instances on several targets.
type concentrationCast struct {
	castID string
	refs   []concentrationRef
}

// Registry is the encounter-scoped index of effect managers. It owns the
// caster -> concentration map, so each caster concentrates on at most one
// cast at a time, wherever its instances are attached.
//
// A Registry is not safe for concurrent use; an encounter resolves one
// action at a time.
type Registry struct {
	managers      map[string]*Manager
	order         []string
	concentration map[string]*concentrationCast
	roller        dice.Roller
	ids           uuid.Generator
	logger        *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(cfg *RegistryConfig) *Registry {
	if cfg == nil || cfg.Roller == nil {
		panic("effects registry requires a dice roller")
	}

	ids := cfg.UUIDGenerator
	if ids == nil {
		ids = uuid.NewGoogleUUIDGenerator()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Registry{
		managers:      make(map[string]*Manager),
		concentration: make(map[string]*concentrationCast),
		roller:        cfg.Roller,
		ids:           ids,
		logger:        logger.Named("effects"),
	}
}

// Register creates the manager for a holder. Registering the same ID twice
// returns the existing manager.
func (r *Registry) Register(holder Holder) *Manager {
	if m, ok := r.managers[holder.ID()]; ok {
		return m
	}

	m := &Manager{
		holder:   holder,
		registry: r,
		logger:   r.logger.With(zap.String("holder", holder.Name())),
	}
	r.managers[holder.ID()] = m
	r.order = append(r.order, holder.ID())
	return m
}

// Unregister removes a holder (usually on death). Its effects are removed,
// and its own concentration effect, wherever attached, is broken. Effects it
// cast without concentration keep running on their holders.
func (r *Registry) Unregister(id string) []*Instance {
	m, ok := r.managers[id]
	if !ok {
		return nil
	}

	removed := m.RemoveAll("holder removed")
	removed = append(removed, r.BreakConcentration(id)...)

	delete(r.managers, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return removed
}

// Manager returns the manager for a holder
func (r *Registry) Manager(id string) (*Manager, bool) {
	m, ok := r.managers[id]
	return m, ok
}

// Holder returns a registered holder
func (r *Registry) Holder(id string) (Holder, bool) {
	m, ok := r.managers[id]
	if !ok {
		return nil, false
	}
	return m.holder, true
}

// Concentration returns the instances of the caster's concentration cast
func (r *Registry) Concentration(casterID string) []*Instance {
	cast, ok := r.concentration[casterID]
	if !ok {
		return nil
	}

	var out []*Instance
	for _, ref := range cast.refs {
		if m, ok := r.managers[ref.holderID]; ok {
			if inst, ok := m.find(ref.instanceID); ok {
				out = append(out, inst)
			}
		}
	}
	return out
}

// BreakConcentration removes every instance of the caster's concentration
// cast wherever it is attached
func (r *Registry) BreakConcentration(casterID string) []*Instance {
	cast, ok := r.concentration[casterID]
	if !ok {
		return nil
	}
	delete(r.concentration, casterID)

	var removed []*Instance
	for _, ref := range cast.refs {
		m, ok := r.managers[ref.holderID]
		if !ok {
			continue
		}
		if inst := m.remove(ref.instanceID, "concentration broken"); inst != nil {
			removed = append(removed, inst)
			r.logger.Debug("concentration broken",
				zap.String("caster", casterID),
				zap.String("target", ref.holderID),
				zap.String("effect", inst.Name()),
			)
		}
	}
	return removed
}

// AttachRequest describes a new effect instance
type AttachRequest struct {
	Definition    Definition
	SourceID      string
	TargetID      string
	Bindings      formula.Bindings
	Concentration bool

	// CastID groups the instances of one multi-target concentration cast.
	// Empty means the request is a cast of its own.
	CastID string
}

// Application is the result of attaching an effect
type Application struct {
	Instance *Instance

	// Attached is false when the effect was instantaneous, refreshed an
	// existing instance, or was refused because the target is dead.
	Attached  bool
	Refreshed bool
	Refused   bool

	// Displaced lists instances removed to make room: the caster's previous
	// concentration effect or the holder's previous on-hit trigger.
	Displaced []*Instance

	// Healed and Damaged record instantaneous HP modifiers
	Healed  int
	Damaged int
	Rolls   []*formula.ResolvedRoll
}

// Validate checks that req can be attached without touching any state
func (r *Registry) Validate(req *AttachRequest) error {
	if req.Definition == nil {
		return errors.InvalidArgumentf("attach without definition")
	}
	if _, ok := r.managers[req.TargetID]; !ok {
		return errors.NotFoundf("holder %s is not registered", req.TargetID)
	}

	if !req.Concentration {
		return nil
	}
	return r.ValidateConcentration(req.SourceID)
}

// ValidateConcentration checks the caster's concentration bookkeeping. Any
// error is a StateInvariant violation.
func (r *Registry) ValidateConcentration(casterID string) error {
	cast, ok := r.concentration[casterID]
	if !ok {
		return nil
	}
	if len(cast.refs) == 0 {
		return errors.StateInvariantf("caster %s holds an empty concentration cast", casterID).
			WithMeta("caster", casterID)
	}
	for _, ref := range cast.refs {
		m, ok := r.managers[ref.holderID]
		if !ok {
			return errors.StateInvariantf("caster %s concentrates on unregistered holder %s", casterID, ref.holderID).
				WithMeta("caster", casterID)
		}
		if _, ok := m.find(ref.instanceID); !ok {
			return errors.StateInvariantf("caster %s concentrates on missing instance %s", casterID, ref.instanceID).
				WithMeta("caster", casterID)
		}
	}
	return nil
}

// Attach applies an effect to its target. A concentration effect first
// removes the caster's previous concentration effect wherever it is.
func (r *Registry) Attach(req *AttachRequest) (*Application, error) {
	if err := r.Validate(req); err != nil {
		return nil, err
	}

	m := r.managers[req.TargetID]
	header := HeaderOf(req.Definition)

	inst := &Instance{
		ID:            r.ids.New(),
		Definition:    req.Definition,
		Remaining:     header.Duration,
		SourceID:      req.SourceID,
		HolderID:      req.TargetID,
		Concentration: req.Concentration,
		Bindings:      req.Bindings.Clone(),
	}
	app := &Application{Instance: inst}

	if !m.holder.IsAlive() {
		app.Refused = true
		return app, nil
	}

	// Rolls happen before any mutation so a bad expression changes nothing
	hp, err := r.rollHP(inst)
	if err != nil {
		return nil, err
	}

	castID := req.CastID
	if castID == "" {
		castID = inst.ID
	}

	m.attach(inst, hp, app)

	// An instance that never attached leaves the caster's concentration alone
	if app.Attached && req.Concentration {
		if cast, ok := r.concentration[req.SourceID]; ok && cast.castID != castID {
			app.Displaced = append(app.Displaced, r.BreakConcentration(req.SourceID)...)
		}
		cast, ok := r.concentration[req.SourceID]
		if !ok {
			cast = &concentrationCast{castID: castID}
			r.concentration[req.SourceID] = cast
		}
		cast.refs = append(cast.refs, concentrationRef{holderID: req.TargetID, instanceID: inst.ID})
	}

	r.logger.Debug("effect applied",
		zap.String("caster", req.SourceID),
		zap.String("target", req.TargetID),
		zap.String("effect", header.Name),
		zap.Int("remaining", inst.Remaining),
		zap.Bool("attached", app.Attached),
	)

	return app, nil
}

// hpRoll is the pre-rolled total of an instance's HP modifiers
type hpRoll struct {
	total int
	rolls []*formula.ResolvedRoll
}

func (r *Registry) rollHP(inst *Instance) (*hpRoll, error) {
	out := &hpRoll{}
	for _, mod := range inst.modifiers() {
		if mod.Bonus != BonusHP || mod.Value == nil {
			continue
		}
		roll, err := mod.Value.Evaluate(inst.Bindings, r.roller)
		if err != nil {
			return nil, errors.Wrapf(err, "effect %s", inst.Name())
		}
		out.total += roll.Total
		out.rolls = append(out.rolls, roll)
	}
	return out, nil
}

// release drops bookkeeping for an instance leaving its holder
func (r *Registry) release(inst *Instance) {
	if !inst.Concentration {
		return
	}
	cast, ok := r.concentration[inst.SourceID]
	if !ok {
		return
	}
	for i, ref := range cast.refs {
		if ref.instanceID == inst.ID {
			cast.refs = append(cast.refs[:i], cast.refs[i+1:]...)
			break
		}
	}
	if len(cast.refs) == 0 {
		delete(r.concentration, inst.SourceID)
	}
}

// tickBindings builds the variables a DoT/HoT is evaluated with: the cast-time
// snapshot overlaid with the caster's live variables, with MIND always taken
// from the snapshot.
func (r *Registry) tickBindings(inst *Instance) formula.Bindings {
	bindings := inst.Bindings.Clone()

	if m, ok := r.managers[inst.SourceID]; ok {
		bindings = bindings.Overlay(m.holder.Variables())
	}
	if mind, ok := inst.Bindings.Lookup(formula.VarMind); ok {
		bindings.Set(formula.VarMind, mind)
	}
	return bindings
}
