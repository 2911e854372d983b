package effects

import (
	"go.uber.org/zap"

	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
)

// Manager owns the ordered effect instances of one holder. Managers are
// created by a Registry and share its roller and concentration map.
type Manager struct {
	holder   Holder
	registry *Registry
	effects  []*Instance
	logger   *zap.Logger
}

// Holder returns the combatant this manager belongs to
func (m *Manager) Holder() Holder {
	return m.holder
}

// Effects returns the active instances in attachment order
func (m *Manager) Effects() []*Instance {
	out := make([]*Instance, len(m.effects))
	copy(out, m.effects)
	return out
}

// Has reports whether an effect with the given name is active
func (m *Manager) Has(name string) bool {
	for _, inst := range m.effects {
		if inst.Name() == name {
			return true
		}
	}
	return false
}

// ActiveModifier is a modifier together with the instance providing it
type ActiveModifier struct {
	Effect     string
	InstanceID string
	Modifier   Modifier
	Bindings   formula.Bindings
}

// ActiveModifiers returns the modifiers for a bonus type in insertion order
func (m *Manager) ActiveModifiers(bonus BonusType) []ActiveModifier {
	var out []ActiveModifier
	for _, inst := range m.effects {
		for _, mod := range inst.modifiers() {
			if mod.Bonus != bonus {
				continue
			}
			out = append(out, ActiveModifier{
				Effect:     inst.Name(),
				InstanceID: inst.ID,
				Modifier:   mod,
				Bindings:   inst.Bindings,
			})
		}
	}
	return out
}

// RollModifiers evaluates and sums the value modifiers of a bonus type.
// Damage-roll modifiers are skipped; see ActiveModifiers.
func (m *Manager) RollModifiers(bonus BonusType, opts ...formula.Option) (int, []*formula.ResolvedRoll, error) {
	total := 0
	var rolls []*formula.ResolvedRoll

	for _, active := range m.ActiveModifiers(bonus) {
		if active.Modifier.Value == nil {
			continue
		}
		roll, err := active.Modifier.Value.Evaluate(active.Bindings, m.registry.roller, opts...)
		if err != nil {
			return 0, nil, errors.Wrapf(err, "modifier from %s", active.Effect)
		}
		total += roll.Total
		rolls = append(rolls, roll)
	}

	return total, rolls, nil
}

// BlocksActions reports whether an incapacitating effect is active
func (m *Manager) BlocksActions() bool {
	for _, inst := range m.effects {
		if _, ok := inst.Definition.(*Incapacitating); ok {
			return true
		}
	}
	return false
}

// SavingThrow rolls a d20 save for the holder
func (m *Manager) SavingThrow(ability Ability, dc int) (*SaveResult, error) {
	mod := m.holder.SaveModifier(ability)
	roll, err := m.registry.roller.Roll(1, 20, mod)
	if err != nil {
		return nil, errors.Wrap(err, "saving throw")
	}

	return &SaveResult{
		Ability: ability,
		DC:      dc,
		Roll:    roll.RawTotal,
		Total:   roll.Total,
		Success: roll.Total >= dc,
	}, nil
}

// AttackContext describes a successful hit made by the holder
type AttackContext struct {
	TargetID string
	Action   string
}

// Trigger is a fired on-hit effect
type Trigger struct {
	Instance       *Instance
	DamageBonus    []DamageRoll
	TriggerEffects []Definition
	Bindings       formula.Bindings
	Consumed       bool
}

// PeekTrigger returns the holder's on-hit trigger without firing it
func (m *Manager) PeekTrigger() *Trigger {
	for _, inst := range m.effects {
		if def, ok := inst.Definition.(*OnHitTrigger); ok {
			return &Trigger{
				Instance:       inst,
				DamageBonus:    def.DamageBonus,
				TriggerEffects: def.TriggerEffects,
				Bindings:       inst.Bindings,
				Consumed:       def.ConsumesOnTrigger,
			}
		}
	}
	return nil
}

// ConsumeIfTriggered fires the holder's on-hit trigger, if any. A consuming
// trigger is removed before this returns.
func (m *Manager) ConsumeIfTriggered(attack AttackContext) *Trigger {
	for _, inst := range m.effects {
		def, ok := inst.Definition.(*OnHitTrigger)
		if !ok {
			continue
		}

		trigger := &Trigger{
			Instance:       inst,
			DamageBonus:    def.DamageBonus,
			TriggerEffects: def.TriggerEffects,
			Bindings:       inst.Bindings,
		}
		if def.ConsumesOnTrigger {
			m.remove(inst.ID, "consumed")
			trigger.Consumed = true
		}

		m.logger.Debug("on-hit trigger fired",
			zap.String("effect", inst.Name()),
			zap.String("target", attack.TargetID),
			zap.Bool("consumed", trigger.Consumed),
		)
		return trigger
	}
	return nil
}

// TickTurnStart resolves damage and healing over time, offers save-ends
// saving throws, and advances DoT/HoT durations.
func (m *Manager) TickTurnStart() *TickReport {
	report := &TickReport{HolderID: m.holder.ID(), Holder: m.holder.Name(), Phase: PhaseTurnStart}

	for _, inst := range m.Effects() {
		if !m.holder.IsAlive() {
			break
		}
		if _, ok := m.find(inst.ID); !ok {
			continue
		}

		switch def := inst.Definition.(type) {
		case *DamageOverTime:
			roll, err := def.Damage.Roll.Evaluate(m.registry.tickBindings(inst), m.registry.roller)
			if err != nil {
				m.fail(inst, err, report)
				continue
			}
			dealt := m.holder.TakeDamage(roll.Total, def.Damage.Type)
			report.add(TickEvent{
				Kind:       EventDamage,
				Effect:     inst.Name(),
				InstanceID: inst.ID,
				Amount:     dealt,
				DamageType: def.Damage.Type,
				Roll:       roll,
			})
			m.decrement(inst, report)

		case *HealingOverTime:
			roll, err := def.HealRoll.Evaluate(m.registry.tickBindings(inst), m.registry.roller)
			if err != nil {
				m.fail(inst, err, report)
				continue
			}
			healed := m.holder.Heal(roll.Total)
			report.add(TickEvent{
				Kind:       EventHeal,
				Effect:     inst.Name(),
				InstanceID: inst.ID,
				Amount:     healed,
				Roll:       roll,
			})
			m.decrement(inst, report)

		case *Incapacitating:
			if !def.SaveEnds {
				continue
			}
			save, err := m.SavingThrow(def.SaveStat, def.SaveDC)
			if err != nil {
				m.fail(inst, err, report)
				continue
			}
			report.add(TickEvent{
				Kind:       EventSave,
				Effect:     inst.Name(),
				InstanceID: inst.ID,
				Save:       save,
			})
			if save.Success {
				m.remove(inst.ID, "saved")
				report.add(TickEvent{Kind: EventRemoved, Effect: inst.Name(), InstanceID: inst.ID, Reason: "saved"})
			}
		}
	}

	return report
}

// TickTurnEnd advances the durations of buffs, debuffs, incapacitation and
// on-hit triggers
func (m *Manager) TickTurnEnd() *TickReport {
	report := &TickReport{HolderID: m.holder.ID(), Holder: m.holder.Name(), Phase: PhaseTurnEnd}

	for _, inst := range m.Effects() {
		if inst.tickPhase() == PhaseTurnEnd {
			m.decrement(inst, report)
		}
	}
	return report
}

// RemoveAll clears every effect, usually because the holder died
func (m *Manager) RemoveAll(reason string) []*Instance {
	removed := m.Effects()
	for _, inst := range removed {
		m.remove(inst.ID, reason)
	}
	return removed
}

func (m *Manager) attach(inst *Instance, hp *hpRoll, app *Application) {
	app.Rolls = hp.rolls

	total := hp.total
	if _, ok := inst.Definition.(*Debuff); ok {
		total = -total
	}
	switch {
	case total > 0:
		app.Healed = m.holder.Heal(total)
	case total < 0:
		app.Damaged = m.holder.TakeDamage(-total, "")
	}

	switch inst.Definition.(type) {
	case *DamageOverTime, *HealingOverTime:
		if existing := m.findByName(inst); existing != nil && !inst.Concentration {
			if inst.Remaining > existing.Remaining {
				existing.Remaining = inst.Remaining
			}
			app.Instance = existing
			app.Refreshed = true
			return
		}
	case *OnHitTrigger:
		for _, existing := range m.Effects() {
			if _, ok := existing.Definition.(*OnHitTrigger); ok {
				m.remove(existing.ID, "replaced")
				app.Displaced = append(app.Displaced, existing)
			}
		}
	}

	if inst.Remaining <= 0 {
		return
	}

	m.effects = append(m.effects, inst)
	app.Attached = true
}

func (m *Manager) find(id string) (*Instance, bool) {
	for _, inst := range m.effects {
		if inst.ID == id {
			return inst, true
		}
	}
	return nil, false
}

func (m *Manager) findByName(like *Instance) *Instance {
	for _, inst := range m.effects {
		if inst.Kind() == like.Kind() && inst.Name() == like.Name() && !inst.Concentration {
			return inst
		}
	}
	return nil
}

func (m *Manager) remove(id, reason string) *Instance {
	for i, inst := range m.effects {
		if inst.ID != id {
			continue
		}
		m.effects = append(m.effects[:i], m.effects[i+1:]...)
		m.registry.release(inst)
		m.logger.Debug("effect removed",
			zap.String("effect", inst.Name()),
			zap.String("reason", reason),
		)
		return inst
	}
	return nil
}

func (m *Manager) decrement(inst *Instance, report *TickReport) {
	inst.Remaining--
	if inst.Remaining > 0 {
		return
	}
	if m.remove(inst.ID, "expired") != nil {
		report.add(TickEvent{Kind: EventExpired, Effect: inst.Name(), InstanceID: inst.ID})
	}
}

// fail drops an instance whose tick cannot be evaluated
func (m *Manager) fail(inst *Instance, err error, report *TickReport) {
	m.logger.Warn("effect tick failed", zap.String("effect", inst.Name()), zap.Error(err))
	m.remove(inst.ID, "failed")
	report.add(TickEvent{Kind: EventFailed, Effect: inst.Name(), InstanceID: inst.ID, Reason: err.Error()})
}
