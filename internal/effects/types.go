package effects

import (
	"github.com/KirkDiggler/tactics-engine/internal/formula"
)

// BonusType is the stat a modifier adjusts
type BonusType string

const (
	BonusAC     BonusType = "AC"
	BonusAttack BonusType = "ATTACK"
	BonusDamage BonusType = "DAMAGE"
	BonusHP     BonusType = "HP"
)

// DamageType classifies damage for resistances and vulnerabilities
type DamageType string

const (
	DamagePiercing    DamageType = "PIERCING"
	DamageSlashing    DamageType = "SLASHING"
	DamageBludgeoning DamageType = "BLUDGEONING"
	DamageFire        DamageType = "FIRE"
	DamageCold        DamageType = "COLD"
	DamageLightning   DamageType = "LIGHTNING"
	DamageThunder     DamageType = "THUNDER"
	DamagePoison      DamageType = "POISON"
	DamageNecrotic    DamageType = "NECROTIC"
	DamageRadiant     DamageType = "RADIANT"
	DamagePsychic     DamageType = "PSYCHIC"
	DamageForce       DamageType = "FORCE"
	DamageAcid        DamageType = "ACID"
)

// Ability is an ability score used for saving throws
type Ability string

const (
	AbilityStrength     Ability = "STR"
	AbilityDexterity    Ability = "DEX"
	AbilityConstitution Ability = "CON"
	AbilityIntelligence Ability = "INT"
	AbilityWisdom       Ability = "WIS"
	AbilityCharisma     Ability = "CHA"
)

// Kind names an effect variant
type Kind string

const (
	KindBuff            Kind = "Buff"
	KindDebuff          Kind = "Debuff"
	KindDamageOverTime  Kind = "DamageOverTime"
	KindHealingOverTime Kind = "HealingOverTime"
	KindIncapacitating  Kind = "Incapacitating"
	KindOnHitTrigger    Kind = "OnHitTrigger"
)

// DamageRoll pairs a damage expression with its type
type DamageRoll struct {
	Roll *formula.Expression
	Type DamageType
}

// Modifier is one entry of a Buff or Debuff. Exactly one of Value or Damage
// is set; Damage only makes sense for BonusDamage.
type Modifier struct {
	Bonus  BonusType
	Value  *formula.Expression
	Damage *DamageRoll
}

// Header is shared by every effect variant. Duration counts turns; zero
// means the effect is instantaneous.
type Header struct {
	Name        string
	Description string
	Duration    int
}

func (h Header) header() Header { return h }

// Definition is one of Buff, Debuff, DamageOverTime, HealingOverTime,
// Incapacitating or OnHitTrigger. The set is closed.
type Definition interface {
	header() Header
}

// HeaderOf returns the common fields of a definition
func HeaderOf(d Definition) Header {
	return d.header()
}

// KindOf returns the variant of a definition
func KindOf(d Definition) Kind {
	switch d.(type) {
	case *Buff:
		return KindBuff
	case *Debuff:
		return KindDebuff
	case *DamageOverTime:
		return KindDamageOverTime
	case *HealingOverTime:
		return KindHealingOverTime
	case *Incapacitating:
		return KindIncapacitating
	case *OnHitTrigger:
		return KindOnHitTrigger
	}
	return ""
}

// Buff grants modifiers to an ally
type Buff struct {
	Header
	Modifiers []Modifier
}

// Debuff imposes modifiers on an enemy
type Debuff struct {
	Header
	Modifiers []Modifier
}

// DamageOverTime damages its holder at the start of each of the holder's turns
type DamageOverTime struct {
	Header
	Damage DamageRoll
}

// HealingOverTime heals its holder at the start of each of the holder's turns
type HealingOverTime struct {
	Header
	HealRoll *formula.Expression
}

// Incapacitating prevents its holder from acting. When SaveEnds is set the
// holder gets a saving throw at the start of each of its turns.
type Incapacitating struct {
	Header
	IncapacitationType string
	SaveEnds           bool
	SaveDC             int
	SaveStat           Ability
}

// OnHitTrigger lies dormant until its holder lands an attack
type OnHitTrigger struct {
	Header
	DamageBonus       []DamageRoll
	TriggerEffects    []Definition
	ConsumesOnTrigger bool
}

// Instance is a definition attached to one holder. SourceID is a handle,
// not a reference: the source may have left the encounter.
type Instance struct {
	ID            string
	Definition    Definition
	Remaining     int
	SourceID      string
	HolderID      string
	Concentration bool

	// Bindings are the caster's variables captured at cast time, including
	// the MIND value paid for the cast.
	Bindings formula.Bindings
}

// Name is the definition's name
func (i *Instance) Name() string {
	return i.Definition.header().Name
}

// Kind is the definition's variant
func (i *Instance) Kind() Kind {
	return KindOf(i.Definition)
}

// modifiers returns the instance's modifiers, if its variant has any
func (i *Instance) modifiers() []Modifier {
	switch def := i.Definition.(type) {
	case *Buff:
		return def.Modifiers
	case *Debuff:
		return def.Modifiers
	}
	return nil
}

// tickPhase reports which turn phase decrements the instance
func (i *Instance) tickPhase() Phase {
	switch i.Definition.(type) {
	case *DamageOverTime, *HealingOverTime:
		return PhaseTurnStart
	}
	return PhaseTurnEnd
}

// Phase is a point in the holder's turn
type Phase string

const (
	PhaseTurnStart Phase = "turn_start"
	PhaseTurnEnd   Phase = "turn_end"
)

// Expressions lists every expression a definition evaluates, including
// those of nested trigger effects
func Expressions(d Definition) []*formula.Expression {
	var out []*formula.Expression
	addModifiers := func(mods []Modifier) {
		for _, mod := range mods {
			if mod.Value != nil {
				out = append(out, mod.Value)
			}
			if mod.Damage != nil {
				out = append(out, mod.Damage.Roll)
			}
		}
	}

	switch def := d.(type) {
	case *Buff:
		addModifiers(def.Modifiers)
	case *Debuff:
		addModifiers(def.Modifiers)
	case *DamageOverTime:
		out = append(out, def.Damage.Roll)
	case *HealingOverTime:
		out = append(out, def.HealRoll)
	case *OnHitTrigger:
		for _, bonus := range def.DamageBonus {
			out = append(out, bonus.Roll)
		}
		for _, nested := range def.TriggerEffects {
			out = append(out, Expressions(nested)...)
		}
	}
	return out
}
