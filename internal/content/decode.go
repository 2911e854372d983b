package content

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
)

var (
	bonusTypes = map[string]effects.BonusType{
		"AC":     effects.BonusAC,
		"ATTACK": effects.BonusAttack,
		"DAMAGE": effects.BonusDamage,
		"HP":     effects.BonusHP,
	}

	actionTypes = map[string]actions.ActionType{
		"":         actions.ActionStandard,
		"STANDARD": actions.ActionStandard,
		"BONUS":    actions.ActionBonus,
		"REACTION": actions.ActionReaction,
	}

	restrictions = map[string]targeting.Restriction{
		"SELF":  targeting.Self,
		"ALLY":  targeting.Ally,
		"ENEMY": targeting.Enemy,
	}

	abilities = map[string]effects.Ability{
		"STR": effects.AbilityStrength,
		"DEX": effects.AbilityDexterity,
		"CON": effects.AbilityConstitution,
		"INT": effects.AbilityIntelligence,
		"WIS": effects.AbilityWisdom,
		"CHA": effects.AbilityCharisma,
	}
)

// decodeAction turns a record into an action definition, parsing every
// expression it carries
func decodeAction(rec *ActionRecord) (actions.Definition, error) {
	if rec.Name == "" {
		return nil, errors.Contentf("action without a name")
	}

	base, err := decodeBase(rec)
	if err != nil {
		return nil, err
	}

	switch rec.Class {
	case string(actions.ClassSpellHeal):
		heal, err := parse(rec.HealRoll, "heal_roll")
		if err != nil {
			return nil, err
		}
		return &actions.SpellHeal{Base: base, HealRoll: heal}, nil

	case string(actions.ClassSpellBuff), string(actions.ClassSpellDebuff):
		if rec.Effect == nil {
			return nil, errors.Contentf("%s %s requires an effect", rec.Class, rec.Name)
		}
		effect, err := decodeEffect(rec.Effect)
		if err != nil {
			return nil, err
		}
		if rec.Class == string(actions.ClassSpellBuff) {
			return &actions.SpellBuff{Base: base, Effect: effect}, nil
		}
		return &actions.SpellDebuff{Base: base, Effect: effect}, nil

	case string(actions.ClassSpellAttack), string(actions.ClassWeaponAttack):
		damage, err := decodeDamageList(rec.Damage, "damage")
		if err != nil {
			return nil, err
		}
		if len(damage) == 0 {
			return nil, errors.Contentf("%s %s has no damage", rec.Class, rec.Name)
		}

		var effect effects.Definition
		if rec.Effect != nil {
			if effect, err = decodeEffect(rec.Effect); err != nil {
				return nil, err
			}
		}

		if rec.Class == string(actions.ClassSpellAttack) {
			return &actions.SpellAttack{Base: base, Damage: damage, Effect: effect}, nil
		}

		weapon := &actions.WeaponAttack{Base: base, Damage: damage, Effect: effect}
		if rec.AttackBonus != "" {
			if weapon.AttackBonus, err = parse(rec.AttackBonus, "attack_bonus"); err != nil {
				return nil, err
			}
		}
		return weapon, nil
	}

	return nil, errors.Contentf("unknown action class %q", rec.Class).WithMeta("action", rec.Name)
}

func decodeBase(rec *ActionRecord) (actions.Base, error) {
	actionType, ok := actionTypes[strings.ToUpper(rec.Type)]
	if !ok {
		return actions.Base{}, errors.Contentf("unknown action type %q", rec.Type)
	}

	for _, cost := range rec.MindCost {
		if cost < 0 {
			return actions.Base{}, errors.Contentf("negative mind cost %d", cost)
		}
	}
	if rec.Cooldown < 0 {
		return actions.Base{}, errors.Contentf("negative cooldown %d", rec.Cooldown)
	}

	base := actions.Base{
		ID:                    rec.ID,
		Name:                  rec.Name,
		Description:           rec.Description,
		Type:                  actionType,
		Level:                 rec.Level,
		MindCost:              rec.MindCost,
		Cooldown:              rec.Cooldown,
		RequiresConcentration: rec.RequiresConcentration,
	}
	if base.ID == "" {
		base.ID = idFromName(rec.Name)
	}

	for _, r := range rec.TargetRestrictions {
		restriction, ok := restrictions[strings.ToUpper(r)]
		if !ok {
			return actions.Base{}, errors.Contentf("unknown target restriction %q", r)
		}
		base.TargetRestrictions = append(base.TargetRestrictions, restriction)
	}
	if len(base.TargetRestrictions) == 0 {
		return actions.Base{}, errors.Contentf("no target restrictions")
	}

	if rec.TargetExpr != "" {
		expr, err := parse(rec.TargetExpr, "target_expr")
		if err != nil {
			return actions.Base{}, err
		}
		base.TargetExpr = expr
	}
	return base, nil
}

func decodeEffect(rec *EffectRecord) (effects.Definition, error) {
	if rec.Name == "" {
		return nil, errors.Contentf("effect without a name")
	}
	if rec.duration() < 0 {
		return nil, errors.Contentf("effect %s has negative duration", rec.Name)
	}

	header := effects.Header{
		Name:        rec.Name,
		Description: rec.Description,
		Duration:    rec.duration(),
	}

	def, err := decodeEffectBody(rec, header)
	if err != nil {
		return nil, errors.Wrapf(err, "effect %s", rec.Name)
	}
	return def, nil
}

func decodeEffectBody(rec *EffectRecord, header effects.Header) (effects.Definition, error) {
	switch rec.Type {
	case "Buff", "Debuff":
		modifiers, err := decodeModifiers(rec.Modifiers)
		if err != nil {
			return nil, err
		}
		if rec.Type == "Buff" {
			return &effects.Buff{Header: header, Modifiers: modifiers}, nil
		}
		return &effects.Debuff{Header: header, Modifiers: modifiers}, nil

	case "DamageOverTime", "DoT":
		if rec.Damage == nil {
			return nil, errors.Contentf("damage over time without damage")
		}
		damage, err := decodeDamage(*rec.Damage, "damage")
		if err != nil {
			return nil, err
		}
		return &effects.DamageOverTime{Header: header, Damage: damage}, nil

	case "HealingOverTime", "HoT":
		source := rec.HealRoll
		if source == "" {
			source = rec.HealPerTurn
		}
		heal, err := parse(source, "heal_roll")
		if err != nil {
			return nil, err
		}
		return &effects.HealingOverTime{Header: header, HealRoll: heal}, nil

	case "Incapacitating", "IncapacitatingEffect":
		stat := effects.AbilityConstitution
		if rec.SaveStat != "" {
			ability, ok := abilities[strings.ToUpper(rec.SaveStat)]
			if !ok {
				return nil, errors.Contentf("unknown save stat %q", rec.SaveStat)
			}
			stat = ability
		}
		kind := rec.IncapacitationType
		if kind == "" {
			kind = "general"
		}
		saveEnds := rec.SaveDC > 0
		if rec.SaveEnds != nil {
			saveEnds = *rec.SaveEnds
		}
		return &effects.Incapacitating{
			Header:             header,
			IncapacitationType: kind,
			SaveEnds:           saveEnds,
			SaveDC:             rec.SaveDC,
			SaveStat:           stat,
		}, nil

	case "OnHitTrigger":
		bonus, err := decodeDamageList(rec.DamageBonus, "damage_bonus")
		if err != nil {
			return nil, err
		}
		trigger := &effects.OnHitTrigger{
			Header:            header,
			DamageBonus:       bonus,
			ConsumesOnTrigger: true,
		}
		if rec.ConsumesOnTrigger != nil {
			trigger.ConsumesOnTrigger = *rec.ConsumesOnTrigger
		}
		for i := range rec.TriggerEffects {
			nested, err := decodeEffect(&rec.TriggerEffects[i])
			if err != nil {
				return nil, err
			}
			trigger.TriggerEffects = append(trigger.TriggerEffects, nested)
		}
		return trigger, nil
	}

	return nil, errors.Contentf("unknown effect type %q", rec.Type)
}

func decodeModifiers(records []ModifierRecord) ([]effects.Modifier, error) {
	out := make([]effects.Modifier, 0, len(records))
	for _, rec := range records {
		bonus, ok := bonusTypes[strings.ToUpper(rec.BonusType)]
		if !ok {
			return nil, errors.Contentf("unknown bonus type %q", rec.BonusType)
		}

		mod := effects.Modifier{Bonus: bonus}
		switch rec.Value.Kind {
		case yaml.ScalarNode:
			value, err := parse(rec.Value.Value, "value")
			if err != nil {
				return nil, err
			}
			mod.Value = value
		case yaml.MappingNode:
			if bonus != effects.BonusDamage {
				return nil, errors.Contentf("%s modifier cannot carry a damage roll", bonus)
			}
			var damage DamageRecord
			if err := rec.Value.Decode(&damage); err != nil {
				return nil, errors.WrapWithCode(err, errors.CodeContent, "decoding damage modifier")
			}
			roll, err := decodeDamage(damage, "value")
			if err != nil {
				return nil, err
			}
			mod.Damage = &roll
		default:
			return nil, errors.Contentf("%s modifier has no value", bonus)
		}
		out = append(out, mod)
	}
	return out, nil
}

func decodeDamageList(records []DamageRecord, field string) ([]effects.DamageRoll, error) {
	out := make([]effects.DamageRoll, 0, len(records))
	for _, rec := range records {
		roll, err := decodeDamage(rec, field)
		if err != nil {
			return nil, err
		}
		out = append(out, roll)
	}
	return out, nil
}

func decodeDamage(rec DamageRecord, field string) (effects.DamageRoll, error) {
	expr, err := parse(rec.DamageRoll, field)
	if err != nil {
		return effects.DamageRoll{}, err
	}
	if rec.DamageType == "" {
		return effects.DamageRoll{}, errors.Contentf("%s without damage_type", field)
	}
	return effects.DamageRoll{Roll: expr, Type: effects.DamageType(strings.ToUpper(rec.DamageType))}, nil
}

func parse(source, field string) (*formula.Expression, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.Contentf("missing %s", field).WithMeta("field", field)
	}
	expr, err := formula.Parse(source)
	if err != nil {
		return nil, errors.Wrap(err, field).WithMeta("field", field)
	}
	return expr, nil
}

// idFromName derives a content ID such as cure_wounds from a display name
func idFromName(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "_")
}
