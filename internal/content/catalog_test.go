package content_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
	"github.com/KirkDiggler/tactics-engine/internal/content"
	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
)

func TestDefault(t *testing.T) {
	catalog, err := content.Default()
	require.NoError(t, err)

	for _, id := range []string{
		"cure_wounds", "mass_cure_wounds", "fireball", "bless", "shield_of_faith",
		"searing_smite", "poison_spit", "sleep", "regenerate", "hex", "longsword",
	} {
		_, err := catalog.Action(id)
		assert.NoError(t, err, id)
	}

	for _, id := range catalog.CombatantIDs() {
		stats, err := catalog.Combatant(id)
		require.NoError(t, err)
		_, err = catalog.ActionsFor(stats)
		assert.NoError(t, err, "actions of %s", id)
	}
}

func TestDefault_SearingSmite(t *testing.T) {
	catalog, err := content.Default()
	require.NoError(t, err)

	def, err := catalog.Action("searing_smite")
	require.NoError(t, err)
	spell, ok := def.(*actions.SpellBuff)
	require.True(t, ok)

	assert.Equal(t, actions.ActionBonus, spell.Type)
	assert.True(t, spell.RequiresConcentration)
	assert.Equal(t, []targeting.Restriction{targeting.Self}, spell.TargetRestrictions)

	trigger, ok := spell.Effect.(*effects.OnHitTrigger)
	require.True(t, ok)
	assert.True(t, trigger.ConsumesOnTrigger)
	require.Len(t, trigger.DamageBonus, 1)
	assert.Equal(t, effects.DamageFire, trigger.DamageBonus[0].Type)

	require.Len(t, trigger.TriggerEffects, 1)
	burning, ok := trigger.TriggerEffects[0].(*effects.DamageOverTime)
	require.True(t, ok)
	assert.Equal(t, "Burning", burning.Name)
	assert.Equal(t, 3, burning.Duration)
}

func TestDefault_CureWoundsFormula(t *testing.T) {
	catalog, err := content.Default()
	require.NoError(t, err)

	def, err := catalog.Action("cure_wounds")
	require.NoError(t, err)
	heal := def.(*actions.SpellHeal)

	bindings := formula.Bindings{formula.VarMind: 2, formula.VarSpellcasting: 3}
	roll, err := heal.HealRoll.Evaluate(bindings, nil, formula.WithMode(formula.ModeMaximum))
	require.NoError(t, err)
	assert.Equal(t, 22, roll.Total)
}

func TestParse_JSON(t *testing.T) {
	data := []byte(`{
    "actions": [{
      "class": "SpellDebuff",
      "name": "Hold Person",
      "mind_cost": [2],
      "target_restrictions": ["ENEMY"],
      "effect": {
        "type": "IncapacitatingEffect",
        "name": "Paralyzed",
        "max_duration": 2,
        "save_dc": 14,
        "save_stat": "wis"
      }
    }],
    "combatants": {
      "bandit": {"hp": 11, "ac": 12, "team": "enemies", "actions": ["hold_person"]}
    }
  }`)

	catalog, err := content.Parse(data)
	require.NoError(t, err)

	def, err := catalog.Action("hold_person")
	require.NoError(t, err)
	debuff := def.(*actions.SpellDebuff)
	assert.Equal(t, actions.ActionStandard, debuff.Type)

	paralyzed, ok := debuff.Effect.(*effects.Incapacitating)
	require.True(t, ok)
	assert.Equal(t, 2, paralyzed.Duration)
	assert.True(t, paralyzed.SaveEnds)
	assert.Equal(t, effects.AbilityWisdom, paralyzed.SaveStat)
	assert.Equal(t, "general", paralyzed.IncapacitationType)

	bandit, err := catalog.Combatant("bandit")
	require.NoError(t, err)
	assert.Equal(t, "bandit", bandit.Name)
	assert.Equal(t, targeting.TeamOpponents, bandit.Team)
}

func TestParse_DamageModifier(t *testing.T) {
	data := []byte(`
actions:
  - class: SpellBuff
    name: Divine Favor
    mind_cost: [1]
    target_restrictions: [SELF]
    effect:
      type: Buff
      name: Divine Favor
      duration: 10
      modifiers:
        - bonus_type: DAMAGE
          value: {damage_roll: 1D4, damage_type: radiant}
`)
	catalog, err := content.Parse(data)
	require.NoError(t, err)

	def, err := catalog.Action("divine_favor")
	require.NoError(t, err)
	buff := def.(*actions.SpellBuff).Effect.(*effects.Buff)
	require.Len(t, buff.Modifiers, 1)
	require.NotNil(t, buff.Modifiers[0].Damage)
	assert.Nil(t, buff.Modifiers[0].Value)
	assert.Equal(t, effects.DamageRadiant, buff.Modifiers[0].Damage.Type)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "malformed expression",
			data: `
actions:
  - {class: SpellHeal, name: Broken, mind_cost: [1], target_restrictions: [ALLY], heal_roll: "2D8 +"}
`,
		},
		{
			name: "unknown class",
			data: `
actions:
  - {class: SpellTeleport, name: Blink, target_restrictions: [SELF]}
`,
		},
		{
			name: "unknown effect type",
			data: `
actions:
  - class: SpellBuff
    name: Haste
    target_restrictions: [ALLY]
    effect: {type: Speed, name: Hasted, duration: 3}
`,
		},
		{
			name: "buff without effect",
			data: `
actions:
  - {class: SpellBuff, name: Nothing, target_restrictions: [ALLY]}
`,
		},
		{
			name: "attack without damage",
			data: `
actions:
  - {class: WeaponAttack, name: Slap, target_restrictions: [ENEMY]}
`,
		},
		{
			name: "unknown restriction",
			data: `
actions:
  - {class: WeaponAttack, name: Stab, target_restrictions: [NEUTRAL], damage: [{damage_roll: 1D4, damage_type: PIERCING}]}
`,
		},
		{
			name: "damage roll on an AC modifier",
			data: `
actions:
  - class: SpellBuff
    name: Odd
    target_restrictions: [SELF]
    effect:
      type: Buff
      name: Odd
      modifiers:
        - {bonus_type: AC, value: {damage_roll: 1D4, damage_type: FIRE}}
`,
		},
		{
			name: "duplicate id",
			data: `
actions:
  - {class: WeaponAttack, name: Club, target_restrictions: [ENEMY], damage: [{damage_roll: 1D4, damage_type: BLUDGEONING}]}
  - {class: WeaponAttack, name: Club, target_restrictions: [ENEMY], damage: [{damage_roll: 1D6, damage_type: BLUDGEONING}]}
`,
		},
		{
			name: "not yaml",
			data: "actions: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := content.Parse([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.IsContent(err), "expected content error, got %v", err)
		})
	}
}

func TestLoadDir_LaterFilesOverride(t *testing.T) {
	dir := t.TempDir()
	write := func(name, data string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o600))
	}
	write("01-base.yaml", `
actions:
  - {class: WeaponAttack, name: Dagger, target_restrictions: [ENEMY], damage: [{damage_roll: 1D4, damage_type: PIERCING}]}
`)
	write("02-override.json", `{"actions": [{"class": "WeaponAttack", "name": "Dagger", "cooldown": 1,
    "target_restrictions": ["ENEMY"], "damage": [{"damage_roll": "1D6", "damage_type": "PIERCING"}]}]}`)
	write("notes.txt", "ignored")

	catalog, err := content.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, catalog.Actions(), 1)

	def, err := catalog.Action("dagger")
	require.NoError(t, err)
	assert.Equal(t, 1, actions.BaseOf(def).Cooldown)
}

func TestCatalog_NotFound(t *testing.T) {
	catalog := content.NewCatalog()

	_, err := catalog.Action("wish")
	assert.True(t, errors.IsNotFound(err))

	_, err = catalog.Combatant("tarrasque")
	assert.True(t, errors.IsNotFound(err))
}
