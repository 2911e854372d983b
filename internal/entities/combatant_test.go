package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/entities"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
)

func newOgre() *entities.Combatant {
	return entities.NewCombatant("ogre-1", entities.Stats{
		Name:            "Ogre",
		Team:            targeting.TeamOpponents,
		HP:              40,
		AC:              11,
		Abilities:       map[effects.Ability]int{effects.AbilityConstitution: 3},
		Resistances:     []effects.DamageType{effects.DamageCold},
		Vulnerabilities: []effects.DamageType{effects.DamageFire},
	})
}

func TestCombatant_TakeDamage(t *testing.T) {
	tests := []struct {
		name       string
		amount     int
		damageType effects.DamageType
		want       int
	}{
		{name: "plain", amount: 7, damageType: effects.DamageSlashing, want: 7},
		{name: "resistance halves rounding down", amount: 7, damageType: effects.DamageCold, want: 3},
		{name: "vulnerability doubles", amount: 7, damageType: effects.DamageFire, want: 14},
		{name: "untyped ignores resistances", amount: 7, want: 7},
		{name: "negative is ignored", amount: -4, damageType: effects.DamageFire, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ogre := newOgre()
			dealt := ogre.TakeDamage(tt.amount, tt.damageType)
			assert.Equal(t, tt.want, dealt)
			assert.Equal(t, 40-tt.want, ogre.CurrentHP())
		})
	}
}

func TestCombatant_DeathAndHealing(t *testing.T) {
	ogre := newOgre()

	ogre.TakeDamage(100, effects.DamageBludgeoning)
	assert.False(t, ogre.IsAlive())
	assert.Equal(t, 0, ogre.CurrentHP())

	assert.Equal(t, 0, ogre.Heal(10), "the dead are not healed")
}

func TestCombatant_Variables(t *testing.T) {
	cleric := entities.NewCombatant("cleric-1", entities.Stats{
		Name:         "Cleric",
		Team:         targeting.TeamParty,
		Level:        3,
		HP:           24,
		Mind:         6,
		Spellcasting: 3,
		Proficiency:  2,
		Abilities:    map[effects.Ability]int{effects.AbilityWisdom: 3},
	})

	vars := cleric.Variables()
	assert.Equal(t, 6, vars["MIND"])
	assert.Equal(t, 3, vars["SPELLCASTING"])
	assert.Equal(t, 3, vars["WIS"])
	assert.Equal(t, 5, cleric.SpellAttackBonus())

	cleric.SpendMind(4)
	assert.Equal(t, 2, cleric.AvailableMind())
	assert.Equal(t, 2, cleric.Variables()["MIND"])
	assert.Equal(t, 3, cleric.SaveModifier(effects.AbilityWisdom))
	assert.Equal(t, 0, cleric.SaveModifier(effects.AbilityStrength))
}
