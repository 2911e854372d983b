package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/tactics-engine/internal/errors"
)

func TestBuilder(t *testing.T) {
	t.Run("creates basic buff", func(t *testing.T) {
		buff, err := NewBuilder("Shield of Faith").
			WithDescription("A shimmering field surrounds a creature").
			WithDuration(10).
			AddModifier(BonusAC, "2").
			BuildBuff()
		require.NoError(t, err)

		assert.Equal(t, "Shield of Faith", buff.Name)
		assert.Equal(t, 10, buff.Duration)
		require.Len(t, buff.Modifiers, 1)
		assert.Equal(t, BonusAC, buff.Modifiers[0].Bonus)
		assert.Equal(t, "2", buff.Modifiers[0].Value.String())
		assert.Equal(t, KindBuff, KindOf(buff))
	})

	t.Run("damage modifier", func(t *testing.T) {
		debuff, err := NewBuilder("Hex").
			WithDuration(10).
			AddDamageModifier("1D6", DamageNecrotic).
			BuildDebuff()
		require.NoError(t, err)

		require.Len(t, debuff.Modifiers, 1)
		assert.Nil(t, debuff.Modifiers[0].Value)
		assert.Equal(t, DamageNecrotic, debuff.Modifiers[0].Damage.Type)
	})

	t.Run("reports bad expressions", func(t *testing.T) {
		_, err := NewBuilder("Broken").AddModifier(BonusAttack, "1D4 +").BuildBuff()
		require.Error(t, err)
		assert.True(t, errors.IsContent(err))
	})

	t.Run("trigger", func(t *testing.T) {
		burning, err := NewBuilder("Burning").WithDuration(3).BuildDamageOverTime("[MIND]D6", DamageFire)
		require.NoError(t, err)

		smite, err := NewTriggerBuilder("Searing Smite").
			WithDuration(10).
			AddDamageBonus("[MIND]D6", DamageFire).
			AddTriggerEffect(burning).
			ConsumesOnTrigger().
			Build()
		require.NoError(t, err)

		assert.True(t, smite.ConsumesOnTrigger)
		assert.Len(t, smite.DamageBonus, 1)
		assert.Equal(t, KindDamageOverTime, KindOf(smite.TriggerEffects[0]))
	})

	t.Run("incapacitation defaults to constitution", func(t *testing.T) {
		sleep, err := NewBuilder("Sleep").WithDuration(2).BuildIncapacitating("SLEEP", 13, "")
		require.NoError(t, err)
		assert.True(t, sleep.SaveEnds)
		assert.Equal(t, AbilityConstitution, sleep.SaveStat)
	})
}
