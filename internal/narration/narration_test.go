package narration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/tactics-engine/internal/actions"
	"github.com/KirkDiggler/tactics-engine/internal/effects"
	"github.com/KirkDiggler/tactics-engine/internal/encounter"
	"github.com/KirkDiggler/tactics-engine/internal/formula"
	"github.com/KirkDiggler/tactics-engine/internal/narration"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		name    string
		outcome *actions.Outcome
		want    []string
	}{
		{
			name: "heal",
			outcome: &actions.Outcome{
				Action: "Cure Wounds", Class: actions.ClassSpellHeal, Caster: "Cleric", MindSpent: 1,
				Targets: []*actions.TargetOutcome{{
					Target: "Fighter", Healed: 7,
					HealRoll: &formula.ResolvedRoll{Total: 7, Breakdown: "1D8(4) + 3*1"},
				}},
			},
			want: []string{"Cleric casts Cure Wounds on Fighter: heals 7 (1D8(4) + 3*1)"},
		},
		{
			name: "heal capped at max hp",
			outcome: &actions.Outcome{
				Action: "Cure Wounds", Class: actions.ClassSpellHeal, Caster: "Cleric", MindSpent: 1,
				HealRoll: &formula.ResolvedRoll{Total: 7, Breakdown: "1D8(4) + 3*1"},
				Targets:  []*actions.TargetOutcome{{Target: "Fighter", Healed: 2}},
			},
			want: []string{"Cleric casts Cure Wounds on Fighter: heals 2 (rolled 7 (1D8(4) + 3*1))"},
		},
		{
			name: "weapon hit with resisted damage",
			outcome: &actions.Outcome{
				Action: "Longsword", Class: actions.ClassWeaponAttack, Caster: "Paladin",
				Targets: []*actions.TargetOutcome{{
					Target: "Orc Warrior",
					Attack: &actions.AttackRoll{Natural: 15, Bonus: 5, Total: 20, AC: 13},
					Hit:    true,
					Damage: []*actions.DamageDealt{{
						Type: effects.DamageSlashing, Rolled: 7, Dealt: 3,
						Rolls: []*formula.ResolvedRoll{{Total: 7, Breakdown: "1D8(4) + 3"}},
					}},
				}},
			},
			want: []string{"Paladin swings Longsword on Orc Warrior: hits (15 + 5 = 20 vs AC 13), 3 slashing (rolled 7) [7 (1D8(4) + 3)]"},
		},
		{
			name: "critical miss with a modifier",
			outcome: &actions.Outcome{
				Action: "Longsword", Class: actions.ClassWeaponAttack, Caster: "Orc Warrior",
				Targets: []*actions.TargetOutcome{{
					Target: "Cleric",
					Attack: &actions.AttackRoll{Natural: 1, Bonus: 4, Modifier: -2, Total: 3, AC: 16, Fumble: true},
				}},
			},
			want: []string{"Orc Warrior swings Longsword on Cleric: critical miss (1 + 4 -2 = 3 vs AC 16)"},
		},
		{
			name: "saved against a debuff",
			outcome: &actions.Outcome{
				Action: "Sleep", Class: actions.ClassSpellDebuff, Caster: "Wizard", MindSpent: 2,
				Targets: []*actions.TargetOutcome{{
					Target: "Goblin Shaman",
					Save:   &effects.SaveResult{Ability: effects.AbilityWisdom, DC: 13, Roll: 13, Total: 15, Success: true},
				}},
			},
			want: []string{"Wizard casts Sleep on Goblin Shaman: resists (WIS save 15 vs DC 13)"},
		},
		{
			name: "concentration moves to a new buff",
			outcome: &actions.Outcome{
				Action: "Shield of Faith", Class: actions.ClassSpellBuff, Caster: "Cleric", MindSpent: 1,
				ConcentrationBroken: []actions.EffectRef{{Effect: "Bless"}},
				Targets: []*actions.TargetOutcome{{
					Target:  "Paladin",
					Effects: []*actions.AppliedEffect{{Effect: "Shield of Faith", Attached: true, Remaining: 10}},
				}},
			},
			want: []string{
				"Cleric stops concentrating on Bless",
				"Cleric casts Shield of Faith on Paladin: takes effect",
				"Paladin is affected by Shield of Faith (10 turns)",
			},
		},
		{
			name: "smite triggers on hit",
			outcome: &actions.Outcome{
				Action: "Longsword", Class: actions.ClassWeaponAttack, Caster: "Paladin",
				Targets: []*actions.TargetOutcome{{
					Target: "Orc Warrior",
					Attack: &actions.AttackRoll{Natural: 20, Bonus: 5, Total: 25, AC: 13, Crit: true},
					Hit:    true,
					Damage: []*actions.DamageDealt{{Type: effects.DamageSlashing, Rolled: 12, Dealt: 12}},
					Trigger: &actions.TriggerOutcome{
						Effect:   "Searing Smite",
						Consumed: true,
						Damage:   []*actions.DamageDealt{{Type: effects.DamageFire, Rolled: 6, Dealt: 6}},
						Effects:  []*actions.AppliedEffect{{Effect: "Burning", Attached: true, Remaining: 1}},
					},
				}},
			},
			want: []string{
				"Paladin swings Longsword on Orc Warrior: critical hit (20 + 5 = 25 vs AC 13), 12 slashing",
				"Searing Smite flares on Orc Warrior: 6 fire and is spent; Orc Warrior is affected by Burning (1 turn)",
			},
		},
		{
			name: "refused effect",
			outcome: &actions.Outcome{
				Action: "Hex", Class: actions.ClassSpellDebuff, Caster: "Goblin Shaman", MindSpent: 1,
				Targets: []*actions.TargetOutcome{{
					Target:  "Cleric",
					Effects: []*actions.AppliedEffect{{Effect: "Hexed", Refused: true}},
				}},
			},
			want: []string{
				"Goblin Shaman casts Hex on Cleric: takes effect",
				"Hexed has no effect on Cleric",
			},
		},
		{
			name: "no targets",
			outcome: &actions.Outcome{
				Action: "Fireball", Class: actions.ClassSpellAttack, Caster: "Wizard", MindSpent: 3,
			},
			want: []string{"Wizard casts Fireball: no valid targets"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, narration.Outcome(tt.outcome))
		})
	}
}

func TestTick(t *testing.T) {
	report := &effects.TickReport{
		HolderID: "orc",
		Holder:   "Orc Warrior",
		Phase:    effects.PhaseTurnStart,
		Events: []effects.TickEvent{
			{Kind: effects.EventDamage, Effect: "Burning", Amount: 4, DamageType: effects.DamageFire,
				Roll: &formula.ResolvedRoll{Total: 4, Breakdown: "1D6(4)"}},
			{Kind: effects.EventExpired, Effect: "Burning"},
			{Kind: effects.EventSave, Effect: "Asleep",
				Save: &effects.SaveResult{Ability: effects.AbilityWisdom, DC: 13, Roll: 8, Total: 8}},
			{Kind: effects.EventRemoved, Effect: "Asleep", Reason: "saved"},
			{Kind: effects.EventHeal, Effect: "Regenerating", Amount: 5,
				Roll: &formula.ResolvedRoll{Total: 5, Breakdown: "1D4(3) + 2"}},
			{Kind: effects.EventFailed, Effect: "Poisoned", Reason: "unbound variable MIND"},
		},
	}

	assert.Equal(t, []string{
		"Orc Warrior takes 4 fire damage from Burning: 4 (1D6(4))",
		"Burning on Orc Warrior wears off",
		"Orc Warrior fails (WIS save 8 vs DC 13) against Asleep",
		"Asleep is removed from Orc Warrior (saved)",
		"Orc Warrior regains 5 HP from Regenerating: 5 (1D4(3) + 2)",
		"Poisoned on Orc Warrior fizzles: unbound variable MIND",
	}, narration.Tick(report))

	assert.Nil(t, narration.Tick(nil))
}

func TestTurn(t *testing.T) {
	t.Run("incapacitated", func(t *testing.T) {
		report := &encounter.TurnReport{
			Round: 2, ActorID: "orc", Actor: "Orc Warrior",
			Skipped: true, SkipReason: encounter.SkipIncapacitated,
		}
		assert.Equal(t, []string{"Orc Warrior is incapacitated and loses the turn"}, narration.Turn(report))
	})

	t.Run("death removes effects", func(t *testing.T) {
		report := &encounter.TurnReport{
			Round: 3, ActorID: "paladin", Actor: "Paladin",
			Outcome: &actions.Outcome{
				Action: "Longsword", Class: actions.ClassWeaponAttack, Caster: "Paladin",
				Targets: []*actions.TargetOutcome{{
					Target: "Goblin Shaman",
					Attack: &actions.AttackRoll{Natural: 12, Bonus: 5, Total: 17, AC: 13},
					Hit:    true,
					Damage: []*actions.DamageDealt{{Type: effects.DamageSlashing, Rolled: 9, Dealt: 9}},
					Killed: true,
				}},
			},
			Deaths: []encounter.Death{{
				CombatantID: "goblin", Name: "Goblin Shaman",
				Removed: []actions.EffectRef{{Effect: "Hexed"}},
			}},
		}
		assert.Equal(t, []string{
			"Paladin swings Longsword on Goblin Shaman: hits (12 + 5 = 17 vs AC 13), 9 slashing",
			"Goblin Shaman was defeated!",
			"Hexed fades",
		}, narration.Turn(report))
	})

	t.Run("failed action", func(t *testing.T) {
		report := &encounter.TurnReport{
			Actor: "Cleric", Skipped: true, SkipReason: encounter.SkipFailed,
			ActionError: "not enough MIND",
		}
		assert.Equal(t, []string{"Cleric hesitates: not enough MIND"}, narration.Turn(report))
	})
}

func TestResult(t *testing.T) {
	assert.Equal(t, "Victory for the Party!", narration.Result(targeting.TeamParty, true))
	assert.Equal(t, "Victory for the Opponents!", narration.Result(targeting.TeamOpponents, true))
	assert.Equal(t, "Nobody is left standing", narration.Result("", true))
	assert.Equal(t, "The fight goes on", narration.Result("", false))
}

func TestLog(t *testing.T) {
	log := narration.NewLog(3)
	log.Add(1, "Cleric waits")
	log.Add(2, "Paladin swings", "Orc Warrior swings")
	log.Add(3, "Wizard casts Fireball")

	assert.Equal(t, []string{
		"Round 2: Paladin swings",
		"Round 2: Orc Warrior swings",
		"Round 3: Wizard casts Fireball",
	}, log.Entries())

	assert.Empty(t, narration.NewLog(0).Entries())
}
