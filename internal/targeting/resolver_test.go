package targeting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/tactics-engine/internal/formula"
	"github.com/KirkDiggler/tactics-engine/internal/targeting"
	mocktargeting "github.com/KirkDiggler/tactics-engine/internal/targeting/mock"
)

type stub struct {
	id    string
	team  targeting.Team
	alive bool
	hp    int
}

func (s *stub) ID() string           { return s.id }
func (s *stub) Name() string         { return s.id }
func (s *stub) IsAlive() bool        { return s.alive }
func (s *stub) Team() targeting.Team { return s.team }

func ids(cs []targeting.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID()
	}
	return out
}

func TestDefaultResolver(t *testing.T) {
	cleric := &stub{id: "cleric", team: targeting.TeamParty, alive: true, hp: 20}
	fighter := &stub{id: "fighter", team: targeting.TeamParty, alive: true, hp: 5}
	fallen := &stub{id: "rogue", team: targeting.TeamParty, alive: false}
	goblin := &stub{id: "goblin", team: targeting.TeamOpponents, alive: true, hp: 7}
	orc := &stub{id: "orc", team: targeting.TeamOpponents, alive: true, hp: 15}
	pool := []targeting.Candidate{cleric, fighter, fallen, goblin, orc, goblin}

	tests := []struct {
		name         string
		restrictions []targeting.Restriction
		count        string
		bindings     formula.Bindings
		want         []string
	}{
		{
			name:         "self only",
			restrictions: []targeting.Restriction{targeting.Self},
			want:         []string{"cleric"},
		},
		{
			name:         "allies include the caster and skip the dead",
			restrictions: []targeting.Restriction{targeting.Ally},
			count:        "[MIND] + 2",
			bindings:     formula.Bindings{"MIND": 3},
			want:         []string{"cleric", "fighter"},
		},
		{
			name:         "enemies without duplicates",
			restrictions: []targeting.Restriction{targeting.Enemy},
			count:        "5",
			want:         []string{"goblin", "orc"},
		},
		{
			name:         "default count is one",
			restrictions: []targeting.Restriction{targeting.Enemy},
			want:         []string{"goblin"},
		},
		{
			name:         "zero count",
			restrictions: []targeting.Restriction{targeting.Enemy},
			count:        "[MIND] - 1",
			bindings:     formula.Bindings{"MIND": 1},
			want:         []string{},
		},
		{
			name:         "restrictions are or'd",
			restrictions: []targeting.Restriction{targeting.Self, targeting.Enemy},
			count:        "3",
			want:         []string{"cleric", "goblin", "orc"},
		},
	}

	resolver := targeting.NewDefaultResolver(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &targeting.Request{
				Restrictions: tt.restrictions,
				Bindings:     tt.bindings,
				Caster:       cleric,
				Pool:         pool,
			}
			if tt.count != "" {
				req.Count = formula.MustParse(tt.count)
			}

			got, err := resolver.ResolveTargets(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestDefaultResolver_Priority(t *testing.T) {
	cleric := &stub{id: "cleric", team: targeting.TeamParty, alive: true, hp: 20}
	fighter := &stub{id: "fighter", team: targeting.TeamParty, alive: true, hp: 5}

	resolver := targeting.NewDefaultResolver(&targeting.DefaultResolverConfig{
		Priority: func(_, c targeting.Candidate) int { return c.(*stub).hp },
	})

	got, err := resolver.ResolveTargets(context.Background(), &targeting.Request{
		Restrictions: []targeting.Restriction{targeting.Ally},
		Caster:       cleric,
		Pool:         []targeting.Candidate{cleric, fighter},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fighter"}, ids(got))
}

func TestDefaultResolver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := targeting.NewDefaultResolver(nil).ResolveTargets(ctx, &targeting.Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAllows_WithMockCandidates(t *testing.T) {
	ctrl := gomock.NewController(t)

	caster := mocktargeting.NewMockCandidate(ctrl)
	caster.EXPECT().IsAlive().Return(true).AnyTimes()
	caster.EXPECT().Team().Return(targeting.TeamOpponents).AnyTimes()
	caster.EXPECT().ID().Return("kobold").AnyTimes()

	target := mocktargeting.NewMockCandidate(ctrl)
	target.EXPECT().IsAlive().Return(true).AnyTimes()
	target.EXPECT().Team().Return(targeting.TeamParty).AnyTimes()
	target.EXPECT().ID().Return("fighter").AnyTimes()

	assert.True(t, targeting.Allows([]targeting.Restriction{targeting.Enemy}, caster, target))
	assert.False(t, targeting.Allows([]targeting.Restriction{targeting.Ally, targeting.Self}, caster, target))
}
