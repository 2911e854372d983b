// Package targeting expands an action's restriction categories and target
// count into a concrete list of combatants.
package targeting

//go:generate mockgen -destination=mock/mock_resolver.go -package=mocktargeting -source=targeting.go

import (
	"context"

	"github.com/KirkDiggler/tactics-engine/internal/formula"
)

// Restriction is a targeting category
type Restriction string

const (
	Self  Restriction = "SELF"
	Ally  Restriction = "ALLY"
	Enemy Restriction = "ENEMY"
)

// Team groups combatants that fight on the same side
type Team string

const (
	TeamParty     Team = "PARTY"
	TeamOpponents Team = "OPPONENTS"
)

// Candidate is the view of a combatant targeting needs
type Candidate interface {
	ID() string
	Name() string
	IsAlive() bool
	Team() Team
}

// Request describes one action use
type Request struct {
	Restrictions []Restriction

	// Count is the maximum number of targets; nil means one
	Count    *formula.Expression
	Bindings formula.Bindings

	Caster Candidate
	Pool   []Candidate
}

// Resolver picks targets. Implementations return between zero and the
// evaluated count of distinct candidates, all satisfying a restriction.
type Resolver interface {
	ResolveTargets(ctx context.Context, req *Request) ([]Candidate, error)
}

// Allows reports whether target satisfies any restriction for caster.
// Dead combatants are never valid targets.
func Allows(restrictions []Restriction, caster, target Candidate) bool {
	if !caster.IsAlive() || !target.IsAlive() {
		return false
	}

	for _, r := range restrictions {
		switch r {
		case Self:
			if caster.ID() == target.ID() {
				return true
			}
		case Ally:
			if caster.Team() == target.Team() {
				return true
			}
		case Enemy:
			if caster.Team() != target.Team() {
				return true
			}
		}
	}
	return false
}
