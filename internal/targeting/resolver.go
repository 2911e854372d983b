package targeting

import (
	"context"
	"sort"

	"github.com/KirkDiggler/tactics-engine/internal/errors"
)

// Priority orders valid candidates; lower sorts first. Nil keeps pool order.
type Priority func(caster, candidate Candidate) int

// DefaultResolverConfig configures the default resolver
type DefaultResolverConfig struct {
	Priority Priority
}

type defaultResolver struct {
	priority Priority
}

// NewDefaultResolver returns a resolver that takes the first valid
// candidates in priority order
func NewDefaultResolver(cfg *DefaultResolverConfig) Resolver {
	r := &defaultResolver{}
	if cfg != nil {
		r.priority = cfg.Priority
	}
	return r
}

// ResolveTargets implements Resolver
func (r *defaultResolver) ResolveTargets(ctx context.Context, req *Request) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil || req.Caster == nil {
		return nil, errors.InvalidArgumentf("target request needs a caster")
	}

	count := 1
	if req.Count != nil {
		roll, err := req.Count.Evaluate(req.Bindings, nil)
		if err != nil {
			return nil, errors.Wrap(err, "target count")
		}
		count = roll.Total
	}
	if count <= 0 {
		return []Candidate{}, nil
	}

	seen := make(map[string]bool, len(req.Pool))
	valid := make([]Candidate, 0, len(req.Pool))
	for _, c := range req.Pool {
		if c == nil || seen[c.ID()] {
			continue
		}
		seen[c.ID()] = true
		if Allows(req.Restrictions, req.Caster, c) {
			valid = append(valid, c)
		}
	}

	if r.priority != nil {
		sort.SliceStable(valid, func(i, j int) bool {
			return r.priority(req.Caster, valid[i]) < r.priority(req.Caster, valid[j])
		})
	}

	if len(valid) > count {
		valid = valid[:count]
	}
	return valid, nil
}
