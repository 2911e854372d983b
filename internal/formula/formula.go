// Package formula parses and evaluates arithmetic dice expressions such as
// "[MIND]D8 + [SPELLCASTING] * [MIND]" against named integer bindings.
//
// Parsing and evaluation are separate steps: Parse produces an immutable
// Expression (cached per distinct source string) and Evaluate walks it with
// the caller's bindings and dice roller. Evaluation never mutates the
// Expression, so a single parsed value can be shared freely.
package formula

import (
	"sort"
	"strings"
	"sync"

	"github.com/KirkDiggler/tactics-engine/internal/dice"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
)

// Expression is a parsed formula
type Expression struct {
	source string
	root   *sumNode
	vars   []string
	dice   bool
}

var cache = struct {
	sync.RWMutex
	parsed map[string]*Expression
}{parsed: make(map[string]*Expression)}

// Parse parses source, returning a cached Expression when the same string was
// parsed before. Failures are ContentErrors.
func Parse(source string) (*Expression, error) {
	cache.RLock()
	expr, ok := cache.parsed[source]
	cache.RUnlock()
	if ok {
		return expr, nil
	}

	if strings.TrimSpace(source) == "" {
		return nil, errors.Contentf("empty expression")
	}

	root, err := formulaParser.ParseString("", source)
	if err != nil {
		return nil, errors.MalformedExpression(source, err)
	}

	expr = &Expression{source: source, root: root}
	seen := make(map[string]bool)
	inspect(root, func(v *valueNode) {
		if v.Var != nil {
			name := normalize(*v.Var)
			if !seen[name] {
				seen[name] = true
				expr.vars = append(expr.vars, name)
			}
		}
	}, func() { expr.dice = true })
	sort.Strings(expr.vars)

	cache.Lock()
	cache.parsed[source] = expr
	cache.Unlock()

	return expr, nil
}

// MustParse is Parse for expressions known at compile time
func MustParse(source string) *Expression {
	expr, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return expr
}

// String returns the source text
func (e *Expression) String() string {
	return e.source
}

// Variables lists the upper-cased variable names referenced by the expression
func (e *Expression) Variables() []string {
	out := make([]string, len(e.vars))
	copy(out, e.vars)
	return out
}

// HasDice reports whether evaluation can ever roll dice
func (e *Expression) HasDice() bool {
	return e.dice
}

// Evaluate parses source and evaluates it in one step
func Evaluate(source string, bindings Bindings, roller dice.Roller, opts ...Option) (*ResolvedRoll, error) {
	expr, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return expr.Evaluate(bindings, roller, opts...)
}

// normalize strips brackets and upper-cases a variable reference
func normalize(name string) string {
	return strings.ToUpper(strings.Trim(name, "[]"))
}

func inspect(n *sumNode, onValue func(*valueNode), onDice func()) {
	walkProduct := func(p *productNode) {
		for _, u := range append([]*unaryNode{p.Head}, p.Tail...) {
			inspectDice(u, onValue, onDice)
		}
	}

	walkProduct(n.Head)
	for _, op := range n.Tail {
		walkProduct(op.Term)
	}
}

func inspectDice(u *unaryNode, onValue func(*valueNode), onDice func()) {
	for u != nil && u.Negated != nil {
		u = u.Negated
	}
	if u == nil || u.Dice == nil {
		return
	}

	d := u.Dice
	if d.BareSides != nil || d.Sides != nil {
		onDice()
	}
	for _, v := range []*valueNode{d.BareSides, d.Count, d.Sides} {
		if v == nil {
			continue
		}
		onValue(v)
		if v.Group != nil {
			inspect(v.Group, onValue, onDice)
		}
	}
}
