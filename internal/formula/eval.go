package formula

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/tactics-engine/internal/dice"
	"github.com/KirkDiggler/tactics-engine/internal/errors"
)

// Mode selects how dice terms are resolved
type Mode int

const (
	// ModeRoll throws every die through the roller
	ModeRoll Mode = iota
	// ModeMinimum counts every die as 1
	ModeMinimum
	// ModeMaximum counts every die as its number of sides
	ModeMaximum
)

// MaxDice caps the dice a single term may throw, crit doubling included
const MaxDice = 1000

// Die is one thrown die
type Die struct {
	Sides  int `json:"sides"`
	Result int `json:"result"`
}

// ResolvedRoll is the result of evaluating an expression. Dice lists every
// die in evaluation order; it is empty when the expression rolled nothing.
type ResolvedRoll struct {
	Total     int    `json:"total"`
	Dice      []Die  `json:"dice"`
	Formula   string `json:"formula"`
	Breakdown string `json:"breakdown"`
}

// Describe renders the roll for narration, e.g. "7 (1D8(4) + 3*1)"
func (r *ResolvedRoll) Describe() string {
	if r == nil {
		return ""
	}
	if r.Breakdown == "" || r.Breakdown == fmt.Sprint(r.Total) {
		return fmt.Sprint(r.Total)
	}
	return fmt.Sprintf("%d (%s)", r.Total, r.Breakdown)
}

// Option tunes a single evaluation
type Option func(*evaluator)

// WithMode sets the dice mode
func WithMode(mode Mode) Option {
	return func(e *evaluator) {
		e.mode = mode
	}
}

// WithDiceMultiplier multiplies the number of dice in every dice term.
// Critical hits evaluate damage with a multiplier of 2.
func WithDiceMultiplier(n int) Option {
	return func(e *evaluator) {
		e.multiplier = n
	}
}

type evaluator struct {
	bindings   Bindings
	roller     dice.Roller
	mode       Mode
	multiplier int
	dice       []Die
}

// Evaluate resolves the expression. The roller is only consulted in ModeRoll
// and may be nil otherwise.
func (e *Expression) Evaluate(bindings Bindings, roller dice.Roller, opts ...Option) (*ResolvedRoll, error) {
	ev := &evaluator{
		bindings:   bindings,
		roller:     roller,
		multiplier: 1,
		dice:       []Die{},
	}
	for _, opt := range opts {
		opt(ev)
	}

	if ev.mode == ModeRoll && ev.roller == nil && e.dice {
		return nil, errors.InvalidArgumentf("no dice roller for %q", e.source)
	}

	total, text, err := ev.sum(e.root)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating %q", e.source)
	}

	return &ResolvedRoll{
		Total:     total,
		Dice:      ev.dice,
		Formula:   e.source,
		Breakdown: text,
	}, nil
}

func (ev *evaluator) sum(n *sumNode) (int, string, error) {
	total, text, err := ev.product(n.Head)
	if err != nil {
		return 0, "", err
	}

	var sb strings.Builder
	sb.WriteString(text)
	for _, op := range n.Tail {
		v, t, err := ev.product(op.Term)
		if err != nil {
			return 0, "", err
		}
		if op.Op == "-" {
			total -= v
		} else {
			total += v
		}
		fmt.Fprintf(&sb, " %s %s", op.Op, t)
	}

	return total, sb.String(), nil
}

func (ev *evaluator) product(n *productNode) (int, string, error) {
	total, text, err := ev.unary(n.Head)
	if err != nil {
		return 0, "", err
	}

	parts := []string{text}
	for _, d := range n.Tail {
		v, t, err := ev.unary(d)
		if err != nil {
			return 0, "", err
		}
		total *= v
		parts = append(parts, t)
	}

	return total, strings.Join(parts, "*"), nil
}

func (ev *evaluator) diceTerm(n *diceNode) (int, string, error) {
	switch {
	case n.BareSides != nil:
		sides, _, err := ev.value(n.BareSides)
		if err != nil {
			return 0, "", err
		}
		return ev.roll(1, sides)
	case n.Sides != nil:
		count, _, err := ev.value(n.Count)
		if err != nil {
			return 0, "", err
		}
		sides, _, err := ev.value(n.Sides)
		if err != nil {
			return 0, "", err
		}
		return ev.roll(count, sides)
	default:
		return ev.value(n.Count)
	}
}

// roll resolves count dice of the given sides. Non-positive counts contribute
// zero and leave no dice behind.
func (ev *evaluator) roll(count, sides int) (int, string, error) {
	if sides < 1 {
		return 0, "", errors.Contentf("die with %d sides", sides).WithMeta("sides", sides)
	}
	if count <= 0 {
		return 0, fmt.Sprintf("0D%d", sides), nil
	}
	count *= ev.multiplier
	if count > MaxDice {
		return 0, "", errors.Contentf("%dD%d rolls more than %d dice", count, sides, MaxDice).
			WithMeta("count", count)
	}

	results := make([]int, count)
	switch ev.mode {
	case ModeMinimum:
		for i := range results {
			results[i] = 1
		}
	case ModeMaximum:
		for i := range results {
			results[i] = sides
		}
	default:
		rolled, err := ev.roller.Roll(count, sides, 0)
		if err != nil {
			return 0, "", errors.Wrapf(err, "rolling %dD%d", count, sides)
		}
		copy(results, rolled.Rolls)
	}

	total := 0
	parts := make([]string, count)
	for i, r := range results {
		total += r
		parts[i] = fmt.Sprint(r)
		ev.dice = append(ev.dice, Die{Sides: sides, Result: r})
	}

	return total, fmt.Sprintf("%dD%d(%s)", count, sides, strings.Join(parts, "+")), nil
}

func (ev *evaluator) unary(n *unaryNode) (int, string, error) {
	if n.Negated != nil {
		v, t, err := ev.unary(n.Negated)
		if err != nil {
			return 0, "", err
		}
		return -v, "-" + t, nil
	}
	return ev.diceTerm(n.Dice)
}

func (ev *evaluator) value(n *valueNode) (int, string, error) {
	switch {
	case n.Int != nil:
		return *n.Int, fmt.Sprint(*n.Int), nil
	case n.Var != nil:
		name := normalize(*n.Var)
		v, ok := ev.bindings.Lookup(name)
		if !ok {
			return 0, "", errors.UnboundVariable(name)
		}
		return v, fmt.Sprint(v), nil
	case n.Group != nil:
		v, t, err := ev.sum(n.Group)
		if err != nil {
			return 0, "", err
		}
		return v, "(" + t + ")", nil
	}
	return 0, "", errors.Internalf("empty operand")
}
