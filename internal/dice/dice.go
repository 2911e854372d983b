package dice

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCount is returned when a negative number of dice is requested
	ErrInvalidCount = errors.New("invalid dice count")

	// ErrInvalidSides is returned when a die has fewer than one side
	ErrInvalidSides = errors.New("invalid dice size")
)

// RollResult holds the outcome of a single Roll call. Rolls keeps every die
// in the order it was thrown.
type RollResult struct {
	Total    int   `json:"total"`
	Rolls    []int `json:"rolls"`
	Bonus    int   `json:"bonus"`
	Count    int   `json:"count"`
	Sides    int   `json:"sides"`
	RawTotal int   `json:"raw_total"`
	IsCrit   bool  `json:"is_crit,omitempty"`
	IsFumble bool  `json:"is_fumble,omitempty"`
}

func validate(count, sides int) error {
	if count < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	if sides < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidSides, sides)
	}
	return nil
}

func newResult(count, sides, bonus int, rolls []int) *RollResult {
	raw := 0
	for _, r := range rolls {
		raw += r
	}

	result := &RollResult{
		Total:    raw + bonus,
		Rolls:    rolls,
		Bonus:    bonus,
		Count:    count,
		Sides:    sides,
		RawTotal: raw,
	}

	// Check for crit/fumble on d20
	if count == 1 && sides == 20 {
		result.IsCrit = rolls[0] == 20
		result.IsFumble = rolls[0] == 1
	}

	return result
}

// String renders the roll as 2D6(3+4)+1
func (r *RollResult) String() string {
	parts := make([]string, len(r.Rolls))
	for i, roll := range r.Rolls {
		parts[i] = fmt.Sprintf("%d", roll)
	}

	out := fmt.Sprintf("%dD%d(%s)", r.Count, r.Sides, strings.Join(parts, "+"))
	switch {
	case r.Bonus > 0:
		out += fmt.Sprintf("+%d", r.Bonus)
	case r.Bonus < 0:
		out += fmt.Sprintf("%d", r.Bonus)
	}
	return out
}
