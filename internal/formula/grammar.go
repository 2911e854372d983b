package formula

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// formulaLexer splits expressions like "([MIND]-2)D8 + 3". Variables keep
// their brackets; the evaluator strips them.
var formulaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Var", Pattern: `\[[A-Za-z_][A-Za-z0-9_]*\]`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Dice", Pattern: `[dD]`},
	{Name: "Punct", Pattern: `[-+*()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var formulaParser = participle.MustBuild[sumNode](
	participle.Lexer(formulaLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// sumNode is the grammar root: Term (("+"|"-") Term)*
type sumNode struct {
	Head *productNode `parser:"@@"`
	Tail []*sumOp     `parser:"@@*"`
}

type sumOp struct {
	Op   string       `parser:"@(\"+\" | \"-\")"`
	Term *productNode `parser:"@@"`
}

// productNode binds tighter than sumNode: Factor ("*" Factor)*
type productNode struct {
	Head *unaryNode   `parser:"@@"`
	Tail []*unaryNode `parser:"( \"*\" @@ )*"`
}

// unaryNode negates a whole dice term, so "-1D4" is minus one rolled d4
type unaryNode struct {
	Negated *unaryNode `parser:"  \"-\" @@"`
	Dice    *diceNode  `parser:"| @@"`
}

// diceNode is either a bare "dM", "N dM", or a plain operand. A computed
// count needs parentheses: "([MIND]-2)D8".
type diceNode struct {
	BareSides *valueNode `parser:"  Dice @@"`
	Count     *valueNode `parser:"| @@"`
	Sides     *valueNode `parser:"  ( Dice @@ )?"`
}

type valueNode struct {
	Int   *int     `parser:"  @Int"`
	Var   *string  `parser:"| @Var"`
	Group *sumNode `parser:"| \"(\" @@ \")\""`
}
