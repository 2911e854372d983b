package formula

import "strings"

// Common variable names bound by the engine
const (
	VarMind         = "MIND"
	VarSpellcasting = "SPELLCASTING"
	VarProficiency  = "PROFICIENCY"
	VarLevel        = "LEVEL"
)

// Bindings maps upper-cased variable names to values
type Bindings map[string]int

// Lookup finds a variable regardless of case
func (b Bindings) Lookup(name string) (int, bool) {
	v, ok := b[strings.ToUpper(name)]
	return v, ok
}

// Set stores a variable under its upper-cased name
func (b Bindings) Set(name string, value int) {
	b[strings.ToUpper(name)] = value
}

// With returns a copy of b with name bound to value
func (b Bindings) With(name string, value int) Bindings {
	out := b.Clone()
	out.Set(name, value)
	return out
}

// Clone copies the bindings
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Overlay returns a copy of b with every entry of top applied on top
func (b Bindings) Overlay(top Bindings) Bindings {
	out := b.Clone()
	for k, v := range top {
		out.Set(k, v)
	}
	return out
}
