package grammar

import (
	"strings"
)

type Rule struct {
	LHS      *Symbol
	LHSAlias string

	RHS      []*Symbol
	RHSAlias []string

	// PrecSym decides the precedence of the rule. It is either given by a `[X]` mark or found by
	// findRulePrecedences.
	PrecSym *Symbol

	// precMarked is set when PrecSym comes from a `[X]` mark.
	precMarked bool

	Index int

	// CanReduce is set when at least one reduce action of the rule survives conflict resolution.
	CanReduce bool

	// LHSStart is set on the rules of the start symbol.
	LHSStart bool

	Line     int
	Code     string
	CodeLine int
}

func (r *Rule) isEmpty() bool {
	return len(r.RHS) == 0
}

// String returns the rule in the `lhs ::= a b c.` form.
func (r *Rule) String() string {
	var b strings.Builder
	b.WriteString(r.LHS.Name)
	b.WriteString(" ::=")
	for _, sym := range r.RHS {
		b.WriteString(" ")
		b.WriteString(sym.String())
	}
	b.WriteString(".")
	return b.String()
}

// dottedString returns the rule with a `*` at the dot position.
func (r *Rule) dottedString(dot int) string {
	var b strings.Builder
	b.WriteString(r.LHS.Name)
	b.WriteString(" ::=")
	for i, sym := range r.RHS {
		if i == dot {
			b.WriteString(" *")
		}
		b.WriteString(" ")
		b.WriteString(sym.String())
	}
	if dot == len(r.RHS) {
		b.WriteString(" *")
	}
	return b.String()
}

// findRulePrecedences gives each rule without an explicit precedence mark the first symbol on
// its right-hand side that has a precedence.
func findRulePrecedences(rules []*Rule) {
	for _, r := range rules {
		if r.PrecSym != nil {
			continue
		}
	L:
		for _, sym := range r.RHS {
			if sym.Kind == SymbolKindMultiTerminal {
				for _, sub := range sym.SubSymbols {
					if sub.Prec >= 0 {
						r.PrecSym = sub
						break L
					}
				}
				continue
			}
			if sym.Prec >= 0 {
				r.PrecSym = sym
				break
			}
		}
	}
}
