package grammar

import (
	"fmt"
	"strings"
)

type Config struct {
	Rule  int  `json:"rule"`
	Dot   int  `json:"dot"`
	Basis bool `json:"basis"`
}

type Action struct {
	Symbol int    `json:"symbol"`
	Kind   string `json:"kind"`

	// State is the target of a shift and Rule is the rule of a reduce. The other one is -1.
	State int `json:"state"`
	Rule  int `json:"rule"`

	Conflict bool `json:"conflict"`
	Resolved bool `json:"resolved"`
}

type State struct {
	Number  int       `json:"number"`
	Configs []*Config `json:"configs"`
	Actions []*Action `json:"actions"`
	Default int       `json:"default"`
}

// Report describes the automaton a grammar compiles to. Kind of an action is one of `shift`,
// `reduce`, `accept`, `error`, `shift-shift-conflict`, `shift-reduce-conflict`,
// `reduce-reduce-conflict`, `shift-resolved`, and `reduce-resolved`.
type Report struct {
	Name          string    `json:"name"`
	Symbols       []*Symbol `json:"symbols"`
	Rules         []*Rule   `json:"rules"`
	States        []*State  `json:"states"`
	TerminalCount int       `json:"terminal_count"`
	SymbolCount   int       `json:"symbol_count"`
	ConflictCount int       `json:"conflict_count"`
	ErrorCount    int       `json:"error_count"`

	// BasisOnly is set when the states list only their basis configs.
	BasisOnly bool `json:"basis_only"`

	// ShowResolved is set when the actions dropped by precedence are to be shown.
	ShowResolved bool `json:"show_resolved"`
}

func (r *Report) symbolName(elem *RHSElem) string {
	names := make([]string, len(elem.Symbols))
	for i, sym := range elem.Symbols {
		names[i] = r.Symbols[sym].Name
	}
	return strings.Join(names, "|")
}

// ConfigString returns a config in the `lhs ::= a * b` form.
func (r *Report) ConfigString(c *Config) string {
	rule := r.Rules[c.Rule]
	var b strings.Builder
	fmt.Fprintf(&b, "%v ::=", r.Symbols[rule.LHS].Name)
	for i, elem := range rule.RHS {
		if i == c.Dot {
			b.WriteString(" *")
		}
		fmt.Fprintf(&b, " %v", r.symbolName(elem))
	}
	if c.Dot == len(rule.RHS) {
		b.WriteString(" *")
	}
	return b.String()
}

// ConfigLine returns a config as a line of a state listing. A completed config is prefixed
// with the index of its rule.
func (r *Report) ConfigLine(c *Config) string {
	if c.Dot == len(r.Rules[c.Rule].RHS) {
		return fmt.Sprintf("    %5s %v", fmt.Sprintf("(%d)", c.Rule), r.ConfigString(c))
	}
	return fmt.Sprintf("          %v", r.ConfigString(c))
}

// ActionLine returns an action as a line of a state listing. It returns an empty string for an
// action that is not shown.
func (r *Report) ActionLine(a *Action) string {
	const indent = 30
	name := r.Symbols[a.Symbol].Name
	switch a.Kind {
	case "shift":
		return fmt.Sprintf("%*s shift  %d", indent, name, a.State)
	case "reduce":
		return fmt.Sprintf("%*s reduce %d", indent, name, a.Rule)
	case "accept":
		return fmt.Sprintf("%*s accept", indent, name)
	case "error":
		return fmt.Sprintf("%*s error", indent, name)
	case "shift-reduce-conflict", "reduce-reduce-conflict":
		return fmt.Sprintf("%*s reduce %-3d ** Parsing conflict **", indent, name, a.Rule)
	case "shift-shift-conflict":
		return fmt.Sprintf("%*s shift  %-3d ** Parsing conflict **", indent, name, a.State)
	case "shift-resolved":
		if r.ShowResolved {
			return fmt.Sprintf("%*s shift  %-3d -- dropped by precedence", indent, name, a.State)
		}
	case "reduce-resolved":
		if r.ShowResolved {
			return fmt.Sprintf("%*s reduce %-3d -- dropped by precedence", indent, name, a.Rule)
		}
	}
	return ""
}

// ListedSymbols returns the terminals and the nonterminals. `{default}` and the token classes
// are left out.
func (r *Report) ListedSymbols() []*Symbol {
	return r.Symbols[:r.SymbolCount]
}

// SymbolLine returns a symbol as a line of the symbol listing. A nonterminal is followed by
// `<lambda>` when it is nullable and by its FIRST set.
func (r *Report) SymbolLine(sym *Symbol) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %3d: %v", sym.Index, sym.Name)
	if sym.Kind == SymbolKindNonTerminal {
		b.WriteString(":")
		if sym.Lambda {
			b.WriteString(" <lambda>")
		}
		for _, t := range sym.First {
			fmt.Fprintf(&b, " %v", r.Symbols[t].Name)
		}
	}
	return b.String()
}
