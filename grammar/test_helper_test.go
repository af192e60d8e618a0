package grammar

import (
	"strings"
	"testing"

	"github.com/nihei9/lalrgen/spec"
)

func buildGrammar(t *testing.T, src string) *Grammar {
	t.Helper()

	ast, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	b := GrammarBuilder{
		AST: ast,
	}
	g, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func lookupSymbol(t *testing.T, g *Grammar, name string) *Symbol {
	t.Helper()

	sym, ok := g.LookupSymbol(name)
	if !ok {
		t.Fatalf("symbol was not found: %v", name)
	}
	return sym
}

// buildAutomaton runs the pipeline up to the follow sets.
func buildAutomaton(t *testing.T, g *Grammar) *Automaton {
	t.Helper()

	a := &Automaton{
		Rules:     g.Rules,
		NRule:     len(g.Rules),
		NTerminal: g.NTerminal,
		NSymbol:   g.NSymbol,
	}
	findRulePrecedences(g.Rules)
	findFirstSets(g)
	findStates(g, a)
	a.NState = len(a.States)
	findLinks(a)
	findFollowSets(a)
	return a
}

func findAction(st *State, lookahead string, typ ActionType) *Action {
	for _, act := range st.Actions {
		if act.Lookahead.Name == lookahead && act.Type == typ {
			return act
		}
	}
	return nil
}

// findConfig returns the config of a rule with a dot in a list, or nil.
func findConfig(configs []*Config, rule, dot int) *Config {
	for _, c := range configs {
		if c.Rule.Index == rule && c.Dot == dot {
			return c
		}
	}
	return nil
}

func firstSetOf(sym *Symbol) []int {
	var set []int
	for j, ok := sym.First.NextSet(0); ok; j, ok = sym.First.NextSet(j + 1) {
		set = append(set, int(j))
	}
	return set
}
