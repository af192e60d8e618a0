package grammar

import (
	"fmt"

	verr "github.com/nihei9/lalrgen/error"
	"github.com/nihei9/lalrgen/intern"
)

// NoOffset marks a state that has no row in the packed action table.
const NoOffset = -2147483647

type State struct {
	// Basis and Closure are sorted by rule index and then by dot. The basis configs are also
	// members of the closure.
	Basis   []*Config
	Closure []*Config

	Num     int
	Actions []*Action

	// NTknAct and NNtAct count the actions on terminals and on nonterminals that have an
	// encoding in the packed table.
	NTknAct int
	NNtAct  int

	TknOff int
	NtOff  int

	// Default is the encoded action taken when a lookahead has no entry in the packed table.
	Default int
}

func hashBasis(basis []*Config) uint32 {
	rules := make([]int, len(basis))
	dots := make([]int, len(basis))
	for i, c := range basis {
		rules[i] = c.Rule.Index
		dots[i] = c.Dot
	}
	return intern.HashRulePosList(rules, dots)
}

func equalBases(a, b []*Config) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Rule.Index != b[i].Rule.Index || a[i].Dot != b[i].Dot {
			return false
		}
	}
	return true
}

type stateBuilder struct {
	nterminal int
	tab       *intern.Table[[]*Config, *State]
	states    []*State
	automaton *Automaton
}

func newStateBuilder(g *Grammar, a *Automaton) *stateBuilder {
	return &stateBuilder{
		nterminal: g.NTerminal,
		tab:       intern.NewTable[[]*Config, *State](hashBasis, equalBases),
		automaton: a,
	}
}

// findStates builds the LR(0) automaton. The start state contains the rules of the start
// symbol with `$` as their follow set.
func findStates(g *Grammar, a *Automaton) {
	start := g.Rules[0].LHS
	if g.StartSymbolName != "" {
		sym, ok := g.LookupSymbol(g.StartSymbolName)
		switch {
		case !ok || (sym.Kind == SymbolKindNonTerminal && len(sym.Rules) == 0):
			a.addError(&verr.SpecError{
				Cause:  semErrStartSymbolUndefined,
				Detail: fmt.Sprintf("%v; %v is used instead", g.StartSymbolName, start.Name),
			})
		case sym.Kind != SymbolKindNonTerminal:
			a.addError(&verr.SpecError{
				Cause:  semErrStartSymbolNonTerm,
				Detail: fmt.Sprintf("%v; %v is used instead", g.StartSymbolName, start.Name),
			})
		default:
			start = sym
		}
	}
	a.StartSymbol = start

	for _, r := range g.Rules {
		for _, sym := range r.RHS {
			if sym == start {
				a.addError(&verr.SpecError{
					Cause:  semErrStartSymbolOnRHS,
					Detail: start.Name,
					Row:    r.Line,
				})
			}
		}
	}

	list := newConfigList(g.NTerminal)
	for _, r := range start.Rules {
		r.LHSStart = true
		c := list.addBasis(r, 0)
		c.Follow.Set(0)
	}

	b := newStateBuilder(g, a)
	b.run(list)
	a.States = b.states

	tracer().Infof("%v states are found", len(b.states))
}

type shiftFrame struct {
	state  *State
	cursor int
}

// run builds the start state from the basis and then every state reachable from it. States are
// numbered in depth-first order: a new successor is fully expanded before the next successor of
// the same state is looked at.
func (b *stateBuilder) run(list *configList) {
	st, isNew := b.getState(list)
	if !isNew {
		return
	}
	stack := []*shiftFrame{b.newFrame(st)}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		next, ok := b.shiftNext(top)
		if !ok {
			stack = stack[:len(stack)-1]
			continue
		}
		if next != nil {
			stack = append(stack, b.newFrame(next))
		}
	}
}

func (b *stateBuilder) newFrame(st *State) *shiftFrame {
	for _, c := range st.Closure {
		c.status = configIncomplete
	}
	return &shiftFrame{
		state: st,
	}
}

// shiftNext builds the successor of the state on the next symbol that has not been shifted
// yet and adds the shift actions to it. It returns the successor when the successor is new.
// The boolean result is false when every symbol has been shifted.
func (b *stateBuilder) shiftNext(f *shiftFrame) (*State, bool) {
	closure := f.state.Closure
	for ; f.cursor < len(closure); f.cursor++ {
		c := closure[f.cursor]
		if c.status == configComplete || c.isCompleted() {
			continue
		}

		sym := c.symbolAfterDot()
		list := newConfigList(b.nterminal)
		for _, bc := range closure[f.cursor:] {
			if bc.status == configComplete || bc.isCompleted() {
				continue
			}
			if !sameSymbol(bc.symbolAfterDot(), sym) {
				continue
			}
			bc.status = configComplete
			newc := list.addBasis(bc.Rule, bc.Dot+1)
			newc.bwd = append(newc.bwd, bc)
		}

		next, isNew := b.getState(list)
		if sym.Kind == SymbolKindMultiTerminal {
			for _, sub := range sym.SubSymbols {
				b.automaton.addAction(f.state, &Action{
					Lookahead: sub,
					Type:      ActionShift,
					State:     next,
				})
			}
		} else {
			b.automaton.addAction(f.state, &Action{
				Lookahead: sym,
				Type:      ActionShift,
				State:     next,
			})
		}

		f.cursor++
		if isNew {
			return next, true
		}
		return nil, true
	}
	return nil, false
}

// getState returns the state whose basis is the basis of the list. When such a state already
// exists, the backward links of the list's basis are merged into it and the list is discarded.
func (b *stateBuilder) getState(list *configList) (*State, bool) {
	list.sortBasis()
	if st, ok := b.tab.Lookup(list.basis); ok {
		for i, c := range list.basis {
			st.Basis[i].bwd = append(st.Basis[i].bwd, c.bwd...)
		}
		return st, false
	}

	list.closure()
	list.sort()
	st := &State{
		Basis:   list.basis,
		Closure: list.configs,
		Num:     len(b.states),
		TknOff:  NoOffset,
		NtOff:   NoOffset,
	}
	for _, c := range st.Closure {
		c.state = st
	}
	b.tab.Intern(st.Basis, st)
	b.states = append(b.states, st)

	tracer().Debugf("state %v: %v basis configs, %v configs", st.Num, len(st.Basis), len(st.Closure))

	return st, true
}

// findLinks turns the backward links made while building states into forward links.
func findLinks(a *Automaton) {
	for _, st := range a.States {
		for _, c := range st.Closure {
			for _, other := range c.bwd {
				other.fwd = append(other.fwd, c)
			}
		}
	}
}
