package grammar

import (
	"fmt"

	"github.com/nihei9/lalrgen/compressor"
	spec "github.com/nihei9/lalrgen/spec/grammar"
	"golang.org/x/exp/slices"
)

// compressTables makes the most frequent reduce of each state its default action. The first
// action of that reduce moves to the `{default}` symbol and the others are dropped. A state
// that shifts the wildcard keeps its table as it is because the wildcard must not be shadowed.
func compressTables(g *Grammar, a *Automaton) {
	compressed := 0
	for _, st := range a.States {
		nbest := 0
		var rbest *Rule
		usesWildcard := false
		for i, act := range st.Actions {
			if act.Type == ActionShift && g.Wildcard != nil && act.Lookahead == g.Wildcard {
				usesWildcard = true
			}
			if act.Type != ActionReduce {
				continue
			}
			r := act.Rule
			if r.LHSStart || r == rbest {
				continue
			}
			n := 1
			for _, act2 := range st.Actions[i+1:] {
				if act2.Type != ActionReduce || act2.Rule == rbest {
					continue
				}
				if act2.Rule == r {
					n++
				}
			}
			if n > nbest {
				nbest = n
				rbest = r
			}
		}
		if nbest < 1 || usesWildcard {
			continue
		}

		first := true
		for _, act := range st.Actions {
			if act.Type != ActionReduce || act.Rule != rbest {
				continue
			}
			if first {
				act.Lookahead = g.DefaultSymbol
				first = false
				continue
			}
			act.Type = ActionNotUsed
		}
		sortActions(st.Actions)
		compressed++
	}

	tracer().Debugf("%v states have a default reduce", compressed)
}

// computeAction returns the encoding of an action in the packed table, or -1 when the action
// has none.
func computeAction(act *Action, nstate, nrule int) int {
	switch act.Type {
	case ActionShift:
		return act.State.Num
	case ActionReduce:
		return nstate + act.Rule.Index
	case ActionError:
		return nstate + nrule
	case ActionAccept:
		return nstate + nrule + 1
	}
	return -1
}

// resortStates counts the encodable actions of each state and finds its default action. When
// resort is set, it also moves the states with many actions toward the front so that the packed
// table gets smaller, and renumbers them. State 0 stays first.
func resortStates(g *Grammar, a *Automaton, resort bool) {
	nstate := len(a.States)
	nrule := len(g.Rules)
	for _, st := range a.States {
		st.NTknAct = 0
		st.NNtAct = 0
		st.Default = nstate + nrule
		st.TknOff = NoOffset
		st.NtOff = NoOffset
		for _, act := range st.Actions {
			code := computeAction(act, nstate, nrule)
			if code < 0 {
				continue
			}
			switch {
			case act.Lookahead.Index < g.NTerminal:
				st.NTknAct++
			case act.Lookahead.Index < g.NSymbol:
				st.NNtAct++
			default:
				st.Default = code
			}
		}
	}
	if !resort {
		return
	}

	slices.SortStableFunc(a.States[1:], func(s1, s2 *State) int {
		if c := s2.NNtAct - s1.NNtAct; c != 0 {
			return c
		}
		if c := s2.NTknAct - s1.NTknAct; c != 0 {
			return c
		}
		return s2.Num - s1.Num
	})
	for i, st := range a.States {
		st.Num = i
	}

	tracer().Debugf("states are renumbered")
}

type actionSet struct {
	state   *State
	isTkn   bool
	nAction int
	order   int
}

// genParsingTable packs the action lists of all states into one action array. Each state
// contributes a row of terminal actions and a row of nonterminal actions, and the largest rows
// are placed first.
func genParsingTable(g *Grammar, a *Automaton) (*spec.ParsingTable, error) {
	nstate := len(a.States)
	nrule := len(g.Rules)

	sets := make([]*actionSet, 0, nstate*2)
	for i, st := range a.States {
		sets = append(sets, &actionSet{
			state:   st,
			isTkn:   true,
			nAction: st.NTknAct,
			order:   i * 2,
		}, &actionSet{
			state:   st,
			isTkn:   false,
			nAction: st.NNtAct,
			order:   i*2 + 1,
		})
	}
	slices.SortStableFunc(sets, func(s1, s2 *actionSet) int {
		if c := s2.nAction - s1.nAction; c != 0 {
			return c
		}
		return s2.order - s1.order
	})

	tab := compressor.NewActionTable()
	mnTkn, mxTkn := 0, 0
	mnNt, mxNt := 0, 0
	for _, set := range sets {
		if set.nAction <= 0 {
			break
		}
		st := set.state
		tab.Begin()
		for _, act := range st.Actions {
			idx := act.Lookahead.Index
			if set.isTkn && idx >= g.NTerminal {
				continue
			}
			if !set.isTkn && (idx < g.NTerminal || idx == g.NSymbol) {
				continue
			}
			code := computeAction(act, nstate, nrule)
			if code < 0 {
				continue
			}
			if err := tab.Add(idx, code); err != nil {
				return nil, err
			}
		}
		offset, err := tab.Commit()
		if err != nil {
			return nil, fmt.Errorf("failed to pack the actions of state %v: %w", st.Num, err)
		}
		if set.isTkn {
			st.TknOff = offset
			mnTkn = min(mnTkn, offset)
			mxTkn = max(mxTkn, offset)
		} else {
			st.NtOff = offset
			mnNt = min(mnNt, offset)
			mxNt = max(mxNt, offset)
		}
	}

	size := tab.Size()
	action := make([]int, size)
	lookahead := make([]int, size)
	for i := 0; i < size; i++ {
		action[i] = tab.Action(i)
		if action[i] < 0 {
			action[i] = nstate + nrule + 2
		}
		lookahead[i] = tab.Lookahead(i)
		if lookahead[i] < 0 {
			lookahead[i] = g.NSymbol
		}
	}
	a.TableSize = size

	shiftOff := packOffsets(a.States, mnTkn-1, func(st *State) int {
		return st.TknOff
	})
	reduceOff := packOffsets(a.States, mnNt-1, func(st *State) int {
		return st.NtOff
	})

	dflt := make([]int, nstate)
	for i, st := range a.States {
		dflt[i] = st.Default
	}

	var fallback []int
	if g.HasFallback {
		mx := g.NTerminal - 1
		for mx > 0 && g.Symbols[mx].Fallback == nil {
			mx--
		}
		fallback = make([]int, mx+1)
		for i, sym := range g.Symbols[:mx+1] {
			if sym.Fallback != nil {
				fallback[i] = sym.Fallback.Index
			}
		}
	}

	wildcard := spec.SymbolNil
	if g.Wildcard != nil {
		wildcard = g.Wildcard.Index
	}
	errSym := spec.SymbolNil
	if g.ErrorSymbol.UseCount > 0 {
		errSym = g.ErrorSymbol.Index
	}

	lhs := make([]int, nrule)
	rhsCount := make([]int, nrule)
	for i, r := range g.Rules {
		lhs[i] = r.LHS.Index
		rhsCount[i] = len(r.RHS)
	}

	tracer().Infof("the action table has %v entries", size)

	return &spec.ParsingTable{
		StateCount:       nstate,
		RuleCount:        nrule,
		TerminalCount:    g.NTerminal,
		SymbolCount:      g.NSymbol,
		Action:           action,
		Lookahead:        lookahead,
		ShiftOffset:      shiftOff,
		ShiftUseDefault:  mnTkn - 1,
		ShiftOffsetMin:   mnTkn,
		ShiftOffsetMax:   mxTkn,
		ReduceOffset:     reduceOff,
		ReduceUseDefault: mnNt - 1,
		ReduceOffsetMin:  mnNt,
		ReduceOffsetMax:  mxNt,
		Default:          dflt,
		Fallback:         fallback,
		Wildcard:         wildcard,
		ErrorSymbol:      errSym,
		RuleLHS:          lhs,
		RuleRHSCount:     rhsCount,
		Types: &spec.TypeNames{
			Code:         minimumSizeType(0, g.NSymbol+1),
			Action:       minimumSizeType(0, nstate+nrule+5),
			ShiftOffset:  minimumSizeType(mnTkn-1, mxTkn),
			ReduceOffset: minimumSizeType(mnNt-1, mxNt),
		},
	}, nil
}

// packOffsets returns the offsets of the states up to the last one that has an offset. A state
// without an offset gets useDefault.
func packOffsets(states []*State, useDefault int, offset func(*State) int) []int {
	n := len(states)
	for n > 0 && offset(states[n-1]) == NoOffset {
		n--
	}
	offs := make([]int, n)
	for i, st := range states[:n] {
		offs[i] = offset(st)
		if offs[i] == NoOffset {
			offs[i] = useDefault
		}
	}
	return offs
}

// minimumSizeType returns the smallest C integer type holding every value in [lwr, upr].
func minimumSizeType(lwr, upr int) string {
	switch {
	case lwr >= 0:
		switch {
		case upr <= 255:
			return "unsigned char"
		case upr < 65535:
			return "unsigned short int"
		}
		return "unsigned int"
	case lwr >= -127 && upr <= 127:
		return "signed char"
	case lwr >= -32767 && upr < 32767:
		return "short"
	}
	return "int"
}
