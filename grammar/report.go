package grammar

import (
	spec "github.com/nihei9/lalrgen/spec/grammar"
)

func genReport(gram *Grammar, a *Automaton, config *compileConfig) *spec.Report {
	states := make([]*spec.State, len(a.States))
	for i, st := range a.States {
		configs := st.Closure
		if config.basisOnly {
			configs = st.Basis
		}
		basis := map[*Config]struct{}{}
		for _, c := range st.Basis {
			basis[c] = struct{}{}
		}
		rc := make([]*spec.Config, len(configs))
		for j, c := range configs {
			_, isBasis := basis[c]
			rc[j] = &spec.Config{
				Rule:  c.Rule.Index,
				Dot:   c.Dot,
				Basis: isBasis,
			}
		}

		var acts []*spec.Action
		for _, act := range st.Actions {
			if act.Type == ActionNotUsed {
				continue
			}
			ra := &spec.Action{
				Symbol: act.Lookahead.Index,
				Kind:   act.Type.String(),
				State:  -1,
				Rule:   -1,
			}
			if act.State != nil {
				ra.State = act.State.Num
			}
			if act.Rule != nil {
				ra.Rule = act.Rule.Index
			}
			ra.Conflict = act.Type.IsConflict()
			ra.Resolved = act.Type == ActionShiftResolved || act.Type == ActionReduceResolved
			acts = append(acts, ra)
		}

		states[i] = &spec.State{
			Number:  st.Num,
			Configs: rc,
			Actions: acts,
			Default: st.Default,
		}
	}

	return &spec.Report{
		Name:          gram.Name,
		Symbols:       genSymbols(gram),
		Rules:         genRules(gram),
		States:        states,
		TerminalCount: gram.NTerminal,
		SymbolCount:   gram.NSymbol,
		ConflictCount: a.ConflictCount,
		ErrorCount:    a.ErrorCount,
		BasisOnly:     config.basisOnly,
		ShowResolved:  config.showResolved,
	}
}
