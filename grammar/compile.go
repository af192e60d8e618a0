package grammar

import (
	verr "github.com/nihei9/lalrgen/error"
	spec "github.com/nihei9/lalrgen/spec/grammar"
)

// Automaton is the LALR(1) automaton of a grammar. States are ordered by their final number.
type Automaton struct {
	States      []*State
	Rules       []*Rule
	StartSymbol *Symbol

	ConflictCount int
	ErrorCount    int

	// Diagnostics holds the errors found while compiling. They do not stop the compilation.
	Diagnostics verr.SpecErrors

	NState    int
	NRule     int
	NTerminal int
	NSymbol   int

	// TableSize is the length of the packed action array.
	TableSize int

	actionSeq int
}

func (a *Automaton) addError(err *verr.SpecError) {
	tracer().Errorf("%v", err)
	a.Diagnostics = append(a.Diagnostics, err)
	a.ErrorCount++
}

func (a *Automaton) addAction(st *State, act *Action) {
	act.seq = a.actionSeq
	a.actionSeq++
	st.Actions = append(st.Actions, act)
}

type compileConfig struct {
	isReportingEnabled bool
	basisOnly          bool
	noCompress         bool
	noResort           bool
	showResolved       bool
}

type CompileOption func(config *compileConfig)

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// BasisOnly makes the report list only the basis configs of each state.
func BasisOnly() CompileOption {
	return func(config *compileConfig) {
		config.basisOnly = true
	}
}

// DisableCompression keeps every reduce action in the table instead of turning the most
// frequent one into the default action of its state.
func DisableCompression() CompileOption {
	return func(config *compileConfig) {
		config.noCompress = true
	}
}

// DisableResort keeps the states numbered in the order they were found.
func DisableResort() CompileOption {
	return func(config *compileConfig) {
		config.noResort = true
	}
}

// ShowResolvedConflicts makes the report show the actions dropped by precedence.
func ShowResolvedConflicts() CompileOption {
	return func(config *compileConfig) {
		config.showResolved = true
	}
}

// Compile builds the parsing table of a grammar. Conflicts and other problems of the grammar do
// not make Compile fail; they are counted in the automaton and in the statistics, and the
// table is built anyway. The report is nil unless EnableReporting is given.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, *Automaton, error) {
	config := &compileConfig{}
	for _, opt := range opts {
		opt(config)
	}

	a := &Automaton{
		Rules:     gram.Rules,
		NRule:     len(gram.Rules),
		NTerminal: gram.NTerminal,
		NSymbol:   gram.NSymbol,
	}

	tracer().Infof("compiling grammar %v", gram.Name)

	findRulePrecedences(gram.Rules)
	findFirstSets(gram)
	findStates(gram, a)
	a.NState = len(a.States)
	findLinks(a)
	findFollowSets(a)
	findActions(gram, a)
	if !config.noCompress {
		compressTables(gram, a)
	}
	resortStates(gram, a, !config.noResort)

	tab, err := genParsingTable(gram, a)
	if err != nil {
		return nil, nil, nil, err
	}

	var report *spec.Report
	if config.isReportingEnabled {
		report = genReport(gram, a, config)
	}

	return &spec.CompiledGrammar{
		Name:         gram.Name,
		TokenPrefix:  gram.TokenPrefix,
		StartSymbol:  a.StartSymbol.Index,
		Symbols:      genSymbols(gram),
		Rules:        genRules(gram),
		ParsingTable: tab,
		Declarations: gram.Decls,
		Statistics: &spec.Statistics{
			Terminals:    gram.NTerminal,
			NonTerminals: gram.NSymbol - gram.NTerminal,
			Rules:        len(gram.Rules),
			States:       a.NState,
			TableEntries: a.TableSize,
			Conflicts:    a.ConflictCount,
			Errors:       a.ErrorCount,
		},
	}, report, a, nil
}

func symbolRef(sym *Symbol) int {
	if sym == nil {
		return spec.SymbolNil
	}
	return sym.Index
}

func genSymbols(gram *Grammar) []*spec.Symbol {
	syms := make([]*spec.Symbol, len(gram.Symbols))
	for i, sym := range gram.Symbols {
		s := &spec.Symbol{
			Index:         sym.Index,
			Name:          sym.Name,
			Kind:          sym.Kind.String(),
			Precedence:    sym.Prec,
			Associativity: sym.Assoc.String(),
			Lambda:        sym.Lambda,
			Fallback:      symbolRef(sym.Fallback),
			DataType:      sym.DataType,
			Destructor:    sym.Destructor,
		}
		if sym.First != nil {
			for j, ok := sym.First.NextSet(0); ok; j, ok = sym.First.NextSet(j + 1) {
				s.First = append(s.First, int(j))
			}
		}
		for _, sub := range sym.SubSymbols {
			s.SubSymbols = append(s.SubSymbols, sub.Index)
		}
		syms[i] = s
	}
	return syms
}

func genRules(gram *Grammar) []*spec.Rule {
	rules := make([]*spec.Rule, len(gram.Rules))
	for i, r := range gram.Rules {
		rhs := make([]*spec.RHSElem, len(r.RHS))
		for j, sym := range r.RHS {
			elem := &spec.RHSElem{
				Alias: r.RHSAlias[j],
			}
			if sym.Kind == SymbolKindMultiTerminal {
				for _, sub := range sym.SubSymbols {
					elem.Symbols = append(elem.Symbols, sub.Index)
				}
			} else {
				elem.Symbols = []int{sym.Index}
			}
			rhs[j] = elem
		}
		rules[i] = &spec.Rule{
			Index:      r.Index,
			LHS:        r.LHS.Index,
			LHSAlias:   r.LHSAlias,
			RHS:        rhs,
			PrecSymbol: symbolRef(r.PrecSym),
			Line:       r.Line,
			CanReduce:  r.CanReduce,
			Code:       r.Code,
			CodeLine:   r.CodeLine,
		}
	}
	return rules
}
