package grammar

import "fmt"

type CompiledGrammar struct {
	Name         string            `json:"name"`
	TokenPrefix  string            `json:"token_prefix,omitempty"`
	StartSymbol  int               `json:"start_symbol"`
	Symbols      []*Symbol         `json:"symbols"`
	Rules        []*Rule           `json:"rules"`
	ParsingTable *ParsingTable     `json:"parsing_table"`
	Declarations map[string]string `json:"declarations,omitempty"`
	Statistics   *Statistics       `json:"statistics"`
}

const (
	SymbolKindTerminal      = "terminal"
	SymbolKindNonTerminal   = "non-terminal"
	SymbolKindMultiTerminal = "multi-terminal"
)

// SymbolNil is the value of a symbol reference that refers to nothing.
const SymbolNil = -1

type Symbol struct {
	Index         int    `json:"index"`
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	Precedence    int    `json:"prec"`
	Associativity string `json:"assoc,omitempty"`
	Lambda        bool   `json:"lambda"`
	First         []int  `json:"first,omitempty"`
	Fallback      int    `json:"fallback"`
	SubSymbols    []int  `json:"sub_symbols,omitempty"`
	DataType      string `json:"data_type,omitempty"`
	Destructor    string `json:"destructor,omitempty"`
}

// RHSElem is an element of a right-hand side. It has more than one symbol when it is a
// multi-terminal such as `A|B`.
type RHSElem struct {
	Symbols []int  `json:"symbols"`
	Alias   string `json:"alias,omitempty"`
}

type Rule struct {
	Index      int        `json:"index"`
	LHS        int        `json:"lhs"`
	LHSAlias   string     `json:"lhs_alias,omitempty"`
	RHS        []*RHSElem `json:"rhs"`
	PrecSymbol int        `json:"prec_symbol"`
	Line       int        `json:"line"`
	CanReduce  bool       `json:"can_reduce"`
	Code       string     `json:"code,omitempty"`
	CodeLine   int        `json:"code_line,omitempty"`
}

type Statistics struct {
	Terminals    int `json:"terminals"`
	NonTerminals int `json:"non_terminals"`
	Rules        int `json:"rules"`
	States       int `json:"states"`
	TableEntries int `json:"table_entries"`
	Conflicts    int `json:"conflicts"`
	Errors       int `json:"errors"`
}

func (s *Statistics) String() string {
	return fmt.Sprintf("%d terminals, %d nonterminals, %d rules, %d states, %d parser table entries, %d conflicts",
		s.Terminals, s.NonTerminals, s.Rules, s.States, s.TableEntries, s.Conflicts)
}

// TypeNames are the smallest C integer types able to hold the values of each table.
type TypeNames struct {
	Code         string `json:"code"`
	Action       string `json:"action"`
	ShiftOffset  string `json:"shift_offset"`
	ReduceOffset string `json:"reduce_offset"`
}

// ParsingTable is a packed LALR(1) parsing table.
//
// Actions are encoded as integers. With n states and m rules, a value in [0, n) shifts to that
// state, n+i reduces by rule i, n+m is a syntax error, n+m+1 accepts, and n+m+2 marks an empty
// slot of the action array.
type ParsingTable struct {
	StateCount    int `json:"state_count"`
	RuleCount     int `json:"rule_count"`
	TerminalCount int `json:"terminal_count"`
	SymbolCount   int `json:"symbol_count"`

	Action    []int `json:"action"`
	Lookahead []int `json:"lookahead"`

	// ShiftOffset has an entry for every state up to the last one that has an offset. A state
	// without an offset has ShiftUseDefault as its entry.
	ShiftOffset     []int `json:"shift_offset"`
	ShiftUseDefault int   `json:"shift_use_default"`
	ShiftOffsetMin  int   `json:"shift_offset_min"`
	ShiftOffsetMax  int   `json:"shift_offset_max"`

	ReduceOffset     []int `json:"reduce_offset"`
	ReduceUseDefault int   `json:"reduce_use_default"`
	ReduceOffsetMin  int   `json:"reduce_offset_min"`
	ReduceOffsetMax  int   `json:"reduce_offset_max"`

	Default []int `json:"default"`

	// Fallback maps a terminal to the terminal tried when it has no action. 0 means none. It is
	// nil when the grammar declares no fallback.
	Fallback []int `json:"fallback,omitempty"`

	Wildcard    int `json:"wildcard"`
	ErrorSymbol int `json:"error_symbol"`

	RuleLHS      []int `json:"rule_lhs"`
	RuleRHSCount []int `json:"rule_rhs_count"`

	Types *TypeNames `json:"types"`
}

type ActionKind string

const (
	ActionKindShift  = ActionKind("shift")
	ActionKindReduce = ActionKind("reduce")
	ActionKindError  = ActionKind("error")
	ActionKindAccept = ActionKind("accept")
	ActionKindNone   = ActionKind("none")
)

func (k ActionKind) String() string {
	return string(k)
}

// ErrorAction returns the encoding of a syntax error.
func (t *ParsingTable) ErrorAction() int {
	return t.StateCount + t.RuleCount
}

// AcceptAction returns the encoding of the accept action.
func (t *ParsingTable) AcceptAction() int {
	return t.StateCount + t.RuleCount + 1
}

// NoAction returns the value of an empty slot of the action array.
func (t *ParsingTable) NoAction() int {
	return t.StateCount + t.RuleCount + 2
}

// Decode splits an encoded action into its kind and its operand. The operand is a state number
// for a shift and a rule index for a reduce.
func (t *ParsingTable) Decode(act int) (ActionKind, int) {
	switch {
	case act < 0:
		return ActionKindNone, 0
	case act < t.StateCount:
		return ActionKindShift, act
	case act < t.StateCount+t.RuleCount:
		return ActionKindReduce, act - t.StateCount
	case act == t.ErrorAction():
		return ActionKindError, 0
	case act == t.AcceptAction():
		return ActionKindAccept, 0
	}
	return ActionKindNone, 0
}

// ShiftAction returns the action of a state on a terminal. A terminal that has no entry is
// retried with its fallback, then the wildcard is tried, and finally the default action of the
// state is returned.
func (t *ParsingTable) ShiftAction(state, lookahead int) (int, error) {
	if state < 0 || state >= t.StateCount {
		return 0, fmt.Errorf("state out of range: %v", state)
	}
	if lookahead < 0 || lookahead >= t.TerminalCount {
		return 0, fmt.Errorf("a lookahead must be a terminal: %v", lookahead)
	}

	// A fallback chain is at most as long as the number of terminals.
	for hops := 0; hops <= t.TerminalCount; hops++ {
		if state >= len(t.ShiftOffset) || t.ShiftOffset[state] == t.ShiftUseDefault {
			return t.Default[state], nil
		}
		i := t.ShiftOffset[state] + lookahead
		if i >= 0 && i < len(t.Action) && t.Lookahead[i] == lookahead {
			return t.Action[i], nil
		}
		if lookahead == 0 {
			return t.Default[state], nil
		}
		if lookahead < len(t.Fallback) && t.Fallback[lookahead] != 0 {
			lookahead = t.Fallback[lookahead]
			continue
		}
		if t.Wildcard >= 0 {
			j := i - lookahead + t.Wildcard
			if j >= 0 && j < len(t.Action) && t.Lookahead[j] == t.Wildcard {
				return t.Action[j], nil
			}
		}
		return t.Default[state], nil
	}
	return 0, fmt.Errorf("the fallback of terminal %v loops", lookahead)
}

// ReduceAction returns the action of a state on the nonterminal produced by a reduce.
func (t *ParsingTable) ReduceAction(state, nonTerminal int) (int, error) {
	if state < 0 || state >= t.StateCount {
		return 0, fmt.Errorf("state out of range: %v", state)
	}
	if nonTerminal < t.TerminalCount || nonTerminal >= t.SymbolCount {
		return 0, fmt.Errorf("not a non-terminal: %v", nonTerminal)
	}

	if state >= len(t.ReduceOffset) || t.ReduceOffset[state] == t.ReduceUseDefault {
		return t.Default[state], nil
	}
	i := t.ReduceOffset[state] + nonTerminal
	if i < 0 || i >= len(t.Action) || t.Lookahead[i] != nonTerminal {
		return t.Default[state], nil
	}
	return t.Action[i], nil
}
