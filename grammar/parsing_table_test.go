package grammar

import (
	"reflect"
	"testing"

	spec "github.com/nihei9/lalrgen/spec/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func compileGrammar(t *testing.T, src string, opts ...CompileOption) (*Grammar, *spec.CompiledGrammar, *Automaton) {
	t.Helper()

	g := buildGrammar(t, src)
	cg, _, a, err := Compile(g, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return g, cg, a
}

func TestCompile_BinaryOperator(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lalrgen.grammar")
	defer teardown()

	_, cg, a := compileGrammar(t, exprSrc)

	if a.ConflictCount != 0 {
		t.Fatalf("unexpected conflict count: %v", a.ConflictCount)
	}
	for _, r := range a.Rules {
		if !r.CanReduce {
			t.Fatalf("every rule must be reducible: %v", r)
		}
	}

	// Symbols: $ 0, PLUS 1, NUM 2, error 3, e 4
	// States after resorting: 0 is the start state, 1 is e ::= e PLUS * e, 2 is e ::= NUM *,
	// 3 is e ::= e PLUS e *, and 4 is e ::= e * PLUS e.
	tab := cg.ParsingTable
	expected := &spec.ParsingTable{
		StateCount:       5,
		RuleCount:        2,
		TerminalCount:    3,
		SymbolCount:      5,
		Action:           []int{5, 5, 6, 6, 1, 8, 9, 2, 3},
		Lookahead:        []int{0, 1, 0, 1, 1, 4, 5, 2, 4},
		ShiftOffset:      []int{5, 5, 2, 0, 3},
		ShiftUseDefault:  -1,
		ShiftOffsetMin:   0,
		ShiftOffsetMax:   5,
		ReduceOffset:     []int{1, 4},
		ReduceUseDefault: -1,
		ReduceOffsetMin:  0,
		ReduceOffsetMax:  4,
		Default:          []int{7, 7, 7, 7, 7},
		Wildcard:         spec.SymbolNil,
		ErrorSymbol:      spec.SymbolNil,
		RuleLHS:          []int{4, 4},
		RuleRHSCount:     []int{3, 1},
		Types: &spec.TypeNames{
			Code:         "unsigned char",
			Action:       "unsigned char",
			ShiftOffset:  "signed char",
			ReduceOffset: "signed char",
		},
	}
	if !reflect.DeepEqual(tab, expected) {
		t.Fatalf("unexpected parsing table;\nwant: %+v\ngot:  %+v", expected, tab)
	}

	lookups := []struct {
		state     int
		lookahead int
		kind      spec.ActionKind
		operand   int
	}{
		{0, 2, spec.ActionKindShift, 2},
		{0, 1, spec.ActionKindError, 0},
		{0, 0, spec.ActionKindError, 0},
		{1, 2, spec.ActionKindShift, 2},
		{2, 0, spec.ActionKindReduce, 1},
		{2, 1, spec.ActionKindReduce, 1},
		{3, 0, spec.ActionKindReduce, 0},
		{3, 1, spec.ActionKindReduce, 0},
		{3, 2, spec.ActionKindError, 0},
		{4, 1, spec.ActionKindShift, 1},
		{4, 0, spec.ActionKindError, 0},
	}
	for _, l := range lookups {
		act, err := tab.ShiftAction(l.state, l.lookahead)
		if err != nil {
			t.Fatal(err)
		}
		kind, operand := tab.Decode(act)
		if kind != l.kind || operand != l.operand {
			t.Fatalf("unexpected action of state %v on %v; want: %v %v, got: %v %v", l.state, l.lookahead, l.kind, l.operand, kind, operand)
		}
	}

	act, err := tab.ReduceAction(0, 4)
	if err != nil {
		t.Fatal(err)
	}
	if act != tab.AcceptAction() {
		t.Fatalf("state 0 must accept e; got: %v", act)
	}
	act, err = tab.ReduceAction(1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if kind, operand := tab.Decode(act); kind != spec.ActionKindShift || operand != 3 {
		t.Fatalf("state 1 must go to state 3 on e; got: %v %v", kind, operand)
	}

	stats := &spec.Statistics{
		Terminals:    3,
		NonTerminals: 2,
		Rules:        2,
		States:       5,
		TableEntries: 9,
		Conflicts:    0,
		Errors:       2,
	}
	if !reflect.DeepEqual(cg.Statistics, stats) {
		t.Fatalf("unexpected statistics; want: %+v, got: %+v", stats, cg.Statistics)
	}
}

const stmtSrc = `
%name stmt
%left PLUS.
%fallback ID KW_THEN.
program ::= stmts.
stmts ::= stmts stmt.
stmts ::= .
stmt ::= ID ASSIGN expr SEMI.
stmt ::= IF LPAREN expr RPAREN stmt.
stmt ::= IF LPAREN expr RPAREN stmt ELSE stmt.
stmt ::= error SEMI.
expr ::= expr PLUS expr.
expr ::= ID.
expr ::= NUM.
expr ::= LPAREN expr RPAREN.
`

// TestCompile_RoundTrip checks that every action of every state can be read back from the packed
// table.
func TestCompile_RoundTrip(t *testing.T) {
	opts := []struct {
		caption string
		opts    []CompileOption
	}{
		{"default", nil},
		{"without compression", []CompileOption{DisableCompression()}},
		{"without resorting", []CompileOption{DisableResort()}},
		{"without compression and resorting", []CompileOption{DisableCompression(), DisableResort()}},
	}
	for _, o := range opts {
		t.Run(o.caption, func(t *testing.T) {
			g, cg, a := compileGrammar(t, stmtSrc, o.opts...)
			tab := cg.ParsingTable
			nstate := len(a.States)
			nrule := len(g.Rules)

			if tab.StateCount != nstate || len(tab.Default) != nstate {
				t.Fatalf("unexpected state count: %v", tab.StateCount)
			}
			for i, st := range a.States {
				if st.Num != i {
					t.Fatalf("the states must be ordered by number")
				}
				has := map[int]struct{}{}
				for _, act := range st.Actions {
					code := computeAction(act, nstate, nrule)
					if code < 0 || act.Lookahead.Index >= g.NSymbol {
						continue
					}
					has[act.Lookahead.Index] = struct{}{}
					var got int
					var err error
					if act.Lookahead.Index < g.NTerminal {
						got, err = tab.ShiftAction(st.Num, act.Lookahead.Index)
					} else {
						got, err = tab.ReduceAction(st.Num, act.Lookahead.Index)
					}
					if err != nil {
						t.Fatal(err)
					}
					if got != code {
						t.Fatalf("state %v, %v: want: %v, got: %v", st.Num, act, code, got)
					}
				}

				// A terminal without an action of its own falls back or takes the default.
				for la := 0; la < g.NTerminal; la++ {
					if _, ok := has[la]; ok {
						continue
					}
					sym := g.Symbols[la]
					if sym.Fallback != nil {
						if _, ok := has[sym.Fallback.Index]; ok {
							continue
						}
					}
					got, err := tab.ShiftAction(st.Num, la)
					if err != nil {
						t.Fatal(err)
					}
					if got != st.Default {
						t.Fatalf("state %v must take the default action on %v; want: %v, got: %v", st.Num, sym.Name, st.Default, got)
					}
				}
			}

			if tab.ErrorSymbol != lookupSymbol(t, g, "error").Index {
				t.Fatalf("the error symbol is used, so it must be in the table")
			}
			if len(tab.Fallback) != lookupSymbol(t, g, "KW_THEN").Index+1 {
				t.Fatalf("unexpected fallback array: %v", tab.Fallback)
			}
			if tab.Fallback[lookupSymbol(t, g, "KW_THEN").Index] != lookupSymbol(t, g, "ID").Index {
				t.Fatalf("KW_THEN must fall back to ID: %v", tab.Fallback)
			}
			for i, r := range g.Rules {
				if tab.RuleLHS[i] != r.LHS.Index || tab.RuleRHSCount[i] != len(r.RHS) {
					t.Fatalf("unexpected rule info of rule %v", i)
				}
			}
		})
	}
}

func TestCompile_Deterministic(t *testing.T) {
	_, cg1, _ := compileGrammar(t, stmtSrc)
	_, cg2, _ := compileGrammar(t, stmtSrc)
	if !reflect.DeepEqual(cg1, cg2) {
		t.Fatalf("two compilations of the same grammar must produce the same output")
	}
}

func TestCompressTables(t *testing.T) {
	src := `
%left PLUS.
prog ::= e.
e ::= e PLUS e.
e ::= NUM.
`
	numState := func(a *Automaton) *State {
		for _, st := range a.States {
			if len(st.Basis) == 1 && st.Basis[0].Rule.Index == 2 && st.Basis[0].Dot == 1 {
				return st
			}
		}
		return nil
	}

	_, _, a := compileGrammar(t, src)
	st := numState(a)
	if st == nil {
		t.Fatal("the state of e ::= NUM * was not found")
	}
	if st.Default != a.NState+2 {
		t.Fatalf("the reduce of e ::= NUM must be the default action; got: %v", st.Default)
	}
	if st.NTknAct != 0 {
		t.Fatalf("a compressed state must have no terminal actions left; got: %v", st.NTknAct)
	}

	_, _, a = compileGrammar(t, src, DisableCompression())
	st = numState(a)
	if st.Default != a.NState+len(a.Rules) {
		t.Fatalf("the default action must be an error without compression; got: %v", st.Default)
	}
	if st.NTknAct != 2 {
		t.Fatalf("unexpected terminal action count: %v", st.NTknAct)
	}
}

func TestCompile_Wildcard(t *testing.T) {
	g, cg, _ := compileGrammar(t, `
%fallback ID KW.
%wildcard ANY.
s ::= ID.
s ::= ANY X.
`)
	tab := cg.ParsingTable
	id := lookupSymbol(t, g, "ID").Index
	kw := lookupSymbol(t, g, "KW").Index
	wc := lookupSymbol(t, g, "ANY").Index
	x := lookupSymbol(t, g, "X").Index

	if tab.Wildcard != wc {
		t.Fatalf("unexpected wildcard: %v", tab.Wildcard)
	}
	shift := func(la int) int {
		act, err := tab.ShiftAction(0, la)
		if err != nil {
			t.Fatal(err)
		}
		return act
	}
	if shift(kw) != shift(id) {
		t.Fatalf("KW must be shifted like ID")
	}
	if shift(x) != shift(wc) {
		t.Fatalf("X must match the wildcard")
	}
	if kind, _ := tab.Decode(shift(0)); kind != spec.ActionKindError {
		t.Fatalf("$ must not match the wildcard; got: %v", kind)
	}
}

func TestMinimumSizeType(t *testing.T) {
	tests := []struct {
		lwr      int
		upr      int
		expected string
	}{
		{0, 255, "unsigned char"},
		{0, 256, "unsigned short int"},
		{0, 65535, "unsigned int"},
		{-127, 127, "signed char"},
		{-128, 127, "short"},
		{-1, 32766, "short"},
		{-1, 32767, "int"},
	}
	for _, tt := range tests {
		if got := minimumSizeType(tt.lwr, tt.upr); got != tt.expected {
			t.Fatalf("minimumSizeType(%v, %v); want: %v, got: %v", tt.lwr, tt.upr, tt.expected, got)
		}
	}
}
