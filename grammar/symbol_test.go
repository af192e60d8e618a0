package grammar

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/lalrgen/error"
	"github.com/nihei9/lalrgen/spec"
)

func TestGrammarBuilder_SymbolOrder(t *testing.T) {
	g := buildGrammar(t, `
%token_class num INT|FLOAT.
expr ::= expr PLUS term.
expr ::= term.
term ::= num.
`)

	expected := []struct {
		name string
		kind SymbolKind
	}{
		{"$", SymbolKindTerminal},
		{"INT", SymbolKindTerminal},
		{"FLOAT", SymbolKindTerminal},
		{"PLUS", SymbolKindTerminal},
		{"error", SymbolKindNonTerminal},
		{"expr", SymbolKindNonTerminal},
		{"term", SymbolKindNonTerminal},
		{"{default}", SymbolKindNonTerminal},
		{"num", SymbolKindMultiTerminal},
	}
	if len(g.Symbols) != len(expected) {
		t.Fatalf("unexpected symbol count; want: %v, got: %v", len(expected), len(g.Symbols))
	}
	for i, e := range expected {
		sym := g.Symbols[i]
		if sym.Name != e.name || sym.Kind != e.kind || sym.Index != i {
			t.Fatalf("unexpected symbol #%v; want: %v (%v), got: %v (%v) with index %v", i, e.name, e.kind, sym.Name, sym.Kind, sym.Index)
		}
	}
	if g.NTerminal != 4 {
		t.Fatalf("unexpected terminal count; want: 4, got: %v", g.NTerminal)
	}
	if g.NSymbol != 7 {
		t.Fatalf("unexpected symbol count; want: 7, got: %v", g.NSymbol)
	}
	if g.DefaultSymbol.Index != g.NSymbol {
		t.Fatalf("{default} must be numbered right after the nonterminals; got: %v", g.DefaultSymbol.Index)
	}

	num := lookupSymbol(t, g, "num")
	if len(num.SubSymbols) != 2 || num.SubSymbols[0].Name != "INT" || num.SubSymbols[1].Name != "FLOAT" {
		t.Fatalf("unexpected members of the token class: %v", num)
	}
	if num.String() != "INT|FLOAT" {
		t.Fatalf("unexpected token class string: %v", num.String())
	}
}

func TestGrammarBuilder_Declarations(t *testing.T) {
	g := buildGrammar(t, `
%name calc
%token_prefix TK_
%start_symbol prog
%include {#include <stdio.h>}
%include {#include <stdlib.h>}
%left PLUS MINUS.
%left TIMES.
%right EXP.
%nonassoc EQ.
%fallback ID KW_IF KW_ELSE.
%wildcard ANY.
%type expr {int}
%destructor expr {free($$);}
prog ::= expr.
expr(A) ::= expr(B) PLUS expr(C). { A = B + C; }
expr ::= MINUS expr. [EXP]
expr ::= ID|KW_IF|KW_ELSE.
expr ::= ANY.
`)

	if g.Name != "calc" {
		t.Fatalf("unexpected name: %v", g.Name)
	}
	if g.TokenPrefix != "TK_" {
		t.Fatalf("unexpected token prefix: %v", g.TokenPrefix)
	}
	if g.StartSymbolName != "prog" {
		t.Fatalf("unexpected start symbol: %v", g.StartSymbolName)
	}
	if g.Decls["include"] != "#include <stdio.h>#include <stdlib.h>" {
		t.Fatalf("repeated declarations must be concatenated; got: %#v", g.Decls["include"])
	}

	precs := []struct {
		name  string
		prec  int
		assoc Associativity
	}{
		{"PLUS", 1, AssocLeft},
		{"MINUS", 1, AssocLeft},
		{"TIMES", 2, AssocLeft},
		{"EXP", 3, AssocRight},
		{"EQ", 4, AssocNone},
		{"ID", precNil, AssocUnknown},
	}
	for _, p := range precs {
		sym := lookupSymbol(t, g, p.name)
		if sym.Prec != p.prec || sym.Assoc != p.assoc {
			t.Fatalf("unexpected precedence of %v; want: %v %v, got: %v %v", p.name, p.prec, p.assoc, sym.Prec, sym.Assoc)
		}
	}

	id := lookupSymbol(t, g, "ID")
	for _, name := range []string{"KW_IF", "KW_ELSE"} {
		if lookupSymbol(t, g, name).Fallback != id {
			t.Fatalf("%v must fall back to ID", name)
		}
	}
	if id.Fallback != nil {
		t.Fatalf("ID must not have a fallback")
	}
	if !g.HasFallback {
		t.Fatalf("HasFallback must be set")
	}
	if g.Wildcard == nil || g.Wildcard.Name != "ANY" {
		t.Fatalf("unexpected wildcard: %v", g.Wildcard)
	}

	expr := lookupSymbol(t, g, "expr")
	if expr.DataType != "int" {
		t.Fatalf("unexpected data type: %#v", expr.DataType)
	}
	if expr.Destructor != "free($$);" {
		t.Fatalf("unexpected destructor: %#v", expr.Destructor)
	}

	if len(g.Rules) != 5 {
		t.Fatalf("unexpected rule count: %v", len(g.Rules))
	}
	r1 := g.Rules[1]
	if r1.LHSAlias != "A" || r1.RHSAlias[0] != "B" || r1.RHSAlias[1] != "" || r1.RHSAlias[2] != "C" {
		t.Fatalf("unexpected aliases: %v %v", r1.LHSAlias, r1.RHSAlias)
	}
	if strings.TrimSpace(r1.Code) != "A = B + C;" {
		t.Fatalf("unexpected code: %#v", r1.Code)
	}
	r2 := g.Rules[2]
	if r2.PrecSym == nil || r2.PrecSym.Name != "EXP" || !r2.precMarked {
		t.Fatalf("the precedence mark was not applied: %v", r2.PrecSym)
	}
	r3 := g.Rules[3]
	if r3.RHS[0].Kind != SymbolKindMultiTerminal || r3.RHS[0].Index != -1 || len(r3.RHS[0].SubSymbols) != 3 {
		t.Fatalf("unexpected compound element: %+v", r3.RHS[0])
	}
	if r3.String() != "expr ::= ID|KW_IF|KW_ELSE." {
		t.Fatalf("unexpected rule string: %v", r3.String())
	}
	for i, r := range g.Rules {
		if r.Index != i {
			t.Fatalf("rules must be numbered in declaration order; rule #%v has index %v", i, r.Index)
		}
	}
}

func TestGrammarBuilder_SemanticErrors(t *testing.T) {
	tests := []struct {
		caption string
		specSrc string
		errs    []*SemanticError
	}{
		{
			caption: "a grammar must have at least one rule",
			specSrc: `%name test`,
			errs:    []*SemanticError{semErrEmptyGrammar},
		},
		{
			caption: "a terminal cannot be given a precedence twice",
			specSrc: `
%left A.
%right A.
s ::= A.
`,
			errs: []*SemanticError{semErrPrecTwice},
		},
		{
			caption: "a nonterminal cannot be given a precedence",
			specSrc: `
%left a.
s ::= A.
`,
			errs: []*SemanticError{semErrPrecNonTerminal},
		},
		{
			caption: "a precedence mark must be a terminal",
			specSrc: `
s ::= A. [b]
`,
			errs: []*SemanticError{semErrPrecOnNonTerminal},
		},
		{
			caption: "a terminal can have only one fallback",
			specSrc: `
%fallback ID A.
%fallback KW A.
s ::= ID.
`,
			errs: []*SemanticError{semErrMultipleFallback},
		},
		{
			caption: "a fallback must be a terminal",
			specSrc: `
%fallback ID a.
s ::= ID.
`,
			errs: []*SemanticError{semErrFallbackNonTerminal},
		},
		{
			caption: "a grammar can have only one wildcard",
			specSrc: `
%wildcard ANY.
%wildcard OTHER.
s ::= A.
`,
			errs: []*SemanticError{semErrMultipleWildcard},
		},
		{
			caption: "a wildcard must be a terminal",
			specSrc: `
%wildcard any.
s ::= A.
`,
			errs: []*SemanticError{semErrWildcardNonTerminal},
		},
		{
			caption: "a token class name cannot be a terminal",
			specSrc: `
%token_class NUM INT|FLOAT.
s ::= NUM.
`,
			errs: []*SemanticError{semErrTokenClassName},
		},
		{
			caption: "a token class name cannot be used before the declaration",
			specSrc: `
s ::= A.
%token_class s INT|FLOAT.
`,
			errs: []*SemanticError{semErrTokenClassName},
		},
		{
			caption: "a token class member must be a terminal",
			specSrc: `
%token_class num INT|x.
s ::= num.
`,
			errs: []*SemanticError{semErrTokenClassMember},
		},
		{
			caption: "a compound cannot contain a nonterminal",
			specSrc: `
s ::= A|b.
`,
			errs: []*SemanticError{semErrCompoundNonTerminal},
		},
		{
			caption: "a symbol cannot be given a type twice",
			specSrc: `
%type s {int}
%type s {long}
s ::= A.
`,
			errs: []*SemanticError{semErrDuplicateType},
		},
		{
			caption: "an unknown declaration is an error",
			specSrc: `
%foo bar.
s ::= A.
`,
			errs: []*SemanticError{semErrUnknownDecl},
		},
		{
			caption: "the left-hand side of a rule must be a nonterminal",
			specSrc: `
A ::= B.
s ::= A.
`,
			errs: []*SemanticError{semErrLHSTerminal},
		},
		{
			caption: "a nonterminal used on a right-hand side must have rules",
			specSrc: `
s ::= a B.
s ::= a C.
`,
			errs: []*SemanticError{semErrNonTerminalHasNoRules},
		},
		{
			caption: "all errors are reported together",
			specSrc: `
%left a.
%wildcard any.
s ::= A. [b]
`,
			errs: []*SemanticError{semErrPrecNonTerminal, semErrWildcardNonTerminal, semErrPrecOnNonTerminal},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			ast, err := spec.Parse(strings.NewReader(tt.specSrc))
			if err != nil {
				t.Fatal(err)
			}
			b := GrammarBuilder{
				AST: ast,
			}
			g, err := b.Build()
			if err == nil {
				t.Fatal("an error was expected")
			}
			if g != nil {
				t.Fatal("a grammar with errors must not be returned")
			}
			specErrs, ok := err.(verr.SpecErrors)
			if !ok {
				t.Fatalf("unexpected error type; want: verr.SpecErrors, got: %T", err)
			}
			if len(specErrs) != len(tt.errs) {
				t.Fatalf("unexpected error count; want: %v, got: %v: %v", len(tt.errs), len(specErrs), specErrs)
			}
			for i, e := range tt.errs {
				if !errors.Is(specErrs[i], e) {
					t.Fatalf("unexpected error #%v; want: %v, got: %v", i, e, specErrs[i].Cause)
				}
				if e != semErrEmptyGrammar && specErrs[i].Row == 0 {
					t.Fatalf("error #%v has no row", i)
				}
			}
		})
	}
}

func TestSymbolTable(t *testing.T) {
	symTab := NewSymbolTable()
	a := symTab.Make("a")
	if a.Kind != SymbolKindNonTerminal || a.UseCount != 1 {
		t.Fatalf("unexpected symbol: %+v", a)
	}
	if symTab.Make("a") != a || a.UseCount != 2 {
		t.Fatalf("Make must return the same symbol and count its uses")
	}
	b := symTab.Make("B")
	if b.Kind != SymbolKindTerminal {
		t.Fatalf("a capitalized symbol must be a terminal")
	}
	if sym, ok := symTab.Lookup("B"); !ok || sym != b {
		t.Fatalf("Lookup failed")
	}
	if _, ok := symTab.Lookup("c"); ok {
		t.Fatalf("Lookup must not create symbols")
	}
	if symTab.Len() != 2 {
		t.Fatalf("unexpected length: %v", symTab.Len())
	}
}
