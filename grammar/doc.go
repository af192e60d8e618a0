/*
Package grammar builds LALR(1) parsing tables from a grammar read by package spec.

Building a Grammar

A GrammarBuilder turns the AST of a grammar file into a Grammar: the symbol universe and the
rules in declaration order. Symbols are numbered terminals first, in order of first
appearance, starting with the end-of-input symbol `$`. Nonterminals follow, then the
`{default}` symbol, then the token classes.

    g, err := (&grammar.GrammarBuilder{AST: ast}).Build()

Compiling a Grammar

Compile runs the whole pipeline:

    rule precedences -> FIRST sets -> LR(0) states -> propagation links
      -> follow sets -> actions -> default compression -> state resort -> packed table

The LR(0) states carry LALR(1) follow sets computed by propagation over links between
configurations. Conflicts are resolved by precedence and associativity the way yacc does.
Unresolved conflicts and other grammar errors do not stop the compilation; they are counted
and returned as diagnostics along with a degraded table.

    cg, report, automaton, err := grammar.Compile(g, grammar.EnableReporting())
*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lalrgen.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("lalrgen.grammar")
}
