/*
Package spec reads grammar files.

A grammar file is first run through Preprocess, which evaluates `%ifdef` blocks, and then
through Parse, which returns the statements of the file in source order. Parse stops at the
first syntax error and returns it as a *verr.SpecError. The meaning of the statements is
checked later by grammar.GrammarBuilder.
*/
package spec

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lalrgen.spec'.
func tracer() tracing.Trace {
	return tracing.Select("lalrgen.spec")
}
