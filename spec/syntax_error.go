package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// lexical errors
	synErrInvalidToken  = newSyntaxError("invalid token")
	synErrUnclosedCode  = newSyntaxError("code fragment is not terminated before the end of the file")
	synErrUnclosedIfdef = newSyntaxError("unterminated %ifdef")

	// syntax errors
	synErrNoProduces          = newSyntaxError("the LHS symbol must be followed by \"::=\"")
	synErrNoRuleEnd           = newSyntaxError("a rule must end with \".\"")
	synErrInvalidRHS          = newSyntaxError("illegal token on the RHS of a rule")
	synErrInvalidAlias        = newSyntaxError("an alias must be an identifier")
	synErrNoAliasClose        = newSyntaxError("\")\" is missing after an alias")
	synErrCompoundNoFirst     = newSyntaxError("a compound symbol needs a leading symbol")
	synErrNoDirectiveName     = newSyntaxError("a declaration needs a keyword")
	synErrNoDirectiveArg      = newSyntaxError("a declaration needs an argument")
	synErrNoDirectiveSymbol   = newSyntaxError("a declaration needs a symbol name")
	synErrNoListEnd           = newSyntaxError("a declaration list must end with \".\"")
	synErrInvalidListElem     = newSyntaxError("illegal token in a declaration list")
	synErrPrecMarkNoSymbol    = newSyntaxError("a precedence mark needs a symbol")
	synErrPrecMarkNoClose     = newSyntaxError("\"]\" is missing on a precedence mark")
	synErrDuplicatePrecMark   = newSyntaxError("a rule can have only one precedence mark")
	synErrDuplicateCode       = newSyntaxError("a rule can have only one code fragment")
	synErrNoPriorRule         = newSyntaxError("there is no prior rule to attach this to")
	synErrUnexpectedStatement = newSyntaxError("a statement must be a declaration or a rule")
)
