package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrEmptyGrammar          = newSemanticError("empty grammar")
	semErrPrecTwice             = newSemanticError("symbol has already been given a precedence")
	semErrPrecOnNonTerminal     = newSemanticError("the precedence symbol must be a terminal")
	semErrMultipleFallback      = newSemanticError("more than one fallback assigned to a token")
	semErrFallbackNonTerminal   = newSemanticError("a fallback must be a terminal")
	semErrMultipleWildcard      = newSemanticError("extra wildcard")
	semErrWildcardNonTerminal   = newSemanticError("a wildcard must be a terminal")
	semErrPrecNonTerminal       = newSemanticError("cannot assign a precedence to a non-terminal")
	semErrTokenClassName        = newSemanticError("a token class name must be a non-terminal that is not used yet")
	semErrCompoundNonTerminal   = newSemanticError("cannot form a compound containing a non-terminal")
	semErrDuplicateType         = newSemanticError("symbol has already been given a type")
	semErrTokenClassMember      = newSemanticError("a token class member must be a terminal")
	semErrLHSTerminal           = newSemanticError("the left-hand side of a rule must be a non-terminal")
	semErrUnknownDecl           = newSemanticError("unknown declaration keyword")
	semErrStartSymbolUndefined  = newSemanticError("the specified start symbol is not in a rule")
	semErrStartSymbolNonTerm    = newSemanticError("the specified start symbol is not a non-terminal")
	semErrStartSymbolOnRHS      = newSemanticError("the start symbol occurs on the right-hand side of a rule; this will result in a parser which does not work properly")
	semErrRuleCannotBeReduced   = newSemanticError("this rule can not be reduced")
	semErrNonTerminalHasNoRules = newSemanticError("non-terminal has no rules")
)
