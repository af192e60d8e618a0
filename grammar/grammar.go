package grammar

import (
	"unicode"
	"unicode/utf8"

	verr "github.com/nihei9/lalrgen/error"
	"github.com/nihei9/lalrgen/spec"
)

// Grammar is the symbol universe and the rules of a grammar file.
//
// Symbols[:NTerminal] are the terminals, Symbols[NTerminal:NSymbol] are the nonterminals,
// Symbols[NSymbol] is `{default}`, and the named token classes follow it.
type Grammar struct {
	Name            string
	TokenPrefix     string
	StartSymbolName string

	// Decls holds the values of the other declarations, such as `%include` and `%token_type`,
	// keyed by keyword.
	Decls map[string]string

	Symbols []*Symbol
	Rules   []*Rule

	NTerminal int
	NSymbol   int

	ErrorSymbol   *Symbol
	DefaultSymbol *Symbol
	Wildcard      *Symbol
	HasFallback   bool

	symTab *SymbolTable
}

// LookupSymbol returns a named symbol.
func (g *Grammar) LookupSymbol(name string) (*Symbol, bool) {
	return g.symTab.Lookup(name)
}

type GrammarBuilder struct {
	AST *spec.RootNode

	errs verr.SpecErrors
}

// Build returns the grammar the AST describes. When the AST has semantic errors, Build reports
// all of them in a verr.SpecErrors.
func (b *GrammarBuilder) Build() (*Grammar, error) {
	symTab := NewSymbolTable()
	g := &Grammar{
		Decls:  map[string]string{},
		symTab: symTab,
	}

	eof := symTab.Make(symbolNameEOF)
	eof.Kind = SymbolKindTerminal
	g.ErrorSymbol = symTab.Make(symbolNameError)
	g.ErrorSymbol.UseCount = 0

	precCounter := 0
	for _, stmt := range b.AST.Statements {
		switch {
		case stmt.Directive != nil:
			if isPrecedenceDirective(stmt.Directive.Name) {
				precCounter++
			}
			b.applyDirective(g, stmt.Directive, precCounter)
		case stmt.Rule != nil:
			b.addRule(g, stmt.Rule)
		}
	}

	if len(g.Rules) == 0 {
		b.errs = append(b.errs, &verr.SpecError{
			Cause: semErrEmptyGrammar,
		})
		return nil, b.errs
	}

	b.checkRuleless(g)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	g.DefaultSymbol = symTab.Make(symbolNameDefault)
	g.Symbols, g.NTerminal, g.NSymbol = symTab.freeze()

	g.Name = g.Decls["name"]
	g.TokenPrefix = g.Decls["token_prefix"]
	g.StartSymbolName = g.Decls["start_symbol"]

	tracer().Debugf("grammar %v: %v terminals, %v non-terminals, %v rules", g.Name, g.NTerminal, g.NSymbol-g.NTerminal, len(g.Rules))

	return g, nil
}

func isPrecedenceDirective(name string) bool {
	switch name {
	case "left", "right", "nonassoc":
		return true
	}
	return false
}

func isTerminalName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func (b *GrammarBuilder) applyDirective(g *Grammar, dir *spec.DirectiveNode, prec int) {
	symTab := g.symTab
	switch dir.Name {
	case "left", "right", "nonassoc":
		assoc := AssocLeft
		switch dir.Name {
		case "right":
			assoc = AssocRight
		case "nonassoc":
			assoc = AssocNone
		}
		for _, id := range dir.IDs {
			if !isTerminalName(id.Name) {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrPrecNonTerminal,
					Detail: id.Name,
					Row:    id.Pos.Row,
				})
				continue
			}
			sym := symTab.Make(id.Name)
			if sym.Prec >= 0 {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrPrecTwice,
					Detail: id.Name,
					Row:    id.Pos.Row,
				})
				continue
			}
			sym.Prec = prec
			sym.Assoc = assoc
		}
	case "fallback":
		var fb *Symbol
		for _, id := range dir.IDs {
			if !isTerminalName(id.Name) {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrFallbackNonTerminal,
					Detail: id.Name,
					Row:    id.Pos.Row,
				})
				continue
			}
			sym := symTab.Make(id.Name)
			if fb == nil {
				fb = sym
				continue
			}
			if sym.Fallback != nil {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrMultipleFallback,
					Detail: id.Name,
					Row:    id.Pos.Row,
				})
				continue
			}
			sym.Fallback = fb
			g.HasFallback = true
		}
	case "wildcard":
		for _, id := range dir.IDs {
			if !isTerminalName(id.Name) {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrWildcardNonTerminal,
					Detail: id.Name,
					Row:    id.Pos.Row,
				})
				continue
			}
			sym := symTab.Make(id.Name)
			if g.Wildcard != nil {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrMultipleWildcard,
					Detail: id.Name,
					Row:    id.Pos.Row,
				})
				continue
			}
			g.Wildcard = sym
		}
	case "type":
		sym, ok := symTab.Lookup(dir.Symbol)
		if ok && sym.DataType != "" {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateType,
				Detail: dir.Symbol,
				Row:    dir.Pos.Row,
			})
			return
		}
		if !ok {
			sym = symTab.Make(dir.Symbol)
		}
		sym.DataType = dir.Value
	case "destructor":
		sym := symTab.Make(dir.Symbol)
		if sym.DestructorLine == 0 {
			sym.DestructorLine = dir.Pos.Row
		}
		sym.Destructor += dir.Value
	case "token_class":
		b.addTokenClass(g, dir)
	default:
		if _, ok := knownValueDirectives[dir.Name]; !ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrUnknownDecl,
				Detail: "%" + dir.Name,
				Row:    dir.Pos.Row,
			})
			return
		}
		g.Decls[dir.Name] += dir.Value
	}
}

var knownValueDirectives = map[string]struct{}{
	"name":               {},
	"include":            {},
	"code":               {},
	"token_destructor":   {},
	"default_destructor": {},
	"token_prefix":       {},
	"syntax_error":       {},
	"parse_accept":       {},
	"parse_failure":      {},
	"stack_overflow":     {},
	"extra_argument":     {},
	"token_type":         {},
	"default_type":       {},
	"stack_size":         {},
	"start_symbol":       {},
}

func (b *GrammarBuilder) addTokenClass(g *Grammar, dir *spec.DirectiveNode) {
	symTab := g.symTab
	if _, used := symTab.Lookup(dir.Symbol); used || isTerminalName(dir.Symbol) {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrTokenClassName,
			Detail: dir.Symbol,
			Row:    dir.Pos.Row,
		})
		return
	}
	class := symTab.Make(dir.Symbol)
	class.Kind = SymbolKindMultiTerminal
	for _, id := range dir.IDs {
		if !isTerminalName(id.Name) {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrTokenClassMember,
				Detail: id.Name,
				Row:    id.Pos.Row,
			})
			return
		}
		class.SubSymbols = append(class.SubSymbols, symTab.Make(id.Name))
	}
}

func (b *GrammarBuilder) addRule(g *Grammar, node *spec.RuleNode) {
	symTab := g.symTab
	if isTerminalName(node.LHS) {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrLHSTerminal,
			Detail: node.LHS,
			Row:    node.Pos.Row,
		})
		return
	}

	r := &Rule{
		LHS:      symTab.Make(node.LHS),
		LHSAlias: node.LHSAlias,
		Index:    len(g.Rules),
		Line:     node.Line,
		Code:     node.Code,
		CodeLine: node.CodePos.Row,
	}
	for _, elem := range node.RHS {
		r.RHS = append(r.RHS, b.makeRHSSymbol(symTab, elem))
		r.RHSAlias = append(r.RHSAlias, elem.Alias)
	}
	if node.PrecSym != "" {
		if isTerminalName(node.PrecSym) {
			r.PrecSym = symTab.Make(node.PrecSym)
			r.precMarked = true
		} else {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrPrecOnNonTerminal,
				Detail: node.PrecSym,
				Row:    node.PrecPos.Row,
			})
		}
	}

	r.LHS.Rules = append(r.LHS.Rules, r)
	g.Rules = append(g.Rules, r)
}

// makeRHSSymbol returns the symbol of an element on a right-hand side. An element like `A|B`
// becomes an anonymous multi-terminal that is not registered in the symbol table.
func (b *GrammarBuilder) makeRHSSymbol(symTab *SymbolTable, elem *spec.RHSElemNode) *Symbol {
	if len(elem.Names) == 1 {
		return symTab.Make(elem.Names[0])
	}

	multi := &Symbol{
		Name:  elem.Names[0],
		Kind:  SymbolKindMultiTerminal,
		Index: -1,
		Prec:  precNil,
	}
	for _, name := range elem.Names {
		sub := symTab.Make(name)
		if sub.Kind != SymbolKindTerminal {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrCompoundNonTerminal,
				Detail: name,
				Row:    elem.Pos.Row,
			})
		}
		multi.SubSymbols = append(multi.SubSymbols, sub)
	}
	return multi
}

// checkRuleless reports nonterminals that appear on a right-hand side but have no rules.
func (b *GrammarBuilder) checkRuleless(g *Grammar) {
	reported := map[*Symbol]struct{}{}
	for _, r := range g.Rules {
		for _, sym := range r.RHS {
			if sym.Kind != SymbolKindNonTerminal || sym == g.ErrorSymbol || len(sym.Rules) > 0 {
				continue
			}
			if _, ok := reported[sym]; ok {
				continue
			}
			reported[sym] = struct{}{}
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrNonTerminalHasNoRules,
				Detail: sym.Name,
				Row:    r.Line,
			})
		}
	}
}
