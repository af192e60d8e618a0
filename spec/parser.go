package spec

import (
	"io"

	verr "github.com/nihei9/lalrgen/error"
)

type RootNode struct {
	Statements []*StatementNode
}

// StatementNode holds either a declaration or a rule. Statements keep the order of the source
// because symbols are numbered in order of first appearance.
type StatementNode struct {
	Directive *DirectiveNode
	Rule      *RuleNode
}

type DirectiveNode struct {
	Name string

	// Symbol is the first argument of `%type`, `%destructor`, and `%token_class`.
	Symbol string

	IDs   []*IDNode
	Value string
	Pos   Position
}

type IDNode struct {
	Name string
	Pos  Position
}

type RuleNode struct {
	LHS      string
	LHSAlias string
	RHS      []*RHSElemNode
	PrecSym  string
	PrecPos  Position
	Code     string
	CodePos  Position
	Pos      Position

	// Line is the row of the `.` that terminates the rule.
	Line int
}

// RHSElemNode is a symbol on the right-hand side. An element with more than one name is a
// multiterminal such as `A|B`.
type RHSElemNode struct {
	Names []string
	Alias string
	Pos   Position
}

type directiveForm int

const (
	directiveFormValue directiveForm = iota
	directiveFormList
	directiveFormSymbolValue
	directiveFormClass
	directiveFormUnknown
)

var directiveForms = map[string]directiveForm{
	"name":               directiveFormValue,
	"include":            directiveFormValue,
	"code":               directiveFormValue,
	"token_destructor":   directiveFormValue,
	"default_destructor": directiveFormValue,
	"token_prefix":       directiveFormValue,
	"syntax_error":       directiveFormValue,
	"parse_accept":       directiveFormValue,
	"parse_failure":      directiveFormValue,
	"stack_overflow":     directiveFormValue,
	"extra_argument":     directiveFormValue,
	"token_type":         directiveFormValue,
	"default_type":       directiveFormValue,
	"stack_size":         directiveFormValue,
	"start_symbol":       directiveFormValue,
	"left":               directiveFormList,
	"right":              directiveFormList,
	"nonassoc":           directiveFormList,
	"fallback":           directiveFormList,
	"wildcard":           directiveFormList,
	"destructor":         directiveFormSymbolValue,
	"type":               directiveFormSymbolValue,
	"token_class":        directiveFormClass,
}

func raiseSyntaxError(row int, synErr *SyntaxError) {
	panic(&verr.SpecError{
		Cause: synErr,
		Row:   row,
	})
}

func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	tracer().Debugf("%v statements are read", len(root.Statements))
	return root, nil
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
	lastRule  *RuleNode
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			specErr, ok := err.(*verr.SpecError)
			if !ok {
				panic(err)
			}
			retErr = specErr
			return
		}
	}()
	return p.parseRoot(), nil
}

func (p *parser) parseRoot() *RootNode {
	root := &RootNode{}
	for {
		if p.consume(tokenKindEOF) {
			break
		}
		stmt := p.parseStatement()
		if stmt == nil {
			continue
		}
		root.Statements = append(root.Statements, stmt)
	}
	return root
}

// parseStatement returns nil when it consumes a precedence mark or a code fragment belonging
// to the previous rule.
func (p *parser) parseStatement() *StatementNode {
	switch {
	case p.consume(tokenKindPercent):
		p.lastRule = nil
		return &StatementNode{
			Directive: p.parseDirective(),
		}
	case p.consume(tokenKindID):
		rule := p.parseRule()
		p.lastRule = rule
		return &StatementNode{
			Rule: rule,
		}
	case p.consume(tokenKindLBracket):
		p.parsePrecMark()
		return nil
	case p.consume(tokenKindCode):
		if p.lastRule == nil {
			raiseSyntaxError(p.lastTok.pos.Row, synErrNoPriorRule)
		}
		if p.lastRule.Code != "" {
			raiseSyntaxError(p.lastTok.pos.Row, synErrDuplicateCode)
		}
		p.lastRule.Code = p.lastTok.text
		p.lastRule.CodePos = p.lastTok.pos
		return nil
	}
	raiseSyntaxError(p.peekRow(), synErrUnexpectedStatement)
	return nil
}

func (p *parser) parsePrecMark() {
	row := p.lastTok.pos.Row
	if p.lastRule == nil {
		raiseSyntaxError(row, synErrNoPriorRule)
	}
	if p.lastRule.PrecSym != "" {
		raiseSyntaxError(row, synErrDuplicatePrecMark)
	}
	if !p.consume(tokenKindID) {
		raiseSyntaxError(row, synErrPrecMarkNoSymbol)
	}
	p.lastRule.PrecSym = p.lastTok.text
	p.lastRule.PrecPos = p.lastTok.pos
	if !p.consume(tokenKindRBracket) {
		raiseSyntaxError(row, synErrPrecMarkNoClose)
	}
}

func (p *parser) parseRule() *RuleNode {
	rule := &RuleNode{
		LHS: p.lastTok.text,
		Pos: p.lastTok.pos,
	}
	if p.consume(tokenKindLParen) {
		rule.LHSAlias = p.parseAlias()
	}
	if !p.consume(tokenKindProduces) {
		raiseSyntaxError(rule.Pos.Row, synErrNoProduces)
	}
	for {
		switch {
		case p.consume(tokenKindDot):
			rule.Line = p.lastTok.pos.Row
			return rule
		case p.consume(tokenKindID):
			rule.RHS = append(rule.RHS, p.parseRHSElem())
		case p.consume(tokenKindCompound):
			raiseSyntaxError(p.lastTok.pos.Row, synErrCompoundNoFirst)
		case p.consume(tokenKindEOF):
			raiseSyntaxError(p.lastTok.pos.Row, synErrNoRuleEnd)
		default:
			raiseSyntaxError(p.peekRow(), synErrInvalidRHS)
		}
	}
}

func (p *parser) parseRHSElem() *RHSElemNode {
	elem := &RHSElemNode{
		Names: []string{p.lastTok.text},
		Pos:   p.lastTok.pos,
	}
	for p.consume(tokenKindCompound) {
		elem.Names = append(elem.Names, p.lastTok.text)
	}
	if p.consume(tokenKindLParen) {
		elem.Alias = p.parseAlias()
	}
	return elem
}

func (p *parser) parseAlias() string {
	row := p.lastTok.pos.Row
	if !p.consume(tokenKindID) {
		raiseSyntaxError(row, synErrInvalidAlias)
	}
	alias := p.lastTok.text
	if !p.consume(tokenKindRParen) {
		raiseSyntaxError(row, synErrNoAliasClose)
	}
	return alias
}

func (p *parser) parseDirective() *DirectiveNode {
	pos := p.lastTok.pos
	if !p.consume(tokenKindID) {
		raiseSyntaxError(pos.Row, synErrNoDirectiveName)
	}
	dir := &DirectiveNode{
		Name: p.lastTok.text,
		Pos:  pos,
	}

	form, ok := directiveForms[dir.Name]
	if !ok {
		form = directiveFormUnknown
	}
	switch form {
	case directiveFormValue:
		dir.Value = p.parseDirectiveValue(pos.Row)
	case directiveFormSymbolValue:
		if !p.consume(tokenKindID) {
			raiseSyntaxError(pos.Row, synErrNoDirectiveSymbol)
		}
		dir.Symbol = p.lastTok.text
		dir.Value = p.parseDirectiveValue(pos.Row)
	case directiveFormList:
		dir.IDs = p.parseIDList(pos.Row, false)
	case directiveFormClass:
		if !p.consume(tokenKindID) {
			raiseSyntaxError(pos.Row, synErrNoDirectiveSymbol)
		}
		dir.Symbol = p.lastTok.text
		dir.IDs = p.parseIDList(pos.Row, true)
	case directiveFormUnknown:
		p.skipUnknownDirective()
	}
	return dir
}

func (p *parser) parseDirectiveValue(row int) string {
	switch {
	case p.consume(tokenKindID), p.consume(tokenKindString), p.consume(tokenKindCode):
		return p.lastTok.text
	}
	raiseSyntaxError(row, synErrNoDirectiveArg)
	return ""
}

func (p *parser) parseIDList(row int, allowCompound bool) []*IDNode {
	var ids []*IDNode
	for {
		switch {
		case p.consume(tokenKindDot):
			return ids
		case p.consume(tokenKindID):
		case allowCompound && p.consume(tokenKindCompound):
		case p.consume(tokenKindEOF):
			raiseSyntaxError(row, synErrNoListEnd)
		default:
			raiseSyntaxError(p.peekRow(), synErrInvalidListElem)
		}
		ids = append(ids, &IDNode{
			Name: p.lastTok.text,
			Pos:  p.lastTok.pos,
		})
	}
}

// skipUnknownDirective discards tokens up to the next `.` or `%` so that the reader can report
// the unknown keyword and continue.
func (p *parser) skipUnknownDirective() {
	for {
		switch {
		case p.consume(tokenKindDot):
			return
		case p.peek(tokenKindPercent), p.peek(tokenKindEOF):
			return
		}
		p.next()
	}
}

func (p *parser) peek(expected tokenKind) bool {
	if p.consume(expected) {
		p.peekedTok = p.lastTok
		p.lastTok = nil
		return true
	}
	return false
}

func (p *parser) peekRow() int {
	tok := p.next()
	p.peekedTok = tok
	return tok.pos.Row
}

func (p *parser) next() *token {
	if p.peekedTok != nil {
		tok := p.peekedTok
		p.peekedTok = nil
		return tok
	}
	tok, err := p.lex.next()
	if err != nil {
		if specErr, ok := err.(*verr.SpecError); ok {
			panic(specErr)
		}
		panic(&verr.SpecError{
			Cause: err,
		})
	}
	return tok
}

func (p *parser) consume(expected tokenKind) bool {
	tok := p.next()
	p.lastTok = tok
	if tok.kind == tokenKindInvalid {
		raiseSyntaxError(tok.pos.Row, synErrInvalidToken)
	}
	if tok.kind == expected {
		return true
	}
	p.peekedTok = tok
	p.lastTok = nil

	return false
}
