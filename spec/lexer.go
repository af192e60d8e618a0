package spec

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
	verr "github.com/nihei9/lalrgen/error"
)

type tokenKind string

const (
	tokenKindID       = tokenKind("id")
	tokenKindCompound = tokenKind("compound")
	tokenKindProduces = tokenKind("::=")
	tokenKindPercent  = tokenKind("%")
	tokenKindDot      = tokenKind(".")
	tokenKindLBracket = tokenKind("[")
	tokenKindRBracket = tokenKind("]")
	tokenKindLParen   = tokenKind("(")
	tokenKindRParen   = tokenKind(")")
	tokenKindString   = tokenKind("string")
	tokenKindCode     = tokenKind("code")
	tokenKindEOF      = tokenKind("eof")
	tokenKindInvalid  = tokenKind("invalid")

	lexModeNameCode = mlspec.LexModeName("code")
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newSymbolToken(kind tokenKind, pos Position) *token {
	return &token{
		kind: kind,
		pos:  pos,
	}
}

func newTextToken(kind tokenKind, text string, pos Position) *token {
	return &token{
		kind: kind,
		text: text,
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

// lexEntries describes the tokens of a grammar file. Code fragments nest, so `{` pushes the code
// mode from both modes and `}` pops it.
func lexEntries() []*mlspec.LexEntry {
	return []*mlspec.LexEntry{
		{Kind: "white_space", Pattern: `[\u{0009}\u{000A}\u{000D}\u{0020}]+`},
		{Kind: "line_comment", Pattern: `//[^\u{000A}]*`},
		{Kind: "block_comment", Pattern: `/\u{002A}([^\u{002A}]|\u{002A}+[^\u{002A}\u{002F}])*\u{002A}+/`},
		{Kind: "compound", Pattern: `[\u{007C}\u{002F}][A-Za-z][0-9A-Za-z_]*`},
		{Kind: "identifier", Pattern: `[0-9A-Za-z][0-9A-Za-z_]*`},
		{Kind: "produces", Pattern: mlspec.LexPattern(mlspec.EscapePattern("::="))},
		{Kind: "percent", Pattern: mlspec.LexPattern(mlspec.EscapePattern("%"))},
		{Kind: "dot", Pattern: mlspec.LexPattern(mlspec.EscapePattern("."))},
		{Kind: "l_bracket", Pattern: mlspec.LexPattern(mlspec.EscapePattern("["))},
		{Kind: "r_bracket", Pattern: mlspec.LexPattern(mlspec.EscapePattern("]"))},
		{Kind: "l_paren", Pattern: mlspec.LexPattern(mlspec.EscapePattern("("))},
		{Kind: "r_paren", Pattern: mlspec.LexPattern(mlspec.EscapePattern(")"))},
		{Kind: "string", Pattern: `\u{0022}[^\u{0022}]*\u{0022}`},
		{
			Kind:    "l_brace",
			Pattern: mlspec.LexPattern(mlspec.EscapePattern("{")),
			Modes:   []mlspec.LexModeName{mlspec.LexModeNameDefault, lexModeNameCode},
			Push:    lexModeNameCode,
		},
		{
			Kind:    "r_brace",
			Pattern: mlspec.LexPattern(mlspec.EscapePattern("}")),
			Modes:   []mlspec.LexModeName{lexModeNameCode},
			Pop:     true,
		},
		{
			Kind:    "code_text",
			Pattern: `[^\u{007B}\u{007D}\u{0022}\u{0027}\u{002F}]+`,
			Modes:   []mlspec.LexModeName{lexModeNameCode},
		},
		{
			Kind:    "code_slash",
			Pattern: `/`,
			Modes:   []mlspec.LexModeName{lexModeNameCode},
		},
		{
			Kind:    "code_string",
			Pattern: `\u{0022}([^\u{0022}\u{005C}]|\u{005C}.)*\u{0022}`,
			Modes:   []mlspec.LexModeName{lexModeNameCode},
		},
		{
			Kind:    "code_char",
			Pattern: `\u{0027}([^\u{0027}\u{005C}]|\u{005C}.)*\u{0027}`,
			Modes:   []mlspec.LexModeName{lexModeNameCode},
		},
		{
			Kind:    "code_line_comment",
			Pattern: `//[^\u{000A}]*`,
			Modes:   []mlspec.LexModeName{lexModeNameCode},
		},
		{
			Kind:    "code_block_comment",
			Pattern: `/\u{002A}([^\u{002A}]|\u{002A}+[^\u{002A}\u{002F}])*\u{002A}+/`,
			Modes:   []mlspec.LexModeName{lexModeNameCode},
		},
	}
}

var (
	compiledLexSpec    *mlspec.CompiledLexSpec
	compiledLexSpecErr error
	compileLexSpecOnce sync.Once
)

func compileLexSpec() (*mlspec.CompiledLexSpec, error) {
	compileLexSpecOnce.Do(func() {
		s, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
			Name:    "lalrgen",
			Entries: lexEntries(),
		}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				var b strings.Builder
				for i, cErr := range cErrs {
					if i > 0 {
						fmt.Fprintf(&b, "\n")
					}
					fmt.Fprintf(&b, "%v: %v", cErr.Kind, cErr.Cause)
					if cErr.Detail != "" {
						fmt.Fprintf(&b, ": %v", cErr.Detail)
					}
				}
				compiledLexSpecErr = fmt.Errorf("cannot compile the lexical specification: %v", b.String())
				return
			}
			compiledLexSpecErr = fmt.Errorf("cannot compile the lexical specification: %w", err)
			return
		}
		compiledLexSpec = s
	})
	return compiledLexSpec, compiledLexSpecErr
}

type lexer struct {
	s *mlspec.CompiledLexSpec
	d *mldriver.Lexer
}

func newLexer(src io.Reader) (*lexer, error) {
	s, err := compileLexSpec()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s: s,
		d: d,
	}, nil
}

func (l *lexer) kindName(tok *mldriver.Token) string {
	return l.s.KindNames[tok.KindID].String()
}

func (l *lexer) next() (*token, error) {
	var tok *mldriver.Token
	for {
		var err error
		tok, err = l.d.Next()
		if err != nil {
			return nil, err
		}
		if tok.Invalid {
			return newTextToken(tokenKindInvalid, string(tok.Lexeme), newPosition(tok.Row+1, tok.Col+1)), nil
		}
		if tok.EOF {
			return newEOFToken(newPosition(tok.Row+1, tok.Col+1)), nil
		}
		switch l.kindName(tok) {
		case "white_space", "line_comment", "block_comment":
			continue
		}

		break
	}

	pos := newPosition(tok.Row+1, tok.Col+1)
	switch l.kindName(tok) {
	case "identifier":
		return newTextToken(tokenKindID, string(tok.Lexeme), pos), nil
	case "compound":
		// Remove the leading '|' or '/' character.
		return newTextToken(tokenKindCompound, string(tok.Lexeme)[1:], pos), nil
	case "produces":
		return newSymbolToken(tokenKindProduces, pos), nil
	case "percent":
		return newSymbolToken(tokenKindPercent, pos), nil
	case "dot":
		return newSymbolToken(tokenKindDot, pos), nil
	case "l_bracket":
		return newSymbolToken(tokenKindLBracket, pos), nil
	case "r_bracket":
		return newSymbolToken(tokenKindRBracket, pos), nil
	case "l_paren":
		return newSymbolToken(tokenKindLParen, pos), nil
	case "r_paren":
		return newSymbolToken(tokenKindRParen, pos), nil
	case "string":
		text := string(tok.Lexeme)
		return newTextToken(tokenKindString, text[1:len(text)-1], pos), nil
	case "l_brace":
		code, err := l.lexCode(pos)
		if err != nil {
			return nil, err
		}
		return newTextToken(tokenKindCode, code, pos), nil
	default:
		return newTextToken(tokenKindInvalid, string(tok.Lexeme), pos), nil
	}
}

// lexCode reads the rest of a code fragment whose opening brace has already been read. The
// returned text excludes the outermost braces.
func (l *lexer) lexCode(start Position) (string, error) {
	var b strings.Builder
	depth := 1
	for {
		tok, err := l.d.Next()
		if err != nil {
			return "", err
		}
		if tok.EOF {
			return "", &verr.SpecError{
				Cause: synErrUnclosedCode,
				Row:   start.Row,
			}
		}
		if tok.Invalid {
			fmt.Fprint(&b, string(tok.Lexeme))
			continue
		}
		switch l.kindName(tok) {
		case "l_brace":
			depth++
		case "r_brace":
			depth--
			if depth == 0 {
				return b.String(), nil
			}
		}
		fmt.Fprint(&b, string(tok.Lexeme))
	}
}
