package spec

import (
	"strings"
	"testing"

	verr "github.com/nihei9/lalrgen/error"
)

func TestLexer_Run(t *testing.T) {
	idTok := func(text string) *token {
		return newTextToken(tokenKindID, text, newPosition(1, 0))
	}

	compTok := func(text string) *token {
		return newTextToken(tokenKindCompound, text, newPosition(1, 0))
	}

	strTok := func(text string) *token {
		return newTextToken(tokenKindString, text, newPosition(1, 0))
	}

	codeTok := func(text string) *token {
		return newTextToken(tokenKindCode, text, newPosition(1, 0))
	}

	symTok := func(kind tokenKind) *token {
		return newSymbolToken(kind, newPosition(1, 0))
	}

	invalidTok := func(text string) *token {
		return newTextToken(tokenKindInvalid, text, newPosition(1, 0))
	}

	eofTok := func() *token {
		return newEOFToken(newPosition(1, 0))
	}

	tests := []struct {
		caption string
		src     string
		tokens  []*token
		err     error
	}{
		{
			caption: "the lexer can recognize all kinds of tokens",
			src:     `expr ::= expr PLUS|MINUS/TIMES term(B) . [PLUS] "str" % {code}`,
			tokens: []*token{
				idTok("expr"),
				symTok(tokenKindProduces),
				idTok("expr"),
				idTok("PLUS"),
				compTok("MINUS"),
				compTok("TIMES"),
				idTok("term"),
				symTok(tokenKindLParen),
				idTok("B"),
				symTok(tokenKindRParen),
				symTok(tokenKindDot),
				symTok(tokenKindLBracket),
				idTok("PLUS"),
				symTok(tokenKindRBracket),
				strTok("str"),
				symTok(tokenKindPercent),
				codeTok("code"),
				eofTok(),
			},
		},
		{
			caption: "the lexer skips white spaces and comments",
			src:     "a\u0009b c\n// line comment\nd /* block\ncomment */ e_1",
			tokens: []*token{
				idTok("a"),
				idTok("b"),
				idTok("c"),
				idTok("d"),
				idTok("e_1"),
				eofTok(),
			},
		},
		{
			caption: "a code fragment can contain nested braces, strings, and comments",
			src:     `{ if (x) { y = "}"; } /* } */ z = '{'; // }` + "\n}",
			tokens: []*token{
				codeTok(` if (x) { y = "}"; } /* } */ z = '{'; // }` + "\n"),
				eofTok(),
			},
		},
		{
			caption: "a code fragment can contain a slash",
			src:     `{a / b}`,
			tokens: []*token{
				codeTok("a / b"),
				eofTok(),
			},
		},
		{
			caption: "the lexer returns an invalid token for an unknown character",
			src:     `a @ b`,
			tokens: []*token{
				idTok("a"),
				invalidTok("@"),
				idTok("b"),
				eofTok(),
			},
		},
		{
			caption: "an unclosed code fragment is an error",
			src:     `a { b { c }`,
			tokens: []*token{
				idTok("a"),
			},
			err: synErrUnclosedCode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			l, err := newLexer(strings.NewReader(tt.src))
			if err != nil {
				t.Fatal(err)
			}
			n := 0
			for {
				var tok *token
				tok, err = l.next()
				if err != nil {
					break
				}
				if n >= len(tt.tokens) {
					t.Fatalf("too many tokens; want: %v tokens, got: %+v", len(tt.tokens), tok)
				}
				testToken(t, tok, tt.tokens[n])
				n++
				if tok.kind == tokenKindEOF {
					break
				}
			}
			if tt.err != nil {
				specErr, ok := err.(*verr.SpecError)
				if !ok {
					t.Fatalf("unexpected error; want: %v, got: %v", tt.err, err)
				}
				if tt.err != specErr.Cause {
					t.Fatalf("unexpected error; want: %v, got: %v", tt.err, specErr.Cause)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error; want: %v, got: %v", tt.err, err)
				}
			}
			if n != len(tt.tokens) {
				t.Fatalf("unexpected token count; want: %v, got: %v", len(tt.tokens), n)
			}
		})
	}
}

func TestLexer_Position(t *testing.T) {
	l, err := newLexer(strings.NewReader("a ::=\n  b ."))
	if err != nil {
		t.Fatal(err)
	}
	expected := []Position{
		newPosition(1, 1),
		newPosition(1, 3),
		newPosition(2, 3),
		newPosition(2, 5),
	}
	for _, pos := range expected {
		tok, err := l.next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.pos != pos {
			t.Fatalf("unexpected position of %+v; want: %+v, got: %+v", tok, pos, tok.pos)
		}
	}
}

func testToken(t *testing.T, tok, expected *token) {
	t.Helper()
	if tok.kind != expected.kind || tok.text != expected.text {
		t.Fatalf("unexpected token; want: %+v, got: %+v", expected, tok)
	}
}
