package grammar

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/bits-and-blooms/bitset"
	"github.com/nihei9/lalrgen/intern"
	"golang.org/x/exp/slices"
)

type SymbolKind int

const (
	SymbolKindTerminal SymbolKind = iota
	SymbolKindNonTerminal
	SymbolKindMultiTerminal
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolKindTerminal:
		return "terminal"
	case SymbolKindNonTerminal:
		return "non-terminal"
	case SymbolKindMultiTerminal:
		return "multi-terminal"
	}
	return fmt.Sprintf("<unknown symbol kind: %d>", int(k))
}

type Associativity int

const (
	AssocUnknown Associativity = iota
	AssocLeft
	AssocRight
	AssocNone
)

func (a Associativity) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	case AssocNone:
		return "nonassoc"
	}
	return ""
}

const (
	symbolNameEOF     = "$"
	symbolNameError   = "error"
	symbolNameDefault = "{default}"

	precNil = -1
)

type Symbol struct {
	Name  string
	Kind  SymbolKind
	Index int

	// Prec is precNil when the symbol has no precedence.
	Prec  int
	Assoc Associativity

	// Lambda reports whether the symbol derives the empty string.
	Lambda bool

	// First holds the indices of the terminals that can begin a string derived from a
	// nonterminal. It is nil for other kinds.
	First *bitset.BitSet

	Fallback *Symbol

	// SubSymbols are the members of a multi-terminal.
	SubSymbols []*Symbol

	Rules    []*Rule
	UseCount int

	DataType       string
	Destructor     string
	DestructorLine int

	order int
}

func newSymbol(name string, order int) *Symbol {
	kind := SymbolKindNonTerminal
	if r, _ := utf8.DecodeRuneInString(name); unicode.IsUpper(r) {
		kind = SymbolKindTerminal
	}
	return &Symbol{
		Name:  name,
		Kind:  kind,
		Index: order,
		Prec:  precNil,
		Assoc: AssocUnknown,
		order: order,
	}
}

func (s *Symbol) String() string {
	if s.Kind != SymbolKindMultiTerminal || len(s.SubSymbols) == 0 {
		return s.Name
	}
	name := s.SubSymbols[0].Name
	for _, sub := range s.SubSymbols[1:] {
		name += "|" + sub.Name
	}
	return name
}

// sameSymbol reports whether two symbols are the same for the purpose of building shifts. Two
// multi-terminals are the same when they have identical members.
func sameSymbol(a, b *Symbol) bool {
	if a == b {
		return true
	}
	if a.Kind != SymbolKindMultiTerminal || b.Kind != SymbolKindMultiTerminal {
		return false
	}
	if len(a.SubSymbols) != len(b.SubSymbols) {
		return false
	}
	for i, sub := range a.SubSymbols {
		if sub != b.SubSymbols[i] {
			return false
		}
	}
	return true
}

// SymbolTable owns the named symbols of one grammar. Anonymous multi-terminals written as
// `A|B` on a right-hand side are not registered.
type SymbolTable struct {
	names   *intern.Strings
	symbols []*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		names: intern.NewStrings(),
	}
}

// Make returns the symbol having the name, creating it on first use. Every call counts as a
// use of the symbol.
func (t *SymbolTable) Make(name string) *Symbol {
	id := t.names.Intern(name)
	if int(id) == len(t.symbols) {
		t.symbols = append(t.symbols, newSymbol(name, len(t.symbols)))
	}
	sym := t.symbols[id]
	sym.UseCount++
	return sym
}

func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	id, ok := t.names.Lookup(name)
	if !ok {
		return nil, false
	}
	return t.symbols[id], true
}

// Len returns the number of named symbols.
func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

func symbolClass(sym *Symbol) int {
	switch {
	case sym.Kind == SymbolKindMultiTerminal:
		return 3
	case sym.Kind == SymbolKindTerminal || sym.Name == symbolNameEOF:
		return 1
	default:
		return 2
	}
}

// freeze sorts the symbols into terminals, nonterminals, and multi-terminals, each group in
// order of creation, and assigns the final indices. It returns the sorted symbols, the number
// of terminals, and the number of terminals and nonterminals. The latter is also the index of
// the `{default}` symbol, which must be the last nonterminal created.
func (t *SymbolTable) freeze() ([]*Symbol, int, int) {
	syms := make([]*Symbol, len(t.symbols))
	copy(syms, t.symbols)
	slices.SortStableFunc(syms, func(a, b *Symbol) int {
		if c := symbolClass(a) - symbolClass(b); c != 0 {
			return c
		}
		return a.order - b.order
	})

	nterminal := 0
	nsymbol := 0
	for i, sym := range syms {
		sym.Index = i
		switch symbolClass(sym) {
		case 1:
			nterminal++
			nsymbol++
		case 2:
			nsymbol++
		}
	}

	// `{default}` is not counted.
	return syms, nterminal, nsymbol - 1
}
