package grammar

import (
	"bufio"
	"fmt"
	"io"
)

// Reprint writes the grammar back in a normalized form. A comment header lists the symbols with
// their indices in columns, and each rule follows on its own line.
func (g *Grammar) Reprint(w io.Writer, fileName string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "// Reprint of input file \"%s\".\n// Symbols:\n", fileName)

	maxLen := 10
	for _, sym := range g.Symbols[:g.NSymbol] {
		if len(sym.Name) > maxLen {
			maxLen = len(sym.Name)
		}
	}
	ncolumns := 76 / (maxLen + 5)
	if ncolumns < 1 {
		ncolumns = 1
	}
	skip := (g.NSymbol + ncolumns - 1) / ncolumns
	for i := 0; i < skip; i++ {
		fmt.Fprint(bw, "//")
		for j := i; j < g.NSymbol; j += skip {
			name := g.Symbols[j].Name
			if len(name) > maxLen {
				name = name[:maxLen]
			}
			fmt.Fprintf(bw, " %3d %-*s", j, maxLen, name)
		}
		fmt.Fprint(bw, "\n")
	}

	for _, r := range g.Rules {
		fmt.Fprint(bw, r.String())
		if r.precMarked {
			fmt.Fprintf(bw, " [%s]", r.PrecSym.Name)
		}
		fmt.Fprint(bw, "\n")
	}

	return bw.Flush()
}
