package grammar

import (
	"github.com/bits-and-blooms/bitset"
)

// findFirstSets computes the lambda flag and the FIRST set of every nonterminal. Both are
// least fixpoints, so they are iterated until a pass changes nothing.
func findFirstSets(g *Grammar) {
	for _, sym := range g.Symbols[:g.NSymbol] {
		sym.Lambda = false
		if sym.Kind == SymbolKindNonTerminal {
			sym.First = bitset.New(uint(g.NTerminal))
		}
	}

	for progress := true; progress; {
		progress = false
		for _, r := range g.Rules {
			if r.LHS.Lambda {
				continue
			}
			nullable := true
			for _, sym := range r.RHS {
				if !sym.Lambda {
					nullable = false
					break
				}
			}
			if nullable {
				r.LHS.Lambda = true
				progress = true
			}
		}
	}

	for progress := true; progress; {
		progress = false
		for _, r := range g.Rules {
			lhs := r.LHS
			for _, sym := range r.RHS {
				if sym.Kind == SymbolKindTerminal {
					if !lhs.First.Test(uint(sym.Index)) {
						lhs.First.Set(uint(sym.Index))
						progress = true
					}
					break
				}
				if sym.Kind == SymbolKindMultiTerminal {
					for _, sub := range sym.SubSymbols {
						if !lhs.First.Test(uint(sub.Index)) {
							lhs.First.Set(uint(sub.Index))
							progress = true
						}
					}
					break
				}
				if sym == lhs {
					if !lhs.Lambda {
						break
					}
					continue
				}
				if union(lhs.First, sym.First) {
					progress = true
				}
				if !sym.Lambda {
					break
				}
			}
		}
	}

	tracer().Debugf("FIRST sets are computed")
}

// union adds src to dst and reports whether dst changed.
func union(dst, src *bitset.BitSet) bool {
	n := dst.Count()
	dst.InPlaceUnion(src)
	return dst.Count() != n
}
