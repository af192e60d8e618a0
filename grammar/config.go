package grammar

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/nihei9/lalrgen/intern"
	"golang.org/x/exp/slices"
)

type configStatus int

const (
	configIncomplete configStatus = iota
	configComplete
)

// Config is a rule with a dot in its right-hand side, together with the follow set of the
// LALR(1) item and the links along which follow sets propagate.
type Config struct {
	Rule   *Rule
	Dot    int
	Follow *bitset.BitSet

	// fwd are the configs that receive this config's follow set. bwd are the configs this config
	// receives from; they are turned into forward links by findLinks.
	fwd []*Config
	bwd []*Config

	state  *State
	status configStatus
}

func (c *Config) isCompleted() bool {
	return c.Dot >= len(c.Rule.RHS)
}

// symbolAfterDot returns nil when the dot is at the end of the rule.
func (c *Config) symbolAfterDot() *Symbol {
	if c.isCompleted() {
		return nil
	}
	return c.Rule.RHS[c.Dot]
}

func (c *Config) String() string {
	return c.Rule.dottedString(c.Dot)
}

func compareConfigs(a, b *Config) int {
	if c := a.Rule.Index - b.Rule.Index; c != 0 {
		return c
	}
	return a.Dot - b.Dot
}

type configKey struct {
	rule int
	dot  int
}

func hashConfigKey(k configKey) uint32 {
	return intern.HashRulePos(k.rule, k.dot)
}

func equalConfigKeys(a, b configKey) bool {
	return a == b
}

// configList collects the configs of the state under construction. A (rule, dot) pair appears
// in it at most once.
type configList struct {
	tab       *intern.Table[configKey, *Config]
	configs   []*Config
	basis     []*Config
	nterminal int
}

func newConfigList(nterminal int) *configList {
	return &configList{
		tab:       intern.NewTable[configKey, *Config](hashConfigKey, equalConfigKeys),
		nterminal: nterminal,
	}
}

// add returns the config of the rule and the dot, appending a new one to the list when there is
// none yet.
func (l *configList) add(r *Rule, dot int) *Config {
	c, isNew := l.tab.Intern(configKey{
		rule: r.Index,
		dot:  dot,
	}, &Config{
		Rule:   r,
		Dot:    dot,
		Follow: bitset.New(uint(l.nterminal)),
	})
	if isNew {
		l.configs = append(l.configs, c)
	}
	return c
}

// addBasis is like add but also records a new config as a member of the basis.
func (l *configList) addBasis(r *Rule, dot int) *Config {
	n := len(l.configs)
	c := l.add(r, dot)
	if len(l.configs) > n {
		l.basis = append(l.basis, c)
	}
	return c
}

// closure adds the dot-0 configs of every nonterminal that follows a dot, transitively. It seeds
// the follow sets of the added configs with what can follow the nonterminal inside the rule,
// and links a config to the added ones when the rest of its rule can derive the empty string.
func (l *configList) closure() {
	for i := 0; i < len(l.configs); i++ {
		c := l.configs[i]
		sym := c.symbolAfterDot()
		if sym == nil || sym.Kind != SymbolKindNonTerminal {
			continue
		}
		for _, r := range sym.Rules {
			newc := l.add(r, 0)
			if seedFollow(newc.Follow, c.Rule.RHS[c.Dot+1:]) && !slices.Contains(c.fwd, newc) {
				c.fwd = append(c.fwd, newc)
			}
		}
	}
}

// seedFollow adds FIRST(suffix) to follow. It reports whether the whole suffix can derive the
// empty string.
func seedFollow(follow *bitset.BitSet, suffix []*Symbol) bool {
	for _, sym := range suffix {
		switch sym.Kind {
		case SymbolKindTerminal:
			follow.Set(uint(sym.Index))
			return false
		case SymbolKindMultiTerminal:
			for _, sub := range sym.SubSymbols {
				follow.Set(uint(sub.Index))
			}
			return false
		default:
			follow.InPlaceUnion(sym.First)
			if !sym.Lambda {
				return false
			}
		}
	}
	return true
}

func (l *configList) sort() {
	slices.SortStableFunc(l.configs, compareConfigs)
}

func (l *configList) sortBasis() {
	slices.SortStableFunc(l.basis, compareConfigs)
}
