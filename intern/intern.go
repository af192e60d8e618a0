// Package intern provides hash tables that keep exactly one instance of each distinct key.
//
// Tables use open addressing with linear probing. A lookup that finds its entry away from the
// probe origin swaps the entry into the origin slot, so frequently requested entries migrate
// toward the front of their probe chains. Entries are never deleted.
package intern

const (
	fnv32Base  = uint32(0x811c9dc5)
	fnv32Prime = uint32(0x01000193)

	minTableSize = 32
)

// HashString hashes a string with the FNV-1 step `h = h*prime ^ byte`.
func HashString(s string) uint32 {
	h := fnv32Base
	for i := 0; i < len(s); i++ {
		h = (h * fnv32Prime) ^ uint32(s[i])
	}
	return h
}

// HashRulePos hashes a (rule index, dot position) pair.
func HashRulePos(rule int, pos int) uint32 {
	h := fnv32Base
	h = (h * fnv32Prime) ^ uint32(rule)
	return (h * fnv32Prime) ^ uint32(pos)
}

// HashRulePosList folds a sequence of (rule index, dot position) pairs. rules and poss must have
// the same length.
func HashRulePosList(rules []int, poss []int) uint32 {
	h := fnv32Base
	for i := range rules {
		h = (h * fnv32Prime) ^ HashRulePos(rules[i], poss[i])
	}
	return h
}

const emptySlot = -1

type entry[K any, V any] struct {
	key K
	val V
}

// Table maps keys to values. Two keys are the same when eq reports true; hash must be
// consistent with eq.
type Table[K any, V any] struct {
	slots   []int
	entries []entry[K, V]
	hash    func(K) uint32
	eq      func(K, K) bool
}

func NewTable[K any, V any](hash func(K) uint32, eq func(K, K) bool) *Table[K, V] {
	return &Table[K, V]{
		hash: hash,
		eq:   eq,
	}
}

// Len returns the number of entries.
func (t *Table[K, V]) Len() int {
	return len(t.entries)
}

// Size returns the number of slots.
func (t *Table[K, V]) Size() int {
	return len(t.slots)
}

// Lookup returns the value registered for key.
func (t *Table[K, V]) Lookup(key K) (V, bool) {
	if len(t.slots) == 0 {
		var zero V
		return zero, false
	}

	size := uint32(len(t.slots))
	first := t.hash(key) & (size - 1)
	h := first
	for t.slots[h] != emptySlot {
		e := t.entries[t.slots[h]]
		if t.eq(key, e.key) {
			if h != first {
				t.slots[h], t.slots[first] = t.slots[first], t.slots[h]
			}
			return e.val, true
		}
		h++
		if h == size {
			h = 0
		}
	}

	var zero V
	return zero, false
}

// Intern returns the value already registered for key, or registers val and returns it. The
// boolean result is true when val was newly registered.
func (t *Table[K, V]) Intern(key K, val V) (V, bool) {
	if v, ok := t.Lookup(key); ok {
		return v, false
	}
	t.insert(key, val)
	return val, true
}

// Values returns all values in insertion order.
func (t *Table[K, V]) Values() []V {
	vals := make([]V, len(t.entries))
	for i, e := range t.entries {
		vals[i] = e.val
	}
	return vals
}

func (t *Table[K, V]) insert(key K, val V) {
	if len(t.slots)-1 <= len(t.entries)*2 {
		t.grow()
	}
	t.entries = append(t.entries, entry[K, V]{
		key: key,
		val: val,
	})
	t.place(len(t.entries) - 1)
}

func (t *Table[K, V]) grow() {
	size := minTableSize
	if len(t.slots) >= minTableSize {
		size = len(t.slots) * 2
	}
	t.slots = make([]int, size)
	for i := range t.slots {
		t.slots[i] = emptySlot
	}
	for i := range t.entries {
		t.place(i)
	}
}

func (t *Table[K, V]) place(idx int) {
	size := uint32(len(t.slots))
	h := t.hash(t.entries[idx].key) & (size - 1)
	for t.slots[h] != emptySlot {
		h++
		if h == size {
			h = 0
		}
	}
	t.slots[h] = idx
}

// StringID identifies an interned string. IDs are dense and start at 0.
type StringID int

// Strings interns strings.
type Strings struct {
	tab  *Table[string, StringID]
	strs []string
}

func NewStrings() *Strings {
	return &Strings{
		tab: NewTable[string, StringID](HashString, func(a, b string) bool {
			return a == b
		}),
	}
}

// Intern returns the ID of s, registering it on first use.
func (s *Strings) Intern(str string) StringID {
	id, isNew := s.tab.Intern(str, StringID(len(s.strs)))
	if isNew {
		s.strs = append(s.strs, str)
	}
	return id
}

// Lookup returns the ID of str when it has been interned.
func (s *Strings) Lookup(str string) (StringID, bool) {
	return s.tab.Lookup(str)
}

// String returns the text of id.
func (s *Strings) String(id StringID) string {
	return s.strs[id]
}

// Len returns the number of interned strings.
func (s *Strings) Len() int {
	return len(s.strs)
}
