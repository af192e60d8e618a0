// Package compressor packs the sparse per-state action rows of a parsing table into a single pair
// of action and lookahead arrays.
//
// Each row is placed at an offset so that the action for lookahead `la` in a row placed at offset
// `o` is found at index `o + la`. The lookahead array records which lookahead owns each slot, so
// a lookup that lands on a slot owned by another row is detected as a miss.
package compressor

import "fmt"

const emptySlot = -1

type slot struct {
	lookahead int
	action    int
}

var empty = slot{
	lookahead: emptySlot,
	action:    emptySlot,
}

// ActionTable accumulates rows through transactions. A transaction starts with Begin, receives
// its (lookahead, action) pairs through Add, and is placed by Commit.
type ActionTable struct {
	slots   []slot
	pending []slot

	// lookahead bounds of the pending transaction; minAction is the action paired with minLA
	minLA     int
	minAction int
	maxLA     int
}

func NewActionTable() *ActionTable {
	return &ActionTable{}
}

// Begin discards any pairs added since the last Commit.
func (t *ActionTable) Begin() {
	t.pending = t.pending[:0]
}

// Add records one (lookahead, action) pair of the pending transaction. Both values must be
// non-negative.
func (t *ActionTable) Add(lookahead, action int) error {
	if lookahead < 0 {
		return fmt.Errorf("a lookahead must be >=0; got: %v", lookahead)
	}
	if action < 0 {
		return fmt.Errorf("an action must be >=0; got: %v", action)
	}

	if len(t.pending) == 0 {
		t.minLA = lookahead
		t.minAction = action
		t.maxLA = lookahead
	} else {
		if lookahead > t.maxLA {
			t.maxLA = lookahead
		}
		if lookahead < t.minLA {
			t.minLA = lookahead
			t.minAction = action
		}
	}
	t.pending = append(t.pending, slot{
		lookahead: lookahead,
		action:    action,
	})
	return nil
}

// Commit places the pending transaction and returns its offset. A transaction identical to a
// row already in the table shares that row's offset. Otherwise the transaction goes into the
// first hole that fits it, which may extend the table.
func (t *ActionTable) Commit() (int, error) {
	if len(t.pending) == 0 {
		return 0, fmt.Errorf("a transaction must contain at least one action")
	}

	i := t.findDuplicate()
	if i < 0 {
		i = t.findHole()
	}
	for _, p := range t.pending {
		t.set(p.lookahead-t.minLA+i, p)
	}
	t.pending = t.pending[:0]

	return i - t.minLA, nil
}

// findDuplicate returns the index at which the minimum lookahead of an already placed row equal
// to the pending transaction sits, or -1.
func (t *ActionTable) findDuplicate() int {
	for i := len(t.slots) - 1; i >= 0; i-- {
		if t.slots[i].lookahead != t.minLA || t.slots[i].action != t.minAction {
			continue
		}
		if !t.alignsWith(i) {
			continue
		}

		// No lookahead outside the transaction may be reachable through this offset.
		n := 0
		for j, s := range t.slots {
			if s.lookahead == emptySlot {
				continue
			}
			if s.lookahead == j+t.minLA-i {
				n++
			}
		}
		if n == len(t.pending) {
			return i
		}
	}
	return -1
}

func (t *ActionTable) alignsWith(i int) bool {
	for _, p := range t.pending {
		k := p.lookahead - t.minLA + i
		if k < 0 || k >= len(t.slots) {
			return false
		}
		if t.slots[k] != p {
			return false
		}
	}
	return true
}

// findHole returns the first index at which the pending transaction can be placed. The scan
// always terminates: once i exceeds len(t.slots)+t.minLA, every target slot is past the end of
// the table and no placed lookahead can collide.
func (t *ActionTable) findHole() int {
	for i := 0; ; i++ {
		if t.at(i).lookahead != emptySlot {
			continue
		}
		if !t.fitsAt(i) {
			continue
		}
		if t.collidesAt(i) {
			continue
		}
		return i
	}
}

func (t *ActionTable) fitsAt(i int) bool {
	for _, p := range t.pending {
		k := p.lookahead - t.minLA + i
		if k < 0 {
			return false
		}
		if t.at(k).lookahead != emptySlot {
			return false
		}
	}
	return true
}

func (t *ActionTable) collidesAt(i int) bool {
	for j, s := range t.slots {
		if s.lookahead == emptySlot {
			continue
		}
		if s.lookahead == j+t.minLA-i {
			return true
		}
	}
	return false
}

func (t *ActionTable) at(i int) slot {
	if i < 0 || i >= len(t.slots) {
		return empty
	}
	return t.slots[i]
}

func (t *ActionTable) set(i int, s slot) {
	for len(t.slots) <= i {
		t.slots = append(t.slots, empty)
	}
	t.slots[i] = s
}

// Size returns the length of the packed arrays.
func (t *ActionTable) Size() int {
	return len(t.slots)
}

// Action returns the action at index i, or -1 when the slot is empty.
func (t *ActionTable) Action(i int) int {
	return t.at(i).action
}

// Lookahead returns the lookahead owning index i, or -1 when the slot is empty.
func (t *ActionTable) Lookahead(i int) int {
	return t.at(i).lookahead
}

// Lookup returns the action of a row placed at offset for the lookahead.
func (t *ActionTable) Lookup(offset, lookahead int) (int, bool) {
	s := t.at(offset + lookahead)
	if s.lookahead == emptySlot || s.lookahead != lookahead {
		return 0, false
	}
	return s.action, true
}
