package grammar

import (
	"fmt"

	verr "github.com/nihei9/lalrgen/error"
	"golang.org/x/exp/slices"
)

// ActionType is the kind of an action. The order of the constants is the order in which the
// actions on the same lookahead are sorted, so a shift always precedes a reduce.
type ActionType int

const (
	ActionShift ActionType = iota
	ActionAccept
	ActionReduce
	ActionError
	ActionSSConflict
	ActionSRConflict
	ActionRRConflict
	ActionShiftResolved
	ActionReduceResolved
	ActionNotUsed
)

func (t ActionType) String() string {
	switch t {
	case ActionShift:
		return "shift"
	case ActionAccept:
		return "accept"
	case ActionReduce:
		return "reduce"
	case ActionError:
		return "error"
	case ActionSSConflict:
		return "shift-shift-conflict"
	case ActionSRConflict:
		return "shift-reduce-conflict"
	case ActionRRConflict:
		return "reduce-reduce-conflict"
	case ActionShiftResolved:
		return "shift-resolved"
	case ActionReduceResolved:
		return "reduce-resolved"
	case ActionNotUsed:
		return "not-used"
	}
	return fmt.Sprintf("<unknown action type: %d>", int(t))
}

// IsConflict reports whether the action is an unresolved conflict.
func (t ActionType) IsConflict() bool {
	switch t {
	case ActionSSConflict, ActionSRConflict, ActionRRConflict:
		return true
	}
	return false
}

// Action is an entry of a state's action list. State is set on the actions derived from a
// shift, and Rule on the ones derived from a reduce.
type Action struct {
	Lookahead *Symbol
	Type      ActionType
	State     *State
	Rule      *Rule

	seq int
}

func (a *Action) String() string {
	switch a.Type {
	case ActionShift, ActionSSConflict, ActionShiftResolved:
		return fmt.Sprintf("%v %v -> %v", a.Type, a.Lookahead.Name, a.State.Num)
	case ActionReduce, ActionSRConflict, ActionRRConflict, ActionReduceResolved, ActionNotUsed:
		return fmt.Sprintf("%v %v -> rule %v", a.Type, a.Lookahead.Name, a.Rule.Index)
	}
	return fmt.Sprintf("%v %v", a.Type, a.Lookahead.Name)
}

func compareActions(a, b *Action) int {
	if c := a.Lookahead.Index - b.Lookahead.Index; c != 0 {
		return c
	}
	if c := int(a.Type) - int(b.Type); c != 0 {
		return c
	}
	if a.Type == ActionReduce {
		if c := a.Rule.Index - b.Rule.Index; c != 0 {
			return c
		}
	}
	return a.seq - b.seq
}

func sortActions(acts []*Action) {
	slices.SortStableFunc(acts, compareActions)
}

// findActions adds the reduce actions and the accept action to the automaton and resolves the
// conflicts between actions on the same lookahead.
func findActions(g *Grammar, a *Automaton) {
	for _, st := range a.States {
		for _, c := range st.Closure {
			if !c.isCompleted() {
				continue
			}
			for j, ok := c.Follow.NextSet(0); ok && j < uint(g.NTerminal); j, ok = c.Follow.NextSet(j + 1) {
				a.addAction(st, &Action{
					Lookahead: g.Symbols[j],
					Type:      ActionReduce,
					Rule:      c.Rule,
				})
			}
		}
	}

	a.addAction(a.States[0], &Action{
		Lookahead: a.StartSymbol,
		Type:      ActionAccept,
	})

	for _, st := range a.States {
		sortActions(st.Actions)
		for i, x := range st.Actions {
			for _, y := range st.Actions[i+1:] {
				if y.Lookahead != x.Lookahead {
					break
				}
				n := resolveConflict(x, y)
				if n > 0 {
					tracer().Debugf("state %v: conflict on %v: %v / %v", st.Num, x.Lookahead.Name, x, y)
				}
				a.ConflictCount += n
			}
		}
	}

	for _, r := range g.Rules {
		r.CanReduce = false
	}
	for _, st := range a.States {
		for _, act := range st.Actions {
			if act.Type == ActionReduce {
				act.Rule.CanReduce = true
			}
		}
	}
	for _, r := range g.Rules {
		if r.CanReduce {
			continue
		}
		a.addError(&verr.SpecError{
			Cause:  semErrRuleCannotBeReduced,
			Detail: r.String(),
			Row:    r.Line,
		})
	}

	tracer().Infof("actions are derived; %v conflicts", a.ConflictCount)
}

// resolveConflict settles two actions on the same lookahead, x sorting before y. It returns the
// number of conflicts that precedence could not resolve.
//
// A shift and a reduce are decided by the precedence of the lookahead against the precedence of
// the rule. When they are equal, `%right` keeps the shift, `%left` keeps the reduce, and
// `%nonassoc` turns the shift into a syntax error. Two reduces are decided by the precedences
// of their rules.
func resolveConflict(x, y *Action) int {
	errs := 0
	if x.Type == ActionShift && y.Type == ActionShift {
		y.Type = ActionSSConflict
		errs++
	}
	switch {
	case x.Type == ActionShift && y.Type == ActionReduce:
		spx := x.Lookahead
		spy := y.Rule.PrecSym
		switch {
		case spy == nil || spx.Prec < 0 || spy.Prec < 0:
			y.Type = ActionSRConflict
			errs++
		case spx.Prec > spy.Prec:
			y.Type = ActionReduceResolved
		case spx.Prec < spy.Prec:
			x.Type = ActionShiftResolved
		case spx.Assoc == AssocRight:
			y.Type = ActionReduceResolved
		case spx.Assoc == AssocLeft:
			x.Type = ActionShiftResolved
		default:
			x.Type = ActionError
		}
	case x.Type == ActionReduce && y.Type == ActionReduce:
		spx := x.Rule.PrecSym
		spy := y.Rule.PrecSym
		switch {
		case spx == nil || spy == nil || spx.Prec < 0 || spy.Prec < 0 || spx.Prec == spy.Prec:
			y.Type = ActionRRConflict
			errs++
		case spx.Prec > spy.Prec:
			y.Type = ActionReduceResolved
		default:
			x.Type = ActionReduceResolved
		}
	}
	return errs
}
