package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	cgspec "github.com/nihei9/lalrgen/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "describe",
		Short:   "Print a compiled grammar in readable format",
		Example: `  lalrgen describe calc.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDescribe,
	}
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return err
	}

	pterm.Info.Println(fmt.Sprintf("grammar %v: %v", cgram.Name, cgram.Statistics))
	root := pterm.NewTreeFromLeveledList(describeGrammar(cgram))
	pterm.DefaultTree.WithRoot(root).Render()
	fmt.Fprintln(os.Stdout, offsetTable(cgram.ParsingTable))
	fmt.Fprintln(os.Stdout, arrayTable(cgram.ParsingTable))

	return nil
}

// describeGrammar lists the symbols, the rules, and the actions of each state as read back from
// the packed table.
func describeGrammar(cgram *cgspec.CompiledGrammar) pterm.LeveledList {
	tab := cgram.ParsingTable
	ll := pterm.LeveledList{}

	ll = append(ll, pterm.LeveledListItem{Level: 0, Text: "symbols"})
	for _, sym := range cgram.Symbols {
		ll = append(ll, pterm.LeveledListItem{Level: 1, Text: symbolString(cgram, sym)})
	}

	ll = append(ll, pterm.LeveledListItem{Level: 0, Text: "rules"})
	for _, rule := range cgram.Rules {
		text := fmt.Sprintf("(%v) %v", rule.Index, ruleString(cgram, rule))
		if !rule.CanReduce {
			text += "  (never reduced)"
		}
		ll = append(ll, pterm.LeveledListItem{Level: 1, Text: text})
	}

	ll = append(ll, pterm.LeveledListItem{Level: 0, Text: "states"})
	for state := 0; state < tab.StateCount; state++ {
		ll = append(ll, pterm.LeveledListItem{Level: 1, Text: fmt.Sprintf("state %v", state)})
		entries, err := stateEntries(tab, state)
		if err != nil {
			ll = append(ll, pterm.LeveledListItem{Level: 2, Text: err.Error()})
			continue
		}
		for _, e := range entries {
			ll = append(ll, pterm.LeveledListItem{
				Level: 2,
				Text:  fmt.Sprintf("%v: %v", cgram.Symbols[e.symbol].Name, actionString(cgram, e.action)),
			})
		}
		ll = append(ll, pterm.LeveledListItem{
			Level: 2,
			Text:  fmt.Sprintf("default: %v", actionString(cgram, tab.Default[state])),
		})
	}

	return ll
}

type tableEntry struct {
	symbol int
	action int
}

// stateEntries returns the actions of a state that differ from its default action.
func stateEntries(tab *cgspec.ParsingTable, state int) ([]*tableEntry, error) {
	var entries []*tableEntry
	for sym := 0; sym < tab.SymbolCount; sym++ {
		var act int
		var err error
		if sym < tab.TerminalCount {
			act, err = tab.ShiftAction(state, sym)
		} else {
			act, err = tab.ReduceAction(state, sym)
		}
		if err != nil {
			return nil, err
		}
		if act == tab.Default[state] {
			continue
		}
		entries = append(entries, &tableEntry{
			symbol: sym,
			action: act,
		})
	}
	return entries, nil
}

func symbolString(cgram *cgspec.CompiledGrammar, sym *cgspec.Symbol) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%3v %v (%v)", sym.Index, sym.Name, sym.Kind)
	if sym.Precedence >= 0 {
		fmt.Fprintf(&b, " prec %v %v", sym.Precedence, sym.Associativity)
	}
	if sym.Fallback != cgspec.SymbolNil {
		fmt.Fprintf(&b, " falls back to %v", cgram.Symbols[sym.Fallback].Name)
	}
	if len(sym.SubSymbols) > 0 {
		names := make([]string, len(sym.SubSymbols))
		for i, s := range sym.SubSymbols {
			names[i] = cgram.Symbols[s].Name
		}
		fmt.Fprintf(&b, " = %v", strings.Join(names, "|"))
	}
	return b.String()
}

func ruleString(cgram *cgspec.CompiledGrammar, rule *cgspec.Rule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v ::=", cgram.Symbols[rule.LHS].Name)
	for _, elem := range rule.RHS {
		names := make([]string, len(elem.Symbols))
		for i, s := range elem.Symbols {
			names[i] = cgram.Symbols[s].Name
		}
		fmt.Fprintf(&b, " %v", strings.Join(names, "|"))
	}
	b.WriteString(".")
	if rule.PrecSymbol != cgspec.SymbolNil {
		fmt.Fprintf(&b, " [%v]", cgram.Symbols[rule.PrecSymbol].Name)
	}
	return b.String()
}

func actionString(cgram *cgspec.CompiledGrammar, act int) string {
	kind, operand := cgram.ParsingTable.Decode(act)
	switch kind {
	case cgspec.ActionKindShift:
		return fmt.Sprintf("shift %v", operand)
	case cgspec.ActionKindReduce:
		return fmt.Sprintf("reduce %v (%v)", operand, ruleString(cgram, cgram.Rules[operand]))
	}
	return kind.String()
}

func offsetTable(tab *cgspec.ParsingTable) string {
	offset := func(offsets []int, useDefault, state int) interface{} {
		if state >= len(offsets) || offsets[state] == useDefault {
			return "-"
		}
		return offsets[state]
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"State", "Shift Offset", "Reduce Offset", "Default"})
	for state := 0; state < tab.StateCount; state++ {
		t.AppendRow(table.Row{
			state,
			offset(tab.ShiftOffset, tab.ShiftUseDefault, state),
			offset(tab.ReduceOffset, tab.ReduceUseDefault, state),
			tab.Default[state],
		})
	}
	return t.Render()
}

func arrayTable(tab *cgspec.ParsingTable) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Array", "Length", "Range", "Type"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Array", WidthMax: 16},
		{Name: "Type", WidthMax: 20},
	})
	t.AppendRow(table.Row{"action", len(tab.Action), fmt.Sprintf("0..%v", tab.NoAction()), tab.Types.Action})
	t.AppendRow(table.Row{"lookahead", len(tab.Lookahead), fmt.Sprintf("0..%v", tab.SymbolCount), tab.Types.Code})
	t.AppendRow(table.Row{"shift offset", len(tab.ShiftOffset), fmt.Sprintf("%v..%v", tab.ShiftOffsetMin, tab.ShiftOffsetMax), tab.Types.ShiftOffset})
	t.AppendRow(table.Row{"reduce offset", len(tab.ReduceOffset), fmt.Sprintf("%v..%v", tab.ReduceOffsetMin, tab.ReduceOffsetMax), tab.Types.ReduceOffset})
	t.AppendRow(table.Row{"default", len(tab.Default), fmt.Sprintf("0..%v", tab.ErrorAction()), tab.Types.Action})
	if len(tab.Fallback) > 0 {
		t.AppendRow(table.Row{"fallback", len(tab.Fallback), fmt.Sprintf("0..%v", tab.TerminalCount-1), tab.Types.Code})
	}
	return t.Render()
}
