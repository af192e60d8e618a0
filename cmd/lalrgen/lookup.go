package main

import (
	"fmt"
	"os"
	"strconv"

	cgspec "github.com/nihei9/lalrgen/spec/grammar"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up the action of a state on a symbol in a compiled grammar",
		Long: `lookup reads the action of a state on a symbol out of the packed table the same way
a generated parser does. A symbol is given by its name or by its index.`,
		Example: `  lalrgen lookup calc.json 0 NUM`,
		Args:    cobra.ExactArgs(3),
		RunE:    runLookup,
	}
	rootCmd.AddCommand(cmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return err
	}

	state, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Errorf("invalid state number: %v", args[1])
	}

	sym, err := findSymbol(cgram, args[2])
	if err != nil {
		return err
	}

	act, err := lookupAction(cgram.ParsingTable, state, sym.Index)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "state %v, %v: %v\n", state, sym.Name, actionString(cgram, act))

	return nil
}

func findSymbol(cgram *cgspec.CompiledGrammar, s string) (*cgspec.Symbol, error) {
	for _, sym := range cgram.Symbols {
		if sym.Name == s {
			return sym, nil
		}
	}
	if i, err := strconv.Atoi(s); err == nil && i >= 0 && i < len(cgram.Symbols) {
		return cgram.Symbols[i], nil
	}
	return nil, errors.Errorf("unknown symbol: %v", s)
}

// lookupAction reads the action on a terminal from the shift part of the table and the action
// on a nonterminal from the reduce part.
func lookupAction(tab *cgspec.ParsingTable, state, sym int) (int, error) {
	if sym >= tab.SymbolCount {
		return 0, errors.Errorf("symbol %v has no entry in the table", sym)
	}
	if sym < tab.TerminalCount {
		act, err := tab.ShiftAction(state, sym)
		return act, errors.Trace(err)
	}
	act, err := tab.ReduceAction(state, sym)
	return act, errors.Trace(err)
}
