package main

import (
	"os"

	verr "github.com/nihei9/lalrgen/error"
	"github.com/spf13/cobra"
)

var reprintFlags = struct {
	defines *[]string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "reprint",
		Short:   "Print a grammar in a normalized form",
		Example: `  lalrgen reprint calc.y`,
		Args:    cobra.ExactArgs(1),
		RunE:    runReprint,
	}
	reprintFlags.defines = cmd.Flags().StringArrayP("define", "D", nil, "define a macro tested by %ifdef and %ifndef")
	rootCmd.AddCommand(cmd)
}

func runReprint(cmd *cobra.Command, args []string) (retErr error) {
	grmPath := args[0]
	defer func() {
		if specErrs, ok := retErr.(verr.SpecErrors); ok {
			setSource(specErrs, grmPath, grmPath)
		}
	}()

	gram, err := readGrammar(grmPath, append(conf.Defines, *reprintFlags.defines...))
	if err != nil {
		return err
	}

	return gram.Reprint(os.Stdout, grmPath)
}
