package main

import (
	"fmt"
	"os"

	"github.com/nihei9/lalrgen/config"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func tracer() tracing.Trace {
	return tracing.Select("lalrgen.cmd")
}

// traceKeys are the tracers whose level --trace sets.
var traceKeys = []string{
	"lalrgen.grammar",
	"lalrgen.spec",
	"lalrgen.cmd",
}

var rootFlags = struct {
	trace  *string
	config *string
}{}

// conf is the configuration of the running command. Command-line flags take precedence over it.
var conf = config.NewConfig()

var rootCmd = &cobra.Command{
	Use:   "lalrgen",
	Short: "Generate an LALR(1) parsing table from a grammar",
	Long: `lalrgen reads a grammar written in the Lemon grammar language and
generates a packed LALR(1) parsing table and a report of its automaton.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "", "trace level (Debug, Info, Error)")
	rootFlags.config = rootCmd.PersistentFlags().String("config", "", fmt.Sprintf("configuration file (default ./%v if it exists)", config.DefaultFileName))

	pterm.Info.Prefix = pterm.Prefix{
		Text:  " lalrgen ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " error ",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func setup(cmd *cobra.Command, args []string) error {
	if *rootFlags.config != "" {
		c := config.NewConfig()
		if err := c.Load(*rootFlags.config); err != nil {
			return err
		}
		conf = c
	} else {
		c, err := config.LoadDefault(".")
		if err != nil {
			return err
		}
		conf = c
	}

	level := conf.TraceLevel
	if cmd.Flags().Changed("trace") {
		level = *rootFlags.trace
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(tracing.TraceLevelFromString(level))
	}
	tracer().Debugf("configuration: %v", conf)

	return nil
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
