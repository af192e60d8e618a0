package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	verr "github.com/nihei9/lalrgen/error"
	"github.com/nihei9/lalrgen/grammar"
	"github.com/nihei9/lalrgen/spec"
	cgspec "github.com/nihei9/lalrgen/spec/grammar"
	"github.com/pingcap/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output        *string
	defines       *[]string
	basisOnly     *bool
	noCompress    *bool
	noResort      *bool
	showConflicts *bool
	statistics    *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile",
		Short:   "Compile a grammar into a parsing table",
		Example: `  lalrgen compile calc.y -o calc.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.defines = cmd.Flags().StringArrayP("define", "D", nil, "define a macro tested by %ifdef and %ifndef")
	compileFlags.basisOnly = cmd.Flags().BoolP("basis-only", "b", false, "list only the basis configurations in the report")
	compileFlags.noCompress = cmd.Flags().BoolP("no-compress", "c", false, "do not compress the action table with default actions")
	compileFlags.noResort = cmd.Flags().BoolP("no-resort", "r", false, "do not renumber the states")
	compileFlags.showConflicts = cmd.Flags().BoolP("show-conflicts", "p", false, "show the conflicts resolved by precedence in the report")
	compileFlags.statistics = cmd.Flags().BoolP("statistics", "s", false, "print statistics of the parsing table")
	rootCmd.AddCommand(cmd)
}

// applyCompileFlags overrides the configuration with the flags given on the command line.
func applyCompileFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("basis-only") {
		conf.BasisOnly = *compileFlags.basisOnly
	}
	if flags.Changed("no-compress") {
		conf.NoCompress = *compileFlags.noCompress
	}
	if flags.Changed("no-resort") {
		conf.NoResort = *compileFlags.noResort
	}
	if flags.Changed("show-conflicts") {
		conf.ShowConflicts = *compileFlags.showConflicts
	}
	if flags.Changed("statistics") {
		conf.Statistics = *compileFlags.statistics
	}
	conf.Defines = append(conf.Defines, *compileFlags.defines...)
}

func runCompile(cmd *cobra.Command, args []string) (retErr error) {
	applyCompileFlags(cmd)

	var tmpDirPath string
	defer func() {
		if tmpDirPath == "" {
			return
		}
		os.RemoveAll(tmpDirPath)
	}()

	var grmPath string
	if len(args) > 0 {
		grmPath = args[0]
	}
	sourceName := grmPath
	if sourceName == "" {
		sourceName = "stdin"
	}
	defer func() {
		if retErr != nil {
			specErrs, ok := retErr.(verr.SpecErrors)
			if ok {
				setSource(specErrs, grmPath, sourceName)
			}
		}
	}()

	if grmPath == "" {
		var err error
		tmpDirPath, err = os.MkdirTemp("", "lalrgen-compile-*")
		if err != nil {
			return err
		}

		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}

		grmPath = filepath.Join(tmpDirPath, "stdin.y")
		err = os.WriteFile(grmPath, src, 0600)
		if err != nil {
			return err
		}
	}

	gram, err := readGrammar(grmPath, conf.Defines)
	if err != nil {
		return err
	}

	cgram, report, a, err := grammar.Compile(gram, conf.CompileOptions()...)
	if err != nil {
		return err
	}
	if cgram.Name == "" {
		cgram.Name = defaultGrammarName(sourceName)
		report.Name = cgram.Name
	}

	err = writeCompiledGrammarAndReport(cgram, report, *compileFlags.output)
	if err != nil {
		return errors.Annotate(err, "cannot write the output files")
	}

	setSource(a.Diagnostics, grmPath, sourceName)
	for _, e := range a.Diagnostics {
		pterm.Error.Println(e)
	}
	if conf.Statistics {
		fmt.Fprintln(os.Stderr, statisticsTable(cgram.Statistics))
	}
	if a.ConflictCount > 0 {
		pterm.Error.Println(fmt.Sprintf("%v parsing conflicts", a.ConflictCount))
	}

	if a.ErrorCount > 0 || a.ConflictCount > 0 {
		return errors.Errorf("%v errors and %v conflicts", a.ErrorCount, a.ConflictCount)
	}
	return nil
}

func setSource(errs verr.SpecErrors, filePath, sourceName string) {
	for _, err := range errs {
		err.FilePath = filePath
		err.SourceName = sourceName
	}
}

// defaultGrammarName names a grammar without %name after its file.
func defaultGrammarName(sourceName string) string {
	if sourceName == "stdin" {
		return "parse"
	}
	base := filepath.Base(sourceName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readGrammar(path string, defines []string) (*grammar.Grammar, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "cannot open the grammar file %s", path)
	}

	src, err = spec.Preprocess(src, defines)
	if err != nil {
		if specErr, ok := err.(*verr.SpecError); ok {
			return nil, verr.SpecErrors{specErr}
		}
		return nil, err
	}

	ast, err := spec.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}

	b := grammar.GrammarBuilder{
		AST: ast,
	}
	return b.Build()
}

func statisticsTable(s *cgspec.Statistics) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Parser statistics", "Count"})
	t.AppendRow(table.Row{"terminal symbols", s.Terminals})
	t.AppendRow(table.Row{"non-terminal symbols", s.NonTerminals})
	t.AppendRow(table.Row{"rules", s.Rules})
	t.AppendRow(table.Row{"states", s.States})
	t.AppendRow(table.Row{"parser table entries", s.TableEntries})
	t.AppendRow(table.Row{"conflicts", s.Conflicts})
	t.AppendRow(table.Row{"errors", s.Errors})
	return t.Render()
}

// writeCompiledGrammarAndReport writes a compiled grammar and a report to files located at a path.
//
//  1. When the path is a directory, the compiled grammar and the report are written to
//     <path>/<grammar-name>.json and <path>/<grammar-name>-report.json.
//  2. When the path is a file or does not exist, it is the path of the compiled grammar, and the
//     report is written to <grammar-name>-report.json in the same directory.
//  3. When the path is empty, the compiled grammar is written to the stdout and the report to
//     <current-directory>/<grammar-name>-report.json.
func writeCompiledGrammarAndReport(cgram *cgspec.CompiledGrammar, report *cgspec.Report, path string) error {
	cgramPath, reportPath, err := makeOutputFilePaths(cgram.Name, path)
	if err != nil {
		return err
	}

	{
		var cgramW io.Writer
		if cgramPath != "" {
			cgramFile, err := os.OpenFile(cgramPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
			if err != nil {
				return err
			}
			defer cgramFile.Close()
			cgramW = cgramFile
		} else {
			cgramW = os.Stdout
		}

		b, err := json.Marshal(cgram)
		if err != nil {
			return err
		}
		fmt.Fprintf(cgramW, "%v\n", string(b))
	}

	{
		reportFile, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer reportFile.Close()

		b, err := json.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Fprintf(reportFile, "%v\n", string(b))
	}

	tracer().Infof("the report is written to %v", reportPath)

	return nil
}

func makeOutputFilePaths(gramName string, path string) (string, string, error) {
	reportFileName := gramName + "-report.json"

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return "", filepath.Join(wd, reportFileName), nil
	}

	fi, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", err
	}
	if os.IsNotExist(err) || !fi.IsDir() {
		dir, _ := filepath.Split(path)
		return path, filepath.Join(dir, reportFileName), nil
	}

	return filepath.Join(path, gramName+".json"), filepath.Join(path, reportFileName), nil
}

func readCompiledGrammar(path string) (*cgspec.CompiledGrammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "cannot open the compiled grammar %s", path)
	}
	defer f.Close()

	var cgram cgspec.CompiledGrammar
	err = json.NewDecoder(f).Decode(&cgram)
	if err != nil {
		return nil, errors.Annotatef(err, "cannot read the compiled grammar %s", path)
	}
	if cgram.ParsingTable == nil {
		return nil, errors.Errorf("%s has no parsing table", path)
	}
	return &cgram, nil
}

func readReport(path string) (*cgspec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "cannot open the report %s", path)
	}
	defer f.Close()

	var report cgspec.Report
	err = json.NewDecoder(f).Decode(&report)
	if err != nil {
		return nil, errors.Annotatef(err, "cannot read the report %s", path)
	}
	return &report, nil
}
