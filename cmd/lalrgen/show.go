package main

import (
	"io"
	"os"
	"text/template"

	cgspec "github.com/nihei9/lalrgen/spec/grammar"
	"github.com/spf13/cobra"
)

var showFlags = struct {
	resolved *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print a report in the classic .out format",
		Example: `  lalrgen show calc-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	showFlags.resolved = cmd.Flags().BoolP("show-conflicts", "p", false, "show the conflicts resolved by precedence")
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}
	if *showFlags.resolved {
		report.ShowResolved = true
	}

	return writeReport(os.Stdout, report)
}

const reportTemplate = `{{ range .States }}State {{ .Number }}:
{{ range .Configs }}{{ configLine . }}
{{ end }}
{{ range .Actions }}{{ with actionLine . }}{{ . }}
{{ end }}{{ end }}
{{ end }}----------------------------------------------------
Symbols:
{{ range listedSymbols }}{{ symbolLine . }}
{{ end }}`

func writeReport(w io.Writer, report *cgspec.Report) error {
	fns := template.FuncMap{
		"configLine": func(c *cgspec.Config) string {
			return report.ConfigLine(c)
		},
		"actionLine": func(a *cgspec.Action) string {
			return report.ActionLine(a)
		},
		"listedSymbols": func() []*cgspec.Symbol {
			return report.ListedSymbols()
		},
		"symbolLine": func(sym *cgspec.Symbol) string {
			return report.SymbolLine(sym)
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, report)
}
