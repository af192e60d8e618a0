package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	cgspec "github.com/nihei9/lalrgen/spec/grammar"
	"github.com/pingcap/errors"
	"github.com/spf13/cobra"
)

var graphFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "graph",
		Short:   "Export the automaton of a report in the Graphviz DOT format",
		Example: `  lalrgen graph calc-report.json -o calc.dot`,
		Args:    cobra.ExactArgs(1),
		RunE:    runGraph,
	}
	graphFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	rootCmd.AddCommand(cmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	w := io.Writer(os.Stdout)
	if *graphFlags.output != "" {
		f, err := os.Create(*graphFlags.output)
		if err != nil {
			return errors.Annotatef(err, "cannot create %s", *graphFlags.output)
		}
		defer f.Close()
		w = f
	}

	return writeGraph(w, report)
}

type graphEdge struct {
	from  int
	to    int
	label string
}

func stateComparator(a, b interface{}) int {
	return utils.IntComparator(a.(*cgspec.State).Number, b.(*cgspec.State).Number)
}

// writeGraph writes the states of a report as nodes labeled with their configs and the shifts
// and gotos as edges. States that accept are filled gray.
func writeGraph(w io.Writer, report *cgspec.Report) error {
	states := treeset.NewWith(stateComparator)
	edges := arraylist.New()
	for _, st := range report.States {
		states.Add(st)
	}
	for _, x := range states.Values() {
		st := x.(*cgspec.State)
		for _, act := range st.Actions {
			if act.Kind != "shift" {
				continue
			}
			edges.Add(&graphEdge{
				from:  st.Number,
				to:    act.State,
				label: report.Symbols[act.Symbol].Name,
			})
		}
	}
	tracer().Debugf("graph of %v states and %v edges", states.Size(), edges.Size())

	var b strings.Builder
	b.WriteString(`digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	for _, x := range states.Values() {
		st := x.(*cgspec.State)
		fmt.Fprintf(&b, "s%03d [fillcolor=%s label=\"{%03d | %s}\"]\n",
			st.Number, nodeColor(st), st.Number, configsForGraphviz(report, st.Configs))
	}
	it := edges.Iterator()
	for it.Next() {
		edge := it.Value().(*graphEdge)
		fmt.Fprintf(&b, "s%03d -> s%03d [label=\"%s\"]\n", edge.from, edge.to, escapeGraphviz(edge.label))
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func nodeColor(st *cgspec.State) string {
	for _, act := range st.Actions {
		if act.Kind == "accept" {
			return "lightgray"
		}
	}
	return "white"
}

func configsForGraphviz(report *cgspec.Report, configs []*cgspec.Config) string {
	var b strings.Builder
	for _, c := range configs {
		b.WriteString(escapeGraphviz(report.ConfigString(c)))
		b.WriteString(`\l`)
	}
	return b.String()
}

var graphvizEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`|`, `\|`,
	`{`, `\{`,
	`}`, `\}`,
	`<`, `\<`,
	`>`, `\>`,
)

// escapeGraphviz escapes the characters that have a meaning in a record label.
func escapeGraphviz(s string) string {
	return graphvizEscaper.Replace(s)
}
