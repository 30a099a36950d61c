package main

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/goliatone/go-uibuilder/pkg/schema"
	"github.com/goliatone/go-uibuilder/pkg/templates"
)

func runTemplates(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("templates", flag.ContinueOnError)
	flags.SetOutput(stderr)
	output := flags.String("output", "", "write the exported schema to a file")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	catalog, err := templates.Builtin()
	if err != nil {
		fmt.Fprintf(stderr, "templates: %v\n", err)
		return 1
	}

	switch flags.NArg() {
	case 0:
		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCOMPONENTS\tDESCRIPTION")
		for _, tpl := range catalog.List() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", tpl.ID, tpl.Name, len(tpl.Schema.Components), tpl.Description)
		}
		tw.Flush()
		return 0
	case 1:
		tpl, ok := catalog.Get(flags.Arg(0))
		if !ok {
			fmt.Fprintf(stderr, "templates: unknown template %q\n", flags.Arg(0))
			return 1
		}
		out, err := schema.Export(tpl.Schema)
		if err != nil {
			fmt.Fprintf(stderr, "templates: %v\n", err)
			return 1
		}
		return writeOutput(*output, append(out, '\n'), stdout, stderr)
	default:
		fmt.Fprintln(stderr, "templates: at most one template id")
		return 2
	}
}
