package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

type command struct {
	summary string
	run     func(args []string, stdout, stderr io.Writer) int
}

var commands = map[string]command{
	"serve":     {"run the HTTP API", runServe},
	"validate":  {"check schema files with the structural validator", runValidate},
	"lint":      {"report every issue in schema files", runLint},
	"render":    {"render a schema file as html or json", runRender},
	"fill":      {"fill and submit the forms of a schema in the terminal", runFill},
	"exec":      {"run a submit handler fragment against values", runExec},
	"templates": {"list or export the built-in templates", runTemplates},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		usage(stdout)
		return 0
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(stderr)
		return 2
	}
	return cmd.run(args[1:], stdout, stderr)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <command> [flags] [args]\n\nCommands:\n", filepath.Base(os.Args[0]))
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
}
