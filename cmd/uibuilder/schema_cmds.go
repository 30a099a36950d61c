package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-uibuilder"
	"github.com/goliatone/go-uibuilder/pkg/render"
	"github.com/goliatone/go-uibuilder/pkg/validation"
)

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		fmt.Fprintln(stderr, "validate: at least one file is required")
		return 2
	}

	status := 0
	for _, path := range flags.Args() {
		raw, err := readInput(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			status = 1
			continue
		}
		_, result, err := validation.ValidateJSON(raw)
		switch {
		case err != nil:
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			status = 1
		case !result.Valid:
			fmt.Fprintf(stderr, "%s: %s\n", path, result.Err())
			status = 1
		default:
			fmt.Fprintf(stdout, "%s: ok\n", path)
		}
	}
	return status
}

func runLint(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("lint", flag.ContinueOnError)
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		fmt.Fprintln(stderr, "lint: at least one file is required")
		return 2
	}

	status := 0
	for _, path := range flags.Args() {
		raw, err := readInput(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			status = 1
			continue
		}
		result := validation.Lint(raw)
		if result.Valid {
			fmt.Fprintf(stdout, "%s: ok\n", path)
			continue
		}
		status = 1
		for _, issue := range result.Issues {
			location := issue.Field
			if location == "" {
				location = "(root)"
			}
			fmt.Fprintf(stderr, "%s: %s -> %s\n", path, location, issue.Message)
		}
	}
	return status
}

func runRender(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("render", flag.ContinueOnError)
	flags.SetOutput(stderr)
	renderer := flags.String("renderer", "html", "renderer to use: html or json")
	title := flags.String("title", "", "page title")
	output := flags.String("output", "", "output file (stdout if empty)")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, "render: exactly one schema file is required")
		return 2
	}

	raw, err := readInput(flags.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		return 1
	}
	out, err := uibuilder.Render(context.Background(), raw, *renderer, render.RenderOptions{Title: *title})
	if err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		if errors.Is(err, render.ErrRendererNotFound) {
			return 2
		}
		return 1
	}
	return writeOutput(*output, out, stdout, stderr)
}

func writeOutput(path string, out []byte, stdout, stderr io.Writer) int {
	if path == "" {
		stdout.Write(out)
		return 0
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		fmt.Fprintf(stderr, "write %s: %v\n", path, err)
		return 1
	}
	fmt.Fprintf(stdout, "written to %s\n", path)
	return 0
}
