package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/goliatone/go-uibuilder"
	"github.com/goliatone/go-uibuilder/internal/log"
	"github.com/goliatone/go-uibuilder/pkg/render"
	"github.com/goliatone/go-uibuilder/pkg/renderers/tui"
)

func runFill(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("fill", flag.ContinueOnError)
	flags.SetOutput(stderr)
	format := flags.String("format", string(tui.OutputFormatJSON), "summary format: json, form or pretty")
	attempts := flags.Int("attempts", tui.DefaultMaxAttempts, "prompts per field before giving up")
	output := flags.String("output", "", "write the summary to a file")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, "fill: exactly one schema file is required")
		return 2
	}

	raw, err := readInput(flags.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "fill: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := uibuilder.Render(ctx, raw, "tui", render.RenderOptions{},
		uibuilder.WithLogger(log.Logger),
		uibuilder.WithTerminal(
			tui.WithPromptDriver(tui.NewSurveyDriver(stderr)),
			tui.WithOutputFormat(tui.OutputFormat(*format)),
			tui.WithMaxAttempts(*attempts),
		),
	)
	if err != nil {
		fmt.Fprintf(stderr, "fill: %v\n", err)
		return 1
	}
	return writeOutput(*output, out, stdout, stderr)
}
