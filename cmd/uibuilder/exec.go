package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/goliatone/go-uibuilder/internal/log"
	"github.com/goliatone/go-uibuilder/pkg/sandbox"
)

func runExec(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("exec", flag.ContinueOnError)
	flags.SetOutput(stderr)
	inline := flags.String("e", "", "fragment source (instead of a file)")
	values := flags.String("values", "{}", "JSON object bound as values and as individual globals")
	maxSteps := flags.Int("max-steps", 1_000_000, "step budget (negative disables)")
	maxDepth := flags.Int("max-depth", 64, "call depth limit")
	timeout := flags.Duration("timeout", 2*time.Second, "wall-clock limit (0 disables)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	fragment := *inline
	switch {
	case fragment == "" && flags.NArg() == 1:
		raw, err := readInput(flags.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "exec: %v\n", err)
			return 1
		}
		fragment = string(raw)
	case fragment == "" || flags.NArg() > 0:
		fmt.Fprintln(stderr, "exec: give either -e or one fragment file")
		return 2
	}

	var input map[string]any
	if err := json.Unmarshal([]byte(*values), &input); err != nil {
		fmt.Fprintf(stderr, "exec: -values: %v\n", err)
		return 2
	}

	executor := sandbox.New(
		sandbox.WithLogger(log.Logger),
		sandbox.WithMaxSteps(*maxSteps),
		sandbox.WithMaxDepth(*maxDepth),
		sandbox.WithTimeout(*timeout),
	)
	outcome, err := executor.Execute(context.Background(), fragment, input)
	if err != nil {
		var execErr *sandbox.ExecutionError
		if errors.As(err, &execErr) {
			fmt.Fprintf(stderr, "exec: %s: %v\n", execErr.Reason, err)
		} else {
			fmt.Fprintf(stderr, "exec: %v\n", err)
		}
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome); err != nil {
		fmt.Fprintf(stderr, "exec: %v\n", err)
		return 1
	}
	if !outcome.Succeeded() {
		return 1
	}
	return 0
}
