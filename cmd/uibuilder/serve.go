package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-uibuilder"
	"github.com/goliatone/go-uibuilder/internal/config"
	"github.com/goliatone/go-uibuilder/internal/httpapi"
	"github.com/goliatone/go-uibuilder/internal/log"
	"github.com/goliatone/go-uibuilder/pkg/sandbox"
	"github.com/goliatone/go-uibuilder/pkg/store"
	"github.com/goliatone/go-uibuilder/pkg/store/sqlite"
	"github.com/goliatone/go-uibuilder/pkg/templates"
)

func runServe(args []string, stdout, stderr io.Writer) int {
	cfg, _, err := config.Load("serve", args, config.Environ(), stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return 2
	}
	if err := log.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openStore(cfg.Storage)
	if err != nil {
		log.Error("serve.store:", err)
		return 1
	}
	defer closeRepo()

	if cfg.Seed {
		n, err := store.Seed(ctx, repo)
		if err != nil {
			log.Error("serve.seed:", err)
			return 1
		}
		log.Debugf("seeded %d records", n)
	}

	app, err := newApp(cfg, repo)
	if err != nil {
		log.Error("serve.app:", err)
		return 1
	}

	err = runServer(ctx, cfg, httpapi.Wire(app))
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("serve.server:", err)
		return 1
	}
	return 0
}

func openStore(cfg config.Storage) (store.Repository, func(), error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}

func newApp(cfg config.Config, repo store.Repository) (httpapi.App, error) {
	catalog, err := templates.Builtin()
	if err != nil {
		return httpapi.App{}, err
	}
	renderers, err := uibuilder.NewRegistry()
	if err != nil {
		return httpapi.App{}, err
	}
	dispatcher := uibuilder.NewDispatcher(
		uibuilder.WithLogger(log.WithField("component", "forms")),
		uibuilder.WithSandboxOptions(
			sandbox.WithMaxSteps(cfg.Sandbox.MaxSteps),
			sandbox.WithMaxDepth(cfg.Sandbox.MaxDepth),
			sandbox.WithTimeout(cfg.Sandbox.Timeout),
		),
	)
	return httpapi.App{
		Store:      repo,
		Templates:  catalog,
		Dispatcher: dispatcher,
		Renderers:  renderers,
	}, nil
}

func runServer(ctx context.Context, cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("Listening on " + cfg.URL())
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
