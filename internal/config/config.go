// Package config resolves server and CLI settings from defaults, an optional
// HCL file and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/sirupsen/logrus"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

type Config struct {
	Addr    string
	Storage Storage
	Log     Log
	Sandbox Sandbox
	// Seed stores the built-in sample records when the store is empty.
	Seed bool
}

type Storage struct {
	Driver string
	Path   string
}

type Log struct {
	Level  string
	Format string
}

type Sandbox struct {
	MaxSteps int
	MaxDepth int
	Timeout  time.Duration
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Addr:    ":8080",
		Storage: Storage{Driver: DriverMemory, Path: "uibuilder.sqlite"},
		Log:     Log{Level: "info", Format: "text"},
		Sandbox: Sandbox{MaxSteps: 1_000_000, MaxDepth: 64, Timeout: 2 * time.Second},
		Seed:    true,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("config: addr %q: %w", c.Addr, err)
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return errors.New("config: storage.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	if c.Sandbox.MaxDepth <= 0 {
		return errors.New("config: sandbox.max_depth must be positive")
	}
	if c.Sandbox.Timeout < 0 {
		return errors.New("config: sandbox.timeout must not be negative")
	}
	return nil
}

// URL is the address a browser on this host would use.
func (c Config) URL() string {
	host, port, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return "http://" + c.Addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// Load parses args. A -config file is applied over the defaults and flags
// given explicitly on the command line win over both. environ feeds the env
// object visible to the file. The remaining positional arguments are
// returned alongside the config.
func Load(name string, args []string, environ []string, output io.Writer) (Config, []string, error) {
	cfg := Default()
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(output)

	var (
		file    string
		debug   bool
		parsed  = Default()
		timeout = parsed.Sandbox.Timeout
	)
	flags.StringVar(&file, "config", "", "path to an HCL config file")
	flags.StringVar(&parsed.Addr, "addr", parsed.Addr, "listen address")
	flags.StringVar(&parsed.Storage.Driver, "storage", parsed.Storage.Driver, "storage driver: memory or sqlite")
	flags.StringVar(&parsed.Storage.Path, "db", parsed.Storage.Path, "path to the SQLite database file")
	flags.StringVar(&parsed.Log.Level, "log-level", parsed.Log.Level, "log level: trace, debug, info, warn, error")
	flags.StringVar(&parsed.Log.Format, "log-format", parsed.Log.Format, "log format: text or json")
	flags.BoolVar(&debug, "debug", false, "log at DEBUG level")
	flags.BoolVar(&parsed.Seed, "seed", parsed.Seed, "store the sample records when missing")
	flags.IntVar(&parsed.Sandbox.MaxSteps, "max-steps", parsed.Sandbox.MaxSteps, "submit handler step budget (negative disables)")
	flags.IntVar(&parsed.Sandbox.MaxDepth, "max-depth", parsed.Sandbox.MaxDepth, "submit handler call depth limit")
	flags.DurationVar(&timeout, "timeout", timeout, "submit handler wall-clock limit (0 disables)")

	if err := flags.Parse(args); err != nil {
		return Config{}, nil, err
	}

	if file != "" {
		if err := decodeFile(file, environ, &cfg); err != nil {
			return Config{}, nil, err
		}
	}

	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = parsed.Addr
		case "storage":
			cfg.Storage.Driver = parsed.Storage.Driver
		case "db":
			cfg.Storage.Path = parsed.Storage.Path
		case "log-level":
			cfg.Log.Level = parsed.Log.Level
		case "log-format":
			cfg.Log.Format = parsed.Log.Format
		case "seed":
			cfg.Seed = parsed.Seed
		case "max-steps":
			cfg.Sandbox.MaxSteps = parsed.Sandbox.MaxSteps
		case "max-depth":
			cfg.Sandbox.MaxDepth = parsed.Sandbox.MaxDepth
		case "timeout":
			cfg.Sandbox.Timeout = timeout
		}
	})
	if debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, flags.Args(), nil
}

type fileConfig struct {
	Addr    *string       `hcl:"addr,optional"`
	Seed    *bool         `hcl:"seed,optional"`
	Storage *storageBlock `hcl:"storage,block"`
	Log     *logBlock     `hcl:"log,block"`
	Sandbox *sandboxBlock `hcl:"sandbox,block"`
}

type storageBlock struct {
	Driver *string `hcl:"driver,optional"`
	Path   *string `hcl:"path,optional"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type sandboxBlock struct {
	MaxSteps *int    `hcl:"max_steps,optional"`
	MaxDepth *int    `hcl:"max_depth,optional"`
	Timeout  *string `hcl:"timeout,optional"`
}

func decodeFile(path string, environ []string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("config: parse %s: %s", path, diags.Error())
	}
	return decodeBody(path, file.Body, environ, cfg)
}

// Parse applies HCL source held in memory; filename is used in diagnostics.
func Parse(filename string, src []byte, environ []string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("config: parse %s: %s", filename, diags.Error())
	}
	return decodeBody(filename, file.Body, environ, cfg)
}

func decodeBody(name string, body hcl.Body, environ []string, cfg *Config) error {
	var fc fileConfig
	if diags := gohcl.DecodeBody(body, evalContext(environ), &fc); diags.HasErrors() {
		return fmt.Errorf("config: decode %s: %s", name, diags.Error())
	}

	set(&cfg.Addr, fc.Addr)
	set(&cfg.Seed, fc.Seed)
	if b := fc.Storage; b != nil {
		set(&cfg.Storage.Driver, b.Driver)
		set(&cfg.Storage.Path, b.Path)
	}
	if b := fc.Log; b != nil {
		set(&cfg.Log.Level, b.Level)
		set(&cfg.Log.Format, b.Format)
	}
	if b := fc.Sandbox; b != nil {
		set(&cfg.Sandbox.MaxSteps, b.MaxSteps)
		set(&cfg.Sandbox.MaxDepth, b.MaxDepth)
		if b.Timeout != nil {
			d, err := time.ParseDuration(*b.Timeout)
			if err != nil {
				return fmt.Errorf("config: %s: sandbox.timeout: %w", name, err)
			}
			cfg.Sandbox.Timeout = d
		}
	}
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// evalContext exposes the process environment as env.NAME together with a
// few helpers for defaulting.
func evalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		vars[key] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
		Functions: map[string]function.Function{
			"lookup":   stdlib.LookupFunc,
			"coalesce": stdlib.CoalesceFunc,
			"lower":    stdlib.LowerFunc,
		},
	}
}

// Environ is os.Environ, split out so tests can pass their own environment.
var Environ = os.Environ
