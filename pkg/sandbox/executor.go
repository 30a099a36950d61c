package sandbox

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-uibuilder/pkg/sandbox/script"
)

// DefaultMaxFragmentSize bounds the fragment source accepted by Execute.
const DefaultMaxFragmentSize = 64 << 10

// Executor evaluates submission fragments. It holds no per-run state and is
// safe for concurrent use.
type Executor struct {
	logger      logrus.FieldLogger
	limits      script.Limits
	timeout     time.Duration
	now         func() time.Time
	maxFragment int
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger routes console output from fragments to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxSteps sets the evaluation step budget. A negative value disables it.
func WithMaxSteps(n int) Option {
	return func(e *Executor) {
		e.limits.MaxSteps = n
	}
}

// WithMaxDepth sets the maximum call depth.
func WithMaxDepth(n int) Option {
	return func(e *Executor) {
		e.limits.MaxDepth = n
	}
}

// WithMaxAllocBytes sets the allocation budget for strings and arrays built
// during one execution. A negative value disables it.
func WithMaxAllocBytes(n int) Option {
	return func(e *Executor) {
		e.limits.MaxAllocBytes = n
	}
}

// WithTimeout bounds each execution in wall-clock time.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithClock replaces the time source behind Date.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMaxFragmentSize bounds the fragment length in bytes.
func WithMaxFragmentSize(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxFragment = n
		}
	}
}

// New constructs an Executor. Without WithLogger console output is discarded.
func New(opts ...Option) *Executor {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Executor{
		logger:      discard,
		limits:      script.DefaultLimits,
		now:         time.Now,
		maxFragment: DefaultMaxFragmentSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Limits reports the effective interpreter limits.
func (e *Executor) Limits() script.Limits {
	return e.limits
}

// Execute runs fragment with input bound as globals (each key on its own and
// the whole mapping as values). Every failure is an *ExecutionError.
func (e *Executor) Execute(ctx context.Context, fragment string, input map[string]any) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(fragment) > e.maxFragment {
		return Outcome{}, newExecutionError(ReasonRejected, ErrUnsafeFragment,
			"fragment exceeds %d bytes", e.maxFragment)
	}
	if err := CheckFragment(fragment); err != nil {
		return Outcome{}, newExecutionError(ReasonRejected, err, "%s", err.Error())
	}

	prog, err := script.Parse(fragment)
	if err != nil {
		return Outcome{}, newExecutionError(ReasonSyntax, err, "%s", err.Error())
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	logger := e.logger.WithField("fragment", fragmentID(fragment))
	globals := e.globals(logger, input)

	started := time.Now()
	value, err := script.Run(ctx, prog, globals, e.limits)
	if err != nil {
		execErr := classify(err)
		logger.WithFields(logrus.Fields{
			"reason":   execErr.Reason,
			"duration": time.Since(started),
		}).Debug("fragment failed")
		return Outcome{}, execErr
	}

	out := shapeOutcome(value)
	logger.WithField("outcome", out.Kind).Debug("fragment completed")
	return out, nil
}

func classify(err error) *ExecutionError {
	var (
		exc   *script.Exception
		limit *script.LimitError
	)
	switch {
	case errors.As(err, &exc):
		reason := ReasonThrown
		if exc.Runtime {
			reason = ReasonRuntime
		}
		return newExecutionError(reason, err, "User code error: %s", exc.Message())
	case errors.As(err, &limit):
		return newExecutionError(ReasonLimit, err, "%s", limit.Error())
	case errors.Is(err, script.ErrCanceled):
		return newExecutionError(ReasonCanceled, err, "%s", err.Error())
	default:
		return newExecutionError(ReasonRuntime, err, "%s", err.Error())
	}
}

func fragmentID(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:6])
}
