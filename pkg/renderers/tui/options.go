package tui

// OutputFormat controls how the collected submissions are serialised.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded with
	// "<form>.<field>" keys.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-readable summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme holds the prefixes printed in front of messages.
type Theme struct {
	InfoPrefix    string
	SuccessPrefix string
	ErrorPrefix   string
}

// DefaultTheme is used unless WithTheme is given.
var DefaultTheme = Theme{InfoPrefix: "", SuccessPrefix: "✔ ", ErrorPrefix: "✖ "}

// DefaultMaxAttempts bounds how often an invalid form is prompted again.
const DefaultMaxAttempts = 3

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialisation format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme sets the message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithMaxAttempts sets how many passes a form gets before ErrTooManyAttempts.
func WithMaxAttempts(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}
