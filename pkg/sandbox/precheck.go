package sandbox

import (
	"fmt"
	"regexp"
)

type blockedPattern struct {
	name string
	re   *regexp.Regexp
}

// blockedPatterns are matched against the raw fragment text before parsing,
// so a blocked name inside a string literal or comment is refused too.
var blockedPatterns = []blockedPattern{
	{"eval", regexp.MustCompile(`eval\s*\(`)},
	{"Function", regexp.MustCompile(`Function\s*\(`)},
	{"setTimeout", regexp.MustCompile(`setTimeout`)},
	{"setInterval", regexp.MustCompile(`setInterval`)},
	{"fetch", regexp.MustCompile(`fetch\s*\(`)},
	{"XMLHttpRequest", regexp.MustCompile(`XMLHttpRequest`)},
	{"document", regexp.MustCompile(`document\.`)},
	{"window", regexp.MustCompile(`window\.`)},
	{"global", regexp.MustCompile(`global\.`)},
	{"globalThis", regexp.MustCompile(`globalThis`)},
	{"process", regexp.MustCompile(`process\.`)},
	{"require", regexp.MustCompile(`require\s*\(`)},
	{"import", regexp.MustCompile(`import\s+`)},
	{"export", regexp.MustCompile(`export\s+`)},
	{"__proto__", regexp.MustCompile(`__proto__`)},
	{"constructor", regexp.MustCompile(`constructor`)},
	{"prototype", regexp.MustCompile(`prototype`)},
}

// blockedNames are bound to undefined in every execution.
var blockedNames = []string{
	"setTimeout", "setInterval", "fetch", "XMLHttpRequest", "eval", "Function",
	"require", "process", "window", "document", "global", "globalThis", "import",
}

// CheckFragment returns an error wrapping ErrUnsafeFragment when src matches
// one of the blocked patterns.
func CheckFragment(src string) error {
	for _, p := range blockedPatterns {
		if p.re.MatchString(src) {
			return fmt.Errorf("%w: %s", ErrUnsafeFragment, p.name)
		}
	}
	return nil
}

// IsSafe reports whether src passes CheckFragment.
func IsSafe(src string) bool {
	return CheckFragment(src) == nil
}
