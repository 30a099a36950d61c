package html

import (
	stdhtml "html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	imagePolicyOnce sync.Once
	imagePolicy     *bluemonday.Policy
)

// imageSanitizer allows a bare <img> with http, https or relative sources.
func imageSanitizer() *bluemonday.Policy {
	imagePolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("img")
		policy.AllowAttrs("alt", "class", "loading").OnElements("img")
		policy.AllowAttrs("width", "height").Matching(bluemonday.Number).OnElements("img")
		policy.AllowAttrs("src").OnElements("img")
		policy.AllowURLSchemes("http", "https")
		policy.AllowRelativeURLs(true)
		policy.RequireParseableURLs(true)
		imagePolicy = policy
	})
	return imagePolicy
}

// imageMarkup builds the <img> tag for an image node and passes it through
// the sanitiser. A source the policy refuses is dropped, leaving the alt text.
func imageMarkup(attrs map[string]string, className string) string {
	var b strings.Builder
	b.WriteString("<img")
	for _, name := range []string{"src", "alt", "width", "height"} {
		value, ok := attrs[name]
		if !ok {
			continue
		}
		if name == "src" {
			value = strings.TrimSpace(value)
		}
		b.WriteString(" " + name + `="` + stdhtml.EscapeString(value) + `"`)
	}
	if className != "" {
		b.WriteString(` class="` + stdhtml.EscapeString(className) + `"`)
	}
	b.WriteString(` loading="lazy">`)
	return strings.TrimSpace(imageSanitizer().Sanitize(b.String()))
}
