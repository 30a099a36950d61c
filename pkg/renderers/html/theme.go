package html

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

// StylesheetAsset is the theme asset key the page template links to.
const StylesheetAsset = "html.stylesheet"

// PartialKey returns the theme partial key that overrides the template for a
// node kind, for example "components.form".
func PartialKey(kind string) string {
	return "components." + kind
}

// ThemeConfig flattens a go-theme selection into renderer configuration.
// Variant tokens, templates and asset files override the manifest's;
// fallbacks fill partials neither defines. Every token also becomes a CSS
// custom property named "--<token>".
func ThemeConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		Partials: map[string]string{},
	}
	for key, value := range fallbacks {
		cfg.Partials[key] = value
	}

	manifest := selection.Manifest
	if manifest == nil {
		cfg.AssetURL = func(string) string { return "" }
		return cfg
	}
	variant, hasVariant := manifest.Variants[selection.Variant]

	mergeInto(cfg.Tokens, manifest.Tokens)
	mergeInto(cfg.Partials, manifest.Templates)
	if hasVariant {
		mergeInto(cfg.Tokens, variant.Tokens)
		mergeInto(cfg.Partials, variant.Templates)
	}
	for name, value := range cfg.Tokens {
		cfg.CSSVars["--"+name] = value
	}

	prefix := manifest.Assets.Prefix
	files := map[string]string{}
	mergeInto(files, manifest.Assets.Files)
	if hasVariant {
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
		mergeInto(files, variant.Assets.Files)
	}
	cfg.AssetURL = func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") || prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
	}
	return cfg
}

func mergeInto(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}
