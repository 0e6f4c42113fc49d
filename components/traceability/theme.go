package traceability

import (
	"sort"
	"strings"
)

// Theme carries brand tokens rendered as CSS variables plus named assets.
type Theme struct {
	Name       string
	Tokens     map[string]string
	Assets     ThemeAssets
	ChartTheme string
}

// ThemeAssets provides asset paths plus an optional prefix.
type ThemeAssets struct {
	Values map[string]string
	Prefix string
}

// DefaultTheme returns the ocean/sustainable brand palette.
func DefaultTheme() *Theme {
	return &Theme{
		Name: "ocean",
		Tokens: map[string]string{
			"ocean":             "hsl(200 85% 40%)",
			"ocean-light":       "hsl(200 80% 95%)",
			"sustainable":       "hsl(145 60% 38%)",
			"sustainable-light": "hsl(145 55% 94%)",
			"muted":             "hsl(210 20% 96%)",
			"muted-foreground":  "hsl(215 15% 45%)",
			"foreground":        "hsl(220 25% 12%)",
			"background":        "hsl(0 0% 100%)",
			"border":            "hsl(214 25% 88%)",
		},
		Assets: ThemeAssets{
			Values: map[string]string{
				"images":     "images",
				"stylesheet": "css/traceability.css",
			},
			Prefix: "/assets",
		},
	}
}

// AssetURL resolves the final URL for a named asset.
func (assets ThemeAssets) AssetURL(name string) string {
	path := assets.Values[name]
	if path == "" {
		return ""
	}
	if assets.Prefix != "" {
		return strings.TrimRight(assets.Prefix, "/") + "/" + strings.TrimLeft(path, "/")
	}
	return path
}

// ImageURL resolves an opaque image ref under the images asset.
func (t *Theme) ImageURL(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.Contains(ref, "://") || strings.HasPrefix(ref, "/") {
		return ref
	}
	base := t.AssetURL("images")
	if base == "" {
		return ref
	}
	return base + "/" + ref
}

// AssetURL resolves a named asset using the theme assets.
func (t *Theme) AssetURL(name string) string {
	if t == nil {
		return ""
	}
	return t.Assets.AssetURL(name)
}

// CSSVariables normalizes token keys into CSS variable names.
func (t *Theme) CSSVariables() map[string]string {
	if t == nil || len(t.Tokens) == 0 {
		return nil
	}
	vars := make(map[string]string, len(t.Tokens))
	for key, value := range t.Tokens {
		name := normalizeCSSVariable(key)
		if name == "" {
			continue
		}
		vars[name] = value
	}
	return vars
}

// CSSVariablesInline renders the variables as a style attribute, sorted by name.
func (t *Theme) CSSVariablesInline() string {
	vars := t.CSSVariables()
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var builder strings.Builder
	for _, key := range keys {
		if vars[key] == "" {
			continue
		}
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(vars[key])
		builder.WriteString("; ")
	}
	return strings.TrimSpace(builder.String())
}

func normalizeCSSVariable(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "--") {
		return name
	}
	return "--" + name
}
