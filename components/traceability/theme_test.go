package traceability

import "testing"

func TestThemeAssetURLs(t *testing.T) {
	theme := DefaultTheme()
	if got := theme.AssetURL("stylesheet"); got != "/assets/css/traceability.css" {
		t.Fatalf("unexpected stylesheet url %q", got)
	}
	if got := theme.AssetURL("missing"); got != "" {
		t.Fatalf("expected empty url for unknown asset, got %q", got)
	}
	if got := theme.ImageURL("shrimp-2.jpg"); got != "/assets/images/shrimp-2.jpg" {
		t.Fatalf("unexpected image url %q", got)
	}
	if got := theme.ImageURL("https://cdn.example.com/a.jpg"); got != "https://cdn.example.com/a.jpg" {
		t.Fatalf("absolute urls should pass through, got %q", got)
	}
	if got := theme.ImageURL(""); got != "" {
		t.Fatalf("expected empty url for empty ref, got %q", got)
	}
	var nilTheme *Theme
	if nilTheme.AssetURL("stylesheet") != "" {
		t.Fatalf("nil theme should resolve nothing")
	}
}

func TestThemeCSSVariables(t *testing.T) {
	theme := &Theme{Tokens: map[string]string{"ocean": "blue", "--sustainable": "green", " ": "skip"}}
	vars := theme.CSSVariables()
	if vars["--ocean"] != "blue" || vars["--sustainable"] != "green" || len(vars) != 2 {
		t.Fatalf("unexpected variables %#v", vars)
	}
	if got := theme.CSSVariablesInline(); got != "--ocean: blue; --sustainable: green;" {
		t.Fatalf("unexpected inline css %q", got)
	}
}
