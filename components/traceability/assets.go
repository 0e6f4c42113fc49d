package traceability

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
)

// DefaultAssetsPath is where the embedded stylesheet is served.
const DefaultAssetsPath = "/assets/"

//go:embed assets/css/*
var embeddedAssets embed.FS

// AssetsFS exposes the embedded static assets rooted at assets/.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		panic(fmt.Errorf("traceability: failed to prepare embedded assets: %w", err))
	}
	return sub
}

// AssetsHandler serves the embedded assets below prefix.
func AssetsHandler(prefix string) http.Handler {
	if prefix == "" {
		prefix = DefaultAssetsPath
	}
	prefix = ensureTrailingSlash(prefix)
	return http.StripPrefix(prefix, http.FileServer(http.FS(AssetsFS())))
}

func ensureTrailingSlash(value string) string {
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
