package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ettle/strcase"

	traceability "github.com/goliatone/go-traceability/components/traceability"
)

type scaffoldCmd struct {
	Name           string            `required:"" help:"Display name of the layout (e.g. \"Retail Shelf\")."`
	Code           string            `help:"Layout code (defaults to the kebab-cased name)."`
	Description    string            `help:"One-line description shown in the admin layout picker."`
	Certifications string            `enum:"grid,list,badges" default:"grid" help:"Certification display (grid, list, badges)."`
	SupplyChain    string            `name:"supply-chain" enum:"timeline,cards,minimal" default:"cards" help:"Supply chain style (timeline, cards, minimal)."`
	Collapsible    bool              `help:"Render the supply chain collapsed behind a summary."`
	Localized      map[string]string `name:"localized-name" help:"Localized names as locale=value (repeatable)."`
	ManifestPath   string            `name:"manifest" required:"" type:"path" help:"Layout manifest YAML file to create or update."`
	Overwrite      bool              `help:"Replace an existing layout with the same code."`
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("tracectl: resolve manifest path: %w", err)
	}
	spec, err := cmd.spec()
	if err != nil {
		return err
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	if err := upsertLayout(doc, spec, cmd.Overwrite); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	return reportScaffold(stdout(), spec, manifestPath)
}

func (cmd *scaffoldCmd) spec() (traceability.LayoutSpec, error) {
	code := strings.TrimSpace(cmd.Code)
	if code == "" {
		code = deriveLayoutCode(cmd.Name)
	}
	if code == "" {
		return traceability.LayoutSpec{}, errors.New("tracectl: layout code could not be derived from the name; pass --code")
	}
	spec := traceability.LayoutSpec{
		Code:           traceability.LayoutType(code),
		Name:           strings.TrimSpace(cmd.Name),
		Description:    cmd.Description,
		NameLocalized:  cmd.Localized,
		Certifications: traceability.CertDisplay(cmd.Certifications),
		SupplyChain:    traceability.ChainStyle(cmd.SupplyChain),
		Collapsible:    cmd.Collapsible,
	}
	doc := traceability.LayoutManifestDocument{Version: traceability.ManifestVersion, Layouts: []traceability.LayoutSpec{spec}}
	if err := doc.Validate(); err != nil {
		return traceability.LayoutSpec{}, err
	}
	return spec, nil
}

func upsertLayout(doc *traceability.LayoutManifestDocument, spec traceability.LayoutSpec, overwrite bool) error {
	replaced := false
	for idx := range doc.Layouts {
		if doc.Layouts[idx].Code != spec.Code {
			continue
		}
		if !overwrite {
			return fmt.Errorf("tracectl: manifest already defines layout %s (use --overwrite to replace)", spec.Code)
		}
		doc.Layouts[idx] = spec
		replaced = true
		break
	}
	if !replaced {
		doc.Layouts = append(doc.Layouts, spec)
	}
	sort.Slice(doc.Layouts, func(i, j int) bool {
		return doc.Layouts[i].Code < doc.Layouts[j].Code
	})
	return nil
}

func loadOrInitManifest(path string) (*traceability.LayoutManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &traceability.LayoutManifestDocument{
				Version: traceability.ManifestVersion,
				Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
				Layouts: []traceability.LayoutSpec{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("tracectl: stat manifest: %w", err)
	}
	return traceability.ReadManifest(path)
}

func writeManifest(path string, doc *traceability.LayoutManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("tracectl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("tracectl: create manifest %s: %w", path, err)
	}
	defer file.Close()
	return traceability.EncodeManifest(file, doc)
}

func reportScaffold(out io.Writer, spec traceability.LayoutSpec, path string) error {
	_, err := fmt.Fprintf(out, "✓ Added layout %s (%s + %s) to %s\n", spec.Code, spec.Certifications, spec.SupplyChain, path)
	return err
}

// deriveLayoutCode turns a display name into a layout code: "Retail Shelf" -> "retail-shelf".
func deriveLayoutCode(name string) string {
	return strcase.ToKebab(strings.TrimSpace(name))
}
