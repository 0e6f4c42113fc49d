package traceability

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// LayoutManifestDocument models a YAML/JSON manifest describing extra layouts.
type LayoutManifestDocument struct {
	Version string       `json:"version" yaml:"version"`
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Layouts []LayoutSpec `json:"layouts" yaml:"layouts"`
	Source  string       `json:"-" yaml:"-"`
}

// LoadManifestFile reads a manifest from disk and registers its layouts.
func (r *LayoutRegistry) LoadManifestFile(path string) (*LayoutManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestFiles registers every manifest, collecting failures.
func (r *LayoutRegistry) LoadManifestFiles(paths ...string) error {
	var loadErr error
	for _, path := range paths {
		if _, err := r.LoadManifestFile(path); err != nil {
			loadErr = errors.Join(loadErr, err)
		}
	}
	return loadErr
}

// LoadManifestDocument registers layouts from a decoded manifest.
func (r *LayoutRegistry) LoadManifestDocument(doc *LayoutManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("traceability: manifest document is nil")
	}
	for _, spec := range doc.Layouts {
		if err := r.Register(spec); err != nil {
			return fmt.Errorf("traceability: register layout %s from %s: %w", spec.Code, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*LayoutManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("traceability: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("traceability: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*LayoutManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc LayoutManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("traceability: manifest is empty")
		}
		return nil, fmt.Errorf("traceability: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeManifest writes the manifest as YAML.
func EncodeManifest(w io.Writer, doc *LayoutManifestDocument) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("traceability: write manifest: %w", err)
	}
	return encoder.Close()
}

// Validate ensures the manifest satisfies required fields.
func (doc *LayoutManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("traceability: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[LayoutType]struct{}, len(doc.Layouts))
	for idx, spec := range doc.Layouts {
		if spec.Code == "" {
			return fmt.Errorf("traceability: manifest layout at index %d is missing code", idx)
		}
		if spec.Name == "" {
			return fmt.Errorf("traceability: manifest layout %s missing name", spec.Code)
		}
		if _, exists := seen[spec.Code]; exists {
			return fmt.Errorf("traceability: manifest duplicates layout code %s", spec.Code)
		}
		seen[spec.Code] = struct{}{}
		if err := spec.validate(); err != nil {
			return err
		}
	}
	return nil
}
