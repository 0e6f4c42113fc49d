package traceability

import (
	"fmt"
	"sync"
)

// CertDisplay selects how certifications are arranged.
type CertDisplay string

const (
	CertDisplayGrid   CertDisplay = "grid"
	CertDisplayList   CertDisplay = "list"
	CertDisplayBadges CertDisplay = "badges"
)

// ChainStyle selects how supply-chain steps are arranged.
type ChainStyle string

const (
	ChainStyleTimeline ChainStyle = "timeline"
	ChainStyleCards    ChainStyle = "cards"
	ChainStyleMinimal  ChainStyle = "minimal"
)

// Valid reports whether the display is one of the known certification renderers.
func (d CertDisplay) Valid() bool {
	switch d {
	case CertDisplayGrid, CertDisplayList, CertDisplayBadges:
		return true
	}
	return false
}

// Valid reports whether the style is one of the known journey renderers.
func (s ChainStyle) Valid() bool {
	switch s {
	case ChainStyleTimeline, ChainStyleCards, ChainStyleMinimal:
		return true
	}
	return false
}

// LayoutSpec is one row of the layout table: a layout code and the pair of
// sub-renderers it composes.
type LayoutSpec struct {
	Code                 LayoutType        `json:"code" yaml:"code"`
	Name                 string            `json:"name" yaml:"name"`
	Description          string            `json:"description,omitempty" yaml:"description,omitempty"`
	NameLocalized        map[string]string `json:"name_localized,omitempty" yaml:"name_localized,omitempty"`
	DescriptionLocalized map[string]string `json:"description_localized,omitempty" yaml:"description_localized,omitempty"`
	Certifications       CertDisplay       `json:"certifications" yaml:"certifications"`
	SupplyChain          ChainStyle        `json:"supply_chain" yaml:"supply_chain"`
	Collapsible          bool              `json:"collapsible,omitempty" yaml:"collapsible,omitempty"`
}

func (s LayoutSpec) clone() LayoutSpec {
	out := s
	out.NameLocalized = cloneStringMap(s.NameLocalized)
	out.DescriptionLocalized = cloneStringMap(s.DescriptionLocalized)
	return out
}

func (s LayoutSpec) validate() error {
	if s.Code == "" {
		return fmt.Errorf("traceability: layout code is required")
	}
	if !s.Certifications.Valid() {
		return fmt.Errorf("traceability: layout %s has unknown certification display %q", s.Code, s.Certifications)
	}
	if !s.SupplyChain.Valid() {
		return fmt.Errorf("traceability: layout %s has unknown supply chain style %q", s.Code, s.SupplyChain)
	}
	return nil
}

// LayoutHook lets packages register layouts during init().
type LayoutHook func(reg *LayoutRegistry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []LayoutHook
)

// RegisterLayoutHook registers a hook executed against new registries.
func RegisterLayoutHook(h LayoutHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// LayoutRegistry stores the layout table.
type LayoutRegistry struct {
	mu    sync.RWMutex
	specs map[LayoutType]LayoutSpec
	order []LayoutType
}

// NewLayoutRegistry builds a registry seeded with the default layouts and global hooks.
func NewLayoutRegistry() *LayoutRegistry {
	reg := NewEmptyLayoutRegistry()
	for _, spec := range DefaultLayoutSpecs() {
		_ = reg.Register(spec)
	}
	_ = reg.ApplyHooks()
	return reg
}

// NewEmptyLayoutRegistry builds a registry without defaults.
func NewEmptyLayoutRegistry() *LayoutRegistry {
	return &LayoutRegistry{specs: map[LayoutType]LayoutSpec{}}
}

// ApplyHooks executes registered layout hooks.
func (r *LayoutRegistry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register adds or replaces a layout. Replacing keeps the original position.
func (r *LayoutRegistry) Register(spec LayoutSpec) error {
	if err := spec.validate(); err != nil {
		return err
	}
	spec = spec.clone()
	spec.NameLocalized = normalizeLocaleMap(spec.NameLocalized)
	spec.DescriptionLocalized = normalizeLocaleMap(spec.DescriptionLocalized)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.specs[spec.Code]; !exists {
		r.order = append(r.order, spec.Code)
	}
	r.specs[spec.Code] = spec
	return nil
}

// Layout fetches a layout by code.
func (r *LayoutRegistry) Layout(code LayoutType) (LayoutSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[code]
	if !ok {
		return LayoutSpec{}, false
	}
	return spec.clone(), true
}

// Layouts returns every layout in registration order.
func (r *LayoutRegistry) Layouts() []LayoutSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LayoutSpec, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.specs[code].clone())
	}
	return out
}

// Has reports whether the layout is registered.
func (r *LayoutRegistry) Has(code LayoutType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.specs[code]
	return ok
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
