package traceability

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Editable product fields.
const (
	FieldName                = "name"
	FieldProductID           = "productId"
	FieldHarvestDate         = "harvestDate"
	FieldSustainabilityScore = "sustainabilityScore"
	FieldImage               = "image"
)

// Draft certification fields.
const (
	DraftName     = "name"
	DraftIcon     = "icon"
	DraftIssuer   = "issuer"
	DraftDate     = "date"
	DraftDocument = "document"
)

// CertificationDraft is the certification being typed in before it is added.
type CertificationDraft struct {
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	Issuer   string `json:"issuer"`
	Date     string `json:"date"`
	Document string `json:"document"`
}

func (d CertificationDraft) ready() bool {
	return strings.TrimSpace(d.Name) != "" && strings.TrimSpace(d.Issuer) != ""
}

// EditorOptions configures an Editor.
type EditorOptions struct {
	Product ProductData
	Images  []ImageOption
	Layout  LayoutType
}

// Editor holds the admin panel's working copy of the product. Mutations never
// reach the catalog; previews read the working copy.
type Editor struct {
	mu      sync.RWMutex
	seed    ProductData
	product ProductData
	draft   CertificationDraft
	images  []ImageOption
	layout  LayoutType
}

// NewEditor copies the seed product into a new working copy.
func NewEditor(opts EditorOptions) *Editor {
	if opts.Layout == "" {
		opts.Layout = LayoutComprehensive
	}
	if opts.Images == nil {
		opts.Images = append([]ImageOption(nil), defaultImages...)
	}
	return &Editor{
		seed:    opts.Product.Clone(),
		product: opts.Product.Clone(),
		images:  append([]ImageOption(nil), opts.Images...),
		layout:  opts.Layout,
	}
}

// Product returns a copy of the working product.
func (e *Editor) Product() ProductData {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.product.Clone()
}

// Draft returns the staged certification.
func (e *Editor) Draft() CertificationDraft {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.draft
}

// Images returns the selectable image options.
func (e *Editor) Images() []ImageOption {
	return append([]ImageOption(nil), e.images...)
}

// Layout returns the layout selected for preview.
func (e *Editor) Layout() LayoutType {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.layout
}

// SetField overwrites a scalar field. The score is parsed as an integer and
// stored as-is; unparsable input stores 0.
func (e *Editor) SetField(field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch field {
	case FieldName:
		e.product.Name = value
	case FieldProductID:
		e.product.ProductID = value
	case FieldHarvestDate:
		e.product.HarvestDate = value
	case FieldSustainabilityScore:
		e.product.SustainabilityScore = ParseScore(value)
	case FieldImage:
		if !e.knownImage(value) {
			return fmt.Errorf("%w: %s", ErrUnknownImage, value)
		}
		e.product.Image = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// ParseScore reads the leading integer of the input the way a browser number
// field hands it over: "7.5" is 7, "12pts" is 12, anything without leading
// digits is 0. Out of range values pass through.
func ParseScore(value string) int {
	value = strings.TrimSpace(value)
	end := 0
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		end++
	}
	digits := end
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	score, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return score
}

// StageDraft replaces the staged certification.
func (e *Editor) StageDraft(draft CertificationDraft) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = draft
}

// SetDraftField edits one field of the staged certification.
func (e *Editor) SetDraftField(field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch field {
	case DraftName:
		e.draft.Name = value
	case DraftIcon:
		e.draft.Icon = value
	case DraftIssuer:
		e.draft.Issuer = value
	case DraftDate:
		e.draft.Date = value
	case DraftDocument:
		e.draft.Document = value
	default:
		return fmt.Errorf("%w: draft.%s", ErrUnknownField, field)
	}
	return nil
}

// AddCertification appends the draft when it has a name and an issuer, then
// clears it. It reports whether anything was added.
func (e *Editor) AddCertification() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.draft.ready() {
		return false
	}
	e.product.Certifications = append(e.product.Certifications, Certification{
		Name:     e.draft.Name,
		Icon:     e.draft.Icon,
		Issuer:   e.draft.Issuer,
		Date:     e.draft.Date,
		Document: e.draft.Document,
	})
	e.draft = CertificationDraft{}
	return true
}

// RemoveCertification drops the certification at index. Out of range is a no-op.
func (e *Editor) RemoveCertification(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	certs := e.product.Certifications
	if index < 0 || index >= len(certs) {
		return false
	}
	next := make([]Certification, 0, len(certs)-1)
	next = append(next, certs[:index]...)
	next = append(next, certs[index+1:]...)
	e.product.Certifications = next
	return true
}

// SelectImage switches the product image to one of the bundled options.
func (e *Editor) SelectImage(ref string) error {
	return e.SetField(FieldImage, ref)
}

// SelectLayout picks the layout used by Preview.
func (e *Editor) SelectLayout(layout LayoutType, registry *LayoutRegistry) error {
	if registry != nil && !registry.Has(layout) {
		return fmt.Errorf("%w: %s", ErrUnknownLayout, layout)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.layout = layout
	return nil
}

// Reset discards edits and restores the seed product.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.product = e.seed.Clone()
	e.draft = CertificationDraft{}
}

// Preview renders the working copy with the selected layout.
func (e *Editor) Preview(registry *LayoutRegistry, chain []SupplyChainStep) (ProductView, error) {
	if registry == nil {
		registry = NewLayoutRegistry()
	}
	layout := e.Layout()
	spec, ok := registry.Layout(layout)
	if !ok {
		return ProductView{}, fmt.Errorf("%w: %s", ErrUnknownLayout, layout)
	}
	return Render(spec, e.Product(), chain), nil
}

// PreviewAll renders the working copy with every registered layout.
func (e *Editor) PreviewAll(registry *LayoutRegistry, chain []SupplyChainStep) []ProductView {
	if registry == nil {
		registry = NewLayoutRegistry()
	}
	product := e.Product()
	specs := registry.Layouts()
	out := make([]ProductView, 0, len(specs))
	for _, spec := range specs {
		out = append(out, Render(spec, product, chain))
	}
	return out
}

// Validate checks the working copy without changing it.
func (e *Editor) Validate(validator ProductValidator) error {
	if validator == nil {
		validator = NewSchemaProductValidator()
	}
	return validator.ValidateProduct(e.Product())
}

func (e *Editor) knownImage(ref string) bool {
	for _, opt := range e.images {
		if opt.Ref == ref {
			return true
		}
	}
	return false
}
