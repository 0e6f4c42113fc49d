package traceability

import (
	"context"
	"io"
)

// View identifies which screen a session is currently showing.
type View string

const (
	ViewScanner      View = "scanner"
	ViewTraceability View = "traceability"
	ViewCustomer     View = "customer"
	ViewAdmin        View = "admin"
)

// Views lists every navigation state.
var Views = []View{ViewScanner, ViewTraceability, ViewCustomer, ViewAdmin}

// LayoutType selects which arrangement of the product data is rendered.
type LayoutType string

const (
	LayoutComprehensive LayoutType = "comprehensive"
	LayoutExecutive     LayoutType = "executive"
	LayoutConsumer      LayoutType = "consumer"
)

// StepStatus is the progress marker of a supply-chain step.
type StepStatus string

const (
	StatusCompleted StepStatus = "completed"
	StatusCurrent   StepStatus = "current"
	StatusPending   StepStatus = "pending"
)

// StageIcon is a symbolic reference to a stage glyph. Templates resolve it via GlyphFor.
type StageIcon string

const (
	IconFarm         StageIcon = "farm"
	IconProcessing   StageIcon = "processing"
	IconDistribution StageIcon = "distribution"
	IconRetail       StageIcon = "retail"
)

// Certification is a third-party attestation attached to a product.
type Certification struct {
	Name     string `json:"name" yaml:"name"`
	Icon     string `json:"icon" yaml:"icon"`
	Issuer   string `json:"issuer" yaml:"issuer"`
	Date     string `json:"date" yaml:"date"`
	Document string `json:"document,omitempty" yaml:"document,omitempty"`
}

// ProductData is the single product record every view renders.
type ProductData struct {
	Image               string          `json:"image"`
	Name                string          `json:"name"`
	ProductID           string          `json:"productId"`
	HarvestDate         string          `json:"harvestDate"`
	SustainabilityScore int             `json:"sustainabilityScore"`
	Certifications      []Certification `json:"certifications"`
}

// Clone returns a deep copy of the product.
func (p ProductData) Clone() ProductData {
	out := p
	if p.Certifications != nil {
		out.Certifications = append([]Certification(nil), p.Certifications...)
	}
	return out
}

// StepTest records a quality test performed at a stage.
type StepTest struct {
	Name   string `json:"name"`
	Result string `json:"result"`
	Date   string `json:"date"`
}

// StepCertification is a certificate issued for a single stage.
type StepCertification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	ID     string `json:"id"`
}

// SupplyChainStep is one stage of the product journey.
type SupplyChainStep struct {
	Step            string              `json:"step"`
	Location        string              `json:"location"`
	Company         string              `json:"company"`
	Date            string              `json:"date"`
	Status          StepStatus          `json:"status"`
	Icon            StageIcon           `json:"icon"`
	Description     string              `json:"description"`
	CarbonFootprint string              `json:"carbonFootprint"`
	BlockchainTxID  string              `json:"blockchainTxId"`
	Tests           []StepTest          `json:"tests"`
	Certifications  []StepCertification `json:"certifications"`
}

// Clone returns a deep copy of the step.
func (s SupplyChainStep) Clone() SupplyChainStep {
	out := s
	if s.Tests != nil {
		out.Tests = append([]StepTest(nil), s.Tests...)
	}
	if s.Certifications != nil {
		out.Certifications = append([]StepCertification(nil), s.Certifications...)
	}
	return out
}

// CloneChain deep copies a supply chain.
func CloneChain(chain []SupplyChainStep) []SupplyChainStep {
	if chain == nil {
		return nil
	}
	out := make([]SupplyChainStep, len(chain))
	for i, step := range chain {
		out[i] = step.Clone()
	}
	return out
}

// EnvironmentalMetric is a headline impact figure shown next to the journey.
type EnvironmentalMetric struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Status string `json:"status"`
}

// ImageOption is one of the bundled product images the editor can choose.
type ImageOption struct {
	Ref   string `json:"ref"`
	Label string `json:"label"`
}

// Catalog bundles the seed data owned by the application controller.
type Catalog struct {
	Product       ProductData
	Chain         []SupplyChainStep
	Environmental []EnvironmentalMetric
	Images        []ImageOption
}

// Clone deep copies the catalog.
func (c Catalog) Clone() Catalog {
	out := Catalog{
		Product: c.Product.Clone(),
		Chain:   CloneChain(c.Chain),
	}
	if c.Environmental != nil {
		out.Environmental = append([]EnvironmentalMetric(nil), c.Environmental...)
	}
	if c.Images != nil {
		out.Images = append([]ImageOption(nil), c.Images...)
	}
	return out
}

// NavigationState is the snapshot held by a Navigator.
type NavigationState struct {
	View      View    `json:"currentView"`
	ProductID *string `json:"productId"`
}

// Scanner reports whether the state is the initial scanner screen.
func (s NavigationState) Scanner() bool {
	return s.View == ViewScanner
}

// ProductCode returns the stored product identifier or "".
func (s NavigationState) ProductCode() string {
	if s.ProductID == nil {
		return ""
	}
	return *s.ProductID
}

// NavigationEvent describes session changes that transports might care about.
type NavigationEvent struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Reason    string          `json:"reason"`
	State     NavigationState `json:"state"`
}

// EventHook notifies transports (SSE/WebSocket) about navigation changes.
type EventHook interface {
	NavigationChanged(ctx context.Context, event NavigationEvent) error
}

// Renderer describes the template renderer contract needed by the controller.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}
