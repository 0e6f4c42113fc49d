package traceability

import "fmt"

// ProductView is the renderer output: a presentation tree built from one layout
// row and the product data. Templates only read it.
type ProductView struct {
	Layout         LayoutType           `json:"layout"`
	LayoutName     string               `json:"layout_name"`
	Product        ProductSummary       `json:"product"`
	Certifications CertificationSection `json:"certifications"`
	SupplyChain    ChainSection         `json:"supply_chain"`
}

// ProductSummary holds the scalar product fields.
type ProductSummary struct {
	Image               string `json:"image"`
	ImageURL            string `json:"image_url,omitempty"`
	Name                string `json:"name"`
	ProductID           string `json:"product_id"`
	HarvestDate         string `json:"harvest_date"`
	SustainabilityScore int    `json:"sustainability_score"`
}

// CertificationSection is the rendered certification block.
type CertificationSection struct {
	Display CertDisplay         `json:"display"`
	Columns int                 `json:"columns"`
	Items   []CertificationTile `json:"items"`
}

// CertificationTile is a single tappable certification. Every display opens the
// same detail dialog; DialogID is unique per layout so side-by-side previews do
// not share dialogs.
type CertificationTile struct {
	Index       int    `json:"index"`
	DialogID    string `json:"dialog_id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date"`
	Document    string `json:"document,omitempty"`
	HasDocument bool   `json:"has_document"`
}

// ChainSection is the rendered supply-chain block.
type ChainSection struct {
	Style       ChainStyle `json:"style"`
	Collapsible bool       `json:"collapsible"`
	Completed   int        `json:"completed"`
	Steps       []StepView `json:"steps"`
}

// StepView is one rendered stage. Which fields are filled depends on the style.
type StepView struct {
	Index           int                 `json:"index"`
	Step            string              `json:"step"`
	Location        string              `json:"location"`
	Company         string              `json:"company,omitempty"`
	Date            string              `json:"date,omitempty"`
	Status          StepStatus          `json:"status"`
	StatusClass     string              `json:"status_class"`
	Glyph           string              `json:"glyph"`
	Completed       bool                `json:"completed"`
	Description     string              `json:"description,omitempty"`
	CarbonFootprint string              `json:"carbon_footprint,omitempty"`
	BlockchainTxID  string              `json:"blockchain_tx_id,omitempty"`
	Tests           []StepTest          `json:"tests,omitempty"`
	Certifications  []StepCertification `json:"certifications,omitempty"`
	Connector       bool                `json:"connector"`
}

// Render composes the view for a layout. It never mutates its inputs and
// degrades to empty sections when the product has no certifications or steps.
func Render(spec LayoutSpec, product ProductData, chain []SupplyChainStep) ProductView {
	return ProductView{
		Layout:     spec.Code,
		LayoutName: spec.Name,
		Product: ProductSummary{
			Image:               product.Image,
			Name:                product.Name,
			ProductID:           product.ProductID,
			HarvestDate:         product.HarvestDate,
			SustainabilityScore: product.SustainabilityScore,
		},
		Certifications: renderCertifications(spec.Code, spec.Certifications, product.Certifications),
		SupplyChain:    renderSupplyChain(spec.SupplyChain, spec.Collapsible, chain),
	}
}

func renderCertifications(layout LayoutType, display CertDisplay, certs []Certification) CertificationSection {
	section := CertificationSection{
		Display: display,
		Columns: 1,
		Items:   make([]CertificationTile, 0, len(certs)),
	}
	if display == CertDisplayGrid {
		section.Columns = 2
	}
	for i, cert := range certs {
		section.Items = append(section.Items, CertificationTile{
			Index:       i,
			DialogID:    fmt.Sprintf("cert-dialog-%s-%d", layout, i),
			Name:        cert.Name,
			Icon:        cert.Icon,
			Issuer:      cert.Issuer,
			Date:        cert.Date,
			Document:    cert.Document,
			HasDocument: cert.Document != "",
		})
	}
	return section
}

func renderSupplyChain(style ChainStyle, collapsible bool, chain []SupplyChainStep) ChainSection {
	section := ChainSection{
		Style:       style,
		Collapsible: collapsible,
		Steps:       make([]StepView, 0, len(chain)),
	}
	for i, step := range chain {
		view := StepView{
			Index:       i,
			Step:        step.Step,
			Location:    step.Location,
			Status:      step.Status,
			StatusClass: statusClass(step.Status),
			Glyph:       GlyphFor(step.Icon),
			Completed:   step.Status == StatusCompleted,
		}
		if view.Completed {
			section.Completed++
		}
		switch style {
		case ChainStyleTimeline:
			view.Company = step.Company
			view.Date = step.Date
			view.Description = step.Description
			view.CarbonFootprint = step.CarbonFootprint
			view.BlockchainTxID = step.BlockchainTxID
			view.Tests = append([]StepTest(nil), step.Tests...)
			view.Certifications = append([]StepCertification(nil), step.Certifications...)
			view.Connector = i < len(chain)-1
		case ChainStyleCards:
			view.Company = step.Company
			view.Date = step.Date
		}
		section.Steps = append(section.Steps, view)
	}
	return section
}

// CertificationAt returns the certification at index or an IndexOutOfRangeError.
func CertificationAt(product ProductData, index int) (Certification, error) {
	if index < 0 || index >= len(product.Certifications) {
		return Certification{}, &IndexOutOfRangeError{Index: index, Len: len(product.Certifications)}
	}
	return product.Certifications[index], nil
}

// ValidateChain reports steps that break the ordering of statuses: at most one
// current step, and every step before it completed.
func ValidateChain(chain []SupplyChainStep) error {
	var fields []FieldError
	current := -1
	for i, step := range chain {
		if step.Status != StatusCurrent {
			continue
		}
		if current >= 0 {
			fields = append(fields, FieldError{Field: fmt.Sprintf("chain[%d].status", i), Message: "more than one current step"})
			continue
		}
		current = i
	}
	if current > 0 {
		for i := 0; i < current; i++ {
			if chain[i].Status != StatusCompleted {
				fields = append(fields, FieldError{Field: fmt.Sprintf("chain[%d].status", i), Message: "steps before the current step must be completed"})
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
