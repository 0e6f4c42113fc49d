package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	traceability "github.com/goliatone/go-traceability/components/traceability"
)

// LayoutsInput selects the locale for layout labels.
type LayoutsInput struct {
	Locale string
}

// LayoutSummary is one row of the layout table with localized labels.
type LayoutSummary struct {
	Code           traceability.LayoutType  `json:"code"`
	Name           string                   `json:"name"`
	Description    string                   `json:"description"`
	Certifications traceability.CertDisplay `json:"certifications"`
	SupplyChain    traceability.ChainStyle  `json:"supply_chain"`
	Collapsible    bool                     `json:"collapsible"`
}

// LayoutsQuery lists the registered layouts.
type LayoutsQuery struct {
	registry *traceability.LayoutRegistry
}

// NewLayoutsQuery builds the query.
func NewLayoutsQuery(registry *traceability.LayoutRegistry) *LayoutsQuery {
	return &LayoutsQuery{registry: registry}
}

var _ gocommand.Querier[LayoutsInput, []LayoutSummary] = (*LayoutsQuery)(nil)

// Query returns layouts in registration order.
func (q *LayoutsQuery) Query(_ context.Context, input LayoutsInput) ([]LayoutSummary, error) {
	specs := q.registry.Layouts()
	out := make([]LayoutSummary, 0, len(specs))
	for _, spec := range specs {
		out = append(out, LayoutSummary{
			Code:           spec.Code,
			Name:           spec.NameForLocale(input.Locale),
			Description:    spec.DescriptionForLocale(input.Locale),
			Certifications: spec.Certifications,
			SupplyChain:    spec.SupplyChain,
			Collapsible:    spec.Collapsible,
		})
	}
	return out, nil
}
