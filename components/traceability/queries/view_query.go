package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	traceability "github.com/goliatone/go-traceability/components/traceability"
)

// ProductViewInput selects the layout to render the catalog product with.
type ProductViewInput struct {
	Layout traceability.LayoutType
}

type viewService interface {
	View(ctx context.Context, layout traceability.LayoutType) (traceability.ProductView, error)
}

// ProductViewQuery renders the read-only product.
type ProductViewQuery struct {
	service viewService
}

// NewProductViewQuery builds the query.
func NewProductViewQuery(service viewService) *ProductViewQuery {
	return &ProductViewQuery{service: service}
}

var _ gocommand.Querier[ProductViewInput, traceability.ProductView] = (*ProductViewQuery)(nil)

// Query renders the product with the requested layout.
func (q *ProductViewQuery) Query(ctx context.Context, input ProductViewInput) (traceability.ProductView, error) {
	return q.service.View(ctx, input.Layout)
}
