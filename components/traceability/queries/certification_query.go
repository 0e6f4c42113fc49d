package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	traceability "github.com/goliatone/go-traceability/components/traceability"
)

// CertificationInput addresses one certification of the session's product.
type CertificationInput struct {
	SessionID string
	Index     int
}

type certificationService interface {
	Certification(ctx context.Context, sessionID string, index int) (traceability.Certification, error)
}

// CertificationQuery backs the certification detail dialog.
type CertificationQuery struct {
	service certificationService
}

// NewCertificationQuery builds the query.
func NewCertificationQuery(service certificationService) *CertificationQuery {
	return &CertificationQuery{service: service}
}

var _ gocommand.Querier[CertificationInput, traceability.Certification] = (*CertificationQuery)(nil)

// Query returns the certification at Index.
func (q *CertificationQuery) Query(ctx context.Context, input CertificationInput) (traceability.Certification, error) {
	if q.service == nil {
		return traceability.Certification{}, errors.New("certification query requires service")
	}
	return q.service.Certification(ctx, input.SessionID, input.Index)
}
