package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	traceability "github.com/goliatone/go-traceability/components/traceability"
)

// StateInput selects the session to inspect.
type StateInput struct {
	SessionID string
}

// StateResult is the navigation snapshot plus scanner status.
type StateResult struct {
	SessionID string                       `json:"session_id"`
	State     traceability.NavigationState `json:"state"`
	Scanning  bool                         `json:"scanning"`
}

type stateService interface {
	State(ctx context.Context, sessionID string) (traceability.NavigationState, error)
	Scanning(ctx context.Context, sessionID string) (bool, error)
}

// StateQuery reads a session's navigation state.
type StateQuery struct {
	service stateService
}

// NewStateQuery builds the query.
func NewStateQuery(service stateService) *StateQuery {
	return &StateQuery{service: service}
}

var _ gocommand.Querier[StateInput, StateResult] = (*StateQuery)(nil)

// Query resolves the state for the session.
func (q *StateQuery) Query(ctx context.Context, input StateInput) (StateResult, error) {
	state, err := q.service.State(ctx, input.SessionID)
	if err != nil {
		return StateResult{}, err
	}
	scanning, err := q.service.Scanning(ctx, input.SessionID)
	if err != nil {
		return StateResult{}, err
	}
	return StateResult{SessionID: input.SessionID, State: state, Scanning: scanning}, nil
}
