package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	traceability "github.com/goliatone/go-traceability/components/traceability"
)

// EditorInput selects the session whose editor is read.
type EditorInput struct {
	SessionID string
}

// EditorSnapshot is the admin editor state returned after every edit.
type EditorSnapshot struct {
	Product traceability.ProductData        `json:"product"`
	Draft   traceability.CertificationDraft `json:"draft"`
	Images  []traceability.ImageOption      `json:"images"`
	Layout  traceability.LayoutType         `json:"layout"`
	Issues  []traceability.FieldError       `json:"issues,omitempty"`
}

type editorService interface {
	Editor(ctx context.Context, sessionID string) (*traceability.Editor, error)
	Validate(ctx context.Context, sessionID string) error
}

// EditorQuery reads the working copy and its advisory issues.
type EditorQuery struct {
	service editorService
}

// NewEditorQuery builds the query.
func NewEditorQuery(service editorService) *EditorQuery {
	return &EditorQuery{service: service}
}

var _ gocommand.Querier[EditorInput, EditorSnapshot] = (*EditorQuery)(nil)

// Query snapshots the editor.
func (q *EditorQuery) Query(ctx context.Context, input EditorInput) (EditorSnapshot, error) {
	editor, err := q.service.Editor(ctx, input.SessionID)
	if err != nil {
		return EditorSnapshot{}, err
	}
	snapshot := EditorSnapshot{
		Product: editor.Product(),
		Draft:   editor.Draft(),
		Images:  editor.Images(),
		Layout:  editor.Layout(),
	}
	if err := q.service.Validate(ctx, input.SessionID); err != nil {
		var verr *traceability.ValidationError
		if !errors.As(err, &verr) {
			return EditorSnapshot{}, err
		}
		snapshot.Issues = verr.Fields
	}
	return snapshot, nil
}

// PreviewInput selects the session and whether every layout is rendered.
type PreviewInput struct {
	SessionID string
	All       bool
}

// PreviewResult holds the selected-layout preview or the side-by-side set.
type PreviewResult struct {
	Selected *traceability.ProductView  `json:"selected,omitempty"`
	All      []traceability.ProductView `json:"all,omitempty"`
}

type previewService interface {
	Preview(ctx context.Context, sessionID string) (traceability.ProductView, error)
	PreviewAll(ctx context.Context, sessionID string) ([]traceability.ProductView, error)
}

// PreviewQuery renders the editor's working copy.
type PreviewQuery struct {
	service previewService
}

// NewPreviewQuery builds the query.
func NewPreviewQuery(service previewService) *PreviewQuery {
	return &PreviewQuery{service: service}
}

var _ gocommand.Querier[PreviewInput, PreviewResult] = (*PreviewQuery)(nil)

// Query renders the preview.
func (q *PreviewQuery) Query(ctx context.Context, input PreviewInput) (PreviewResult, error) {
	if input.All {
		views, err := q.service.PreviewAll(ctx, input.SessionID)
		if err != nil {
			return PreviewResult{}, err
		}
		return PreviewResult{All: views}, nil
	}
	view, err := q.service.Preview(ctx, input.SessionID)
	if err != nil {
		return PreviewResult{}, err
	}
	return PreviewResult{Selected: &view}, nil
}
