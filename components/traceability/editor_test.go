package traceability

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEditor() *Editor {
	catalog := DefaultCatalog()
	return NewEditor(EditorOptions{Product: catalog.Product, Images: catalog.Images})
}

func TestEditorSetFieldScalars(t *testing.T) {
	editor := newTestEditor()

	require.NoError(t, editor.SetField(FieldName, "Tiger Prawns"))
	require.NoError(t, editor.SetField(FieldProductID, "TP-1"))
	require.NoError(t, editor.SetField(FieldHarvestDate, "March 1, 2024"))

	product := editor.Product()
	assert.Equal(t, "Tiger Prawns", product.Name)
	assert.Equal(t, "TP-1", product.ProductID)
	assert.Equal(t, "March 1, 2024", product.HarvestDate)
}

func TestEditorScoreParsing(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"92", 92},
		{" 40 ", 40},
		{"abc", 0},
		{"", 0},
		{"150", 150},
		{"-5", -5},
		{"7.5", 7},
		{"12pts", 12},
		{"-", 0},
	}
	editor := newTestEditor()
	for _, tc := range cases {
		require.NoError(t, editor.SetField(FieldSustainabilityScore, tc.input))
		assert.Equal(t, tc.want, editor.Product().SustainabilityScore, "input %q", tc.input)
	}
}

func TestEditorUnknownField(t *testing.T) {
	editor := newTestEditor()
	err := editor.SetField("origin", "Ecuador")
	assert.True(t, errors.Is(err, ErrUnknownField))
	err = editor.SetDraftField("origin", "x")
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestEditorAddCertificationRequiresNameAndIssuer(t *testing.T) {
	editor := newTestEditor()
	before := len(editor.Product().Certifications)

	editor.StageDraft(CertificationDraft{Name: "Fair Trade"})
	assert.False(t, editor.AddCertification())
	assert.Equal(t, "Fair Trade", editor.Draft().Name, "rejected draft should be kept")

	editor.StageDraft(CertificationDraft{Name: "  ", Issuer: "FT USA"})
	assert.False(t, editor.AddCertification())
	assert.Len(t, editor.Product().Certifications, before)

	require.NoError(t, editor.SetDraftField(DraftName, "Fair Trade"))
	require.NoError(t, editor.SetDraftField(DraftIssuer, "Fair Trade USA"))
	require.NoError(t, editor.SetDraftField(DraftIcon, "🤝"))
	require.NoError(t, editor.SetDraftField(DraftDate, "2024-02-01"))
	assert.True(t, editor.AddCertification())

	certs := editor.Product().Certifications
	require.Len(t, certs, before+1)
	assert.Equal(t, Certification{Name: "Fair Trade", Icon: "🤝", Issuer: "Fair Trade USA", Date: "2024-02-01"}, certs[before])
	assert.Equal(t, CertificationDraft{}, editor.Draft(), "draft should be cleared after add")
}

func TestEditorRemoveCertification(t *testing.T) {
	editor := newTestEditor()
	certs := editor.Product().Certifications
	require.Len(t, certs, 4)

	assert.False(t, editor.RemoveCertification(-1))
	assert.False(t, editor.RemoveCertification(4))
	assert.Len(t, editor.Product().Certifications, 4)

	assert.True(t, editor.RemoveCertification(1))
	after := editor.Product().Certifications
	require.Len(t, after, 3)
	assert.Equal(t, []string{certs[0].Name, certs[2].Name, certs[3].Name}, []string{after[0].Name, after[1].Name, after[2].Name})
}

func TestEditorSelectImage(t *testing.T) {
	editor := newTestEditor()
	require.NoError(t, editor.SelectImage("shrimp-3.jpg"))
	assert.Equal(t, "shrimp-3.jpg", editor.Product().Image)

	err := editor.SelectImage("lobster.jpg")
	assert.True(t, errors.Is(err, ErrUnknownImage))
	assert.Equal(t, "shrimp-3.jpg", editor.Product().Image)
}

func TestEditorDoesNotMutateSeed(t *testing.T) {
	catalog := DefaultCatalog()
	editor := NewEditor(EditorOptions{Product: catalog.Product, Images: catalog.Images})
	require.NoError(t, editor.SetField(FieldName, "Edited"))
	assert.True(t, editor.RemoveCertification(0))

	assert.Equal(t, "Premium White Shrimp", catalog.Product.Name)
	assert.Len(t, catalog.Product.Certifications, 4)

	returned := editor.Product()
	returned.Certifications[0].Name = "tampered"
	assert.NotEqual(t, "tampered", editor.Product().Certifications[0].Name)
}

func TestEditorResetRestoresSeed(t *testing.T) {
	editor := newTestEditor()
	require.NoError(t, editor.SetField(FieldName, "Edited"))
	editor.StageDraft(CertificationDraft{Name: "x"})
	editor.Reset()
	assert.Equal(t, "Premium White Shrimp", editor.Product().Name)
	assert.Equal(t, CertificationDraft{}, editor.Draft())
}

func TestEditorPreviewFollowsSelectedLayout(t *testing.T) {
	registry := NewLayoutRegistry()
	editor := newTestEditor()
	chain := DefaultCatalog().Chain

	view, err := editor.Preview(registry, chain)
	require.NoError(t, err)
	assert.Equal(t, LayoutComprehensive, view.Layout)

	require.NoError(t, editor.SelectLayout(LayoutConsumer, registry))
	require.NoError(t, editor.SetField(FieldName, "Preview Me"))
	view, err = editor.Preview(registry, chain)
	require.NoError(t, err)
	assert.Equal(t, LayoutConsumer, view.Layout)
	assert.Equal(t, "Preview Me", view.Product.Name)
	assert.True(t, view.SupplyChain.Collapsible)

	err = editor.SelectLayout("gallery", registry)
	assert.True(t, errors.Is(err, ErrUnknownLayout))
	assert.Equal(t, LayoutConsumer, editor.Layout())

	all := editor.PreviewAll(registry, chain)
	require.Len(t, all, 3)
	for _, v := range all {
		assert.Equal(t, "Preview Me", v.Product.Name)
	}
}

func TestEditorValidateIsAdvisory(t *testing.T) {
	editor := newTestEditor()
	require.NoError(t, editor.SetField(FieldSustainabilityScore, "150"))
	require.NoError(t, editor.SetField(FieldName, ""))

	err := editor.Validate(nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("sustainabilityScore"))
	assert.True(t, verr.Has("name"))
	assert.Equal(t, 150, editor.Product().SustainabilityScore, "validation must not clamp")
}
