package services

import (
	"context"
	"testing"

	"github.com/senyabanana/licitagora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirementService(t *testing.T) {
	f := newFixture()
	client := f.addClient("Papelaria Central Ltda")
	tender := f.addTender(client.ID, models.InAnalysisTender, nil)
	other := f.addTender(client.ID, models.InAnalysisTender, nil)
	ctx := context.Background()

	proposal, err := f.documents.UploadTenderDocument(ctx, tender.ID, models.TenderDocumentUpload{
		Type: "PROPOSTA",
		File: models.UploadedFile{FileName: "proposta.txt", Content: []byte("proposta")},
	})
	require.NoError(t, err)
	foreign, err := f.documents.UploadTenderDocument(ctx, other.ID, models.TenderDocumentUpload{
		Type: "PROPOSTA",
		File: models.UploadedFile{FileName: "proposta.txt", Content: []byte("proposta")},
	})
	require.NoError(t, err)

	t.Run("description is required", func(t *testing.T) {
		_, err := f.requirements.CreateRequirement(ctx, tender.ID, models.RequirementRequest{Description: "   "})
		errResp := assertKind(t, err, models.ValidationErrorKind)
		assert.Equal(t, []string{"description is required"}, errResp.Details)
	})

	t.Run("document must belong to the tender", func(t *testing.T) {
		_, err := f.requirements.CreateRequirement(ctx, tender.ID, models.RequirementRequest{
			Description: "Proposta assinada",
			DocumentID:  &foreign.Document.ID,
		})
		errResp := assertKind(t, err, models.ValidationErrorKind)
		assert.Equal(t, []string{"documentId must reference a document of the same tender"}, errResp.Details)

		_, err = f.requirements.CreateRequirement(ctx, tender.ID, models.RequirementRequest{
			Description: "Proposta assinada",
			DocumentID:  ptr("not-a-uuid"),
		})
		assertKind(t, err, models.ValidationErrorKind)
	})

	t.Run("unknown tender", func(t *testing.T) {
		_, err := f.requirements.CreateRequirement(ctx, "missing", models.RequirementRequest{Description: "x"})
		assertKind(t, err, models.NotFoundErrorKind)
	})

	t.Run("update keeps satisfied and category when omitted", func(t *testing.T) {
		created, err := f.requirements.CreateRequirement(ctx, tender.ID, models.RequirementRequest{
			Description: " Proposta assinada ",
			Category:    ptr("Required Document"),
			Satisfied:   ptr(true),
			DocumentID:  &proposal.Document.ID,
			Notes:       ptr("conferir assinatura"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Proposta assinada", created.Description)
		assert.True(t, created.Satisfied)

		updated, err := f.requirements.UpdateRequirement(ctx, created.ID, models.RequirementRequest{
			Description: "Proposta assinada pelo representante",
		})
		require.NoError(t, err)

		assert.Equal(t, "Proposta assinada pelo representante", updated.Description)
		assert.True(t, updated.Satisfied)
		require.NotNil(t, updated.Category)
		assert.Equal(t, "Required Document", *updated.Category)
		assert.Nil(t, updated.DocumentID)
		assert.Nil(t, updated.Notes)

		updated, err = f.requirements.UpdateRequirement(ctx, created.ID, models.RequirementRequest{
			Description: "Proposta assinada pelo representante",
			Satisfied:   ptr(false),
		})
		require.NoError(t, err)
		assert.False(t, updated.Satisfied)

		require.NoError(t, f.requirements.DeleteRequirement(ctx, created.ID))
		err = f.requirements.DeleteRequirement(ctx, created.ID)
		assertKind(t, err, models.NotFoundErrorKind)
	})
}

func TestReportService_Summary(t *testing.T) {
	f := newFixture()
	client := f.addClient("Papelaria Central Ltda")
	f.addTender(client.ID, models.InAnalysisTender, nil)
	f.addTender(client.ID, models.InProgressTender, nil)
	won := f.addTender(client.ID, models.InProgressTender, nil)
	ctx := context.Background()

	_, err := f.tenders.CloseTender(ctx, won.ID, models.TenderCloseRequest{FinalValue: "900", FinalProfit: "150", Won: ptr(true)})
	require.NoError(t, err)

	summary, err := f.reports.GetSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ByStatus[models.InAnalysisTender])
	assert.Equal(t, 1, summary.ByStatus[models.InProgressTender])
	assert.Equal(t, 1, summary.ByStatus[models.FinalizedTender])
	assert.Equal(t, 1, summary.Won)
	assert.Zero(t, summary.Lost)
	assert.Equal(t, 2000.0, summary.OpenEstimatedValue)
	assert.Equal(t, 900.0, summary.WonFinalValue)
	assert.Equal(t, 150.0, summary.WonFinalProfit)
}
