package services

import (
	"context"
	"testing"
	"time"

	"github.com/senyabanana/licitagora/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportFromTenders_IsIdempotent(t *testing.T) {
	f := newFixture()
	client := f.addClient("Papelaria Central Ltda")
	closing := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	inProgress := f.addTender(client.ID, models.InProgressTender, &closing)
	f.addTender(client.ID, models.InProgressTender, nil)
	f.addTender(client.ID, models.InAnalysisTender, &closing)
	f.addTender(client.ID, models.FinalizedTender, &closing)
	ctx := context.Background()

	first, err := f.deadlines.ImportFromTenders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Imported)
	require.Len(t, f.store.deadlines, 1)

	second, err := f.deadlines.ImportFromTenders(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Imported)
	assert.Len(t, f.store.deadlines, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DeadlinesImported))

	var deadline models.Deadline
	for _, d := range f.store.deadlines {
		deadline = d
	}
	assert.Equal(t, "Closing of Tender: PE 012/2024 - Prefeitura de Campinas", deadline.Title)
	assert.Equal(t, closing, deadline.Date)
	require.NotNil(t, deadline.Notes)
	assert.Equal(t, models.ImportedDeadlineNotes, *deadline.Notes)
	require.NotNil(t, deadline.TenderID)
	assert.Equal(t, inProgress.ID, *deadline.TenderID)
}

func TestImportFromTenders_ManualDeadlineDoesNotBlockImport(t *testing.T) {
	f := newFixture()
	client := f.addClient("Papelaria Central Ltda")
	closing := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	tender := f.addTender(client.ID, models.InProgressTender, &closing)
	ctx := context.Background()

	_, err := f.deadlines.CreateDeadline(ctx, models.DeadlineRequest{
		Title:    "Visita técnica",
		Date:     "2024-04-10",
		TenderID: &tender.ID,
	})
	require.NoError(t, err)

	result, err := f.deadlines.ImportFromTenders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Len(t, f.store.deadlines, 2)
}

func TestImportFromTenders_StorageFailure(t *testing.T) {
	f := newFixture()
	client := f.addClient("Papelaria Central Ltda")
	closing := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	f.addTender(client.ID, models.InProgressTender, &closing)
	f.store.failCreateDeadline = errInjected

	_, err := f.deadlines.ImportFromTenders(context.Background())
	assertKind(t, err, models.StorageErrorKind)
}

func TestDeadlineCRUD(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.deadlines.CreateDeadline(ctx, models.DeadlineRequest{Title: " ", Date: "2024-02-30", TenderID: ptr("missing")})
	errResp := assertKind(t, err, models.ValidationErrorKind)
	assert.ElementsMatch(t, []string{
		"title is required",
		"date must be a valid date (YYYY-MM-DD)",
		"tenderId does not reference an existing tender",
	}, errResp.Details)

	created, err := f.deadlines.CreateDeadline(ctx, models.DeadlineRequest{Title: " Entrega de amostras ", Date: "2024-03-15", Notes: ptr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "Entrega de amostras", created.Title)
	assert.Nil(t, created.Notes)
	assert.Nil(t, created.TenderID)

	_, err = f.deadlines.CreateDeadline(ctx, models.DeadlineRequest{Title: "Impugnação", Date: "2024-05-01"})
	require.NoError(t, err)

	window, err := f.deadlines.GetDeadlines(ctx, "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, created.ID, window[0].ID)

	_, err = f.deadlines.GetDeadlines(ctx, "2024-04-01", "2024-03-01")
	assertKind(t, err, models.ValidationErrorKind)

	updated, err := f.deadlines.UpdateDeadline(ctx, created.ID, models.DeadlineRequest{Title: "Entrega adiada", Date: "2024-03-20"})
	require.NoError(t, err)
	assert.Equal(t, "Entrega adiada", updated.Title)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), updated.Date)

	require.NoError(t, f.deadlines.DeleteDeadline(ctx, created.ID))
	_, err = f.deadlines.GetDeadline(ctx, created.ID)
	assertKind(t, err, models.NotFoundErrorKind)
	err = f.deadlines.DeleteDeadline(ctx, created.ID)
	assertKind(t, err, models.NotFoundErrorKind)
}
