package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikramdxb02-del/smmcompare/app/models"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/panelapi"
)

type stubAdapter struct {
	items []map[string]any
	err   error
}

func (s *stubAdapter) Name() string { return "stub" }

func (s *stubAdapter) FetchServices(ctx context.Context, baseURL, apiKey string) ([]map[string]any, error) {
	return s.items, s.err
}

type fakeStore struct {
	existing    map[string]bool
	failFor     map[string]bool
	upserted    []*models.Service
	deactivated []string
	sweepCalled bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{existing: map[string]bool{}, failFor: map[string]bool{}}
}

func (f *fakeStore) UpsertService(svc *models.Service) (bool, error) {
	if f.failFor[svc.ProviderServiceID] {
		return false, errors.New("constraint violation")
	}
	f.upserted = append(f.upserted, svc)
	created := !f.existing[svc.ProviderServiceID]
	f.existing[svc.ProviderServiceID] = true
	return created, nil
}

func (f *fakeStore) DeactivateMissing(providerID uint, seenIDs []string) (int64, error) {
	f.sweepCalled = true
	seen := map[string]bool{}
	for _, id := range seenIDs {
		seen[id] = true
	}
	var n int64
	for id := range f.existing {
		if !seen[id] {
			f.deactivated = append(f.deactivated, id)
			n++
		}
	}
	return n, nil
}

func newTestRunner(adapter panelapi.Adapter, store CatalogStore) *Runner {
	registry := panelapi.NewRegistry(nil)
	registry.Register(adapter)
	return NewRunner(registry, store)
}

func testProvider() *models.Provider {
	return &models.Provider{ID: 3, Name: "Panel", APIURL: "https://panel.example.com", Adapter: "stub"}
}

func stubSummaryCache(t *testing.T) *[]*Summary {
	t.Helper()
	original := cacheSummary
	t.Cleanup(func() { cacheSummary = original })

	var cached []*Summary
	cacheSummary = func(s *Summary) { cached = append(cached, s) }
	return &cached
}

func TestIngestProviderConfigErrors(t *testing.T) {
	stubSummaryCache(t)
	runner := newTestRunner(&stubAdapter{}, newFakeStore())

	t.Run("missing api url", func(t *testing.T) {
		p := testProvider()
		p.APIURL = ""
		_, err := runner.IngestProvider(context.Background(), p, "key")
		assert.ErrorIs(t, err, ErrNoAPIURL)
	})

	t.Run("missing credential", func(t *testing.T) {
		_, err := runner.IngestProvider(context.Background(), testProvider(), "")
		assert.ErrorIs(t, err, ErrNoCredential)
	})
}

func TestIngestProviderCountsCreatedAndUpdated(t *testing.T) {
	stubSummaryCache(t)
	store := newFakeStore()
	store.existing["2"] = true // pre-existing row, this run updates it

	adapter := &stubAdapter{items: []map[string]any{
		{"id": "1", "name": "One", "rate": 0.5},
		{"id": "2", "name": "Two", "rate": 1.25},
	}}

	summary, err := newTestRunner(adapter, store).IngestProvider(context.Background(), testProvider(), "key")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Stats.Total)
	assert.Equal(t, 1, summary.Stats.Saved)
	assert.Equal(t, 1, summary.Stats.Updated)
	assert.Equal(t, 0, summary.Stats.Errors)
	assert.NotEmpty(t, summary.RunID)
}

func TestIngestProviderPartialFailures(t *testing.T) {
	stubSummaryCache(t)
	store := newFakeStore()
	store.failFor["5"] = true

	items := make([]map[string]any, 0, 10)
	for i := 1; i <= 10; i++ {
		items = append(items, map[string]any{"id": float64(i), "name": "svc"})
	}

	summary, err := newTestRunner(&stubAdapter{items: items}, store).
		IngestProvider(context.Background(), testProvider(), "key")
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Stats.Errors)
	assert.Equal(t, 9, summary.Stats.Saved)
	assert.Len(t, store.upserted, 9, "the other nine items must still be persisted")
}

func TestIngestProviderItemWithoutIDCountsAsError(t *testing.T) {
	stubSummaryCache(t)
	store := newFakeStore()

	adapter := &stubAdapter{items: []map[string]any{
		{"name": "no id at all"},
		{"id": "1", "name": "fine"},
	}}

	summary, err := newTestRunner(adapter, store).IngestProvider(context.Background(), testProvider(), "key")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Stats.Errors)
	assert.Equal(t, 1, summary.Stats.Saved)
}

func TestIngestProviderSweepsStaleServices(t *testing.T) {
	stubSummaryCache(t)
	store := newFakeStore()
	store.existing["old-1"] = true
	store.existing["old-2"] = true

	adapter := &stubAdapter{items: []map[string]any{{"id": "new-1", "name": "New"}}}

	summary, err := newTestRunner(adapter, store).IngestProvider(context.Background(), testProvider(), "key")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Stats.Deactivated)
	assert.ElementsMatch(t, []string{"old-1", "old-2"}, store.deactivated)
}

func TestIngestProviderEmptyCatalogSkipsSweep(t *testing.T) {
	stubSummaryCache(t)
	store := newFakeStore()
	store.existing["old-1"] = true

	summary, err := newTestRunner(&stubAdapter{items: nil}, store).
		IngestProvider(context.Background(), testProvider(), "key")
	require.NoError(t, err)

	assert.False(t, store.sweepCalled, "an empty upstream response must not wipe the catalog")
	assert.Equal(t, 0, summary.Stats.Deactivated)
}

func TestIngestProviderPropagatesFetchError(t *testing.T) {
	stubSummaryCache(t)
	fetchErr := &panelapi.FetchError{
		LastDiagnostic: "status 403: API error: Invalid API key",
		AttemptedURLs:  []string{"https://panel.example.com/api?action=services&key=***"},
		Suggestion:     "check the key",
	}

	_, err := newTestRunner(&stubAdapter{err: fetchErr}, newFakeStore()).
		IngestProvider(context.Background(), testProvider(), "key")

	var got *panelapi.FetchError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, fetchErr.Suggestion, got.Suggestion)
}

func TestIngestProviderCachesSummary(t *testing.T) {
	cached := stubSummaryCache(t)
	adapter := &stubAdapter{items: []map[string]any{{"id": "1"}}}

	summary, err := newTestRunner(adapter, newFakeStore()).
		IngestProvider(context.Background(), testProvider(), "key")
	require.NoError(t, err)

	require.Len(t, *cached, 1)
	assert.Equal(t, summary.RunID, (*cached)[0].RunID)
}
