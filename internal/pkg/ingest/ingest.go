package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/vikramdxb02-del/smmcompare/app/models"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/cache"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/panelapi"
)

// Configuration errors are fatal for the ingestion call and surfaced
// immediately; nothing is retried for them.
var (
	ErrNoAPIURL     = errors.New("provider has no API URL configured")
	ErrNoCredential = errors.New("no API key stored for this provider")
)

const summaryCacheTTL = 24 * time.Hour

// Stats are the per-run audit counters reported back to the operator.
type Stats struct {
	Saved       int `json:"saved"`
	Updated     int `json:"updated"`
	Errors      int `json:"errors"`
	Deactivated int `json:"deactivated"`
	Total       int `json:"total"`
}

// Summary describes one completed ingestion run.
type Summary struct {
	RunID      string    `json:"run_id"`
	ProviderID uint      `json:"provider_id"`
	Stats      Stats     `json:"stats"`
	FinishedAt time.Time `json:"finished_at"`
}

// CatalogStore is the slice of the service repository the runner needs.
type CatalogStore interface {
	UpsertService(svc *models.Service) (created bool, err error)
	DeactivateMissing(providerID uint, seenIDs []string) (int64, error)
}

// Runner drives one provider ingestion: fetch through the provider's
// adapter, normalize, upsert item by item, then sweep stale rows. Items
// are processed sequentially; catalogs top out at a few thousand rows and
// simplicity beats throughput here.
type Runner struct {
	Registry *panelapi.Registry
	Store    CatalogStore
}

func NewRunner(registry *panelapi.Registry, store CatalogStore) *Runner {
	return &Runner{Registry: registry, Store: store}
}

// cacheSummary is a seam so tests can run without a cache server.
var cacheSummary = func(s *Summary) {
	payload, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := cache.Set(summaryCacheKey(s.ProviderID), payload, summaryCacheTTL); err != nil {
		log.Printf("ingest: failed to cache summary for provider %d: %v", s.ProviderID, err)
	}
}

// LastSummary returns the cached summary of the provider's most recent
// ingestion run, or nil when none is cached.
func LastSummary(providerID uint) *Summary {
	raw, err := cache.Get(summaryCacheKey(providerID))
	if err != nil {
		return nil
	}
	var s Summary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil
	}
	return &s
}

func summaryCacheKey(providerID uint) string {
	return fmt.Sprintf("ingest:last:%d", providerID)
}

// IngestProvider runs one full ingestion pass for the provider using the
// given API key. Per-item failures are counted, never propagated; the only
// errors returned are configuration problems and total fetch failure
// (typically a *panelapi.FetchError).
func (r *Runner) IngestProvider(ctx context.Context, provider *models.Provider, apiKey string) (*Summary, error) {
	if provider.APIURL == "" {
		return nil, ErrNoAPIURL
	}
	if apiKey == "" {
		return nil, ErrNoCredential
	}

	adapter := r.Registry.Resolve(provider.Adapter)
	items, err := adapter.FetchServices(ctx, provider.APIURL, apiKey)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:      uuid.NewString(),
		ProviderID: provider.ID,
	}
	summary.Stats.Total = len(items)

	seen := make([]string, 0, len(items))
	for _, item := range items {
		norm := panelapi.Normalize(item)
		if norm.ServiceID == "" {
			summary.Stats.Errors++
			continue
		}

		svc := &models.Service{
			ProviderID:        provider.ID,
			ProviderServiceID: norm.ServiceID,
			Name:              norm.Name,
			Category:          norm.Category,
			Type:              norm.Type,
			Rate:              norm.Rate,
			MinQuantity:       norm.MinQuantity,
			MaxQuantity:       norm.MaxQuantity,
			Description:       norm.Description,
			Refill:            norm.Refill,
			Cancel:            norm.Cancel,
			Dripfeed:          norm.Dripfeed,
			AvgTime:           norm.AvgTime,
			IsActive:          norm.IsActive,
		}

		created, err := r.Store.UpsertService(svc)
		if err != nil {
			log.Printf("ingest: upsert failed for provider %d service %s: %v", provider.ID, norm.ServiceID, err)
			summary.Stats.Errors++
			continue
		}

		seen = append(seen, norm.ServiceID)
		if created {
			summary.Stats.Saved++
		} else {
			summary.Stats.Updated++
		}
	}

	// Mark-and-sweep: anything previously active that upstream no longer
	// returns gets deactivated, so stale catalog rows stop surfacing in
	// search. Skipped when nothing was ingested at all — an upstream
	// hiccup must not wipe the provider's whole catalog.
	if len(seen) > 0 {
		deactivated, err := r.Store.DeactivateMissing(provider.ID, seen)
		if err != nil {
			log.Printf("ingest: deactivation sweep failed for provider %d: %v", provider.ID, err)
		} else {
			summary.Stats.Deactivated = int(deactivated)
		}
	}

	summary.FinishedAt = time.Now()
	cacheSummary(summary)

	return summary, nil
}
