package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vikramdxb02-del/smmcompare/app/models"
	"github.com/vikramdxb02-del/smmcompare/app/repository"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/ingest"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/panelapi"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/usercontext"
)

const ingestTimeout = 90 * time.Second

var ingestRunner *ingest.Runner

// InitializeIngestRunner wires the catalog ingestion pipeline. Must be
// called once after the repository factory is ready.
func InitializeIngestRunner() {
	ingestRunner = ingest.NewRunner(
		panelapi.NewRegistry(nil),
		repository.GetGlobalFactory().GetServiceRepository(),
	)
}

type providerPayload struct {
	Name        string `json:"name"`
	Website     string `json:"website"`
	APIURL      string `json:"api_url"`
	Description string `json:"description"`
	Adapter     string `json:"adapter"`
	APIKey      string `json:"api_key"`
}

// HandleAdminListProviders returns every provider with its catalog size
// and the summary of its most recent ingestion run.
func HandleAdminListProviders(c *fiber.Ctx) error {
	rows, err := repository.GetGlobalFactory().GetProviderRepository().GetAllWithCounts()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "database_error", "failed to load providers")
	}

	providers := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		entry := fiber.Map{
			"id":            row.Provider.ID,
			"name":          row.Provider.Name,
			"slug":          row.Provider.Slug,
			"website":       row.Provider.Website,
			"api_url":       row.Provider.APIURL,
			"description":   row.Provider.Description,
			"adapter":       row.Provider.Adapter,
			"service_count": row.ServiceCount,
			"created_at":    row.Provider.CreatedAt,
		}
		if summary := ingest.LastSummary(row.Provider.ID); summary != nil {
			entry["last_ingestion"] = summary
		}
		providers = append(providers, entry)
	}

	return c.JSON(fiber.Map{"providers": providers})
}

// HandleAdminCreateProvider creates a provider and, when an API key is
// supplied, stores it as the acting admin's credential for that provider.
func HandleAdminCreateProvider(c *fiber.Ctx) error {
	var payload providerPayload
	if err := c.BodyParser(&payload); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "request body must be valid JSON")
	}

	provider := &models.Provider{
		Name:        strings.TrimSpace(payload.Name),
		Website:     strings.TrimSpace(payload.Website),
		APIURL:      strings.TrimSpace(payload.APIURL),
		Description: payload.Description,
		Adapter:     payload.Adapter,
	}
	provider.RefreshSlug()

	if err := provider.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}
	if provider.Slug == "" {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", "name must contain at least one letter or digit")
	}

	repos := repository.GetGlobalFactory()
	taken, err := repos.GetProviderRepository().SlugExistsExceptID(provider.Slug, 0)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "database_error", "failed to check slug")
	}
	if taken {
		return jsonError(c, fiber.StatusConflict, "slug_taken", "a provider with this name already exists")
	}

	if err := repos.GetProviderRepository().Create(provider); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "database_error", "failed to create provider")
	}

	if key := strings.TrimSpace(payload.APIKey); key != "" {
		userCtx := usercontext.GetUserContext(c)
		if err := repos.GetCredentialRepository().Upsert(userCtx.UserID, provider.ID, key); err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "database_error", "provider created but storing the API key failed")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"provider": provider})
}

// updateProviderPayload uses pointers so the handler can tell an absent
// field from a present-but-empty one; empty clears the stored value.
type updateProviderPayload struct {
	Name        *string `json:"name"`
	Website     *string `json:"website"`
	APIURL      *string `json:"api_url"`
	Description *string `json:"description"`
	Adapter     *string `json:"adapter"`
	APIKey      *string `json:"api_key"`
}

// applyProviderUpdate copies the payload fields that are present onto the
// provider and reports whether the name, and with it the slug, changed.
func applyProviderUpdate(provider *models.Provider, payload updateProviderPayload) bool {
	renamed := false
	if payload.Name != nil {
		if name := strings.TrimSpace(*payload.Name); name != "" && name != provider.Name {
			provider.Name = name
			provider.RefreshSlug()
			renamed = true
		}
	}
	if payload.Website != nil {
		provider.Website = strings.TrimSpace(*payload.Website)
	}
	if payload.APIURL != nil {
		provider.APIURL = strings.TrimSpace(*payload.APIURL)
	}
	if payload.Description != nil {
		provider.Description = *payload.Description
	}
	if payload.Adapter != nil {
		provider.Adapter = *payload.Adapter
	}
	return renamed
}

// HandleAdminUpdateProvider updates a provider in place. A changed name
// re-derives the slug; an api_key in the payload replaces the acting
// admin's stored credential.
func HandleAdminUpdateProvider(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "provider id must be numeric")
	}

	repos := repository.GetGlobalFactory()
	provider, err := repos.GetProviderRepository().GetByID(id)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "provider not found")
	}

	var payload updateProviderPayload
	if err := c.BodyParser(&payload); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body", "request body must be valid JSON")
	}

	if applyProviderUpdate(provider, payload) {
		taken, err := repos.GetProviderRepository().SlugExistsExceptID(provider.Slug, provider.ID)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "database_error", "failed to check slug")
		}
		if taken {
			return jsonError(c, fiber.StatusConflict, "slug_taken", "a provider with this name already exists")
		}
	}

	if err := provider.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	}

	if err := repos.GetProviderRepository().Update(provider); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "database_error", "failed to update provider")
	}

	if payload.APIKey != nil {
		if key := strings.TrimSpace(*payload.APIKey); key != "" {
			userCtx := usercontext.GetUserContext(c)
			if err := repos.GetCredentialRepository().Upsert(userCtx.UserID, provider.ID, key); err != nil {
				return jsonError(c, fiber.StatusInternalServerError, "database_error", "provider updated but storing the API key failed")
			}
		}
	}

	return c.JSON(fiber.Map{"provider": provider})
}

// HandleAdminDeleteProvider removes a provider together with its services
// and stored credentials.
func HandleAdminDeleteProvider(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "provider id must be numeric")
	}

	repos := repository.GetGlobalFactory()
	if _, err := repos.GetProviderRepository().GetByID(id); err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "provider not found")
	}

	if err := repos.GetProviderRepository().Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "database_error", "failed to delete provider")
	}

	return c.JSON(fiber.Map{"success": true})
}

// HandleAdminFetchServices runs one catalog ingestion for the provider
// using the acting admin's stored API key.
func HandleAdminFetchServices(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id", "provider id must be numeric")
	}

	repos := repository.GetGlobalFactory()
	provider, err := repos.GetProviderRepository().GetByID(id)
	if err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "provider not found")
	}

	userCtx := usercontext.GetUserContext(c)
	apiKey := ""
	if cred, err := repos.GetCredentialRepository().GetForIngestion(userCtx.UserID, provider.ID); err == nil {
		apiKey = cred.APIKey
	}

	ctx, cancel := context.WithTimeout(c.Context(), ingestTimeout)
	defer cancel()

	summary, err := ingestRunner.IngestProvider(ctx, provider, apiKey)
	if err != nil {
		if errors.Is(err, ingest.ErrNoAPIURL) || errors.Is(err, ingest.ErrNoCredential) {
			return jsonError(c, fiber.StatusBadRequest, "not_configured", err.Error())
		}

		var fetchErr *panelapi.FetchError
		if errors.As(err, &fetchErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":          "fetch_failed",
				"details":        fetchErr.LastDiagnostic,
				"suggestion":     fetchErr.Suggestion,
				"attempted_urls": fetchErr.AttemptedURLs,
			})
		}

		return jsonError(c, fiber.StatusBadGateway, "fetch_failed", err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"run_id":  summary.RunID,
		"stats":   summary.Stats,
	})
}

// HandleAdminTestAPI probes a panel URL with the common key+action
// convention and echoes what came back, so an operator can see the raw
// response shape before wiring the provider up.
func HandleAdminTestAPI(c *fiber.Ctx) error {
	rawURL := strings.TrimSpace(c.Query("apiUrl"))
	apiKey := strings.TrimSpace(c.Query("apiKey"))
	if rawURL == "" {
		return jsonError(c, fiber.StatusBadRequest, "missing_url", "apiUrl query parameter is required")
	}

	cand := panelapi.DefaultCandidates()[0]
	req, err := cand.BuildRequest(c.Context(), panelapi.NormalizeBaseURL(rawURL), apiKey)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_url", err.Error())
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return c.JSON(fiber.Map{
			"reachable": false,
			"error":     err.Error(),
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return c.JSON(fiber.Map{
			"reachable": false,
			"error":     err.Error(),
		})
	}

	result := panelapi.Classify(resp.StatusCode, resp.Header, body)

	firstChars := string(body)
	if len(firstChars) > 500 {
		firstChars = firstChars[:500]
	}

	probe := fiber.Map{
		"reachable":       true,
		"status":          resp.StatusCode,
		"content_type":    resp.Header.Get("Content-Type"),
		"response_length": len(body),
		"first_chars":     firstChars,
		"is_html":         result.Kind == panelapi.KindHTMLError,
		"looks_like_json": result.Kind == panelapi.KindJSONArray || result.Kind == panelapi.KindJSONObject,
	}
	if result.Kind == panelapi.KindJSONArray && len(result.Array) > 0 {
		sample := result.Array
		if len(sample) > 3 {
			sample = sample[:3]
		}
		probe["sample_items"] = sample
	}
	if result.Diagnostic != "" {
		probe["diagnostic"] = result.Diagnostic
	}

	return c.JSON(probe)
}
