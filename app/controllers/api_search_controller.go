package controllers

import (
	"math"

	"github.com/gofiber/fiber/v2"

	"github.com/vikramdxb02-del/smmcompare/app/models"
	"github.com/vikramdxb02-del/smmcompare/app/repository"
)

// HandleServiceSearch is the public catalog search endpoint backing the
// search page.
func HandleServiceSearch(c *fiber.Ctx) error {
	filters := repository.ParseSearchFilters(
		c.Query("q"),
		c.Query("category"),
		c.Query("priceRange"),
		c.Query("sortBy"),
		c.Query("page"),
		c.Query("limit"),
	)

	services, total, err := repository.GetGlobalFactory().GetServiceRepository().Search(filters)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "database_error", "search failed")
	}

	items := make([]fiber.Map, 0, len(services))
	for i := range services {
		items = append(items, formatServiceItem(&services[i]))
	}

	return c.JSON(fiber.Map{
		"services":   items,
		"total":      total,
		"page":       filters.Page,
		"limit":      filters.Limit,
		"totalPages": int(math.Ceil(float64(total) / float64(filters.Limit))),
	})
}

// formatServiceItem flattens a service and its preloaded provider into the
// search response shape.
func formatServiceItem(svc *models.Service) fiber.Map {
	avgTime := svc.AvgTime
	if avgTime == "" {
		avgTime = "N/A"
	}

	return fiber.Map{
		"id":           svc.ID,
		"serviceId":    svc.ProviderServiceID,
		"provider":     svc.Provider.Name,
		"providerId":   svc.ProviderID,
		"providerSlug": svc.Provider.Slug,
		"badge":        svc.Provider.BadgeCode(),
		"service":      svc.Name,
		"category":     svc.Category,
		"price":        svc.Rate,
		"min":          svc.MinQuantity,
		"max":          svc.MaxQuantity,
		"avgTime":      avgTime,
		"description":  svc.Description,
		"refill":       svc.Refill,
		"cancel":       svc.Cancel,
		"dripfeed":     svc.Dripfeed,
	}
}
