package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/vikramdxb02-del/smmcompare/app/repository"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/statistics"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/usercontext"
)

// HandleHome renders the landing page with the headline counters.
func HandleHome(c *fiber.Ctx) error {
	stats := statistics.GetStatistics()

	return c.Render("index", fiber.Map{
		"Title":          "Compare SMM panel prices",
		"Flash":          flash.Get(c),
		"User":           usercontext.GetUserContext(c),
		"TotalProviders": stats.TotalProviders,
		"TotalServices":  stats.TotalServices,
		"TotalUsers":     stats.TotalUsers,
	}, "layouts/main")
}

func HandleAbout(c *fiber.Ctx) error {
	return c.Render("about", fiber.Map{
		"Title": "About",
		"User":  usercontext.GetUserContext(c),
	}, "layouts/main")
}

func HandlePricing(c *fiber.Ctx) error {
	return c.Render("pricing", fiber.Map{
		"Title": "Pricing",
		"User":  usercontext.GetUserContext(c),
	}, "layouts/main")
}

// HandleDashboard renders the logged-in dashboard shell.
func HandleDashboard(c *fiber.Ctx) error {
	stats := statistics.GetStatistics()

	return c.Render("dashboard", fiber.Map{
		"Title":          "Dashboard",
		"Flash":          flash.Get(c),
		"User":           usercontext.GetUserContext(c),
		"TotalProviders": stats.TotalProviders,
		"TotalServices":  stats.TotalServices,
	}, "layouts/main")
}

// HandleDashboardSearch renders the catalog search page with the category
// filter options; the result list itself is loaded from the search API.
func HandleDashboardSearch(c *fiber.Ctx) error {
	categories, err := repository.GetGlobalFactory().GetServiceRepository().Categories()
	if err != nil {
		categories = nil
	}

	return c.Render("search", fiber.Map{
		"Title":      "Search services",
		"User":       usercontext.GetUserContext(c),
		"Categories": categories,
	}, "layouts/main")
}
