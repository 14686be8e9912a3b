package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vikramdxb02-del/smmcompare/app/models"
)

func TestFormatServiceItem(t *testing.T) {
	svc := &models.Service{
		ID:                7,
		ProviderID:        3,
		ProviderServiceID: "1042",
		Name:              "Instagram Followers",
		Category:          "instagram",
		Rate:              1.25,
		MinQuantity:       100,
		MaxQuantity:       50000,
		AvgTime:           "2 hours",
		Refill:            true,
		Provider: models.Provider{
			ID:   3,
			Name: "Boost Panel",
			Slug: "boost-panel",
		},
	}

	item := formatServiceItem(svc)

	assert.Equal(t, "1042", item["serviceId"])
	assert.Equal(t, "Boost Panel", item["provider"])
	assert.Equal(t, "boost-panel", item["providerSlug"])
	assert.Equal(t, "BO", item["badge"])
	assert.Equal(t, 1.25, item["price"])
	assert.Equal(t, "2 hours", item["avgTime"])
	assert.Equal(t, true, item["refill"])
	assert.Equal(t, false, item["cancel"])
}

func TestFormatServiceItemDefaultsAvgTime(t *testing.T) {
	svc := &models.Service{
		ProviderServiceID: "1",
		Provider:          models.Provider{Slug: "x"},
	}

	item := formatServiceItem(svc)

	assert.Equal(t, "N/A", item["avgTime"])
}
