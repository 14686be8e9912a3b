package panelapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSynonyms(t *testing.T) {
	raw := map[string]any{
		"service": float64(1234),
		"name":    "Instagram Followers",
		"type":    "Default",
		"price":   "0.85",
		"min":     float64(100),
		"max":     "50000",
		"refill":  true,
	}

	svc := Normalize(raw)
	assert.Equal(t, "1234", svc.ServiceID)
	assert.Equal(t, "Instagram Followers", svc.Name)
	assert.Equal(t, "Default", svc.Category) // category falls back to type
	assert.Equal(t, 0.85, svc.Rate)
	assert.Equal(t, int64(100), svc.MinQuantity)
	assert.Equal(t, int64(50000), svc.MaxQuantity)
	assert.True(t, svc.Refill)
	assert.False(t, svc.Cancel)
	assert.True(t, svc.IsActive)
}

func TestNormalizeCaseInsensitiveKeys(t *testing.T) {
	raw := map[string]any{
		"ID":       "77",
		"Name":     "YouTube Views",
		"Category": "YouTube",
		"RATE":     float64(1.5),
	}

	svc := Normalize(raw)
	assert.Equal(t, "77", svc.ServiceID)
	assert.Equal(t, "YouTube Views", svc.Name)
	assert.Equal(t, "YouTube", svc.Category)
	assert.Equal(t, 1.5, svc.Rate)
}

func TestNormalizeMissingRateDefaultsToZero(t *testing.T) {
	svc := Normalize(map[string]any{"id": "1", "name": "No price listed"})
	assert.Equal(t, float64(0), svc.Rate)
}

func TestNormalizeUnparseableRateDefaultsToZero(t *testing.T) {
	svc := Normalize(map[string]any{"id": "1", "rate": "contact us"})
	assert.Equal(t, float64(0), svc.Rate)
}

func TestNormalizeQuantityDefaults(t *testing.T) {
	svc := Normalize(map[string]any{"id": "1"})
	assert.Equal(t, int64(0), svc.MinQuantity)
	assert.Equal(t, int64(999999999), svc.MaxQuantity)
}

func TestNormalizeDefaults(t *testing.T) {
	svc := Normalize(map[string]any{"id": "9"})
	assert.Equal(t, "Unknown Service", svc.Name)
	assert.Equal(t, "other", svc.Category)
	assert.True(t, svc.IsActive)
	assert.False(t, svc.Refill)
	assert.False(t, svc.Cancel)
	assert.False(t, svc.Dripfeed)
}

func TestNormalizeTruthyFlags(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want bool
	}{
		{"bool true", true, true},
		{"string 1", "1", true},
		{"string yes", "yes", true},
		{"number 1", float64(1), true},
		{"bool false", false, false},
		{"string 0", "0", false},
		{"string no", "no", false},
		{"number 0", float64(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := Normalize(map[string]any{"id": "1", "dripfeed": tt.val})
			assert.Equal(t, tt.want, svc.Dripfeed)
		})
	}
}

func TestNormalizeActiveStates(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want bool
	}{
		{"no status info", map[string]any{"id": "1"}, true},
		{"status active", map[string]any{"id": "1", "status": "active"}, true},
		{"status inactive", map[string]any{"id": "1", "status": "inactive"}, false},
		{"status disabled", map[string]any{"id": "1", "status": "Disabled"}, false},
		{"active false", map[string]any{"id": "1", "active": false}, false},
		{"active true", map[string]any{"id": "1", "active": true}, true},
		{"enabled 0", map[string]any{"id": "1", "enabled": "0"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw).IsActive)
		})
	}
}

func TestNormalizeAvgTimeSynonyms(t *testing.T) {
	assert.Equal(t, "2 hours", Normalize(map[string]any{"id": "1", "avg_time": "2 hours"}).AvgTime)
	assert.Equal(t, "1 day", Normalize(map[string]any{"id": "1", "average_time": "1 day"}).AvgTime)
	assert.Equal(t, "30 min", Normalize(map[string]any{"id": "1", "time": "30 min"}).AvgTime)
}
