package panelapi

import (
	"strconv"
	"strings"
)

// NormalizedService is the canonical shape an arbitrary upstream catalog
// item is mapped into before persistence.
type NormalizedService struct {
	ServiceID   string
	Name        string
	Category    string
	Type        string
	Rate        float64
	MinQuantity int64
	MaxQuantity int64
	Description string
	Refill      bool
	Cancel      bool
	Dripfeed    bool
	AvgTime     string
	IsActive    bool
}

// MaxQuantityDefault is stored when an item carries no usable max quantity.
const MaxQuantityDefault = 999999999

// Normalize maps one raw upstream item into the canonical service shape.
// It is pure and never fails: panels disagree wildly on field names and
// types, so every canonical field probes an ordered list of synonyms
// case-insensitively and falls back to a permissive default. Ingesting a
// partial record beats rejecting it; that trade-off is this adapter's
// contract.
func Normalize(raw map[string]any) NormalizedService {
	svc := NormalizedService{
		ServiceID:   stringField(raw, "id", "service", "service_id", "services"),
		Name:        stringField(raw, "name", "service", "title"),
		Category:    stringField(raw, "category", "type"),
		Type:        stringField(raw, "type"),
		Rate:        floatField(raw, 0, "rate", "price", "cost"),
		MinQuantity: intField(raw, 0, "min", "min_quantity", "min_amount", "min_order"),
		MaxQuantity: intField(raw, MaxQuantityDefault, "max", "max_quantity", "max_amount"),
		Description: stringField(raw, "description", "desc"),
		Refill:      boolField(raw, "refill", "refill_guarantee"),
		Cancel:      boolField(raw, "cancel", "cancel_guarantee"),
		Dripfeed:    boolField(raw, "dripfeed", "drip_feed"),
		AvgTime:     stringField(raw, "avg_time", "average_time", "time"),
		IsActive:    activeField(raw),
	}

	if svc.Name == "" {
		svc.Name = "Unknown Service"
	}
	if svc.Category == "" {
		svc.Category = "other"
	}

	return svc
}

// lookup probes the raw item for the first present synonym, ignoring case.
func lookup(raw map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := raw[key]; ok {
			return v, true
		}
	}
	// Second pass: case-insensitive match against whatever spelling the
	// panel chose ("Category", "RATE", ...).
	for _, key := range keys {
		for rawKey, v := range raw {
			if strings.EqualFold(rawKey, key) {
				return v, true
			}
		}
	}
	return nil, false
}

func stringField(raw map[string]any, keys ...string) string {
	v, ok := lookup(raw, keys...)
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return formatNumber(s)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

func floatField(raw map[string]any, def float64, keys ...string) float64 {
	v, ok := lookup(raw, keys...)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return parsed
		}
	}
	return def
}

func intField(raw map[string]any, def int64, keys ...string) int64 {
	v, ok := lookup(raw, keys...)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int64(n)
	case string:
		if parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

// boolField treats any truthy-looking upstream value as true; absence is false.
func boolField(raw map[string]any, keys ...string) bool {
	v, ok := lookup(raw, keys...)
	if !ok {
		return false
	}
	return truthy(v)
}

// activeField defaults to true unless the upstream explicitly marks the
// item inactive via a recognized status or active field.
func activeField(raw map[string]any) bool {
	if v, ok := lookup(raw, "status"); ok {
		if s, isStr := v.(string); isStr {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "inactive", "disabled", "deleted", "off", "0", "false":
				return false
			}
			return true
		}
		return truthy(v)
	}
	if v, ok := lookup(raw, "active", "is_active", "enabled"); ok {
		return truthy(v)
	}
	return true
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "yes", "on", "active", "enabled":
			return true
		}
	}
	return false
}

// formatNumber renders upstream numeric IDs without a trailing ".0000".
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
