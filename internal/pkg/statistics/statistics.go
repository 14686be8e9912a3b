package statistics

import (
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/vikramdxb02-del/smmcompare/app/models"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/cache"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/database"
)

const (
	CacheKeyProviders = "statistics:providers:total"
	CacheKeyServices  = "statistics:services:total"
	CacheKeyUsers     = "statistics:users:total"
	CacheExpiration   = 30 * time.Minute
)

// StatisticsData holds the headline numbers for the landing page and the
// admin dashboard.
type StatisticsData struct {
	TotalProviders int
	TotalServices  int
	TotalUsers     int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// UpdateCacheIfNeeded refreshes the cached counters when the refresh
// interval has elapsed.
func UpdateCacheIfNeeded() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	if time.Since(lastCacheUpdate) <= cacheUpdateInterval {
		return
	}

	if err := UpdateStatisticsCache(); err != nil {
		log.Printf("statistics: cache refresh failed: %v", err)
		return
	}
	lastCacheUpdate = time.Now()
}

// UpdateStatisticsCache recounts providers, services and users and writes
// the results to the cache.
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var providers, services, users int64
	if err := db.Model(&models.Provider{}).Count(&providers).Error; err != nil {
		return err
	}
	if err := db.Model(&models.Service{}).Where("is_active = ?", true).Count(&services).Error; err != nil {
		return err
	}
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}

	if err := cache.Set(CacheKeyProviders, providers, CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(CacheKeyServices, services, CacheExpiration); err != nil {
		return err
	}
	return cache.Set(CacheKeyUsers, users, CacheExpiration)
}

// GetStatistics returns the cached counters, refreshing them when stale.
// Cache misses fall back to zero rather than hitting the database inline.
func GetStatistics() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TotalProviders: cachedInt(CacheKeyProviders),
		TotalServices:  cachedInt(CacheKeyServices),
		TotalUsers:     cachedInt(CacheKeyUsers),
	}
}

func cachedInt(key string) int {
	val, err := cache.Get(key)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return n
}
