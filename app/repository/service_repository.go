package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vikramdxb02-del/smmcompare/app/models"
)

// serviceRepository implements the ServiceRepository interface
type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new service repository instance
func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

// UpsertService inserts or updates one catalog row keyed by the unique
// (provider_id, provider_service_id) pair. The conflict clause makes the
// write atomic per row; with MySQL an insert reports one affected row and
// an update two, which is how created is derived.
func (r *serviceRepository) UpsertService(svc *models.Service) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_id"}, {Name: "provider_service_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "category", "type", "rate", "min_quantity", "max_quantity",
			"description", "refill", "cancel", "dripfeed", "avg_time", "is_active",
			"updated_at",
		}),
	}).Create(svc)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeactivateMissing flips is_active off for the provider's rows that were
// not seen in the current ingestion run.
func (r *serviceRepository) DeactivateMissing(providerID uint, seenIDs []string) (int64, error) {
	result := r.db.Model(&models.Service{}).
		Where("provider_id = ? AND is_active = ? AND provider_service_id NOT IN ?", providerID, true, seenIDs).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// Search runs a catalog query against active services. Free text matches
// service name, description, or the owning provider's name; price bounds
// are inclusive; sorting is restricted to the whitelisted clauses from
// OrderClause. Returns the page of services plus the unpaginated total.
func (r *serviceRepository) Search(filters SearchFilters) ([]models.Service, int64, error) {
	query := r.db.Model(&models.Service{}).
		Joins("JOIN providers ON providers.id = services.provider_id").
		Where("services.is_active = ?", true)

	if filters.Category != "" {
		query = query.Where("services.category = ?", filters.Category)
	}

	if filters.Query != "" {
		like := "%" + escapeLike(filters.Query) + "%"
		query = query.Where(
			"(services.name LIKE ? OR services.description LIKE ? OR providers.name LIKE ?)",
			like, like, like,
		)
	}

	if bounds, ok := ParsePriceRange(filters.PriceRange); ok {
		if bounds.HasMax {
			query = query.Where("services.rate >= ? AND services.rate <= ?", bounds.Min, bounds.Max)
		} else {
			query = query.Where("services.rate >= ?", bounds.Min)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []models.Service
	err := query.
		Order(OrderClause(filters.SortBy)).
		Offset(filters.Offset()).
		Limit(filters.Limit).
		Preload("Provider").
		Find(&services).Error
	if err != nil {
		return nil, 0, err
	}

	return services, total, nil
}

// Categories lists the distinct categories of active services for the
// search filter dropdown.
func (r *serviceRepository) Categories() ([]string, error) {
	var categories []string
	err := r.db.Model(&models.Service{}).
		Where("is_active = ?", true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

// Count returns the total number of catalog rows
func (r *serviceRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Service{}).Count(&count).Error
	return count, err
}

// CountByProvider returns the catalog size of one provider
func (r *serviceRepository) CountByProvider(providerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Service{}).Where("provider_id = ?", providerID).Count(&count).Error
	return count, err
}
