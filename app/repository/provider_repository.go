package repository

import (
	"github.com/vikramdxb02-del/smmcompare/app/models"
	"gorm.io/gorm"
)

// providerRepository implements the ProviderRepository interface
type providerRepository struct {
	db *gorm.DB
}

// NewProviderRepository creates a new provider repository instance
func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

// Create creates a new provider in the database
func (r *providerRepository) Create(provider *models.Provider) error {
	return r.db.Create(provider).Error
}

// GetByID retrieves a provider by its ID
func (r *providerRepository) GetByID(id uint) (*models.Provider, error) {
	var provider models.Provider
	err := r.db.First(&provider, id).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// GetBySlug retrieves a provider by its slug
func (r *providerRepository) GetBySlug(slug string) (*models.Provider, error) {
	var provider models.Provider
	err := r.db.Where("slug = ?", slug).First(&provider).Error
	if err != nil {
		return nil, err
	}
	return &provider, nil
}

// GetAllWithCounts retrieves all providers with their catalog sizes, newest first
func (r *providerRepository) GetAllWithCounts() ([]ProviderWithCount, error) {
	var providers []models.Provider
	if err := r.db.Order("created_at DESC").Find(&providers).Error; err != nil {
		return nil, err
	}

	result := make([]ProviderWithCount, 0, len(providers))
	for _, p := range providers {
		var count int64
		if err := r.db.Model(&models.Service{}).Where("provider_id = ?", p.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		result = append(result, ProviderWithCount{Provider: p, ServiceCount: count})
	}
	return result, nil
}

// Update updates an existing provider in the database
func (r *providerRepository) Update(provider *models.Provider) error {
	return r.db.Save(provider).Error
}

// Delete removes a provider; its services and credentials go with it.
func (r *providerRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("provider_id = ?", id).Delete(&models.Service{}).Error; err != nil {
			return err
		}
		if err := tx.Where("provider_id = ?", id).Delete(&models.ProviderCredential{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Provider{}, id).Error
	})
}

// SlugExistsExceptID checks if a slug exists excluding a specific ID
func (r *providerRepository) SlugExistsExceptID(slug string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Provider{}).Where("slug = ? AND id != ?", slug, id).Count(&count).Error
	return count > 0, err
}

// Count returns the total number of providers
func (r *providerRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Provider{}).Count(&count).Error
	return count, err
}
