package repository

import (
	"errors"

	"github.com/vikramdxb02-del/smmcompare/app/models"
	"gorm.io/gorm"
)

// credentialRepository implements the CredentialRepository interface
type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new credential repository instance
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

// Upsert stores or replaces the API key for one (user, provider) pair
func (r *credentialRepository) Upsert(userID, providerID uint, apiKey string) error {
	var cred models.ProviderCredential
	err := r.db.Where("user_id = ? AND provider_id = ?", userID, providerID).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(&models.ProviderCredential{
			UserID:     userID,
			ProviderID: providerID,
			APIKey:     apiKey,
		}).Error
	}
	if err != nil {
		return err
	}

	cred.APIKey = apiKey
	return r.db.Save(&cred).Error
}

// GetForIngestion resolves the key used for an ingestion run. The acting
// admin's own key is used, never another admin's; when several admins have
// stored keys for the same provider, each run uses the key of whoever
// triggered it.
func (r *credentialRepository) GetForIngestion(userID, providerID uint) (*models.ProviderCredential, error) {
	var cred models.ProviderCredential
	err := r.db.Where("user_id = ? AND provider_id = ?", userID, providerID).First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// DeleteByProvider removes all stored keys for a provider
func (r *credentialRepository) DeleteByProvider(providerID uint) error {
	return r.db.Where("provider_id = ?", providerID).Delete(&models.ProviderCredential{}).Error
}
