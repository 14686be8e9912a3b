package repository

import (
	"github.com/vikramdxb02-del/smmcompare/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	CountAdmins() (int64, error)
}

// ProviderRepository defines the interface for provider-related database operations
type ProviderRepository interface {
	Create(provider *models.Provider) error
	GetByID(id uint) (*models.Provider, error)
	GetBySlug(slug string) (*models.Provider, error)
	GetAllWithCounts() ([]ProviderWithCount, error)
	Update(provider *models.Provider) error
	Delete(id uint) error
	SlugExistsExceptID(slug string, id uint) (bool, error)
	Count() (int64, error)
}

// CredentialRepository manages the per-admin API keys used for ingestion
type CredentialRepository interface {
	Upsert(userID, providerID uint, apiKey string) error
	GetForIngestion(userID, providerID uint) (*models.ProviderCredential, error)
	DeleteByProvider(providerID uint) error
}

// ServiceRepository defines the interface for catalog operations
type ServiceRepository interface {
	UpsertService(svc *models.Service) (created bool, err error)
	DeactivateMissing(providerID uint, seenIDs []string) (int64, error)
	Search(filters SearchFilters) ([]models.Service, int64, error)
	Categories() ([]string, error)
	Count() (int64, error)
	CountByProvider(providerID uint) (int64, error)
}

// ProviderWithCount pairs a provider with its catalog size for admin lists.
type ProviderWithCount struct {
	Provider     models.Provider
	ServiceCount int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	User       UserRepository
	Provider   ProviderRepository
	Credential CredentialRepository
	Service    ServiceRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Provider:   NewProviderRepository(db),
		Credential: NewCredentialRepository(db),
		Service:    NewServiceRepository(db),
	}
}
