package models

import "time"

// ProviderCredential stores the API key an admin uses against one provider.
// At most one row per (user, provider) pair is meaningful for ingestion.
type ProviderCredential struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index:user_provider,unique" json:"user_id"`
	ProviderID uint      `gorm:"index:user_provider,unique" json:"provider_id"`
	APIKey     string    `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
