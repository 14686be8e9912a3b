package models

import "time"

// MaxQuantitySentinel is stored when an upstream item carries no max quantity.
const MaxQuantitySentinel = 999999999

// Service is one catalog entry sourced from a provider. The pair
// (ProviderID, ProviderServiceID) is unique and acts as the upsert key;
// rows are only ever written by the ingestion pass and removed via the
// provider cascade.
type Service struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ProviderID        uint      `gorm:"index:provider_service,unique" json:"provider_id"`
	Provider          Provider  `json:"-"`
	ProviderServiceID string    `gorm:"index:provider_service,unique;type:varchar(100)" json:"provider_service_id"`
	Name              string    `gorm:"type:varchar(255)" json:"name"`
	Category          string    `gorm:"type:varchar(150);default:'other'" json:"category"`
	Type              string    `gorm:"type:varchar(100);default:null" json:"type"`
	Rate              float64   `gorm:"type:decimal(12,4);index" json:"rate"`
	MinQuantity       int64     `json:"min_quantity"`
	MaxQuantity       int64     `json:"max_quantity"`
	Description       string    `gorm:"type:text;default:null" json:"description"`
	Refill            bool      `gorm:"default:false" json:"refill"`
	Cancel            bool      `gorm:"default:false" json:"cancel"`
	Dripfeed          bool      `gorm:"default:false" json:"dripfeed"`
	AvgTime           string    `gorm:"type:varchar(100);default:null" json:"avg_time"`
	IsActive          bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
