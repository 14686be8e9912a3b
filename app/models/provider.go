package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vikramdxb02-del/smmcompare/internal/pkg/utils"
)

// Provider is an upstream SMM panel whose service catalog we track.
// Slug is derived deterministically from Name and used in public URLs.
type Provider struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Slug        string    `gorm:"uniqueIndex;type:varchar(160)" json:"slug"`
	Website     string    `gorm:"type:varchar(255)" json:"website" validate:"required,url,max=255"`
	APIURL      string    `gorm:"type:varchar(255);default:null" json:"api_url" validate:"omitempty,url,max=255"`
	Description string    `gorm:"type:text;default:null" json:"description"`
	Adapter     string    `gorm:"type:varchar(50);default:null" json:"adapter"`
	Services    []Service `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Provider) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// RefreshSlug re-derives the slug from the current name.
func (p *Provider) RefreshSlug() {
	p.Slug = utils.Slugify(p.Name)
}

// BadgeCode returns the short uppercase code shown next to search results.
func (p *Provider) BadgeCode() string {
	code := strings.ToUpper(p.Slug)
	if len(code) > 2 {
		code = code[:2]
	}
	return code
}
