package postgres

import (
	"time"

	"github.com/google/uuid"
)

type productModel struct {
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug           string    `gorm:"column:slug"`
	Name           string    `gorm:"column:name"`
	EnvatoItemID   *int64    `gorm:"column:envato_item_id"`
	CurrentVersion string    `gorm:"column:current_version"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (productModel) TableName() string { return "products" }

type licenseModel struct {
	LicenseID        uuid.UUID  `gorm:"column:license_id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseCode     string     `gorm:"column:purchase_code"`
	LicenseKey       string     `gorm:"column:license_key"`
	ProductID        uuid.UUID  `gorm:"column:product_id"`
	LicenseType      string     `gorm:"column:license_type"`
	Status           string     `gorm:"column:status"`
	MaxDomains       int        `gorm:"column:max_domains"`
	LicenseExpiresAt *time.Time `gorm:"column:license_expires_at"`
	SupportExpiresAt *time.Time `gorm:"column:support_expires_at"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (licenseModel) TableName() string { return "licenses" }

type licenseDomainModel struct {
	DomainID     uuid.UUID `gorm:"column:domain_id;type:uuid;default:gen_random_uuid();primaryKey"`
	LicenseID    uuid.UUID `gorm:"column:license_id"`
	Domain       string    `gorm:"column:domain"`
	Status       string    `gorm:"column:status"`
	RegisteredAt time.Time `gorm:"column:registered_at"`
}

func (licenseDomainModel) TableName() string { return "license_domains" }

type verificationLogModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	LicenseID          *uuid.UUID `gorm:"column:license_id"`
	ProductSlug        string     `gorm:"column:product_slug"`
	Domain             string     `gorm:"column:domain"`
	PurchaseCodeMasked string     `gorm:"column:purchase_code_masked"`
	Status             string     `gorm:"column:status"`
	Reason             string     `gorm:"column:reason"`
	Method             string     `gorm:"column:method"`
	IPAddress          *string    `gorm:"column:ip_address"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
}

func (verificationLogModel) TableName() string { return "verification_log" }
