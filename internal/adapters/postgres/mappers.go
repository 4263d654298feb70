package postgres

import (
	"github.com/codehaven/licensing-service/internal/domain"
)

func toDomainProduct(rec productModel) domain.Product {
	return domain.Product{
		ProductID:      rec.ProductID,
		Slug:           rec.Slug,
		Name:           rec.Name,
		EnvatoItemID:   rec.EnvatoItemID,
		CurrentVersion: rec.CurrentVersion,
		CreatedAt:      rec.CreatedAt,
	}
}

func toDomainLicense(rec licenseModel) domain.License {
	return domain.License{
		LicenseID:        rec.LicenseID,
		PurchaseCode:     rec.PurchaseCode,
		LicenseKey:       rec.LicenseKey,
		ProductID:        rec.ProductID,
		LicenseType:      domain.LicenseType(rec.LicenseType),
		Status:           domain.LicenseStatus(rec.Status),
		MaxDomains:       rec.MaxDomains,
		LicenseExpiresAt: rec.LicenseExpiresAt,
		SupportExpiresAt: rec.SupportExpiresAt,
		CreatedAt:        rec.CreatedAt,
		UpdatedAt:        rec.UpdatedAt,
	}
}

func toDomainLicenseDomain(rec licenseDomainModel) domain.LicenseDomain {
	return domain.LicenseDomain{
		DomainID:     rec.DomainID,
		LicenseID:    rec.LicenseID,
		Domain:       rec.Domain,
		Status:       domain.DomainStatus(rec.Status),
		RegisteredAt: rec.RegisteredAt,
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
