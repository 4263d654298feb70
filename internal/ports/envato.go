package ports

import (
	"context"
	"time"
)

// MarketplacePurchase is the black-box contract of the external purchase
// verification API: item, buyer and support expiry for a purchase code.
type MarketplacePurchase struct {
	ItemID           int64
	ItemName         string
	Buyer            string
	LicenseType      string
	SoldAt           time.Time
	SupportExpiresAt *time.Time
}

// PurchaseVerifier looks up a purchase code at the marketplace.
// A nil purchase with nil error means the code is unknown there; transport
// failures are returned as errors so callers can distinguish outage from miss.
type PurchaseVerifier interface {
	VerifyPurchase(ctx context.Context, purchaseCode string) (*MarketplacePurchase, error)
}
