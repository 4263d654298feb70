package application

import (
	"context"
	"fmt"

	"github.com/codehaven/licensing-service/internal/domain"
)

// Suspend pauses an active license and immediately evicts its cached
// verification results, so a suspended license cannot keep verifying for the
// remainder of the cache TTL.
func (s *Service) Suspend(ctx context.Context, productSlug, purchaseCode string) error {
	return s.transition(ctx, productSlug, purchaseCode, domain.LicenseStatusActive, domain.LicenseStatusSuspended)
}

// Resume reactivates a suspended license.
func (s *Service) Resume(ctx context.Context, productSlug, purchaseCode string) error {
	return s.transition(ctx, productSlug, purchaseCode, domain.LicenseStatusSuspended, domain.LicenseStatusActive)
}

// Revoke terminally disables a license. Works from either live state.
func (s *Service) Revoke(ctx context.Context, productSlug, purchaseCode string) error {
	code, slug, lic, err := s.resolveLicense(ctx, productSlug, purchaseCode)
	if err != nil {
		return err
	}
	if !domain.CanTransition(lic.Status, domain.LicenseStatusRevoked) {
		return fmt.Errorf("%w: %s -> revoked", domain.ErrInvalidTransition, lic.Status)
	}
	if err := s.licenses.UpdateStatus(ctx, lic.LicenseID, lic.Status, domain.LicenseStatusRevoked, s.nowFn()); err != nil {
		return err
	}
	s.evictLicense(ctx, slug, code)
	return nil
}

func (s *Service) transition(ctx context.Context, productSlug, purchaseCode string, from, to domain.LicenseStatus) error {
	code, slug, lic, err := s.resolveLicense(ctx, productSlug, purchaseCode)
	if err != nil {
		return err
	}
	if !domain.CanTransition(from, to) || lic.Status != from {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, lic.Status, to)
	}
	if err := s.licenses.UpdateStatus(ctx, lic.LicenseID, from, to, s.nowFn()); err != nil {
		return err
	}
	s.evictLicense(ctx, slug, code)
	return nil
}

func (s *Service) resolveLicense(ctx context.Context, productSlug, purchaseCode string) (code, slug string, lic domain.License, err error) {
	code, err = domain.NormalizePurchaseCode(purchaseCode)
	if err != nil {
		return "", "", domain.License{}, err
	}
	slug, err = domain.NormalizeProductSlug(productSlug)
	if err != nil {
		return "", "", domain.License{}, err
	}
	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return "", "", domain.License{}, err
	}
	lic, err = s.licenses.GetByPurchaseCode(ctx, product.ProductID, code)
	if err != nil {
		return "", "", domain.License{}, err
	}
	return code, slug, lic, nil
}

// evictLicense drops every cached verification for the license. Eviction is
// best effort; a failed eviction only means staleness up to the TTL.
func (s *Service) evictLicense(ctx context.Context, slug, code string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateLicense(ctx, slug, digest(code)); err != nil {
		appLogger().WarnContext(ctx, "failed to evict cached verifications",
			"operation", "cache_invalidate",
			"outcome", "failure",
			"error", err.Error(),
		)
	}
}

// Statistics aggregates license totals and verification outcomes over the
// configured window.
func (s *Service) Statistics(ctx context.Context) (StatisticsResponse, error) {
	now := s.nowFn()

	counts, err := s.licenses.StatusCounts(ctx, now)
	if err != nil {
		return StatisticsResponse{}, fmt.Errorf("license status counts: %w", err)
	}
	outcomes, err := s.log.OutcomeCounts(ctx, now.Add(-s.cfg.StatisticsWindow))
	if err != nil {
		return StatisticsResponse{}, fmt.Errorf("verification outcome counts: %w", err)
	}
	topProducts, err := s.log.TopProducts(ctx, now.Add(-s.cfg.StatisticsWindow), 5)
	if err != nil {
		return StatisticsResponse{}, fmt.Errorf("top products: %w", err)
	}

	var resp StatisticsResponse
	resp.Licenses.Total = counts.Total
	resp.Licenses.Active = counts.Active
	resp.Licenses.Suspended = counts.Suspended
	resp.Licenses.Revoked = counts.Revoked
	resp.Licenses.Expired = counts.Expired
	resp.Verifications.WindowHours = int64(s.cfg.StatisticsWindow.Hours())
	resp.Verifications.Total = outcomes.Total
	resp.Verifications.Success = outcomes.Success
	resp.Verifications.Failed = outcomes.Failed
	resp.Verifications.RateLimited = outcomes.RateLimited
	resp.TopProducts = make([]ProductCount, 0, len(topProducts))
	for _, item := range topProducts {
		resp.TopProducts = append(resp.TopProducts, ProductCount{ProductSlug: item.ProductSlug, Count: item.Count})
	}
	return resp, nil
}
