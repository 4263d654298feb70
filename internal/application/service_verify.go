package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/codehaven/licensing-service/internal/domain"
	"github.com/codehaven/licensing-service/internal/ports"
)

// Verify resolves one (purchase_code, product_slug, domain) triple:
// validate -> rate limit -> cache -> matcher -> domain binder -> cache store.
// Rate limiting runs before any lookup so abusive traffic never touches the
// database or the marketplace.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (VerificationResult, error) {
	return s.verify(ctx, req, true)
}

func (s *Service) verify(ctx context.Context, req VerifyRequest, applyRateLimit bool) (VerificationResult, error) {
	code, slug, host, err := s.normalizeVerifyInputs(ctx, req)
	if err != nil {
		return VerificationResult{}, err
	}

	if applyRateLimit {
		if err := s.enforceRateLimit(ctx, "verify:"+req.IPAddress); err != nil {
			s.logVerification(ctx, domain.VerificationLogEntry{
				ProductSlug:        slug,
				Domain:             host,
				PurchaseCodeMasked: domain.MaskPurchaseCode(code),
				Status:             domain.VerificationStatusRateLimited,
				IPAddress:          req.IPAddress,
			})
			return VerificationResult{}, err
		}
	}

	codeDigest := digest(code)
	domainDigest := digest(host)
	if s.cache != nil {
		cached, cacheErr := s.cache.Get(ctx, slug, codeDigest, domainDigest)
		if cacheErr != nil {
			// A cache miss is always safe; degrade to the matcher.
			appLogger().WarnContext(ctx, "verification cache unavailable",
				"operation", "cache_get",
				"outcome", "failure",
				"error", cacheErr.Error(),
			)
		} else if cached != nil {
			return resultFromCached(*cached), nil
		}
	}

	result, lic, err := s.match(ctx, code, slug, host)
	if err != nil {
		entry := domain.VerificationLogEntry{
			ProductSlug:        slug,
			Domain:             host,
			PurchaseCodeMasked: domain.MaskPurchaseCode(code),
			Status:             domain.VerificationStatusFailed,
			Reason:             err.Error(),
			IPAddress:          req.IPAddress,
		}
		if lic != nil {
			entry.LicenseID = licenseIDRef(lic.LicenseID)
		}
		s.logVerification(ctx, entry)
		return VerificationResult{}, err
	}

	if s.cache != nil && s.cfg.CacheTTL > 0 {
		if cacheErr := s.cache.Put(ctx, slug, codeDigest, domainDigest, cachedFromResult(result), s.cfg.CacheTTL); cacheErr != nil {
			appLogger().WarnContext(ctx, "failed to store verification result in cache",
				"operation", "cache_put",
				"outcome", "failure",
				"error", cacheErr.Error(),
			)
		}
	}

	s.logVerification(ctx, domain.VerificationLogEntry{
		LicenseID:          licenseIDRef(lic.LicenseID),
		ProductSlug:        slug,
		Domain:             host,
		PurchaseCodeMasked: domain.MaskPurchaseCode(code),
		Status:             domain.VerificationStatusSuccess,
		Method:             result.Method,
		IPAddress:          req.IPAddress,
	})
	return result, nil
}

// match runs product resolution, license lookup with marketplace fallback,
// status/expiry evaluation and the domain binder. The returned license is
// non-nil whenever a row was resolved, including on state failures, so the
// caller can attribute the audit entry.
func (s *Service) match(ctx context.Context, code, slug, host string) (VerificationResult, *domain.License, error) {
	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return VerificationResult{}, nil, err
	}

	method := domain.VerificationMethodLocal
	lic, err := s.licenses.GetByPurchaseCode(ctx, product.ProductID, code)
	if errors.Is(err, domain.ErrLicenseNotFound) {
		// A local row always wins over the marketplace; the fallback runs only
		// when there is nothing local to consult.
		lic, err = s.registerFromMarketplace(ctx, product, code)
		if err == nil {
			method = domain.VerificationMethodEnvato
		}
	}
	if err != nil {
		return VerificationResult{}, nil, err
	}

	now := s.nowFn()
	switch lic.Status {
	case domain.LicenseStatusSuspended:
		return VerificationResult{}, &lic, domain.ErrLicenseSuspended
	case domain.LicenseStatusRevoked:
		return VerificationResult{}, &lic, domain.ErrLicenseRevoked
	}
	if lic.Expired(now) {
		return VerificationResult{}, &lic, domain.ErrLicenseExpired
	}

	if err := s.bindOrCheckDomain(ctx, lic, host); err != nil {
		return VerificationResult{}, &lic, err
	}

	return VerificationResult{
		Valid:            true,
		LicenseType:      string(lic.LicenseType),
		Status:           string(lic.EffectiveStatus(now)),
		LicenseExpiresAt: lic.LicenseExpiresAt,
		SupportExpiresAt: lic.SupportExpiresAt,
		DomainAllowed:    true,
		Method:           method,
		VerifiedAt:       now,
	}, &lic, nil
}

// bindOrCheckDomain enforces the domain policy for one host.
// Localhost may bypass binding entirely; wildcard bindings cover subdomains
// when enabled; otherwise an unbound host is auto-registered while slots
// remain.
func (s *Service) bindOrCheckDomain(ctx context.Context, lic domain.License, host string) error {
	if s.cfg.AllowLocalhost && domain.IsLocalhost(host) {
		return nil
	}

	bindings, err := s.domains.ListActiveByLicense(ctx, lic.LicenseID)
	if err != nil {
		return fmt.Errorf("list license domains: %w", err)
	}
	for _, binding := range bindings {
		if domain.DomainMatches(binding.Domain, host, s.cfg.AllowWildcards) {
			return nil
		}
	}

	if !s.cfg.AutoRegisterDomains {
		return domain.ErrDomainNotRegistered
	}

	_, err = s.domains.RegisterIfWithinLimit(ctx, lic.LicenseID, host, lic.MaxDomains, s.nowFn())
	return err
}

// registerFromMarketplace resolves a purchase code against the marketplace and
// materializes it as a local license row so later verifications are local.
func (s *Service) registerFromMarketplace(ctx context.Context, product domain.Product, code string) (domain.License, error) {
	if !s.cfg.EnvatoEnabled || s.marketplace == nil || product.EnvatoItemID == nil {
		return domain.License{}, domain.ErrLicenseNotFound
	}

	purchase, err := s.marketplace.VerifyPurchase(ctx, code)
	if err != nil {
		return domain.License{}, fmt.Errorf("marketplace verify: %w", err)
	}
	if purchase == nil || purchase.ItemID != *product.EnvatoItemID {
		return domain.License{}, domain.ErrLicenseNotFound
	}

	now := s.nowFn()
	lic, err := s.licenses.Create(ctx, ports.LicenseCreateParams{
		PurchaseCode:     code,
		LicenseKey:       generateLicenseKey(),
		ProductID:        product.ProductID,
		LicenseType:      domain.LicenseTypeEnvatoMarket,
		MaxDomains:       s.cfg.DefaultMaxDomains,
		SupportExpiresAt: purchase.SupportExpiresAt,
		CreatedAt:        now,
	})
	if errors.Is(err, domain.ErrConflict) {
		// A concurrent request materialized the same purchase first.
		return s.licenses.GetByPurchaseCode(ctx, product.ProductID, code)
	}
	return lic, err
}

// normalizeVerifyInputs validates the raw triple and routes suspicious values
// to the security audit channel.
func (s *Service) normalizeVerifyInputs(ctx context.Context, req VerifyRequest) (code, slug, host string, err error) {
	code, err = domain.NormalizePurchaseCode(req.PurchaseCode)
	if err != nil {
		if domain.IsSuspicious(req.PurchaseCode) {
			auditSuspiciousInput(ctx, "purchase_code", req.PurchaseCode, req.IPAddress)
		}
		return "", "", "", err
	}
	slug, err = domain.NormalizeProductSlug(req.ProductSlug)
	if err != nil {
		if domain.IsSuspicious(req.ProductSlug) {
			auditSuspiciousInput(ctx, "product_slug", req.ProductSlug, req.IPAddress)
		}
		return "", "", "", err
	}
	host, err = domain.NormalizeDomain(req.Domain)
	if err != nil {
		if domain.IsSuspicious(req.Domain) {
			auditSuspiciousInput(ctx, "domain", req.Domain, req.IPAddress)
		}
		return "", "", "", err
	}
	return code, slug, host, nil
}

// BulkVerify processes up to MaxBulkItems verifications in one call.
// The cap is enforced before anything runs; the batch consumes one rate-limit
// slot rather than one per item.
func (s *Service) BulkVerify(ctx context.Context, req BulkVerifyRequest) (BulkVerifyResponse, error) {
	if len(req.Items) == 0 {
		return BulkVerifyResponse{}, fmt.Errorf("%w: items are required", domain.ErrInvalidInput)
	}
	if len(req.Items) > MaxBulkItems {
		return BulkVerifyResponse{}, fmt.Errorf("%w: limit is %d items", domain.ErrBatchTooLarge, MaxBulkItems)
	}

	if err := s.enforceRateLimit(ctx, "verify:"+req.IPAddress); err != nil {
		return BulkVerifyResponse{}, err
	}

	results := make([]BulkVerifyItemResult, 0, len(req.Items))
	for _, item := range req.Items {
		item.IPAddress = req.IPAddress
		result, err := s.verify(ctx, item, false)
		if err != nil {
			results = append(results, BulkVerifyItemResult{
				Valid:     false,
				Message:   ErrorMessage(err),
				ErrorCode: ErrorCode(err),
			})
			continue
		}
		res := result
		results = append(results, BulkVerifyItemResult{
			Valid:   true,
			Message: "License valid",
			Data:    &res,
		})
	}
	return BulkVerifyResponse{Results: results}, nil
}
