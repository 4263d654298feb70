package application

import (
	"context"
	"errors"

	"github.com/codehaven/licensing-service/internal/domain"
)

// Register explicitly binds a domain to a license, creating the license row
// from the marketplace when no local record exists. Unlike Verify, an unbound
// domain is always registered here regardless of the auto-register policy.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	code, slug, host, err := s.normalizeVerifyInputs(ctx, VerifyRequest(req))
	if err != nil {
		return RegisterResponse{}, err
	}

	if err := s.enforceRateLimit(ctx, "verify:"+req.IPAddress); err != nil {
		s.logVerification(ctx, domain.VerificationLogEntry{
			ProductSlug:        slug,
			Domain:             host,
			PurchaseCodeMasked: domain.MaskPurchaseCode(code),
			Status:             domain.VerificationStatusRateLimited,
			IPAddress:          req.IPAddress,
		})
		return RegisterResponse{}, err
	}

	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return RegisterResponse{}, err
	}

	lic, err := s.licenses.GetByPurchaseCode(ctx, product.ProductID, code)
	if errors.Is(err, domain.ErrLicenseNotFound) {
		lic, err = s.registerFromMarketplace(ctx, product, code)
	}
	if err != nil {
		s.logVerification(ctx, domain.VerificationLogEntry{
			ProductSlug:        slug,
			Domain:             host,
			PurchaseCodeMasked: domain.MaskPurchaseCode(code),
			Status:             domain.VerificationStatusFailed,
			Reason:             err.Error(),
			IPAddress:          req.IPAddress,
		})
		return RegisterResponse{}, err
	}

	now := s.nowFn()
	switch lic.Status {
	case domain.LicenseStatusSuspended:
		return RegisterResponse{}, domain.ErrLicenseSuspended
	case domain.LicenseStatusRevoked:
		return RegisterResponse{}, domain.ErrLicenseRevoked
	}
	if lic.Expired(now) {
		return RegisterResponse{}, domain.ErrLicenseExpired
	}

	if !(s.cfg.AllowLocalhost && domain.IsLocalhost(host)) {
		if _, err := s.domains.RegisterIfWithinLimit(ctx, lic.LicenseID, host, lic.MaxDomains, now); err != nil {
			s.logVerification(ctx, domain.VerificationLogEntry{
				LicenseID:          licenseIDRef(lic.LicenseID),
				ProductSlug:        slug,
				Domain:             host,
				PurchaseCodeMasked: domain.MaskPurchaseCode(code),
				Status:             domain.VerificationStatusFailed,
				Reason:             err.Error(),
				IPAddress:          req.IPAddress,
			})
			return RegisterResponse{}, err
		}
	}

	bindings, err := s.domains.ListActiveByLicense(ctx, lic.LicenseID)
	if err != nil {
		return RegisterResponse{}, err
	}

	s.logVerification(ctx, domain.VerificationLogEntry{
		LicenseID:          licenseIDRef(lic.LicenseID),
		ProductSlug:        slug,
		Domain:             host,
		PurchaseCodeMasked: domain.MaskPurchaseCode(code),
		Status:             domain.VerificationStatusSuccess,
		Method:             domain.VerificationMethodLocal,
		IPAddress:          req.IPAddress,
	})

	return RegisterResponse{
		LicenseKey:       lic.LicenseKey,
		LicenseType:      string(lic.LicenseType),
		Domain:           host,
		DomainsRemaining: domainsRemaining(lic.MaxDomains, len(bindings)),
		SupportExpiresAt: lic.SupportExpiresAt,
	}, nil
}

// Status reports license state without binding side effects or cache writes.
func (s *Service) Status(ctx context.Context, req StatusRequest) (StatusResponse, error) {
	code, err := domain.NormalizePurchaseCode(req.PurchaseCode)
	if err != nil {
		return StatusResponse{}, err
	}
	slug, err := domain.NormalizeProductSlug(req.ProductSlug)
	if err != nil {
		return StatusResponse{}, err
	}

	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return StatusResponse{}, err
	}
	lic, err := s.licenses.GetByPurchaseCode(ctx, product.ProductID, code)
	if err != nil {
		return StatusResponse{}, err
	}

	bindings, err := s.domains.ListActiveByLicense(ctx, lic.LicenseID)
	if err != nil {
		return StatusResponse{}, err
	}
	hosts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		hosts = append(hosts, binding.Domain)
	}

	return StatusResponse{
		Status:           string(lic.EffectiveStatus(s.nowFn())),
		LicenseType:      string(lic.LicenseType),
		MaxDomains:       lic.MaxDomains,
		Domains:          hosts,
		DomainsRemaining: domainsRemaining(lic.MaxDomains, len(bindings)),
		LicenseExpiresAt: lic.LicenseExpiresAt,
		SupportExpiresAt: lic.SupportExpiresAt,
	}, nil
}
