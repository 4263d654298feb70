package application_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/codehaven/licensing-service/internal/application"
	"github.com/codehaven/licensing-service/internal/domain"
	"github.com/codehaven/licensing-service/internal/ports"
)

const (
	testProductSlug  = "test-product"
	testPurchaseCode = "TEST-PURCHASE-CODE-123"
)

func TestVerifySuccess(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	ctx := context.Background()

	res, err := f.service.Verify(ctx, application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !res.Valid || !res.DomainAllowed {
		t.Fatalf("expected valid result, got %+v", res)
	}
	if res.Method != domain.VerificationMethodLocal {
		t.Fatalf("expected local method, got %s", res.Method)
	}
	if res.Status != string(domain.LicenseStatusActive) {
		t.Fatalf("expected active status, got %s", res.Status)
	}

	bindings := f.domains.active(f.licenseID)
	if len(bindings) != 1 || bindings[0].Domain != "example.com" {
		t.Fatalf("expected example.com binding, got %+v", bindings)
	}
	if len(f.log.entries) != 1 || f.log.entries[0].Status != domain.VerificationStatusSuccess {
		t.Fatalf("expected one success audit entry, got %+v", f.log.entries)
	}
	if f.log.entries[0].PurchaseCodeMasked == testPurchaseCode {
		t.Fatalf("audit entry must not carry the raw purchase code")
	}
}

func TestVerifyCacheHitPreservesVerifiedAt(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	ctx := context.Background()
	req := application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	}

	first, err := f.service.Verify(ctx, req)
	if err != nil {
		t.Fatalf("first verify failed: %v", err)
	}
	second, err := f.service.Verify(ctx, req)
	if err != nil {
		t.Fatalf("second verify failed: %v", err)
	}
	if !second.VerifiedAt.Equal(first.VerifiedAt) {
		t.Fatalf("cache hit must preserve the original verified_at: %v vs %v", first.VerifiedAt, second.VerifiedAt)
	}
	if second != first {
		t.Fatalf("cache hit must reproduce the original result")
	}
	// Cache hits do not append audit rows.
	if len(f.log.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(f.log.entries))
	}
}

func TestVerifyCacheFailureDegradesToMatcher(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	f.cache.err = errors.New("redis down")
	ctx := context.Background()

	res, err := f.service.Verify(ctx, application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	})
	if err != nil {
		t.Fatalf("verify should degrade past a broken cache: %v", err)
	}
	if !res.Valid {
		t.Fatalf("expected valid result")
	}
}

func TestVerifyUnknownPurchaseCode(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	_, err := f.service.Verify(context.Background(), application.VerifyRequest{
		PurchaseCode: "UNKNOWN-PURCHASE-CODE",
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	})
	if !errors.Is(err, domain.ErrLicenseNotFound) {
		t.Fatalf("expected license not found, got %v", err)
	}
	if len(f.log.entries) != 1 || f.log.entries[0].Status != domain.VerificationStatusFailed {
		t.Fatalf("expected one failed audit entry, got %+v", f.log.entries)
	}
}

func TestVerifyUnknownProduct(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	_, err := f.service.Verify(context.Background(), application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  "missing-product",
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}
}

func TestVerifyValidationErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	ctx := context.Background()

	_, err := f.service.Verify(ctx, application.VerifyRequest{
		PurchaseCode: "SHORT",
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
	})
	if !errors.Is(err, domain.ErrInvalidPurchaseCodeFormat) {
		t.Fatalf("expected format error, got %v", err)
	}

	_, err = f.service.Verify(ctx, application.VerifyRequest{
		PurchaseCode: "TEST_PURCHASE_CODE_123",
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
	})
	if !errors.Is(err, domain.ErrInvalidPurchaseCodeCharacters) {
		t.Fatalf("expected characters error, got %v", err)
	}

	_, err = f.service.Verify(ctx, application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "<script>alert(1)</script>",
	})
	if !errors.Is(err, domain.ErrUnsafeInput) {
		t.Fatalf("expected unsafe input error, got %v", err)
	}

	// Validation failures never reach the repositories.
	if len(f.log.entries) != 0 {
		t.Fatalf("validation failures must not produce audit entries, got %d", len(f.log.entries))
	}
}

func TestVerifyDomainLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	ctx := context.Background()

	verify := func(host string) error {
		_, err := f.service.Verify(ctx, application.VerifyRequest{
			PurchaseCode: testPurchaseCode,
			ProductSlug:  testProductSlug,
			Domain:       host,
			IPAddress:    "203.0.113.10",
		})
		return err
	}

	if err := verify("one.example.com"); err != nil {
		t.Fatalf("first domain should bind: %v", err)
	}
	if err := verify("two.example.com"); err != nil {
		t.Fatalf("second domain should bind: %v", err)
	}
	if err := verify("three.example.com"); !errors.Is(err, domain.ErrDomainLimitExceeded) {
		t.Fatalf("third domain should exceed the limit, got %v", err)
	}
	// Already-bound domains keep verifying at the limit.
	if err := verify("one.example.com"); err != nil {
		t.Fatalf("bound domain should still verify: %v", err)
	}
}

func TestVerifyLocalhostBypass(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	res, err := f.service.Verify(context.Background(), application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "localhost",
		IPAddress:    "203.0.113.10",
	})
	if err != nil {
		t.Fatalf("localhost verify failed: %v", err)
	}
	if !res.Valid {
		t.Fatalf("expected valid result")
	}
	if got := f.domains.active(f.licenseID); len(got) != 0 {
		t.Fatalf("localhost must not consume a domain slot, got %+v", got)
	}
}

func TestVerifyAutoRegisterDisabled(t *testing.T) {
	t.Parallel()

	cfg := defaultTestConfig()
	cfg.AutoRegisterDomains = false
	f := newFixture(cfg)

	_, err := f.service.Verify(context.Background(), application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	})
	if !errors.Is(err, domain.ErrDomainNotRegistered) {
		t.Fatalf("expected domain not registered, got %v", err)
	}
}

func TestVerifyExpiredLicense(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	past := time.Now().UTC().Add(-time.Hour)
	f.licenses.setExpiry(f.licenseID, &past)

	_, err := f.service.Verify(context.Background(), application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	})
	if !errors.Is(err, domain.ErrLicenseExpired) {
		t.Fatalf("expected license expired, got %v", err)
	}

	future := time.Now().UTC().Add(time.Hour)
	f.licenses.setExpiry(f.licenseID, &future)
	if _, err := f.service.Verify(context.Background(), application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	}); err != nil {
		t.Fatalf("license before expiry should verify: %v", err)
	}
}

func TestVerifyRateLimit(t *testing.T) {
	t.Parallel()

	cfg := defaultTestConfig()
	cfg.RateLimitThreshold = 3
	f := newFixture(cfg)
	ctx := context.Background()
	req := application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	}

	// Disable caching so every call consumes a slot against live lookups.
	for i := 0; i < 3; i++ {
		f.cache.flush()
		if _, err := f.service.Verify(ctx, req); err != nil {
			t.Fatalf("call %d should pass: %v", i+1, err)
		}
	}
	f.cache.flush()
	if _, err := f.service.Verify(ctx, req); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("call over threshold should be limited, got %v", err)
	}

	last := f.log.entries[len(f.log.entries)-1]
	if last.Status != domain.VerificationStatusRateLimited {
		t.Fatalf("expected rate_limited audit entry, got %+v", last)
	}
}

func TestVerifyRateLimitFailsClosed(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	f.rates.err = errors.New("redis down")

	_, err := f.service.Verify(context.Background(), application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("counter store failure must reject, got %v", err)
	}
}

func TestVerifyMarketplaceFallback(t *testing.T) {
	t.Parallel()

	cfg := defaultTestConfig()
	cfg.EnvatoEnabled = true
	f := newFixture(cfg)
	support := time.Now().UTC().Add(180 * 24 * time.Hour)
	f.marketplace.purchases["ENVATO-PURCHASE-CODE-9"] = &ports.MarketplacePurchase{
		ItemID:           testEnvatoItemID,
		ItemName:         "Test Product",
		LicenseType:      "Regular License",
		SupportExpiresAt: &support,
	}

	res, err := f.service.Verify(context.Background(), application.VerifyRequest{
		PurchaseCode: "ENVATO-PURCHASE-CODE-9",
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	})
	if err != nil {
		t.Fatalf("marketplace fallback failed: %v", err)
	}
	if res.Method != domain.VerificationMethodEnvato {
		t.Fatalf("expected envato method, got %s", res.Method)
	}
	if res.LicenseType != string(domain.LicenseTypeEnvatoMarket) {
		t.Fatalf("expected envato_market row, got %s", res.LicenseType)
	}

	// The purchase is materialized locally for subsequent lookups.
	lic, err := f.licenses.GetByPurchaseCode(context.Background(), f.productID, "ENVATO-PURCHASE-CODE-9")
	if err != nil {
		t.Fatalf("expected materialized license row: %v", err)
	}
	if lic.LicenseType != domain.LicenseTypeEnvatoMarket {
		t.Fatalf("unexpected license type %s", lic.LicenseType)
	}
}

func TestVerifyMarketplaceItemMismatch(t *testing.T) {
	t.Parallel()

	cfg := defaultTestConfig()
	cfg.EnvatoEnabled = true
	f := newFixture(cfg)
	f.marketplace.purchases["OTHER-ITEM-PURCHASE-1"] = &ports.MarketplacePurchase{ItemID: 999}

	_, err := f.service.Verify(context.Background(), application.VerifyRequest{
		PurchaseCode: "OTHER-ITEM-PURCHASE-1",
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	})
	if !errors.Is(err, domain.ErrLicenseNotFound) {
		t.Fatalf("purchase for another item must not match, got %v", err)
	}
}

func TestVerifyMarketplaceOutage(t *testing.T) {
	t.Parallel()

	cfg := defaultTestConfig()
	cfg.EnvatoEnabled = true
	f := newFixture(cfg)
	f.marketplace.err = errors.New("gateway timeout")

	_, err := f.service.Verify(context.Background(), application.VerifyRequest{
		PurchaseCode: "ENVATO-PURCHASE-CODE-9",
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	})
	if err == nil || errors.Is(err, domain.ErrLicenseNotFound) {
		t.Fatalf("marketplace outage must surface as an error, got %v", err)
	}
}

func TestSuspendEvictsCache(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	ctx := context.Background()
	req := application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	}

	if _, err := f.service.Verify(ctx, req); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if err := f.service.Suspend(ctx, testProductSlug, testPurchaseCode); err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	if _, err := f.service.Verify(ctx, req); !errors.Is(err, domain.ErrLicenseSuspended) {
		t.Fatalf("suspended license must fail immediately, got %v", err)
	}

	if err := f.service.Resume(ctx, testProductSlug, testPurchaseCode); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if _, err := f.service.Verify(ctx, req); err != nil {
		t.Fatalf("resumed license should verify: %v", err)
	}
}

func TestRevokeIsTerminal(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	ctx := context.Background()

	if err := f.service.Revoke(ctx, testProductSlug, testPurchaseCode); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if err := f.service.Resume(ctx, testProductSlug, testPurchaseCode); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("resume after revoke should fail, got %v", err)
	}
	if err := f.service.Suspend(ctx, testProductSlug, testPurchaseCode); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("suspend after revoke should fail, got %v", err)
	}
	if err := f.service.Revoke(ctx, testProductSlug, testPurchaseCode); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("double revoke should fail, got %v", err)
	}

	_, err := f.service.Verify(ctx, application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	})
	if !errors.Is(err, domain.ErrLicenseRevoked) {
		t.Fatalf("revoked license must not verify, got %v", err)
	}
}

func TestBulkVerify(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	ctx := context.Background()

	res, err := f.service.BulkVerify(ctx, application.BulkVerifyRequest{
		Items: []application.VerifyRequest{
			{PurchaseCode: testPurchaseCode, ProductSlug: testProductSlug, Domain: "example.com"},
			{PurchaseCode: "UNKNOWN-PURCHASE-CODE", ProductSlug: testProductSlug, Domain: "example.com"},
			{PurchaseCode: "SHORT", ProductSlug: testProductSlug, Domain: "example.com"},
		},
		IPAddress: "203.0.113.10",
	})
	if err != nil {
		t.Fatalf("bulk verify failed: %v", err)
	}
	if len(res.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(res.Results))
	}
	if !res.Results[0].Valid || res.Results[0].Data == nil {
		t.Fatalf("first item should be valid: %+v", res.Results[0])
	}
	if res.Results[1].Valid || res.Results[1].ErrorCode != "LICENSE_NOT_FOUND" {
		t.Fatalf("second item should fail with LICENSE_NOT_FOUND: %+v", res.Results[1])
	}
	if res.Results[2].Valid || res.Results[2].ErrorCode != "INVALID_PURCHASE_CODE_FORMAT" {
		t.Fatalf("third item should fail with format error: %+v", res.Results[2])
	}
}

func TestBulkVerifyCap(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	items := make([]application.VerifyRequest, application.MaxBulkItems+1)
	for i := range items {
		items[i] = application.VerifyRequest{
			PurchaseCode: testPurchaseCode,
			ProductSlug:  testProductSlug,
			Domain:       fmt.Sprintf("host%d.example.com", i),
		}
	}
	_, err := f.service.BulkVerify(context.Background(), application.BulkVerifyRequest{Items: items, IPAddress: "203.0.113.10"})
	if !errors.Is(err, domain.ErrBatchTooLarge) {
		t.Fatalf("oversized batch must be rejected, got %v", err)
	}
	if len(f.log.entries) != 0 {
		t.Fatalf("no item may be processed when the cap is exceeded")
	}

	_, err = f.service.BulkVerify(context.Background(), application.BulkVerifyRequest{IPAddress: "203.0.113.10"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty batch must be rejected, got %v", err)
	}
}

func TestRegisterAndStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	ctx := context.Background()

	res, err := f.service.Register(ctx, application.RegisterRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "https://shop.example.com/checkout",
		IPAddress:    "203.0.113.10",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if res.Domain != "shop.example.com" {
		t.Fatalf("expected normalized host, got %q", res.Domain)
	}
	if res.LicenseKey == "" {
		t.Fatalf("expected license key in response")
	}
	if res.DomainsRemaining != 1 {
		t.Fatalf("expected 1 slot remaining, got %d", res.DomainsRemaining)
	}

	status, err := f.service.Status(ctx, application.StatusRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
	})
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.Status != string(domain.LicenseStatusActive) {
		t.Fatalf("expected active status, got %s", status.Status)
	}
	if len(status.Domains) != 1 || status.Domains[0] != "shop.example.com" {
		t.Fatalf("unexpected domain list %+v", status.Domains)
	}
	if status.MaxDomains != 2 || status.DomainsRemaining != 1 {
		t.Fatalf("unexpected slot accounting: %+v", status)
	}
}

func TestRegisterIgnoresAutoRegisterPolicy(t *testing.T) {
	t.Parallel()

	cfg := defaultTestConfig()
	cfg.AutoRegisterDomains = false
	f := newFixture(cfg)

	res, err := f.service.Register(context.Background(), application.RegisterRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	})
	if err != nil {
		t.Fatalf("explicit registration must bind regardless of policy: %v", err)
	}
	if res.Domain != "example.com" {
		t.Fatalf("unexpected domain %q", res.Domain)
	}
}

func TestStatistics(t *testing.T) {
	t.Parallel()

	f := newFixture(defaultTestConfig())
	ctx := context.Background()

	if _, err := f.service.Verify(ctx, application.VerifyRequest{
		PurchaseCode: testPurchaseCode,
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	}); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if _, err := f.service.Verify(ctx, application.VerifyRequest{
		PurchaseCode: "UNKNOWN-PURCHASE-CODE",
		ProductSlug:  testProductSlug,
		Domain:       "example.com",
		IPAddress:    "203.0.113.10",
	}); !errors.Is(err, domain.ErrLicenseNotFound) {
		t.Fatalf("expected license not found, got %v", err)
	}

	stats, err := f.service.Statistics(ctx)
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.Licenses.Total != 1 || stats.Licenses.Active != 1 {
		t.Fatalf("unexpected license counts: %+v", stats.Licenses)
	}
	if stats.Verifications.Total != 2 || stats.Verifications.Success != 1 || stats.Verifications.Failed != 1 {
		t.Fatalf("unexpected verification counts: %+v", stats.Verifications)
	}
	if len(stats.TopProducts) != 1 || stats.TopProducts[0].ProductSlug != testProductSlug {
		t.Fatalf("unexpected top products: %+v", stats.TopProducts)
	}
}

const testEnvatoItemID int64 = 123

type fixture struct {
	service     *application.Service
	productID   uuid.UUID
	licenseID   uuid.UUID
	licenses    *fakeLicenses
	domains     *fakeDomains
	log         *fakeLog
	cache       *fakeCache
	rates       *fakeRates
	marketplace *fakeMarketplace
}

func defaultTestConfig() application.Config {
	return application.Config{
		AutoRegisterDomains: true,
		AllowLocalhost:      true,
		AllowWildcards:      false,
		DefaultMaxDomains:   1,
		CacheTTL:            30 * time.Minute,
		RateLimitThreshold:  1000,
		RateLimitWindow:     time.Minute,
		EnvatoEnabled:       false,
		StatisticsWindow:    24 * time.Hour,
	}
}

func newFixture(cfg application.Config) *fixture {
	productID := uuid.New()
	licenseID := uuid.New()
	itemID := testEnvatoItemID

	products := &fakeProducts{bySlug: map[string]domain.Product{
		testProductSlug: {
			ProductID:    productID,
			Slug:         testProductSlug,
			Name:         "Test Product",
			EnvatoItemID: &itemID,
		},
	}}
	licenses := &fakeLicenses{byID: map[uuid.UUID]domain.License{}, byCode: map[string]uuid.UUID{}}
	licenses.put(domain.License{
		LicenseID:    licenseID,
		PurchaseCode: testPurchaseCode,
		LicenseKey:   "LIC-TESTKEY0000000000000000000001",
		ProductID:    productID,
		LicenseType:  domain.LicenseTypeRegular,
		Status:       domain.LicenseStatusActive,
		MaxDomains:   2,
	})

	domains := &fakeDomains{byLicense: map[uuid.UUID][]domain.LicenseDomain{}}
	log := &fakeLog{}
	cache := &fakeCache{items: map[string]ports.CachedVerification{}}
	rates := &fakeRates{counts: map[string]int64{}}
	marketplace := &fakeMarketplace{purchases: map[string]*ports.MarketplacePurchase{}}

	svc := application.NewService(application.Dependencies{
		Config:          cfg,
		Products:        products,
		Licenses:        licenses,
		LicenseDomains:  domains,
		VerificationLog: log,
		Cache:           cache,
		Rates:           rates,
		Marketplace:     marketplace,
	})

	return &fixture{
		service:     svc,
		productID:   productID,
		licenseID:   licenseID,
		licenses:    licenses,
		domains:     domains,
		log:         log,
		cache:       cache,
		rates:       rates,
		marketplace: marketplace,
	}
}

type fakeProducts struct {
	bySlug map[string]domain.Product
}

func (f *fakeProducts) GetBySlug(_ context.Context, slug string) (domain.Product, error) {
	p, ok := f.bySlug[slug]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProducts) GetByEnvatoItemID(_ context.Context, itemID int64) (domain.Product, error) {
	for _, p := range f.bySlug {
		if p.EnvatoItemID != nil && *p.EnvatoItemID == itemID {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

type fakeLicenses struct {
	byID   map[uuid.UUID]domain.License
	byCode map[string]uuid.UUID
}

func codeKey(productID uuid.UUID, code string) string {
	return productID.String() + "|" + code
}

func (f *fakeLicenses) put(lic domain.License) {
	f.byID[lic.LicenseID] = lic
	f.byCode[codeKey(lic.ProductID, lic.PurchaseCode)] = lic.LicenseID
}

func (f *fakeLicenses) setExpiry(id uuid.UUID, at *time.Time) {
	lic := f.byID[id]
	lic.LicenseExpiresAt = at
	f.byID[id] = lic
}

func (f *fakeLicenses) GetByPurchaseCode(_ context.Context, productID uuid.UUID, code string) (domain.License, error) {
	id, ok := f.byCode[codeKey(productID, code)]
	if !ok {
		return domain.License{}, domain.ErrLicenseNotFound
	}
	return f.byID[id], nil
}

func (f *fakeLicenses) GetByKey(_ context.Context, key string) (domain.License, error) {
	for _, lic := range f.byID {
		if lic.LicenseKey == key {
			return lic, nil
		}
	}
	return domain.License{}, domain.ErrLicenseNotFound
}

func (f *fakeLicenses) Create(_ context.Context, params ports.LicenseCreateParams) (domain.License, error) {
	if _, ok := f.byCode[codeKey(params.ProductID, params.PurchaseCode)]; ok {
		return domain.License{}, domain.ErrConflict
	}
	lic := domain.License{
		LicenseID:        uuid.New(),
		PurchaseCode:     params.PurchaseCode,
		LicenseKey:       params.LicenseKey,
		ProductID:        params.ProductID,
		LicenseType:      params.LicenseType,
		Status:           domain.LicenseStatusActive,
		MaxDomains:       params.MaxDomains,
		LicenseExpiresAt: params.LicenseExpiresAt,
		SupportExpiresAt: params.SupportExpiresAt,
		CreatedAt:        params.CreatedAt,
		UpdatedAt:        params.CreatedAt,
	}
	f.put(lic)
	return lic, nil
}

func (f *fakeLicenses) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.LicenseStatus, at time.Time) error {
	lic, ok := f.byID[id]
	if !ok {
		return domain.ErrLicenseNotFound
	}
	if lic.Status != from {
		return domain.ErrInvalidTransition
	}
	lic.Status = to
	lic.UpdatedAt = at
	f.byID[id] = lic
	return nil
}

func (f *fakeLicenses) StatusCounts(_ context.Context, now time.Time) (ports.LicenseStatusCounts, error) {
	var counts ports.LicenseStatusCounts
	for _, lic := range f.byID {
		counts.Total++
		switch lic.EffectiveStatus(now) {
		case domain.LicenseStatusActive:
			counts.Active++
		case domain.LicenseStatusSuspended:
			counts.Suspended++
		case domain.LicenseStatusRevoked:
			counts.Revoked++
		case domain.LicenseStatusExpired:
			counts.Expired++
		}
	}
	return counts, nil
}

type fakeDomains struct {
	byLicense map[uuid.UUID][]domain.LicenseDomain
}

func (f *fakeDomains) active(licenseID uuid.UUID) []domain.LicenseDomain {
	var out []domain.LicenseDomain
	for _, d := range f.byLicense[licenseID] {
		if d.Status == domain.DomainStatusActive {
			out = append(out, d)
		}
	}
	return out
}

func (f *fakeDomains) ListActiveByLicense(_ context.Context, licenseID uuid.UUID) ([]domain.LicenseDomain, error) {
	return f.active(licenseID), nil
}

func (f *fakeDomains) RegisterIfWithinLimit(_ context.Context, licenseID uuid.UUID, host string, maxDomains int, at time.Time) (domain.LicenseDomain, error) {
	for _, d := range f.active(licenseID) {
		if d.Domain == host {
			return d, nil
		}
	}
	if len(f.active(licenseID)) >= maxDomains {
		return domain.LicenseDomain{}, domain.ErrDomainLimitExceeded
	}
	binding := domain.LicenseDomain{
		DomainID:     uuid.New(),
		LicenseID:    licenseID,
		Domain:       host,
		Status:       domain.DomainStatusActive,
		RegisteredAt: at,
	}
	f.byLicense[licenseID] = append(f.byLicense[licenseID], binding)
	return binding, nil
}

type fakeLog struct {
	entries []domain.VerificationLogEntry
}

func (f *fakeLog) Insert(_ context.Context, entry domain.VerificationLogEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLog) OutcomeCounts(_ context.Context, since time.Time) (ports.VerificationOutcomeCounts, error) {
	var counts ports.VerificationOutcomeCounts
	for _, e := range f.entries {
		if e.CreatedAt.Before(since) {
			continue
		}
		counts.Total++
		switch e.Status {
		case domain.VerificationStatusSuccess:
			counts.Success++
		case domain.VerificationStatusFailed:
			counts.Failed++
		case domain.VerificationStatusRateLimited:
			counts.RateLimited++
		}
	}
	return counts, nil
}

func (f *fakeLog) TopProducts(_ context.Context, since time.Time, limit int) ([]ports.ProductVerificationCount, error) {
	byProduct := map[string]int64{}
	for _, e := range f.entries {
		if e.CreatedAt.Before(since) {
			continue
		}
		byProduct[e.ProductSlug]++
	}
	out := make([]ports.ProductVerificationCount, 0, len(byProduct))
	for slug, count := range byProduct {
		out = append(out, ports.ProductVerificationCount{ProductSlug: slug, Count: count})
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeCache struct {
	items map[string]ports.CachedVerification
	err   error
}

func cacheKey(slug, codeDigest, domainDigest string) string {
	return slug + "|" + codeDigest + "|" + domainDigest
}

func (f *fakeCache) flush() {
	f.items = map[string]ports.CachedVerification{}
}

func (f *fakeCache) Get(_ context.Context, slug, codeDigest, domainDigest string) (*ports.CachedVerification, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.items[cacheKey(slug, codeDigest, domainDigest)]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (f *fakeCache) Put(_ context.Context, slug, codeDigest, domainDigest string, value ports.CachedVerification, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.items[cacheKey(slug, codeDigest, domainDigest)] = value
	return nil
}

func (f *fakeCache) InvalidateLicense(_ context.Context, slug, codeDigest string) error {
	if f.err != nil {
		return f.err
	}
	prefix := slug + "|" + codeDigest + "|"
	for key := range f.items {
		if strings.HasPrefix(key, prefix) {
			delete(f.items, key)
		}
	}
	return nil
}

type fakeRates struct {
	counts map[string]int64
	err    error
}

func (f *fakeRates) Increment(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

type fakeMarketplace struct {
	purchases map[string]*ports.MarketplacePurchase
	err       error
}

func (f *fakeMarketplace) VerifyPurchase(_ context.Context, code string) (*ports.MarketplacePurchase, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.purchases[code], nil
}
