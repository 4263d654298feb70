package application

import (
	"time"

	"github.com/codehaven/licensing-service/internal/ports"
)

// Config is the immutable per-process policy snapshot. Flags are resolved at
// startup and never mutated afterwards, so every request in a process sees the
// same policy.
type Config struct {
	AutoRegisterDomains bool
	AllowLocalhost      bool
	AllowWildcards      bool
	DefaultMaxDomains   int
	CacheTTL            time.Duration
	RateLimitThreshold  int
	RateLimitWindow     time.Duration
	EnvatoEnabled       bool
	StatisticsWindow    time.Duration
}

// Service implements the license verification use-cases on top of the ports.
type Service struct {
	cfg         Config
	products    ports.ProductRepository
	licenses    ports.LicenseRepository
	domains     ports.LicenseDomainRepository
	log         ports.VerificationLogRepository
	cache       ports.VerificationCache
	rates       ports.RateLimitStore
	marketplace ports.PurchaseVerifier
	nowFn       func() time.Time
}

// Dependencies wires Service construction; Marketplace may be nil when the
// Envato fallback is disabled.
type Dependencies struct {
	Config          Config
	Products        ports.ProductRepository
	Licenses        ports.LicenseRepository
	LicenseDomains  ports.LicenseDomainRepository
	VerificationLog ports.VerificationLogRepository
	Cache           ports.VerificationCache
	Rates           ports.RateLimitStore
	Marketplace     ports.PurchaseVerifier
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.DefaultMaxDomains < 1 {
		cfg.DefaultMaxDomains = 1
	}
	if cfg.StatisticsWindow <= 0 {
		cfg.StatisticsWindow = 24 * time.Hour
	}
	return &Service{
		cfg:         cfg,
		products:    deps.Products,
		licenses:    deps.Licenses,
		domains:     deps.LicenseDomains,
		log:         deps.VerificationLog,
		cache:       deps.Cache,
		rates:       deps.Rates,
		marketplace: deps.Marketplace,
		nowFn:       func() time.Time { return time.Now().UTC() },
	}
}
