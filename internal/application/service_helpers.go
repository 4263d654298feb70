package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/codehaven/licensing-service/internal/domain"
	"github.com/codehaven/licensing-service/internal/ports"
)

const serviceName = "licensing-service"

func appLogger() *slog.Logger {
	return slog.Default().With(
		"service", serviceName,
		"module", "application",
		"layer", "application",
	)
}

// securityLogger tags entries for the security audit channel, distinct from
// the normal verification log. Format rejections that look like injection
// attempts land here.
func securityLogger() *slog.Logger {
	return slog.Default().With(
		"service", serviceName,
		"module", "application",
		"layer", "application",
		"channel", "security_audit",
	)
}

// digest produces the cache-key segment for one input. Hashing keeps raw
// purchase codes out of Redis key space.
func digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:16])
}

// enforceRateLimit consumes one slot from the caller's fixed window.
// Counter-store failures reject the request rather than opening the gate.
func (s *Service) enforceRateLimit(ctx context.Context, clientKey string) error {
	if s.rates == nil || s.cfg.RateLimitThreshold <= 0 || s.cfg.RateLimitWindow <= 0 {
		return nil
	}
	count, err := s.rates.Increment(ctx, clientKey, s.cfg.RateLimitWindow)
	if err != nil {
		appLogger().WarnContext(ctx, "rate limit store unavailable, failing closed",
			"operation", "rate_limit",
			"outcome", "failure",
			"error", err.Error(),
		)
		return domain.ErrRateLimited
	}
	if count > int64(s.cfg.RateLimitThreshold) {
		return domain.ErrRateLimited
	}
	return nil
}

// auditSuspiciousInput records rejected values carrying injection
// metacharacters. Values are entity-escaped before they reach the log line.
func auditSuspiciousInput(ctx context.Context, field, raw, ip string) {
	securityLogger().WarnContext(ctx, "suspicious input rejected",
		"operation", "validate_input",
		"outcome", "rejected",
		"field", field,
		"value", domain.EscapeForDisplay(strings.TrimSpace(raw)),
		"ip_address", ip,
	)
}

// logVerification appends an audit row. Audit persistence is best effort and
// never fails the caller's request.
func (s *Service) logVerification(ctx context.Context, entry domain.VerificationLogEntry) {
	entry.CreatedAt = s.nowFn()
	if err := s.log.Insert(ctx, entry); err != nil {
		appLogger().WarnContext(ctx, "failed to persist verification log entry",
			"operation", "verification_log",
			"outcome", "failure",
			"error", err.Error(),
		)
	}
}

// generateLicenseKey issues keys for marketplace-created rows. The key charset
// stays within the validated license-key alphabet.
func generateLicenseKey() string {
	raw := make([]byte, 16)
	_, _ = rand.Read(raw)
	return "LIC-" + strings.ToUpper(hex.EncodeToString(raw))
}

func resultFromCached(cached ports.CachedVerification) VerificationResult {
	return VerificationResult{
		Valid:            cached.Valid,
		LicenseType:      cached.LicenseType,
		Status:           cached.Status,
		LicenseExpiresAt: cached.LicenseExpiresAt,
		SupportExpiresAt: cached.SupportExpiresAt,
		DomainAllowed:    cached.DomainAllowed,
		Method:           cached.Method,
		VerifiedAt:       cached.VerifiedAt,
	}
}

func cachedFromResult(result VerificationResult) ports.CachedVerification {
	return ports.CachedVerification{
		Valid:            result.Valid,
		LicenseType:      result.LicenseType,
		Status:           result.Status,
		LicenseExpiresAt: result.LicenseExpiresAt,
		SupportExpiresAt: result.SupportExpiresAt,
		DomainAllowed:    result.DomainAllowed,
		Method:           result.Method,
		VerifiedAt:       result.VerifiedAt,
	}
}

func licenseIDRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	ref := id
	return &ref
}

// domainsRemaining computes free binding slots, never below zero.
func domainsRemaining(maxDomains int, activeCount int) int {
	remaining := maxDomains - activeCount
	if remaining < 0 {
		return 0
	}
	return remaining
}
