package middleware

import (
	"fmt"
	"strconv"
	"time"

	redisStore "wallet-remittance-engine/internal/adapter/storage/redis"
	"wallet-remittance-engine/pkg/apperror"
	"wallet-remittance-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the rate limits per endpoint group.
// Wallet mutations and remittance builds are the expensive paths; webhook
// deliveries get headroom because providers retry bursts.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"wallet_ops":     {Limit: 100, Window: time.Minute},
		"wallet_read":    {Limit: 300, Window: time.Minute},
		"remittances":    {Limit: 10, Window: time.Minute},
		"payout_webhook": {Limit: 120, Window: time.Minute},
	}
}

// RateLimiter creates a rate-limiting middleware for a given endpoint group.
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := extractIdentifier(c)
		key := fmt.Sprintf("%s:%s", identifier, group)

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit check failed, allowing request (degraded mode)")
			c.Next()
			return
		}

		// Always set rate limit headers
		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractIdentifier determines the rate limit key source. Tenant-scoped
// routes are counted per tenant so one tenant's burst cannot starve another;
// everything else falls back to the client IP.
func extractIdentifier(c *gin.Context) string {
	if tenantID := c.Param("tenant_id"); tenantID != "" {
		return tenantID
	}
	return c.ClientIP()
}
