package constants

import (
	"fmt"
	"time"
)

// Redis cache keys and TTLs.
// Pattern: hobbystudio:{module}:{scope}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute // analytics
	TTL_DYNAMIC_SHORT  = 5 * time.Minute  // event listings
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "hobbystudio"
)

// ================== INSIGHTS MODULE ==================

const (
	CACHE_KEY_INSIGHTS_STUDIO = CACHE_PREFIX + ":insights:studio:" // + studio-id
)

const (
	TTL_INSIGHTS_STUDIO = TTL_DYNAMIC_MEDIUM
)

// ================== CALENDAR MODULE ==================

const (
	CACHE_KEY_CALENDAR_EVENTS = CACHE_PREFIX + ":calendar:events:studio:" // + studio-id:page:X:limit:Y:status:Z
)

const (
	TTL_CALENDAR_EVENTS = TTL_DYNAMIC_SHORT
)

// ================== RATE LIMITING ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit:" // + client:type
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_INSIGHTS = CACHE_PREFIX + ":insights:*"
)

// ================== HELPER FUNCTIONS ==================

// BuildInsightsKey -> "hobbystudio:insights:studio:<id>"
func BuildInsightsKey(studioID string) string {
	return CACHE_KEY_INSIGHTS_STUDIO + studioID
}

// BuildCalendarEventsKey -> "hobbystudio:calendar:events:studio:<id>:page:1:limit:20:status:imported"
func BuildCalendarEventsKey(studioID string, page, limit int, status string) string {
	return fmt.Sprintf("%s%s:page:%d:limit:%d:status:%s", CACHE_KEY_CALENDAR_EVENTS, studioID, page, limit, status)
}

// BuildCalendarEventsPattern matches every cached listing page of one studio
func BuildCalendarEventsPattern(studioID string) string {
	return CACHE_KEY_CALENDAR_EVENTS + studioID + ":*"
}

// BuildRateLimitKey -> "hobbystudio:ratelimit:<client>:<type>"
func BuildRateLimitKey(client, limitType string) string {
	return RATE_LIMIT_PREFIX + client + ":" + limitType
}
