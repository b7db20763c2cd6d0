package pool

import (
	"fmt"
	"math"
	"strconv"
)

// KiroRawUsage is the shape returned by the Kiro adapter's usage-query
// capability, before aggregation. It is intentionally permissive: unknown
// upstream fields are simply ignored rather than rejected.
type KiroRawUsage struct {
	UsageBreakdown []KiroUsageBucket  `json:"usageBreakdown"`
	FreeTrial      *KiroUsageBucket   `json:"freeTrialInfo,omitempty"`
	Bonuses        []KiroBonusBucket  `json:"bonuses,omitempty"`
}

// KiroUsageBucket is one contributing sub-bucket of quota (a breakdown
// entry, or the embedded free-trial allowance).
type KiroUsageBucket struct {
	CurrentUsage float64 `json:"currentUsage"`
	UsageLimit   float64 `json:"usageLimit"`
}

// KiroBonusBucket is a bonus quota grant; only ACTIVE bonuses contribute.
type KiroBonusBucket struct {
	Status       string  `json:"status"`
	CurrentUsage float64 `json:"currentUsage"`
	UsageLimit   float64 `json:"usageLimit"`
}

// KiroUsageInfo is the normalized, cached quota snapshot stored on an
// entry after a successful Mode A probe.
type KiroUsageInfo struct {
	TotalUsed     float64 `json:"totalUsed"`
	TotalLimit    float64 `json:"totalLimit"`
	Remaining     float64 `json:"remaining"`
	UsagePercent  float64 `json:"usagePercent"`
	HasActiveQuota bool   `json:"hasActiveQuota"`
}

// FormatKiroUsage aggregates a raw usage document into a normalized
// snapshot, summing currentUsage/usageLimit across every breakdown item
// plus the embedded free trial and any ACTIVE bonus (§4.3, Mode A step 3).
//
// A bucket counts toward "active quota" when it has a positive limit and
// current usage below that limit.
func FormatKiroUsage(raw *KiroRawUsage) *KiroUsageInfo {
	if raw == nil {
		return &KiroUsageInfo{}
	}

	var totalUsed, totalLimit float64
	hasActive := false

	consider := func(b KiroUsageBucket) {
		totalUsed += b.CurrentUsage
		totalLimit += b.UsageLimit
		if b.UsageLimit > 0 && b.CurrentUsage < b.UsageLimit {
			hasActive = true
		}
	}

	for _, b := range raw.UsageBreakdown {
		consider(b)
	}
	if raw.FreeTrial != nil {
		consider(*raw.FreeTrial)
	}
	for _, b := range raw.Bonuses {
		if b.Status == "ACTIVE" {
			consider(KiroUsageBucket{CurrentUsage: b.CurrentUsage, UsageLimit: b.UsageLimit})
		}
	}

	info := &KiroUsageInfo{
		TotalUsed:      totalUsed,
		TotalLimit:     totalLimit,
		Remaining:      totalLimit - totalUsed,
		HasActiveQuota: hasActive,
	}
	if totalLimit > 0 {
		info.UsagePercent = math.Round(100 * totalUsed / totalLimit)
	}
	return info
}

// Healthy reports the Mode A verdict for a snapshot: active quota and
// positive remaining balance.
func (u *KiroUsageInfo) Healthy() bool {
	return u != nil && u.HasActiveQuota && u.Remaining > 0
}

// VerdictMessage renders the unhealthy-verdict message for a Mode A probe
// (§4.3 step 4): the exhausted-quota message with the aggregated
// used/limit figures when the balance is spent, otherwise a generic
// no-active-quota message.
func (u *KiroUsageInfo) VerdictMessage() string {
	if u == nil || u.Remaining <= 0 {
		used, limit := 0.0, 0.0
		if u != nil {
			used, limit = u.TotalUsed, u.TotalLimit
		}
		return fmt.Sprintf("quota exhausted (%s/%s)", formatQuotaNumber(used), formatQuotaNumber(limit))
	}
	return "no active quota"
}

// formatQuotaNumber renders a quota figure without a trailing ".0" for
// whole numbers, matching the upstream's own usage display.
func formatQuotaNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// KiroCredentials is the on-disk credential shape for the claude-kiro-oauth
// family (§6), consumed by the adapter and written by the import tooling.
type KiroCredentials struct {
	RefreshToken string  `json:"refreshToken"`
	AccessToken  *string `json:"accessToken"`
	AuthMethod   string  `json:"authMethod,omitempty"`
	Region       string  `json:"region,omitempty"`
	ProfileArn   *string `json:"profileArn"`
	ExpiresAt    *string `json:"expiresAt"`
	Comment      string  `json:"_comment,omitempty"`
	OriginalID   string  `json:"_originalId,omitempty"`
}

// WithDefaults fills the family's documented defaults for optional fields.
func (c KiroCredentials) WithDefaults() KiroCredentials {
	if c.AuthMethod == "" {
		c.AuthMethod = "social"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	return c
}
