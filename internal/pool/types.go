// Package pool implements the provider pool manager: selection, health
// probing, auto-recovery and debounced persistence across the families of
// upstream AI-service credentials a proxy multiplexes traffic across.
package pool

import (
	"encoding/json"
	"time"
)

// Family identifies a backend kind with its own request shape and
// health-check defaults.
type Family string

// Closed set of supported families (§3 of the specification).
const (
	FamilyGeminiCLIOAuth      Family = "gemini-cli-oauth"
	FamilyGeminiAntigravity   Family = "gemini-antigravity"
	FamilyOpenAICustom        Family = "openai-custom"
	FamilyClaudeCustom        Family = "claude-custom"
	FamilyClaudeKiroOAuth     Family = "claude-kiro-oauth"
	FamilyOpenAIQwenOAuth     Family = "openai-qwen-oauth"
	FamilyOpenAIResponses     Family = "openaiResponses-custom"
)

// checkModelDefaults gives the health-probe model used when an entry does
// not set checkModelName.
var checkModelDefaults = map[Family]string{
	FamilyGeminiCLIOAuth:    "gemini-2.5-flash",
	FamilyGeminiAntigravity: "gemini-2.5-flash",
	FamilyOpenAICustom:      "gpt-3.5-turbo",
	FamilyClaudeCustom:      "claude-3-7-sonnet-20250219",
	FamilyClaudeKiroOAuth:   "claude-haiku-4-5",
	FamilyOpenAIQwenOAuth:   "qwen3-coder-flash",
	FamilyOpenAIResponses:   "gpt-4o-mini",
}

// usageBasedFamilies are the families for which a quota-query (Mode A)
// probe is attempted before falling back to chat-send (Mode B). The
// specification calls this out as a "declared set abstraction" with only
// one current member; see DESIGN.md for the open question this leaves.
var usageBasedFamilies = map[Family]bool{
	FamilyClaudeKiroOAuth: true,
}

// Entry is a single credential/account within a family. Timestamps are
// carried as ISO-8601 strings both in memory and on disk, matching the
// on-disk document format (§3, §6).
type Entry struct {
	UUID                 string          `json:"uuid"`
	Credentials          json.RawMessage `json:"credentials"`
	CheckModelName       string          `json:"checkModelName,omitempty"`
	CheckHealth          *bool           `json:"checkHealth,omitempty"`
	NotSupportedModels   []string        `json:"notSupportedModels,omitempty"`
	IsHealthy            bool            `json:"isHealthy"`
	IsDisabled           bool            `json:"isDisabled"`
	ErrorCount           int             `json:"errorCount"`
	UsageCount           int64           `json:"usageCount"`
	LastUsed             string          `json:"lastUsed,omitempty"`
	LastErrorTime        string          `json:"lastErrorTime,omitempty"`
	LastErrorMessage     string          `json:"lastErrorMessage,omitempty"`
	LastHealthCheckTime  string          `json:"lastHealthCheckTime,omitempty"`
	LastHealthCheckModel string          `json:"lastHealthCheckModel,omitempty"`
	UsageInfo            *KiroUsageInfo  `json:"usageInfo,omitempty"`

	// extras preserves unknown on-disk keys (e.g. "_comment", "_originalId")
	// so operator annotations survive a load/save round-trip untouched.
	extras map[string]json.RawMessage
}

// checkHealthEnabled applies the default (true) when the field is absent.
func (e *Entry) checkHealthEnabled() bool {
	if e.CheckHealth == nil {
		return true
	}
	return *e.CheckHealth
}

// resolveCheckModel returns the model name a health probe should use.
func (e *Entry) resolveCheckModel(family Family) string {
	if e.CheckModelName != "" {
		return e.CheckModelName
	}
	return checkModelDefaults[family]
}

// supportsModel reports whether the entry may serve the given model.
func (e *Entry) supportsModel(model string) bool {
	if model == "" {
		return true
	}
	for _, m := range e.NotSupportedModels {
		if m == model {
			return false
		}
	}
	return true
}

// Snapshot is an immutable, lock-free copy of an entry returned to callers
// (selection results, admin listings). Mutating it has no effect on pool
// state.
type Snapshot struct {
	Family               Family
	UUID                 string
	Credentials          json.RawMessage
	CheckModelName       string
	IsHealthy            bool
	IsDisabled           bool
	ErrorCount           int
	UsageCount           int64
	LastUsed             string
	LastErrorTime        string
	LastErrorMessage     string
	LastHealthCheckTime  string
	LastHealthCheckModel string
	UsageInfo            *KiroUsageInfo
	FallbackSelection    bool
}

func snapshotOf(family Family, e *Entry, fallback bool) Snapshot {
	return Snapshot{
		Family:               family,
		UUID:                 e.UUID,
		Credentials:          e.Credentials,
		CheckModelName:       e.CheckModelName,
		IsHealthy:            e.IsHealthy,
		IsDisabled:           e.IsDisabled,
		ErrorCount:           e.ErrorCount,
		UsageCount:           e.UsageCount,
		LastUsed:             e.LastUsed,
		LastErrorTime:        e.LastErrorTime,
		LastErrorMessage:     e.LastErrorMessage,
		LastHealthCheckTime:  e.LastHealthCheckTime,
		LastHealthCheckModel: e.LastHealthCheckModel,
		UsageInfo:            e.UsageInfo,
		FallbackSelection:    fallback,
	}
}

// nowString formats the current time the way entries store timestamps.
func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// parseTime parses an entry timestamp, returning the zero time if empty or
// malformed (malformed timestamps are treated as "never" rather than
// aborting the caller).
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
