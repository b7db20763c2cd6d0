package pool

import "context"

// Adapter is the capability contract the manager depends on (§6). The
// request/response translation, credential storage and OAuth refresh
// mechanics behind it are external collaborators — the manager only ever
// sees this narrow surface.
type Adapter interface {
	// GenerateContent issues a single completion call. The manager builds
	// requestPayload; the adapter owns wire translation and transport.
	GenerateContent(ctx context.Context, modelName string, requestPayload any) (any, error)
}

// UsageQuerier is an optional capability: adapters for families in the
// usage-based set (currently claude-kiro-oauth) implement it to enable
// Mode A quota-query probing.
type UsageQuerier interface {
	GetUsageLimits(ctx context.Context) (*KiroRawUsage, error)
}

// Refresher is an optional capability invoked before a Mode A probe.
type Refresher interface {
	RefreshToken(ctx context.Context) error
}

// ForceRefresher is preferred over Refresher when both are implemented.
type ForceRefresher interface {
	ForceRefreshToken(ctx context.Context) error
}

// ProxySettings carries the per-family USE_SYSTEM_PROXY_* toggles (§6) that
// get merged into adapter construction.
type ProxySettings struct {
	Gemini bool
	OpenAI bool
	Claude bool
	Qwen   bool
	Kiro   bool
}

// UsesSystemProxy reports the toggle relevant to a family.
func (p ProxySettings) UsesSystemProxy(family Family) bool {
	switch family {
	case FamilyGeminiCLIOAuth, FamilyGeminiAntigravity:
		return p.Gemini
	case FamilyOpenAICustom, FamilyOpenAIResponses:
		return p.OpenAI
	case FamilyClaudeCustom:
		return p.Claude
	case FamilyOpenAIQwenOAuth:
		return p.Qwen
	case FamilyClaudeKiroOAuth:
		return p.Kiro
	default:
		return false
	}
}

// AdapterFactory constructs a fresh Adapter for a given entry. Implementers
// live outside this package (credential decoding, transport setup); the
// manager only calls through this seam.
type AdapterFactory interface {
	NewAdapter(family Family, uuid string, credentials []byte, proxy ProxySettings) (Adapter, error)
}

// AdapterFactoryFunc adapts a plain function to AdapterFactory.
type AdapterFactoryFunc func(family Family, uuid string, credentials []byte, proxy ProxySettings) (Adapter, error)

// NewAdapter implements AdapterFactory.
func (f AdapterFactoryFunc) NewAdapter(family Family, uuid string, credentials []byte, proxy ProxySettings) (Adapter, error) {
	return f(family, uuid, credentials, proxy)
}
