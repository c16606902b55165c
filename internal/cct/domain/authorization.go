package domain

// RequireCapInput is an authorization query: may the bearer of Token use Capability
// for TenantID right now.
type RequireCapInput struct {
	// Token is the extracted bearer token; empty when the request carried none.
	Token string
	// TenantID binds the check to a tenant. AnyTenant trusts the token's cid.
	TenantID   string
	Capability string
	// AllowMissingInDev lets tokenless requests through in development only.
	AllowMissingInDev bool
	// FreshState bypasses the tenant state cache.
	FreshState bool
}

// Grant is the outcome of a successful authorization check.
type Grant struct {
	ClientID string   `json:"cid"`
	Caps     []string `json:"caps"`
	// DevBypass is set when the grant came from the development tokenless path.
	DevBypass bool `json:"devBypass,omitempty"`
}

// IssueTokenInput is a request for a fresh token for a tenant.
type IssueTokenInput struct {
	ClientID string
	// TTLSec is the desired lifetime; nil selects the configured default.
	TTLSec *int64
	// Caps overrides the tenant capabilities outside production and is ignored in production.
	Caps []string
}

// IssueTokenOutput describes an issued token.
type IssueTokenOutput struct {
	Token       string
	ClientID    string
	Caps        []string
	Rev         int64
	IssuedAt    int64
	ExpiresAt   int64
	PeriodStart *int64
	PeriodEnd   *int64
	// BucketRemaining is how many seconds the same request keeps producing this exact token.
	BucketRemaining int64
}
