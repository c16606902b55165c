// Package domain defines the Core Capability Token (CCT) model: signed token claims,
// the cached tenant entitlement snapshot, and the typed rejection reasons shared by the
// codec, the authorization guard and the issuance policy.
package domain

const (
	// TokenVersion is the only header/payload version this codec issues and accepts.
	TokenVersion = 1

	// TokenAlgorithm is the header alg value. Tokens are MACed with HMAC-SHA256.
	TokenAlgorithm = "HS256"

	// TokenType is the header typ value.
	TokenType = "CCT"

	// AnyTenant is the tenant id used by callers that do not bind a check to a
	// specific tenant. The token's cid is then trusted as the tenant.
	AnyTenant = ""
)
