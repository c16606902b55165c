package domain

// Header is the first token segment.
type Header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
	V   int    `json:"v"`
}

// Claims is the signed token payload. Times are unix seconds. PeriodStart and
// PeriodEnd are informational billing bounds and never drive trust decisions.
type Claims struct {
	Version     int      `json:"v"`
	ClientID    string   `json:"cid"`
	Caps        []string `json:"caps"`
	IssuedAt    int64    `json:"iat"`
	ExpiresAt   int64    `json:"exp"`
	Rev         int64    `json:"rev"`
	PeriodStart *int64   `json:"ps,omitempty"`
	PeriodEnd   *int64   `json:"pe,omitempty"`
}

// HasCapability reports whether the claims grant capability, compared case-insensitively.
func (c *Claims) HasCapability(capability string) bool {
	return ContainsCapability(c.Caps, capability)
}

// IssueInput holds the raw inputs of a codec issuance. Values are coerced by the
// codec: TTLSec to at least 1, Rev to at least 0, negative periods to absent.
// NowSec overrides the clock, which the issuance policy uses for time bucketing.
type IssueInput struct {
	ClientID       string
	Caps           []string
	TTLSec         int64
	Rev            int64
	PeriodStartSec *int64
	PeriodEndSec   *int64
	NowSec         *int64
}
