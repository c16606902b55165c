package service

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/allisson/cct/internal/cct/domain"
)

// segmentEncoding is unpadded base64url. Strict mode rejects non-zero trailing bits so
// every signature has exactly one accepted encoding.
var segmentEncoding = base64.RawURLEncoding.Strict()

// tokenHeader is shared by every issued token.
var tokenHeader = domain.Header{
	Alg: domain.TokenAlgorithm,
	Typ: domain.TokenType,
	V:   domain.TokenVersion,
}

// tokenCodec implements TokenCodec with HMAC-SHA256 over "header.payload".
type tokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a TokenCodec keyed by secret. An empty secret is accepted;
// every operation then fails with domain.ErrMissingSecret.
func NewTokenCodec(secret []byte) TokenCodec {
	return &tokenCodec{secret: bytes.Clone(secret)}
}

// Issue normalizes the input, builds the claims and signs them.
func (c *tokenCodec) Issue(input domain.IssueInput) (string, *domain.Claims, error) {
	if len(c.secret) == 0 {
		return "", nil, domain.ErrMissingSecret
	}

	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		return "", nil, domain.ErrBadCID
	}

	now := time.Now().Unix()
	if input.NowSec != nil && *input.NowSec >= 0 {
		now = *input.NowSec
	}

	claims := &domain.Claims{
		Version:     domain.TokenVersion,
		ClientID:    clientID,
		Caps:        domain.NormalizeCapabilities(input.Caps),
		IssuedAt:    now,
		ExpiresAt:   now + max(input.TTLSec, 1),
		Rev:         max(input.Rev, 0),
		PeriodStart: nonNegative(input.PeriodStartSec),
		PeriodEnd:   nonNegative(input.PeriodEndSec),
	}

	headerJSON, err := json.Marshal(tokenHeader)
	if err != nil {
		return "", nil, err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", nil, err
	}

	signingInput := segmentEncoding.EncodeToString(headerJSON) + "." + segmentEncoding.EncodeToString(payloadJSON)
	token := signingInput + "." + segmentEncoding.EncodeToString(c.sign(signingInput))

	return token, claims, nil
}

// Verify checks token against time.Now.
func (c *tokenCodec) Verify(token string) (*domain.Claims, error) {
	return c.VerifyAt(token, time.Now())
}

// VerifyAt authenticates the token, validates every claim and finally checks expiry.
func (c *tokenCodec) VerifyAt(token string, now time.Time) (*domain.Claims, error) {
	if len(c.secret) == 0 {
		return nil, domain.ErrMissingSecret
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, domain.ErrBadFormat
	}

	signature, err := segmentEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, domain.ErrBadSignature
	}
	// hmac.Equal runs in constant time for equal-length inputs.
	if !hmac.Equal(signature, c.sign(parts[0]+"."+parts[1])) {
		return nil, domain.ErrBadSignature
	}

	if err := checkHeader(parts[0]); err != nil {
		return nil, err
	}

	raw, err := decodeSegment(parts[1])
	if err != nil {
		return nil, domain.ErrBadPayload
	}

	claims, err := parseClaims(raw)
	if err != nil {
		return nil, err
	}

	if now.Unix() >= claims.ExpiresAt {
		return nil, domain.ErrExpired
	}

	return claims, nil
}

func (c *tokenCodec) sign(signingInput string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}

func checkHeader(segment string) error {
	raw, err := decodeSegment(segment)
	if err != nil {
		return domain.ErrBadFormat
	}
	alg, _ := raw["alg"].(string)
	typ, _ := raw["typ"].(string)
	if alg != domain.TokenAlgorithm || typ != domain.TokenType {
		return domain.ErrBadFormat
	}
	if v, ok := domain.ParseNonNegativeInt(raw["v"]); !ok || v != domain.TokenVersion {
		return domain.ErrBadVersion
	}
	return nil
}

// parseClaims validates the decoded payload field by field in a fixed order.
func parseClaims(raw map[string]any) (*domain.Claims, error) {
	if v, ok := domain.ParseNonNegativeInt(raw["v"]); !ok || v != domain.TokenVersion {
		return nil, domain.ErrBadVersion
	}

	clientID, _ := raw["cid"].(string)
	if strings.TrimSpace(clientID) == "" {
		return nil, domain.ErrBadCID
	}

	list, ok := raw["caps"].([]any)
	if !ok {
		return nil, domain.ErrBadCaps
	}
	caps := make([]string, 0, len(list))
	for _, item := range list {
		name, ok := item.(string)
		if !ok {
			return nil, domain.ErrBadCaps
		}
		if name = strings.TrimSpace(name); name != "" {
			caps = append(caps, name)
		}
	}

	iat, okIat := domain.ParseNonNegativeInt(raw["iat"])
	exp, okExp := domain.ParseNonNegativeInt(raw["exp"])
	rev, okRev := domain.ParseNonNegativeInt(raw["rev"])
	if !okIat || !okExp || !okRev {
		return nil, domain.ErrBadTimes
	}
	if exp <= iat {
		return nil, domain.ErrBadExp
	}

	claims := &domain.Claims{
		Version:   domain.TokenVersion,
		ClientID:  clientID,
		Caps:      caps,
		IssuedAt:  iat,
		ExpiresAt: exp,
		Rev:       rev,
	}
	if ps, ok := domain.ParseNonNegativeInt(raw["ps"]); ok {
		claims.PeriodStart = &ps
	}
	if pe, ok := domain.ParseNonNegativeInt(raw["pe"]); ok {
		claims.PeriodEnd = &pe
	}
	return claims, nil
}

// decodeSegment decodes one base64url JSON object segment. Numbers stay json.Number
// so integer checks are exact.
func decodeSegment(segment string) (map[string]any, error) {
	data, err := segmentEncoding.DecodeString(segment)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.ErrBadPayload
	}
	return raw, nil
}

func nonNegative(v *int64) *int64 {
	if v == nil || *v < 0 {
		return nil
	}
	n := *v
	return &n
}
