package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		body     any
		expected string
	}{
		{
			name:     "dedicated header",
			headers:  map[string]string{"X-CCT": "header-token"},
			expected: "header-token",
		},
		{
			name:     "authorization scheme",
			headers:  map[string]string{"Authorization": "CCT auth-token"},
			expected: "auth-token",
		},
		{
			name:     "authorization scheme is case-insensitive",
			headers:  map[string]string{"Authorization": "cct  auth-token "},
			expected: "auth-token",
		},
		{
			name:     "bearer scheme is ignored",
			headers:  map[string]string{"Authorization": "Bearer other"},
			expected: "",
		},
		{
			name:     "body field",
			body:     map[string]string{"cct": "body-token"},
			expected: "body-token",
		},
		{
			name:     "dedicated header wins over authorization",
			headers:  map[string]string{"X-CCT": "header-token", "Authorization": "CCT auth-token"},
			expected: "header-token",
		},
		{
			name:     "header wins over body",
			headers:  map[string]string{"Authorization": "CCT auth-token"},
			body:     map[string]string{"cct": "body-token"},
			expected: "auth-token",
		},
		{
			name:     "blank header falls through to body",
			headers:  map[string]string{"X-CCT": "   "},
			body:     map[string]string{"cct": "body-token"},
			expected: "body-token",
		},
		{
			name:     "malformed body",
			body:     "{not json",
			expected: "",
		},
		{
			name:     "nothing presented",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := createTestContext(http.MethodPost, "/", tt.body)
			for key, value := range tt.headers {
				c.Request.Header.Set(key, value)
			}

			assert.Equal(t, tt.expected, ExtractToken(c))
		})
	}
}

func TestExtractToken_IgnoresNonJSONBody(t *testing.T) {
	c, _ := createTestContext(http.MethodPost, "/", `{"cct":"body-token"}`)
	c.Request.Header.Set("Content-Type", "text/plain")

	assert.Empty(t, ExtractToken(c))
}

func TestExtractToken_BodyRemainsBindable(t *testing.T) {
	c, _ := createTestContext(http.MethodPost, "/", map[string]string{"cct": "body-token", "message": "hi"})

	require.Equal(t, "body-token", ExtractToken(c))

	var payload struct {
		Message string `json:"message"`
	}
	require.NoError(t, c.ShouldBindBodyWith(&payload, binding.JSON))
	assert.Equal(t, "hi", payload.Message)
}

func TestGrantContext(t *testing.T) {
	c, _ := createTestContext(http.MethodGet, "/", nil)

	_, ok := GetGrant(c.Request.Context())
	assert.False(t, ok)

	c.Request = c.Request.WithContext(WithGrant(c.Request.Context(), &grantFixture))
	grant, ok := GetGrant(c.Request.Context())
	assert.True(t, ok)
	assert.Equal(t, "acme", grant.ClientID)
}
