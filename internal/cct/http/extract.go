package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	// TokenHeader is the dedicated header carrying a capability token.
	TokenHeader = "X-CCT"

	// AuthorizationScheme is the Authorization header scheme carrying a capability token.
	AuthorizationScheme = "CCT"

	// TokenBodyField is the JSON body field accepted as a last resort.
	TokenBodyField = "cct"
)

type tokenBody struct {
	CCT string `json:"cct"`
}

// ExtractToken returns the capability token presented with the request, trying in order
// the X-CCT header, an "Authorization: CCT <token>" header and a JSON body field "cct".
// The first non-empty value wins. The body is read through gin's body cache so handlers
// can still bind it with ShouldBindBodyWith.
func ExtractToken(c *gin.Context) string {
	if token := tokenFromHeaders(c); token != "" {
		return token
	}
	return tokenFromBody(c)
}

// tokenFromHeaders returns the X-CCT header, or else the CCT authorization scheme.
func tokenFromHeaders(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(TokenHeader)); token != "" {
		return token
	}
	return tokenFromAuthorization(c.GetHeader("Authorization"))
}

func tokenFromAuthorization(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, AuthorizationScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

func tokenFromBody(c *gin.Context) string {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return ""
	}
	if c.ContentType() != binding.MIMEJSON {
		return ""
	}

	var body tokenBody
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
		return ""
	}
	return strings.TrimSpace(body.CCT)
}
