package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
)

// Cookie and header names used by browser sessions
const (
	AccessTokenCookie = "access_token"
	CSRFCookie        = "csrf_token"
	CSRFHeader        = "X-CSRF-Token"
)

// NewCSRFToken returns a fresh random double-submit token
func NewCSRFToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// CSRFTokensMatch compares the header token with the cookie token in constant time
func CSRFTokensMatch(headerToken, cookieToken string) bool {
	if headerToken == "" || cookieToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookieToken)) == 1
}
