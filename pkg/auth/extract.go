package auth

import (
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// ExtractToken pulls the raw bearer token from a request, checking the
// Authorization header first and falling back to the named session cookie.
// Header wins over cookie so a programmatic API client can override a
// browser session in the same request. Absence of a token is a normal
// outcome, not an error; rejection is the guard's job.
func ExtractToken(r *http.Request, cookieName string) (string, bool) {
	if tok, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return tok, true
	}
	return cookieToken(r.Header.Get("Cookie"), cookieName)
}

func bearerToken(authz string) (string, bool) {
	if !strings.HasPrefix(authz, bearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(authz, bearerPrefix))
	return tok, tok != ""
}

// cookieToken parses the raw Cookie header itself (;-delimited, =-split
// pairs) so every caller shares one extraction path instead of each route
// re-reading cookies its own way.
func cookieToken(rawCookie, name string) (string, bool) {
	for _, segment := range strings.Split(rawCookie, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(segment), "=")
		if !found {
			continue
		}
		if strings.TrimSpace(key) == name {
			value = strings.TrimSpace(value)
			return value, value != ""
		}
	}
	return "", false
}
