package auth

import (
	"net/http/httptest"
	"testing"
)

func TestExtractToken_HeaderWinsOverCookie(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	r.Header.Set("Cookie", "token=cookie-token")

	tok, ok := ExtractToken(r, "token")
	if !ok {
		t.Fatal("expected a token")
	}
	if tok != "header-token" {
		t.Errorf("got %q, want header token", tok)
	}
}

func TestExtractToken_CookieFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cookie string
		want   string
		ok     bool
	}{
		{"single cookie", "token=abc123", "abc123", true},
		{"among other cookies", "theme=dark; token=abc123; lang=en", "abc123", true},
		{"whitespace around pairs", "  token = abc123 ; theme=dark", "abc123", true},
		{"no token cookie", "theme=dark; lang=en", "", false},
		{"empty value", "token=", "", false},
		{"no cookies at all", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.cookie != "" {
				r.Header.Set("Cookie", tt.cookie)
			}

			tok, ok := ExtractToken(r, "token")
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if tok != tt.want {
				t.Errorf("token = %q, want %q", tok, tt.want)
			}
		})
	}
}

func TestExtractToken_MalformedAuthorizationHeader(t *testing.T) {
	t.Parallel()

	for _, authz := range []string{"Basic dXNlcg==", "Bearer", "Bearer ", "bearer abc"} {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", authz)
		r.Header.Set("Cookie", "token=from-cookie")

		tok, ok := ExtractToken(r, "token")
		if !ok || tok != "from-cookie" {
			t.Errorf("authz %q: expected cookie fallback, got (%q, %v)", authz, tok, ok)
		}
	}
}

func TestExtractToken_NothingPresent(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("GET", "/", nil)
	if tok, ok := ExtractToken(r, "token"); ok || tok != "" {
		t.Errorf("expected no token, got (%q, %v)", tok, ok)
	}
}
