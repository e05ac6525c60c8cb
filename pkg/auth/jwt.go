package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures are kept distinct for diagnostics; callers treat
// every one of them as "unauthenticated".
var (
	ErrTokenMalformed = errors.New("malformed token")
	ErrBadSignature   = errors.New("token signature mismatch")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("invalid token")
)

// Claims is the strongly-typed session token payload. Tokens missing the
// subject or role are rejected as malformed rather than decoded into
// zero values.
type Claims struct {
	Sub  int64  `json:"sub"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewSessionToken mints a signed session token for an account. The role is
// a snapshot at issuance; role changes take effect on re-issue.
func NewSessionToken(sub int64, role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Audience:  []string{"eventhub-api"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse verifies signature and expiry and decodes the claims. Pure function
// of (token, current time, secret); no I/O.
func Parse(tokenString, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Sub == 0 || claims.Role == "" {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
