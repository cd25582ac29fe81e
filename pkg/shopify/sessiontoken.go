package shopify

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenClaims are the App Bridge session token claims this package reads.
type SessionTokenClaims struct {
	jwt.RegisteredClaims

	Dest string `json:"dest,omitempty"` // https://{shop}
}

type VerifiedSession struct {
	ShopDomain string
	UserID     string
	ExpiresAt  time.Time
}

// VerifySessionToken verifies an embedded app session token (JWT, HS256) signed with
// the app secret and returns the shop it was issued for. The iss and dest hosts
// must agree.
func VerifySessionToken(tokenString, apiKey, apiSecret string, now time.Time) (*VerifiedSession, error) {
	if tokenString == "" {
		return nil, errors.New("missing token")
	}
	if apiSecret == "" {
		return nil, errors.New("missing api secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if apiKey != "" {
		opts = append(opts, jwt.WithAudience(apiKey))
	}

	claims := &SessionTokenClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(apiSecret), nil
	}, opts...); err != nil {
		return nil, fmt.Errorf("session token: %w", err)
	}

	dest := hostOf(claims.Dest)
	if dest == "" {
		return nil, errors.New("missing shop in token")
	}
	if iss := hostOf(claims.Issuer); iss != "" && !strings.EqualFold(iss, dest) {
		return nil, fmt.Errorf("issuer %q does not match dest %q", iss, dest)
	}

	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return &VerifiedSession{
		ShopDomain: strings.ToLower(dest),
		UserID:     claims.Subject,
		ExpiresAt:  exp,
	}, nil
}

func hostOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" {
		return ""
	}
	return u.Hostname()
}
