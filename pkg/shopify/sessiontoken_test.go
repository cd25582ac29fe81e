package shopify

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signSessionToken(t *testing.T, secret string, claims SessionTokenClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestVerifySessionToken_AudienceAndDest(t *testing.T) {
	apiKey := "test_api_key"
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	tok := signSessionToken(t, secret, SessionTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://my-shop.myshopify.com/admin",
			Subject:   "42",
			Audience:  []string{apiKey},
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now.Add(-1 * time.Minute)),
		},
		Dest: "https://my-shop.myshopify.com",
	})

	got, err := VerifySessionToken(tok, apiKey, secret, now)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.ShopDomain != "my-shop.myshopify.com" {
		t.Fatalf("shop domain mismatch: %q", got.ShopDomain)
	}
	if got.UserID != "42" {
		t.Fatalf("user id mismatch: %q", got.UserID)
	}
}

func TestVerifySessionToken_RejectsWrongAudience(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tok := signSessionToken(t, "s", SessionTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  []string{"someone-else"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		Dest: "https://my-shop.myshopify.com",
	})
	if _, err := VerifySessionToken(tok, "key", "s", now); err == nil {
		t.Fatalf("expected audience error")
	}
}

func TestVerifySessionToken_RejectsExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tok := signSessionToken(t, "s", SessionTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  []string{"key"},
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		},
		Dest: "https://my-shop.myshopify.com",
	})
	if _, err := VerifySessionToken(tok, "key", "s", now); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestVerifySessionToken_RejectsIssuerDestMismatch(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tok := signSessionToken(t, "s", SessionTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://other.myshopify.com/admin",
			Audience:  []string{"key"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		Dest: "https://my-shop.myshopify.com",
	})
	if _, err := VerifySessionToken(tok, "key", "s", now); err == nil {
		t.Fatalf("expected issuer mismatch error")
	}
}
