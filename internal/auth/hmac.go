package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// CanonicalQuery is the message Shopify signs: every parameter except hmac and
// signature, sorted by key and URL-encoded.
func CanonicalQuery(query url.Values) string {
	rest := make(url.Values, len(query))
	for k, vs := range query {
		if k == "hmac" || k == "signature" {
			continue
		}
		rest[k] = vs
	}
	return rest.Encode()
}

// SignQuery returns the lowercase hex HMAC-SHA256 of the canonical query.
func SignQuery(secret string, query url.Values) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(CanonicalQuery(query)))
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidateHMAC reports whether given is the signature of query under secret.
// Malformed or empty input is simply false.
func ValidateHMAC(given, secret string, query url.Values) bool {
	if given == "" || secret == "" {
		return false
	}
	expected := SignQuery(secret, query)
	return hmac.Equal([]byte(expected), []byte(given))
}
