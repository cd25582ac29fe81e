package auth

import (
	"crypto/rand"
	"encoding/hex"
)

const nonceBytes = 16

// NewNonce returns a hex encoded random state value. It is the only CSRF defence of
// the flow, so it comes from crypto/rand and the error is not swallowed.
func NewNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
