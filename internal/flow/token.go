package flow

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Challenge token lifetimes.
const (
	VerificationExpiry = 24 * time.Hour
	ResetExpiry        = 1 * time.Hour
)

// GenerateSecureToken returns 256 bits of cryptographically secure
// randomness as a fixed-length hex string. Never derived from time or
// sequence, so tokens are not guessable.
func GenerateSecureToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
