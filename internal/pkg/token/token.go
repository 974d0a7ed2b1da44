package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewRecoveryToken generates a cryptographically random 64-character hex
// token for password recovery.
func NewRecoveryToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate recovery token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
