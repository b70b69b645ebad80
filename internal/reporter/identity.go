package reporter

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Hasher derives privacy-preserving reporter identities from email addresses.
// HMAC keyed by a server secret resists dictionary attacks that a plain
// SHA-256 of the address would not.
type Hasher struct {
	secret []byte
}

func NewHasher(secret string) *Hasher {
	return &Hasher{secret: []byte(secret)}
}

// HashEmail returns the hex HMAC-SHA256 of the normalized address. Casing and
// surrounding whitespace variants map to one identity.
func (h *Hasher) HashEmail(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil))
}

// NewVerificationToken returns a 256-bit random token as 64 hex characters.
func NewVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate verification token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// TokenExpiration returns the expiry for a token issued at issuedAt.
func TokenExpiration(issuedAt time.Time, ttl time.Duration) time.Time {
	return issuedAt.Add(ttl)
}
