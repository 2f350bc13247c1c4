// Package sesskey issues and checks the per-session keys embedded in widget forms.
package sesskey

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signer creates and validates session keys bound to a user and a login session.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner constructs a signer with the provided secret and TTL.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate returns a session key for the user and session identifier.
func (s *Signer) Generate(userID int64, sessionID string) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("user id required")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("signing secret missing")
	}
	expiresAt := strconv.FormatInt(s.now().Add(s.ttl).Unix(), 10)
	return expiresAt + "." + s.sign(userID, sessionID, expiresAt), nil
}

// Verify checks that the key was issued for this user and session and has not expired.
func (s *Signer) Verify(userID int64, sessionID, key string) error {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid sesskey format")
	}
	expUnix, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid sesskey timestamp")
	}
	expected := s.sign(userID, sessionID, parts[0])
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return fmt.Errorf("invalid sesskey signature")
	}
	if s.now().After(time.Unix(expUnix, 0)) {
		return fmt.Errorf("sesskey expired")
	}
	return nil
}

func (s *Signer) sign(userID int64, sessionID, expiresAt string) string {
	payload := fmt.Sprintf("%d|%s|%s", userID, sessionID, expiresAt)
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
