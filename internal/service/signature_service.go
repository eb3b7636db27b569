package service

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"ipn-relay/pkg/canonical"
)

// HMACSignatureService implements ports.SignatureService using HMAC-SHA512
// over the canonical (top-level key sorted, compact) form of the payload.
type HMACSignatureService struct {
	secret []byte
}

// NewHMACSignatureService creates a signature service bound to the IPN secret.
func NewHMACSignatureService(secret string) *HMACSignatureService {
	return &HMACSignatureService{secret: []byte(secret)}
}

// Sign canonicalizes payload and returns the lowercase hex HMAC-SHA512.
func (s *HMACSignatureService) Sign(payload []byte) (string, error) {
	sum, err := s.sum(payload)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

// Verify reports whether signature is exactly the lowercase hex HMAC of the
// payload. Uses constant-time comparison to prevent timing attacks.
func (s *HMACSignatureService) Verify(payload []byte, signature string) bool {
	if len(s.secret) == 0 {
		return false
	}
	expected, err := s.Sign(payload)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *HMACSignatureService) sum(payload []byte) ([]byte, error) {
	body, err := canonical.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	mac := hmac.New(sha512.New, s.secret)
	mac.Write(body)
	return mac.Sum(nil), nil
}
