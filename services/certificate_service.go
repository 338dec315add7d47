package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// TokenLength is the number of hex characters kept from the token digest
	TokenLength = 10
	// randomCodeLength is the number of hex characters in a code's random part
	randomCodeLength = 6
)

// CertificateService mints certificate codes and computes their verification tokens.
//
// A token is a short salted hash of the code. It is a tamper check for codes
// printed on labels, not a credential. Changing the secret invalidates every
// token issued before the change.
type CertificateService struct {
	secret     string
	now        func() time.Time
	randomPart func() string
}

// CertificateOption customizes a CertificateService
type CertificateOption func(*CertificateService)

// WithClock sets the clock used for the time component of minted codes
func WithClock(now func() time.Time) CertificateOption {
	return func(s *CertificateService) {
		s.now = now
	}
}

// WithCodeSource sets the generator for the random component of minted codes
func WithCodeSource(source func() string) CertificateOption {
	return func(s *CertificateService) {
		s.randomPart = source
	}
}

// NewCertificateService creates a certificate service keyed by secret
func NewCertificateService(secret string, opts ...CertificateOption) *CertificateService {
	s := &CertificateService{
		secret:     secret,
		now:        time.Now,
		randomPart: randomHex,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mint returns a new certificate code: unix seconds, a dash and six uppercase hex characters.
// Uniqueness is enforced by the order store, not by the generator.
func (s *CertificateService) Mint() string {
	return fmt.Sprintf("%d-%s", s.now().Unix(), s.randomPart())
}

// TokenFor returns the verification token for a certificate code
func (s *CertificateService) TokenFor(code string) string {
	sum := sha256.Sum256([]byte(s.secret + code))
	return hex.EncodeToString(sum[:])[:TokenLength]
}

// Verify reports whether token is the verification token for code
func (s *CertificateService) Verify(code, token string) bool {
	expected := s.TokenFor(code)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(token)) == 1
}

// VerificationURL returns the public verification link embedded in QR codes
func (s *CertificateService) VerificationURL(baseURL, code string) string {
	return fmt.Sprintf("%s/c/%s/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(code), s.TokenFor(code))
}

func randomHex() string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:]))[:randomCodeLength]
}
