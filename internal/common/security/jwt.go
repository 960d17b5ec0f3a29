package security

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures. Verify returns exactly one of these on error.
var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrTokenExpired     = errors.New("token has expired")
	ErrMalformedToken   = errors.New("token is malformed")
)

// Kind tells the two principal families apart inside a token.
type Kind string

const (
	KindAdmin   Kind = "admin"
	KindCreator Kind = "creator"
)

func (k Kind) valid() bool {
	return k == KindAdmin || k == KindCreator
}

// Claims is the payload signed into every session token. Subject holds the
// principal id.
type Claims struct {
	Kind  Kind   `json:"kind"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 session tokens. It holds no mutable
// state; the key is fixed at construction.
type TokenService struct {
	secret     []byte
	adminTTL   time.Duration
	creatorTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret []byte, adminTTL, creatorTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     secret,
		adminTTL:   adminTTL,
		creatorTTL: creatorTTL,
		now:        time.Now,
	}
}

// TTL returns the validity window for tokens of the given kind.
func (s *TokenService) TTL(kind Kind) time.Duration {
	if kind == KindAdmin {
		return s.adminTTL
	}
	return s.creatorTTL
}

// IssueAdmin signs a token for an admin principal.
func (s *TokenService) IssueAdmin(id, email, role string) (string, error) {
	return s.Issue(Claims{
		Kind:             KindAdmin,
		Email:            email,
		Role:             role,
		RegisteredClaims: jwt.RegisteredClaims{Subject: id},
	})
}

// IssueCreator signs a token for a creator principal.
func (s *TokenService) IssueCreator(id string) (string, error) {
	return s.Issue(Claims{
		Kind:             KindCreator,
		RegisteredClaims: jwt.RegisteredClaims{Subject: id},
	})
}

// Issue signs claims, overwriting the time-based registered claims with values
// derived from the service clock and the kind's TTL.
func (s *TokenService) Issue(claims Claims) (string, error) {
	if !claims.Kind.valid() {
		return "", fmt.Errorf("issue token: unknown kind %q", claims.Kind)
	}
	if claims.Subject == "" {
		return "", errors.New("issue token: empty subject")
	}

	now := s.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.TTL(claims.Kind)))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates tokenString against the service key and clock.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if signatureUndecodable(tokenString) {
		return nil, ErrInvalidSignature
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid || !claims.Kind.valid() || claims.Subject == "" {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// signatureUndecodable reports a token whose header and payload decode but
// whose signature segment is not canonical unpadded base64url. Such a token
// was altered after signing.
func signatureUndecodable(tokenString string) bool {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return false
	}
	return segmentDecodes(parts[0]) && segmentDecodes(parts[1]) && !segmentDecodes(parts[2])
}

func segmentDecodes(seg string) bool {
	_, err := base64.RawURLEncoding.Strict().DecodeString(seg)
	return err == nil
}

// classify folds the library's error tree into the three verification
// failures. Signature problems win over time problems.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrMalformedToken
	}
}
