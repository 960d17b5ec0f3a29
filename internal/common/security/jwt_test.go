package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(now time.Time) *TokenService {
	s := NewTokenService([]byte("super-secret"), 7*24*time.Hour, 30*24*time.Hour)
	s.now = func() time.Time { return now }
	return s
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestTokenService(now)

	tok, err := s.IssueAdmin("a-1", "root@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, KindAdmin, claims.Kind)
	assert.Equal(t, "a-1", claims.Subject)
	assert.Equal(t, "root@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, now.Add(7*24*time.Hour).Unix(), claims.ExpiresAt.Unix())

	tok, err = s.IssueCreator("c-9")
	require.NoError(t, err)
	claims, err = s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, KindCreator, claims.Kind)
	assert.Equal(t, "c-9", claims.Subject)
	assert.Equal(t, now.Add(30*24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestVerify_ExpiredAfterTTL(t *testing.T) {
	t.Parallel()
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newTestTokenService(issuedAt)

	tok, err := s.IssueAdmin("a-1", "root@example.com", RoleAdmin)
	require.NoError(t, err)

	s.now = func() time.Time { return issuedAt.Add(7*24*time.Hour - time.Minute) }
	_, err = s.Verify(tok)
	require.NoError(t, err, "still valid just before expiry")

	s.now = func() time.Time { return issuedAt.Add(7*24*time.Hour + time.Second) }
	_, err = s.Verify(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()
	s := newTestTokenService(time.Now())
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

	tok, err := s.IssueCreator("c-1")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig := parts[2]

	for i := 0; i < len(sig); i++ {
		pos := strings.IndexByte(alphabet, sig[i])
		require.GreaterOrEqual(t, pos, 0)

		// Lowest bit flip, which lands in the unused bits of the final character,
		// plus a character outside the alphabet.
		for _, repl := range []byte{alphabet[pos^1], '!'} {
			tampered := parts[0] + "." + parts[1] + "." + sig[:i] + string(repl) + sig[i+1:]

			claims, err := s.Verify(tampered)
			require.ErrorIs(t, err, ErrInvalidSignature, "index %d replacement %q", i, repl)
			assert.Nil(t, claims)
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tok, err := newTestTokenService(now).IssueCreator("c-1")
	require.NoError(t, err)

	other := NewTokenService([]byte("another-secret"), time.Hour, time.Hour)
	_, err = other.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()
	s := newTestTokenService(time.Now())

	for _, raw := range []string{"", "not-a-jwt", "not.a.jwt", "a.b"} {
		_, err := s.Verify(raw)
		require.ErrorIs(t, err, ErrMalformedToken, "input %q", raw)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	s := newTestTokenService(time.Now())

	claims := Claims{
		Kind: KindAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = s.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_MissingKindIsMalformed(t *testing.T) {
	t.Parallel()
	s := newTestTokenService(time.Now())

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "x",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = s.Verify(tok)
	require.ErrorIs(t, err, ErrMalformedToken)
}

func TestIssue_RejectsUnknownKind(t *testing.T) {
	t.Parallel()
	s := newTestTokenService(time.Now())

	_, err := s.Issue(Claims{Kind: "robot", RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}})
	require.Error(t, err)
	_, err = s.Issue(Claims{Kind: KindCreator})
	require.Error(t, err)
}
