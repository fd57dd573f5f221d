package session

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func makeJWT(t *testing.T, sub string, key []byte, method jwt.SigningMethod, iat time.Time, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(iat),
		NotBefore: jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(iat.Add(ttl)),
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestIssuer_IssueAndSubject(t *testing.T) {
	t.Parallel()
	iss := NewIssuer([]byte("secret"), time.Hour)
	id := uuid.Must(uuid.NewV4())

	s, err := iss.Issue(id)
	require.NoError(t, err)
	require.NotEmpty(t, s.Token)
	require.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, 2*time.Second)

	got, ok := iss.Subject(s.Token)
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestIssuer_IssueRejectsNil(t *testing.T) {
	t.Parallel()
	_, err := NewIssuer([]byte("k"), 0).Issue(uuid.Nil)
	require.Error(t, err)
}

func TestIssuer_DefaultTTL(t *testing.T) {
	t.Parallel()
	iss := NewIssuer([]byte("k"), 0)
	require.Equal(t, DefaultTTL, iss.ttl)
}

func TestIssuer_SubjectRejects(t *testing.T) {
	t.Parallel()
	key := []byte("secret")
	iss := NewIssuer(key, time.Hour)
	sub := uuid.Must(uuid.NewV4()).String()
	now := time.Now().UTC()

	cases := map[string]string{
		"empty":       "",
		"garbage":     "this-is-not-a-jwt",
		"expired":     makeJWT(t, sub, key, jwt.SigningMethodHS256, now.Add(-2*time.Hour), time.Hour),
		"wrong key":   makeJWT(t, sub, []byte("other"), jwt.SigningMethodHS256, now, time.Hour),
		"wrong alg":   makeJWT(t, sub, key, jwt.SigningMethodHS384, now, time.Hour),
		"bad subject": makeJWT(t, "not-a-uuid", key, jwt.SigningMethodHS256, now, time.Hour),
		"nil subject": makeJWT(t, uuid.Nil.String(), key, jwt.SigningMethodHS256, now, time.Hour),
	}
	for name, tok := range cases {
		if id, ok := iss.Subject(tok); ok || id != uuid.Nil {
			t.Fatalf("%s: want rejection, got id=%s ok=%v", name, id, ok)
		}
	}
}

func TestIssuer_SubjectHonoursClock(t *testing.T) {
	t.Parallel()
	iss := NewIssuer([]byte("k"), time.Minute)
	s, err := iss.Issue(uuid.Must(uuid.NewV4()))
	require.NoError(t, err)

	iss.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	_, ok := iss.Subject(s.Token)
	require.False(t, ok, "token must be expired under the advanced clock")
}
