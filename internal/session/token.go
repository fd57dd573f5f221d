// Package session issues and verifies self-contained bearer tokens.
package session

import (
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vx6Fid/envelopr/internal/model"
)

const (
	issuer = "envelopr"
	leeway = 30 * time.Second
)

// DefaultTTL is the token lifetime used when none is configured.
const DefaultTTL = 24 * time.Hour

// Issuer signs and verifies HS256 tokens whose subject is a user ID.
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewIssuer constructs an Issuer. A non-positive ttl falls back to DefaultTTL.
func NewIssuer(key []byte, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{key: key, ttl: ttl, now: time.Now}
}

// Issue creates a signed token for userID.
func (i *Issuer) Issue(userID uuid.UUID) (model.Session, error) {
	if userID == uuid.Nil {
		return model.Session{}, errors.New("session: empty user id")
	}
	now := i.now()
	exp := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{Token: signed, ExpiresAt: exp.Truncate(time.Second)}, nil
}

// Subject verifies tok and returns its user ID. Any failure (bad signature,
// wrong algorithm, expired, malformed subject) is reported as ok=false.
func (i *Issuer) Subject(tok string) (uuid.UUID, bool) {
	if tok == "" {
		return uuid.Nil, false
	}
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.key, nil
	},
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return uuid.Nil, false
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
