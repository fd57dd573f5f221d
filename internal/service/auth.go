// Package service contains application services for accounts and files.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/vx6Fid/envelopr/internal/crypto"
	"github.com/vx6Fid/envelopr/internal/errs"
	"github.com/vx6Fid/envelopr/internal/limiter"
	"github.com/vx6Fid/envelopr/internal/model"
	"github.com/vx6Fid/envelopr/internal/repository"
	"github.com/vx6Fid/envelopr/internal/session"
)

// AuthService defines account and session operations.
type AuthService interface {
	// Register creates a new user and logs it in.
	Register(ctx context.Context, username, password string) (model.Session, model.User, error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, username, password, ip string) (model.Session, model.User, error)
	// ResolveActor maps a bearer token to an actor. It never fails.
	ResolveActor(ctx context.Context, token string) model.Actor
	// RefreshToken issues a fresh session for an authenticated actor.
	RefreshToken(ctx context.Context, a model.Actor) (model.Session, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	tokens *session.Issuer
	lim    limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens *session.Issuer, lim limiter.Limiter) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, tokens: tokens, lim: lim}
}

// Register validates input, stores the user with a salted hash and issues a session.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (model.Session, model.User, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return model.Session{}, model.User{}, err
	}
	if err := checkPassword(password); err != nil {
		return model.Session{}, model.User{}, err
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return model.Session{}, model.User{}, err
	}
	hash, salt, err := pkgcrypto.NewPasswordHash(password)
	if err != nil {
		return model.Session{}, model.User{}, err
	}
	u := &model.User{ID: uid, Username: username, PwdHash: hash, Salt: salt}
	if err := s.users.Create(ctx, u); err != nil {
		return model.Session{}, model.User{}, err
	}
	sess, err := s.tokens.Issue(u.ID)
	if err != nil {
		return model.Session{}, model.User{}, err
	}
	return sess, publicUser(u), nil
}

// LoginWithIP authenticates with rate limiting by (username, ip). Unknown
// users and wrong passwords both yield ErrUnauthorized.
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (model.Session, model.User, error) {
	username = strings.TrimSpace(username)
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Session{}, model.User{}, err
	}
	if !allowed {
		return model.Session{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.Session{}, model.User{}, err
	}
	var ok bool
	if u != nil {
		ok = pkgcrypto.VerifyPassword([]byte(password), u.Salt, u.PwdHash)
	} else {
		ok = pkgcrypto.VerifyAbsent([]byte(password))
	}
	if !ok {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return model.Session{}, model.User{}, errs.ErrRateLimited
		}
		return model.Session{}, model.User{}, errs.ErrUnauthorized
	}

	// best-effort
	_ = s.lim.Success(ctx, username, ipHash)

	sess, err := s.tokens.Issue(u.ID)
	if err != nil {
		return model.Session{}, model.User{}, err
	}
	return sess, publicUser(u), nil
}

// ResolveActor verifies token and loads its user. Anything unresolvable,
// including a subject whose account no longer exists, is Anonymous.
func (s *AuthServiceImpl) ResolveActor(ctx context.Context, token string) model.Actor {
	id, ok := s.tokens.Subject(token)
	if !ok {
		return model.Anonymous
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.Anonymous
	}
	return model.Actor{UserID: u.ID, Username: u.Username}
}

// RefreshToken issues a new session for the same user.
func (s *AuthServiceImpl) RefreshToken(_ context.Context, a model.Actor) (model.Session, error) {
	if a.IsAnonymous() {
		return model.Session{}, errs.ErrUnauthenticated
	}
	return s.tokens.Issue(a.UserID)
}

// publicUser strips credential material.
func publicUser(u *model.User) model.User {
	return model.User{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}
