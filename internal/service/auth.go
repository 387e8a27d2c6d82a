package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"docmanager/internal/model"
	"docmanager/internal/session"
)

// LoginResult is returned to a client after a successful login.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// AuthService issues, resolves and revokes sessions.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	// Resolve validates a bearer token and returns its live session.
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

type authService struct {
	users  UserService
	store  session.Store
	tokens *session.Tokens
	ttl    time.Duration
	log    *zap.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users UserService, store session.Store, tokens *session.Tokens, ttl time.Duration, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{users: users, store: store, tokens: tokens, ttl: ttl, log: log}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrAuth) {
			s.log.Info("login_failed", zap.String("username", username))
		}
		return nil, err
	}

	sess := session.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		ExpiresAt: time.Now().Add(s.ttl).UTC(),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, wrap(ErrStorage, err)
	}

	token, err := s.tokens.Issue(sess)
	if err != nil {
		_ = s.store.Delete(ctx, sess.ID)
		return nil, wrap(ErrAuth, err)
	}

	s.log.Info("login", zap.String("username", u.Username), zap.String("session_id", sess.ID))
	return &LoginResult{Token: token, ExpiresAt: sess.ExpiresAt, User: *u}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return wrap(ErrAuth, err)
	}
	if err := s.store.Delete(ctx, claims.SessionID); err != nil {
		return wrap(ErrStorage, err)
	}
	return nil
}

func (s *authService) Resolve(ctx context.Context, token string) (*session.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, wrap(ErrAuth, err)
	}

	sess, err := s.store.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, fmt.Errorf("%w: session expired or revoked", ErrAuth)
		}
		return nil, wrap(ErrStorage, err)
	}
	if sess.Username != claims.Username {
		s.log.Warn("session_username_mismatch", zap.String("session_id", claims.SessionID))
		return nil, fmt.Errorf("%w: session does not match token", ErrAuth)
	}
	return sess, nil
}
