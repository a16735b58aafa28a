package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tegenaria/internal/common"
	"github.com/dmitrijs2005/tegenaria/internal/logging"
	"github.com/dmitrijs2005/tegenaria/internal/server/auth"
	"github.com/dmitrijs2005/tegenaria/internal/server/config"
	"github.com/dmitrijs2005/tegenaria/internal/server/models"
)

// UserStore is the part of the credential store the session layer needs.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
}

// SessionService checks login submissions and issues the signed token kept
// in the session cookie.
type SessionService struct {
	users     UserStore
	secretKey []byte
	ttl       time.Duration
	logger    logging.Logger
}

func NewSessionService(users UserStore, cfg *config.Config, logger logging.Logger) *SessionService {
	return &SessionService{
		users:     users,
		secretKey: []byte(cfg.SecretKey),
		ttl:       cfg.SessionValidityDuration,
		logger:    logger,
	}
}

// Authenticate resolves login as a username or an email and verifies the
// password. The returned errors are distinct so they can be logged, but
// callers must present them to the user identically.
func (s *SessionService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	if user == nil {
		s.logger.Info(ctx, "login failed", "login", login, "reason", "unknown user")
		return nil, common.ErrUserNotFound
	}

	if !user.CheckPassword(password) {
		s.logger.Info(ctx, "login failed", "user_id", user.ID, "reason", "bad password")
		return nil, common.ErrInvalidCredentials
	}

	if !user.Active {
		s.logger.Info(ctx, "login failed", "user_id", user.ID, "reason", "inactive")
		return nil, common.ErrUserInactive
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return user, nil
}

// IssueToken signs a session token for user.
func (s *SessionService) IssueToken(user *models.User) (string, error) {
	return auth.NewSessionToken(user.ID, s.secretKey, s.ttl)
}

// Resolve returns the user a session token belongs to. Invalid or expired
// tokens, deleted users and deactivated users all resolve to nil without an
// error.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	userID, err := auth.ParseSessionToken(token, s.secretKey)
	if err != nil {
		s.logger.Debug(ctx, "session rejected", "error", err)
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil || user == nil {
		return nil, err
	}
	if !user.Active {
		s.logger.Info(ctx, "session rejected", "user_id", user.ID, "reason", "inactive")
		return nil, nil
	}
	return user, nil
}

// Logout ends the session of user. Sessions are stateless so it always
// succeeds; the caller drops the cookie.
func (s *SessionService) Logout(ctx context.Context, user *models.User) {
	if user != nil {
		s.logger.Info(ctx, "user logged out", "user_id", user.ID)
	}
}

// TTL is how long an issued session stays valid.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}
