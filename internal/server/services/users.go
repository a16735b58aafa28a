// Package services holds the business logic of Tegenaria: the credential
// store, session authentication and apartment listings.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tegenaria/internal/common"
	"github.com/dmitrijs2005/tegenaria/internal/dbx"
	"github.com/dmitrijs2005/tegenaria/internal/logging"
	"github.com/dmitrijs2005/tegenaria/internal/server/config"
	"github.com/dmitrijs2005/tegenaria/internal/server/models"
	"github.com/dmitrijs2005/tegenaria/internal/server/repositories/repomanager"
)

// UserService owns user and role records.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	bcryptCost  int
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		bcryptCost:  cfg.BcryptCost,
		logger:      logger,
	}
}

// Create stores a new user. A non-empty password is hashed, an empty one
// leaves the account without a usable password. Duplicate usernames or
// emails yield common.ErrAlreadyExists.
func (s *UserService) Create(ctx context.Context, username, email, password string, active bool) (*models.User, error) {

	user := &models.User{
		Username: username,
		Email:    email,
		Active:   active,
	}

	if err := user.SetPassword(password, s.bcryptCost); err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user created", "user_id", user.ID, "username", user.Username)

	return user, nil
}

// GetByID returns the user with its roles, or nil when no such user exists.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.loadRoles(ctx, s.db, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetByLogin returns the user whose username or email equals login, or nil.
func (s *UserService) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.repomanager.Users(s.db).ExistsByUsername(ctx, username)
}

func (s *UserService) EmailTaken(ctx context.Context, email string) (bool, error) {
	return s.repomanager.Users(s.db).ExistsByEmail(ctx, email)
}

// Save persists changes to the mutable fields of user.
func (s *UserService) Save(ctx context.Context, user *models.User) error {
	if err := s.repomanager.Users(s.db).Save(ctx, user); err != nil {
		return fmt.Errorf("error saving user: %w", err)
	}
	return nil
}

// SetPassword rehashes and stores a new password for user.
func (s *UserService) SetPassword(ctx context.Context, user *models.User, password string) error {
	if err := user.SetPassword(password, s.bcryptCost); err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	return s.Save(ctx, user)
}

func (s *UserService) CreateRole(ctx context.Context, name string) (*models.Role, error) {
	role, err := s.repomanager.Roles(s.db).Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("error creating role: %w", err)
	}
	return role, nil
}

// GetRoleByName returns the named role, or nil when it does not exist.
func (s *UserService) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	role, err := s.repomanager.Roles(s.db).GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

// AddRole makes user a member of role and records it on the user value.
func (s *UserService) AddRole(ctx context.Context, user *models.User, role *models.Role) error {
	if err := s.repomanager.Roles(s.db).Assign(ctx, user.ID, role.ID); err != nil {
		return fmt.Errorf("error assigning role: %w", err)
	}
	if !user.HasRole(role.Name) {
		user.Roles = append(user.Roles, *role)
	}
	return nil
}

// GrantRole looks up the user and the role by name and links them in one
// transaction. Either missing side yields common.ErrorNotFound.
func (s *UserService) GrantRole(ctx context.Context, login, roleName string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).GetByLogin(ctx, login)
		if err != nil {
			return fmt.Errorf("user %q: %w", login, err)
		}

		role, err := s.repomanager.Roles(tx).GetByName(ctx, roleName)
		if err != nil {
			return fmt.Errorf("role %q: %w", roleName, err)
		}

		if err := s.repomanager.Roles(tx).Assign(ctx, user.ID, role.ID); err != nil {
			return err
		}

		s.logger.Info(ctx, "role granted", "user_id", user.ID, "role", role.Name)
		return nil
	})
}

func (s *UserService) loadRoles(ctx context.Context, db dbx.DBTX, user *models.User) error {
	roles, err := s.repomanager.Roles(db).ListForUser(ctx, user.ID)
	if err != nil {
		return err
	}
	user.Roles = roles
	return nil
}
