// Package roles persists roles and user role membership.
package roles

import (
	"context"

	"github.com/dmitrijs2005/tegenaria/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, name string) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Role, error)
	Assign(ctx context.Context, userID, roleID int64) error
}
