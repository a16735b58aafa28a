// Package apartments reads apartment listings.
package apartments

import (
	"context"

	"github.com/dmitrijs2005/tegenaria/internal/server/models"
)

type Repository interface {
	ListAll(ctx context.Context) ([]models.Apartment, error)
}
