package apartments

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tegenaria/internal/dbx"
	"github.com/dmitrijs2005/tegenaria/internal/server/models"
	"github.com/georgysavva/scany/v2/sqlscan"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// ListAll returns every apartment in id order. Rent ordering is applied by
// the caller because rents are stored as text.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]models.Apartment, error) {
	query :=
		`SELECT id, title, url, address, neighborhood, warm_rent, warm_rent_notes, cold_rent
		 FROM apartments
		 ORDER BY id
		 `

	var items []models.Apartment
	if err := sqlscan.Select(ctx, r.db, &items, query); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}
