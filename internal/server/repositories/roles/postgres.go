package roles

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tegenaria/internal/common"
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

func (r *PostgresRepository) Create(ctx context.Context, name string) (*models.Role, error) {
	role := &models.Role{Name: name}

	err := r.db.QueryRowContext(ctx, `INSERT INTO roles (name) VALUES ($1) RETURNING id`, name).Scan(&role.ID)
	if err != nil {
		if constraint, ok := dbx.IsUniqueViolation(err); ok {
			return nil, fmt.Errorf("%w: %s", common.ErrAlreadyExists, constraint)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return role, nil
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	role := &models.Role{}
	if err := sqlscan.Get(ctx, r.db, role, `SELECT id, name FROM roles WHERE name = $1`, name); err != nil {
		if sqlscan.NotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return role, nil
}

// ListForUser returns the roles of a user ordered by name.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID int64) ([]models.Role, error) {
	query :=
		`SELECT r.id, r.name FROM roles r
		 JOIN user_roles ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY r.name
		 `

	var roles []models.Role
	if err := sqlscan.Select(ctx, r.db, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return roles, nil
}

// Assign adds the user to the role. Assigning an existing membership is a no-op.
func (r *PostgresRepository) Assign(ctx context.Context, userID, roleID int64) error {
	query :=
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, roleID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
