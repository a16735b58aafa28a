//go:build integration

package services_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/tegenaria/internal/common"
	"github.com/dmitrijs2005/tegenaria/internal/logging"
	"github.com/dmitrijs2005/tegenaria/internal/server/config"
	"github.com/dmitrijs2005/tegenaria/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tegenaria/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
)

// PostgresSuite runs the services against a throwaway PostgreSQL with the
// embedded migrations applied.
type PostgresSuite struct {
	suite.Suite
	ctx        context.Context
	container  *postgres.PostgresContainer
	db         *sql.DB
	users      *services.UserService
	sessions   *services.SessionService
	apartments *services.ApartmentService
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.container, err = postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("tegenaria"),
		postgres.WithUsername("tegenaria"),
		postgres.WithPassword("tegenaria"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(s.T(), err, "start postgres container")

	dsn, err := s.container.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.db, err = sql.Open("pgx", dsn)
	require.NoError(s.T(), err)

	rm := repomanager.NewPostgresRepositoryManager()
	require.NoError(s.T(), rm.RunMigrations(s.ctx, s.db))

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost

	s.users = services.NewUserService(s.db, rm, cfg, logging.Nop{})
	s.sessions = services.NewSessionService(s.users, cfg, logging.Nop{})
	s.apartments = services.NewApartmentService(s.db, rm)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, `TRUNCATE users, roles, user_roles, apartments RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) TestRegisterLoginAndRoles() {
	u, err := s.users.Create(s.ctx, "alice", "alice@example.com", "s3cret!", true)
	s.Require().NoError(err)
	s.NotZero(u.ID)
	s.False(u.CreatedAt.IsZero())

	_, err = s.users.Create(s.ctx, "alice", "other@example.com", "x", true)
	s.ErrorIs(err, common.ErrAlreadyExists)
	_, err = s.users.Create(s.ctx, "other", "alice@example.com", "x", true)
	s.ErrorIs(err, common.ErrAlreadyExists)

	got, err := s.sessions.Authenticate(s.ctx, "alice@example.com", "s3cret!")
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)

	_, err = s.sessions.Authenticate(s.ctx, "alice", "wrong")
	s.ErrorIs(err, common.ErrInvalidCredentials)

	_, err = s.users.CreateRole(s.ctx, "editor")
	s.Require().NoError(err)
	s.Require().NoError(s.users.GrantRole(s.ctx, "alice", "editor"))

	reloaded, err := s.users.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(reloaded.HasRole("editor"))

	missing, err := s.users.GetByID(s.ctx, 999999)
	s.NoError(err)
	s.Nil(missing)
}

func (s *PostgresSuite) TestCreatedAtIsMonotonic() {
	u1, err := s.users.Create(s.ctx, "first", "first@example.com", "pw1234", true)
	s.Require().NoError(err)
	u2, err := s.users.Create(s.ctx, "second", "second@example.com", "pw1234", true)
	s.Require().NoError(err)

	s.False(u2.CreatedAt.Before(u1.CreatedAt))

	u1.IsAdmin = true
	s.Require().NoError(s.users.Save(s.ctx, u1))
	reloaded, err := s.users.GetByID(s.ctx, u1.ID)
	s.Require().NoError(err)
	s.True(reloaded.CreatedAt.Equal(u1.CreatedAt))
}

func (s *PostgresSuite) TestLongMultibytePassword() {
	pw := strings.Repeat("ü", 40)
	_, err := s.users.Create(s.ctx, "umlaut", "umlaut@example.com", pw, true)
	s.Require().NoError(err)

	_, err = s.sessions.Authenticate(s.ctx, "umlaut", pw)
	s.NoError(err)
}

func (s *PostgresSuite) TestPasswordlessUserCannotLogIn() {
	_, err := s.users.Create(s.ctx, "sso", "sso@example.com", "", true)
	s.Require().NoError(err)

	_, err = s.sessions.Authenticate(s.ctx, "sso", "")
	s.ErrorIs(err, common.ErrInvalidCredentials)
}

func (s *PostgresSuite) TestApartmentsOrderedNumerically() {
	_, err := s.db.ExecContext(s.ctx, `
		INSERT INTO apartments (title, warm_rent, cold_rent) VALUES
			('A', '900', '700'),
			('B', '1000', '800'),
			('C', '900', '650')`)
	s.Require().NoError(err)

	list, err := s.apartments.ListOrdered(s.ctx)
	s.Require().NoError(err)

	titles := make([]string, 0, len(list))
	for _, a := range list {
		titles = append(titles, a.Title)
	}
	s.Equal([]string{"C", "A", "B"}, titles)

	_, err = s.db.ExecContext(s.ctx, `INSERT INTO apartments (title, warm_rent, cold_rent) VALUES ('D', 'N/A', '1')`)
	s.Error(err, "non-numeric rents are rejected on write")
}

func (s *PostgresSuite) TestLegacyNonNumericRentFailsListing() {
	// Rows written before the numeric constraint existed are not validated.
	_, err := s.db.ExecContext(s.ctx, `ALTER TABLE apartments DROP CONSTRAINT apartments_warm_rent_numeric`)
	s.Require().NoError(err)
	defer func() {
		_, err := s.db.ExecContext(s.ctx, `
			ALTER TABLE apartments ADD CONSTRAINT apartments_warm_rent_numeric
			CHECK (warm_rent ~ '^\s*[+-]?[0-9]+(\.[0-9]+)?\s*$') NOT VALID`)
		s.Require().NoError(err)
	}()

	_, err = s.db.ExecContext(s.ctx, `INSERT INTO apartments (title, warm_rent, cold_rent) VALUES ('D', 'N/A', '1')`)
	s.Require().NoError(err)

	_, err = s.apartments.ListOrdered(s.ctx)
	s.ErrorIs(err, common.ErrCoercion)
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}
