package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/tegenaria/internal/common"
	"github.com/dmitrijs2005/tegenaria/internal/dbx"
	"github.com/dmitrijs2005/tegenaria/internal/logging"
	"github.com/dmitrijs2005/tegenaria/internal/server/config"
	"github.com/dmitrijs2005/tegenaria/internal/server/models"
	"github.com/dmitrijs2005/tegenaria/internal/server/repositories/apartments"
	"github.com/dmitrijs2005/tegenaria/internal/server/repositories/roles"
	"github.com/dmitrijs2005/tegenaria/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// fakeUsersRepo is an in-memory users.Repository enforcing the same
// uniqueness rules as the database.
type fakeUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]models.User

	createErr error
	getErr    error
	saveErr   error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.byID[u.ID] = *u
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (f *fakeUsersRepo) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Username == login || u.Email == login {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	u, err := f.GetByLogin(ctx, username)
	return u != nil && u.Username == username, ignoreNotFound(err)
}

func (f *fakeUsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := f.GetByLogin(ctx, email)
	return u != nil && u.Email == email, ignoreNotFound(err)
}

func (f *fakeUsersRepo) Save(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return common.ErrorNotFound
	}
	f.byID[u.ID] = *u
	return nil
}

func ignoreNotFound(err error) error {
	if err == common.ErrorNotFound {
		return nil
	}
	return err
}

type fakeRolesRepo struct {
	mu      sync.Mutex
	nextID  int64
	byName  map[string]models.Role
	members map[int64][]int64

	assignErr error
}

func newFakeRolesRepo() *fakeRolesRepo {
	return &fakeRolesRepo{byName: map[string]models.Role{}, members: map[int64][]int64{}}
}

func (f *fakeRolesRepo) Create(ctx context.Context, name string) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[name]; ok {
		return nil, common.ErrAlreadyExists
	}
	f.nextID++
	r := models.Role{ID: f.nextID, Name: name}
	f.byName[name] = r
	return &r, nil
}

func (f *fakeRolesRepo) GetByName(ctx context.Context, name string) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &r, nil
}

func (f *fakeRolesRepo) ListForUser(ctx context.Context, userID int64) ([]models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Role
	for _, id := range f.members[userID] {
		for _, r := range f.byName {
			if r.ID == id {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (f *fakeRolesRepo) Assign(ctx context.Context, userID, roleID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.assignErr != nil {
		return f.assignErr
	}
	for _, id := range f.members[userID] {
		if id == roleID {
			return nil
		}
	}
	f.members[userID] = append(f.members[userID], roleID)
	return nil
}

type fakeApartmentsRepo struct {
	items []models.Apartment
	err   error
}

func (f *fakeApartmentsRepo) ListAll(ctx context.Context) ([]models.Apartment, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Apartment, len(f.items))
	copy(out, f.items)
	return out, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRolesRepo
	a *fakeApartmentsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), r: newFakeRolesRepo(), a: &fakeApartmentsRepo{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return m.u }
func (m *fakeRepoManager) Roles(db dbx.DBTX) roles.Repository           { return m.r }
func (m *fakeRepoManager) Apartments(db dbx.DBTX) apartments.Repository { return m.a }

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:               "k",
		SessionValidityDuration: time.Hour,
		BcryptCost:              bcrypt.MinCost,
	}
}

func newTestUserService(db *sql.DB, rm *fakeRepoManager) *UserService {
	return NewUserService(db, rm, testConfig(), logging.Nop{})
}
