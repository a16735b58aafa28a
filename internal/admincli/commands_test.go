package admincli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/tegenaria/internal/common"
	"github.com/dmitrijs2005/tegenaria/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	created []*models.User
	saved   []*models.User
	roles   []string
	grants  [][2]string

	createErr error
	grantErr  error
}

func (f *fakeUsers) Create(_ context.Context, username, email, password string, active bool) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u := &models.User{ID: int64(len(f.created) + 1), Username: username, Email: email, Active: active}
	if err := u.SetPassword(password, 4); err != nil {
		return nil, err
	}
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsers) Save(_ context.Context, u *models.User) error {
	f.saved = append(f.saved, u)
	return nil
}

func (f *fakeUsers) CreateRole(_ context.Context, name string) (*models.Role, error) {
	f.roles = append(f.roles, name)
	return &models.Role{ID: int64(len(f.roles)), Name: name}, nil
}

func (f *fakeUsers) GrantRole(_ context.Context, login, role string) error {
	if f.grantErr != nil {
		return f.grantErr
	}
	f.grants = append(f.grants, [2]string{login, role})
	return nil
}

func newTestApp(users UserAdmin, migrate Migrator, input string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	if migrate == nil {
		migrate = func(context.Context) error { return nil }
	}
	return New(users, migrate, strings.NewReader(input), &out), &out
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	app, out := newTestApp(&fakeUsers{}, nil, "")

	err := app.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out.String(), "Usage: tegenaria-admin")
}

func TestRun_UnknownCommand(t *testing.T) {
	app, _ := newTestApp(&fakeUsers{}, nil, "")

	err := app.Run(context.Background(), []string{"drop-db"})
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "drop-db")
}

func TestRun_Migrate(t *testing.T) {
	called := false
	app, out := newTestApp(&fakeUsers{}, func(context.Context) error { called = true; return nil }, "")

	require.NoError(t, app.Run(context.Background(), []string{"migrate"}))
	assert.True(t, called)
	assert.Contains(t, out.String(), "Migrations applied.")

	app, _ = newTestApp(&fakeUsers{}, func(context.Context) error { return errors.New("locked") }, "")
	err := app.Run(context.Background(), []string{"migrate"})
	assert.ErrorContains(t, err, "migration error")
}

func TestRun_CreateUser(t *testing.T) {
	stubPasswords(t, "hunter22", "hunter22")
	users := &fakeUsers{}
	app, out := newTestApp(users, nil, "")

	err := app.Run(context.Background(), []string{"create-user", "-u", "alice", "-e", "alice@example.com", "-d", "postgres://ignored"})
	require.NoError(t, err)

	require.Len(t, users.created, 1)
	u := users.created[0]
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.True(t, u.Active)
	assert.True(t, u.CheckPassword("hunter22"))
	assert.Empty(t, users.saved, "non-admin users are not saved twice")
	assert.Contains(t, out.String(), "User alice created (id 1).")
}

func TestRun_CreateAdminUser(t *testing.T) {
	stubPasswords(t, "hunter22", "hunter22")
	users := &fakeUsers{}
	app, _ := newTestApp(users, nil, "")

	err := app.Run(context.Background(), []string{"create-user", "-admin", "-u", "root", "-e", "root@example.com"})
	require.NoError(t, err)

	require.Len(t, users.saved, 1)
	assert.True(t, users.saved[0].IsAdmin)
}

func TestRun_CreateUser_PromptsForMissingValues(t *testing.T) {
	stubPasswords(t, "hunter22", "hunter22")
	users := &fakeUsers{}
	app, out := newTestApp(users, nil, "bob\nbob@example.com\n")

	require.NoError(t, app.Run(context.Background(), []string{"create-user"}))

	require.Len(t, users.created, 1)
	assert.Equal(t, "bob", users.created[0].Username)
	assert.Equal(t, "bob@example.com", users.created[0].Email)
	assert.Contains(t, out.String(), "Username: ")
	assert.Contains(t, out.String(), "Email: ")
}

func TestRun_CreateUser_Errors(t *testing.T) {
	t.Run("password mismatch", func(t *testing.T) {
		stubPasswords(t, "one", "two")
		users := &fakeUsers{}
		app, _ := newTestApp(users, nil, "")

		err := app.Run(context.Background(), []string{"create-user", "-u", "a", "-e", "a@example.com"})
		assert.ErrorIs(t, err, ErrPasswordMismatch)
		assert.Empty(t, users.created)
	})

	t.Run("duplicate", func(t *testing.T) {
		stubPasswords(t, "pw1234", "pw1234")
		users := &fakeUsers{createErr: common.ErrAlreadyExists}
		app, _ := newTestApp(users, nil, "")

		err := app.Run(context.Background(), []string{"create-user", "-u", "a", "-e", "a@example.com"})
		assert.ErrorIs(t, err, common.ErrAlreadyExists)
	})

	t.Run("missing username", func(t *testing.T) {
		app, _ := newTestApp(&fakeUsers{}, nil, "\n")

		err := app.Run(context.Background(), []string{"create-user", "-e", "a@example.com"})
		assert.ErrorIs(t, err, ErrMissingValue)
	})
}

func TestRun_CreateRole(t *testing.T) {
	users := &fakeUsers{}
	app, out := newTestApp(users, nil, "")

	require.NoError(t, app.Run(context.Background(), []string{"create-role", "-n", "editor"}))
	assert.Equal(t, []string{"editor"}, users.roles)
	assert.Contains(t, out.String(), "Role editor created (id 1).")
}

func TestRun_GrantRole(t *testing.T) {
	users := &fakeUsers{}
	app, out := newTestApp(users, nil, "")

	require.NoError(t, app.Run(context.Background(), []string{"grant-role", "-u", "alice@example.com", "-r", "editor"}))
	assert.Equal(t, [][2]string{{"alice@example.com", "editor"}}, users.grants)
	assert.Contains(t, out.String(), "Role editor granted to alice@example.com.")

	users.grantErr = common.ErrorNotFound
	err := app.Run(context.Background(), []string{"grant-role", "-u", "ghost", "-r", "editor"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRun_CreateUser_LongPassword(t *testing.T) {
	pw := strings.Repeat("ü", 60)
	stubPasswords(t, pw, pw)
	users := &fakeUsers{}
	app, _ := newTestApp(users, nil, "")

	require.NoError(t, app.Run(context.Background(), []string{"create-user", "-u", "long", "-e", "long@example.com"}))
	require.Len(t, users.created, 1)
	assert.True(t, users.created[0].CheckPassword(pw))
}
