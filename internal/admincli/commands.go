// Package admincli implements tegenaria-admin, the operator command line:
// schema migrations and management of users and roles.
package admincli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/tegenaria/internal/flagx"
	"github.com/dmitrijs2005/tegenaria/internal/server/models"
)

var (
	ErrUsage            = errors.New("usage error")
	ErrEmptyPassword    = errors.New("password must not be empty")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrMissingValue     = errors.New("value is required")
)

const usage = `Usage: tegenaria-admin <command> [flags]

Commands:
  migrate                               apply database migrations
  create-user -u NAME -e EMAIL [-admin] create an active user, password is prompted
  create-role -n NAME                   create a role
  grant-role -u NAME|EMAIL -r ROLE      add a user to a role

Connection settings are read from the same config, .env and -d flag as the server.
`

// UserAdmin is the part of the credential store the CLI drives.
type UserAdmin interface {
	Create(ctx context.Context, username, email, password string, active bool) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	CreateRole(ctx context.Context, name string) (*models.Role, error)
	GrantRole(ctx context.Context, login, roleName string) error
}

// Migrator applies pending schema migrations.
type Migrator func(ctx context.Context) error

type App struct {
	users   UserAdmin
	migrate Migrator
	in      *bufio.Reader
	out     io.Writer
}

func New(users UserAdmin, migrate Migrator, in io.Reader, out io.Writer) *App {
	return &App{users: users, migrate: migrate, in: bufio.NewReader(in), out: out}
}

// Run executes the command named by args[0] with the remaining arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "migrate":
		return a.runMigrate(ctx)
	case "create-user":
		return a.createUser(ctx, rest)
	case "create-role":
		return a.createRole(ctx, rest)
	case "grant-role":
		return a.grantRole(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

// parse reads only the flags a command declares, leaving connection flags
// such as -d to the config loader.
func (a *App) parse(fs *flag.FlagSet, args []string) error {
	names := make([]string, 0)
	fs.VisitAll(func(f *flag.Flag) {
		names = append(names, "-"+f.Name, "--"+f.Name)
	})
	fs.SetOutput(a.out)
	if err := fs.Parse(flagx.FilterArgs(args, names)); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// valueOrPrompt returns v, or asks for it when v is empty.
func (a *App) valueOrPrompt(v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	v, err := GetSimpleText(a.in, prompt, a.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s: %w", prompt, ErrMissingValue)
	}
	return v, nil
}

func (a *App) runMigrate(ctx context.Context) error {
	if err := a.migrate(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	fmt.Fprintln(a.out, "Migrations applied.")
	return nil
}

func (a *App) createUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	email := fs.String("e", "", "email address")
	admin := fs.Bool("admin", false, "grant administrator rights")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	name, err := a.valueOrPrompt(*username, "Username")
	if err != nil {
		return err
	}
	mail, err := a.valueOrPrompt(*email, "Email")
	if err != nil {
		return err
	}

	pw, err := GetNewPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.users.Create(ctx, name, mail, pw, true)
	if err != nil {
		return err
	}

	if *admin {
		user.IsAdmin = true
		if err := a.users.Save(ctx, user); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.out, "User %s created (id %d).\n", user.Username, user.ID)
	return nil
}

func (a *App) createRole(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-role", flag.ContinueOnError)
	name := fs.String("n", "", "role name")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	n, err := a.valueOrPrompt(*name, "Role name")
	if err != nil {
		return err
	}

	role, err := a.users.CreateRole(ctx, n)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Role %s created (id %d).\n", role.Name, role.ID)
	return nil
}

func (a *App) grantRole(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("grant-role", flag.ContinueOnError)
	login := fs.String("u", "", "username or email")
	roleName := fs.String("r", "", "role name")
	if err := a.parse(fs, args); err != nil {
		return err
	}

	l, err := a.valueOrPrompt(*login, "Username or email")
	if err != nil {
		return err
	}
	r, err := a.valueOrPrompt(*roleName, "Role name")
	if err != nil {
		return err
	}

	if err := a.users.GrantRole(ctx, l, r); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Role %s granted to %s.\n", r, l)
	return nil
}
