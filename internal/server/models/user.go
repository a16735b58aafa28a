// Package models holds the persistent entities of Tegenaria.
package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/tegenaria/internal/server/auth"
)

// User is a registered account. Password holds a bcrypt hash; a nil hash
// means the account cannot log in locally.
type User struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	Email     string    `db:"email"`
	Password  *string   `db:"password"`
	CreatedAt time.Time `db:"created_at"`
	Active    bool      `db:"active"`
	IsAdmin   bool      `db:"is_admin"`
	FirstName *string   `db:"first_name"`
	LastName  *string   `db:"last_name"`
	Roles     []Role    `db:"-"`
}

// Role groups users by permission.
type Role struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// FullName joins first and last name, skipping the empty parts.
func (u *User) FullName() string {
	parts := make([]string, 0, 2)
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	return strings.Join(parts, " ")
}

// SetPassword replaces the stored hash. An empty password clears it.
func (u *User) SetPassword(password string, cost int) error {
	if password == "" {
		u.Password = nil
		return nil
	}
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.Password = &hash
	return nil
}

// CheckPassword reports whether candidate matches the stored hash.
func (u *User) CheckPassword(candidate string) bool {
	return auth.CheckPassword(u.Password, candidate)
}

// HasRole reports whether the user is a member of the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}
