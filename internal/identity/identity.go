// Package identity resolves authenticated actors from an externally
// provisioned user file. The service consumes resolved identities only; it
// does not implement registration or account management.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/josearcagni/cmcwebapp/internal/models"
	"github.com/josearcagni/cmcwebapp/internal/utils"
)

// ErrInvalidCredentials is returned for unknown users and wrong passwords alike
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is one provisioned dashboard account
type User struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
	Client       string `json:"client"`
}

type userFile struct {
	Users map[string]User `json:"users"`
}

// Directory holds the provisioned accounts keyed by username
type Directory struct {
	users map[string]User
}

// LoadDirectory reads the user file
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file %s: %w", path, err)
	}
	var f userFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse users file %s: %w", path, err)
	}
	return &Directory{users: f.Users}, nil
}

// Authenticate verifies a username/password pair and returns the resolved actor
func (d *Directory) Authenticate(username, password string) (*models.Actor, error) {
	u, ok := d.users[username]
	if !ok || !utils.CheckPasswordHash(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return actorFor(username, u), nil
}

// Lookup returns the actor for a known username
func (d *Directory) Lookup(username string) (*models.Actor, bool) {
	u, ok := d.users[username]
	if !ok {
		return nil, false
	}
	return actorFor(username, u), true
}

func actorFor(username string, u User) *models.Actor {
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	return &models.Actor{
		Username: username,
		Role:     role,
		Client:   u.Client,
		Email:    u.Email,
	}
}
