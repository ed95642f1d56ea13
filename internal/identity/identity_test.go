package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/josearcagni/cmcwebapp/internal/models"
	"github.com/josearcagni/cmcwebapp/internal/utils"
)

func writeUsersFile(t *testing.T) string {
	t.Helper()
	adminHash, err := utils.HashPassword("admin-pass")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	clientHash, err := utils.HashPassword("client-pass")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	content := fmt.Sprintf(`{
  "users": {
    "jose": {"name": "Jose", "email": "jose@example.com", "password_hash": %q, "role": "admin"},
    "acme": {"name": "Acme Ops", "email": "ops@acme.example", "password_hash": %q, "client": "Acme"}
  }
}`, adminHash, clientHash)

	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write users file: %v", err)
	}
	return path
}

func TestAuthenticate(t *testing.T) {
	dir, err := LoadDirectory(writeUsersFile(t))
	if err != nil {
		t.Fatalf("Failed to load directory: %v", err)
	}

	actor, err := dir.Authenticate("jose", "admin-pass")
	if err != nil {
		t.Fatalf("Expected successful login: %v", err)
	}
	if !actor.IsAdmin() || actor.Email != "jose@example.com" {
		t.Errorf("Unexpected actor: %+v", actor)
	}

	if _, err := dir.Authenticate("jose", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := dir.Authenticate("nobody", "admin-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRoleDefaultsToUser(t *testing.T) {
	dir, err := LoadDirectory(writeUsersFile(t))
	if err != nil {
		t.Fatalf("Failed to load directory: %v", err)
	}

	actor, err := dir.Authenticate("acme", "client-pass")
	if err != nil {
		t.Fatalf("Expected successful login: %v", err)
	}
	if actor.Role != models.RoleUser {
		t.Errorf("Expected default role %q, got %q", models.RoleUser, actor.Role)
	}
	if actor.Client != "Acme" {
		t.Errorf("Expected client Acme, got %q", actor.Client)
	}
}

func TestLookup(t *testing.T) {
	dir, err := LoadDirectory(writeUsersFile(t))
	if err != nil {
		t.Fatalf("Failed to load directory: %v", err)
	}

	if actor, ok := dir.Lookup("acme"); !ok || actor.Client != "Acme" {
		t.Errorf("Expected Acme lookup to succeed, got %v %v", actor, ok)
	}
	if _, ok := dir.Lookup("nobody"); ok {
		t.Error("Unknown user lookup should fail")
	}
}

func TestLoadDirectoryMissingFile(t *testing.T) {
	if _, err := LoadDirectory(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected an error for a missing users file")
	}
}
