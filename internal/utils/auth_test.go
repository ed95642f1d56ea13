package utils

import (
	"testing"

	"github.com/josearcagni/cmcwebapp/internal/models"
)

func TestPasswordHashing(t *testing.T) {
	password := "secret123"

	// Test Hashing
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == password {
		t.Error("Hash should not match plaintext password")
	}
	if len(hash) == 0 {
		t.Error("Hash should not be empty")
	}

	// Test Comparison (Success)
	if !CheckPasswordHash(password, hash) {
		t.Error("Password should match hash")
	}

	// Test Comparison (Failure)
	if CheckPasswordHash("wrongpassword", hash) {
		t.Error("Wrong password should not match hash")
	}
}

func TestJWT(t *testing.T) {
	secret := "test-secret-key-12345"
	actor := &models.Actor{
		Username: "jose",
		Role:     models.RoleAdmin,
		Client:   "",
		Email:    "jose@example.com",
	}

	// Test Generation
	token, err := GenerateToken(actor, secret)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Error("Token should not be empty")
	}

	// Test Validation (Success)
	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if claims["username"] != actor.Username {
		t.Errorf("Expected username %s, got %v", actor.Username, claims["username"])
	}
	if claims["email"] != actor.Email {
		t.Errorf("Expected email %s, got %v", actor.Email, claims["email"])
	}

	// Round trip back to an actor
	got := ActorFromClaims(claims)
	if got.Username != actor.Username || got.Role != actor.Role ||
		got.Client != actor.Client || got.Email != actor.Email {
		t.Errorf("Actor round trip mismatch: %+v", got)
	}

	// Test Validation (Failure - Wrong Key)
	if _, err := ValidateToken(token, "wrong-key"); err == nil {
		t.Error("Validation should fail with wrong key")
	}
}

func TestActorFromClaimsDefaultsRole(t *testing.T) {
	got := ActorFromClaims(map[string]interface{}{"username": "guest"})
	if got.Role != models.RoleUser {
		t.Errorf("Expected default role %q, got %q", models.RoleUser, got.Role)
	}
}
