package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/musicapp/internal/shared"
)

func TestPasswords(t *testing.T) {
	t.Run("Hash and check", func(t *testing.T) {
		hash, err := HashPassword("correct horse")
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		if hash == "correct horse" {
			t.Fatal("hash should not equal the password")
		}
		if !CheckPassword(hash, "correct horse") {
			t.Error("expected password to match")
		}
		if CheckPassword(hash, "battery staple") {
			t.Error("expected wrong password to fail")
		}
	})

	t.Run("Too short", func(t *testing.T) {
		if _, err := HashPassword("abc"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Too long", func(t *testing.T) {
		if _, err := HashPassword(strings.Repeat("x", 100)); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Garbage hash", func(t *testing.T) {
		if CheckPassword("not-a-hash", "whatever") {
			t.Error("expected malformed hash to fail")
		}
	})
}
