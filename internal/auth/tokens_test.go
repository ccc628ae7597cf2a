package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/shared"
)

type userMap map[int64]*models.User

func (m userMap) Get(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time           { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newIssuer(secret string) (*TokenIssuer, *clock, *models.User) {
	user := &models.User{ID: 7, Username: "nina", Email: "nina@example.com"}
	c := &clock{t: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)}
	return NewTokenIssuer(secret, userMap{7: user}, c.Now), c, user
}

func TestResetTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("Round trip", func(t *testing.T) {
		issuer, _, user := newIssuer("secret")

		token, err := issuer.IssueResetToken(user, DefaultResetTTL)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		got := issuer.VerifyResetToken(ctx, token)
		if got == nil || got.ID != user.ID {
			t.Fatalf("expected user %d, got %v", user.ID, got)
		}
	})

	t.Run("Valid until expiry", func(t *testing.T) {
		issuer, c, user := newIssuer("secret")
		token, err := issuer.IssueResetToken(user, DefaultResetTTL)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		c.Advance(DefaultResetTTL - time.Second)
		if issuer.VerifyResetToken(ctx, token) == nil {
			t.Error("token should still be valid one second before expiry")
		}

		c.Advance(2 * time.Second)
		if issuer.VerifyResetToken(ctx, token) != nil {
			t.Error("token should be rejected after expiry")
		}
	})

	t.Run("Zero TTL expires immediately", func(t *testing.T) {
		issuer, c, user := newIssuer("secret")
		token, err := issuer.IssueResetToken(user, 0)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		c.Advance(time.Second)
		if got := issuer.VerifyResetToken(ctx, token); got != nil {
			t.Errorf("expected nil for expired token, got %v", got)
		}
	})

	t.Run("Tampered", func(t *testing.T) {
		issuer, _, user := newIssuer("secret")
		token, err := issuer.IssueResetToken(user, DefaultResetTTL)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}

		parts := strings.Split(token, ".")
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		parts[2] = string(sig)

		if got := issuer.VerifyResetToken(ctx, strings.Join(parts, ".")); got != nil {
			t.Errorf("expected nil for tampered token, got %v", got)
		}
	})

	t.Run("Other secret", func(t *testing.T) {
		issuer, _, user := newIssuer("secret")
		other, _, _ := newIssuer("different")

		token, err := other.IssueResetToken(user, DefaultResetTTL)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}
		if got := issuer.VerifyResetToken(ctx, token); got != nil {
			t.Errorf("expected nil for foreign signature, got %v", got)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		issuer, _, _ := newIssuer("secret")
		for _, token := range []string{"", "garbage", "a.b.c"} {
			if got := issuer.VerifyResetToken(ctx, token); got != nil {
				t.Errorf("expected nil for %q, got %v", token, got)
			}
		}
	})

	t.Run("Unknown user", func(t *testing.T) {
		issuer, _, _ := newIssuer("secret")
		token, err := issuer.IssueResetToken(&models.User{ID: 99}, DefaultResetTTL)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}
		if got := issuer.VerifyResetToken(ctx, token); got != nil {
			t.Errorf("expected nil for deleted user, got %v", got)
		}
	})

	t.Run("Unsigned algorithm rejected", func(t *testing.T) {
		issuer, c, _ := newIssuer("secret")
		claims := &Claims{
			UserID:  7,
			Purpose: purposeReset,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(c.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("failed to build unsigned token: %v", err)
		}
		if got := issuer.VerifyResetToken(ctx, token); got != nil {
			t.Errorf("expected nil for alg=none, got %v", got)
		}
	})

	t.Run("Session token is not a reset token", func(t *testing.T) {
		issuer, _, user := newIssuer("secret")
		token, err := issuer.IssueSessionToken(user, time.Hour)
		if err != nil {
			t.Fatalf("failed to issue session token: %v", err)
		}
		if got := issuer.VerifyResetToken(ctx, token); got != nil {
			t.Errorf("expected nil for session token, got %v", got)
		}
	})
}

func TestSessionTokens(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		issuer, _, user := newIssuer("secret")
		token, err := issuer.IssueSessionToken(user, time.Hour)
		if err != nil {
			t.Fatalf("failed to issue session token: %v", err)
		}

		id, err := issuer.ParseSessionToken(token)
		if err != nil {
			t.Fatalf("failed to parse session token: %v", err)
		}
		if id != user.ID {
			t.Errorf("expected user %d, got %d", user.ID, id)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		issuer, c, user := newIssuer("secret")
		token, err := issuer.IssueSessionToken(user, time.Hour)
		if err != nil {
			t.Fatalf("failed to issue session token: %v", err)
		}

		c.Advance(2 * time.Hour)
		if _, err := issuer.ParseSessionToken(token); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Reset token is not a session", func(t *testing.T) {
		issuer, _, user := newIssuer("secret")
		token, err := issuer.IssueResetToken(user, time.Hour)
		if err != nil {
			t.Fatalf("failed to issue reset token: %v", err)
		}
		if _, err := issuer.ParseSessionToken(token); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
