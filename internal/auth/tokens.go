// package auth signs and verifies password reset and session tokens and hashes passwords.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/shared"
)

// DefaultResetTTL is the reset token lifetime used when none is configured.
const DefaultResetTTL = 1800 * time.Second

const (
	purposeReset   = "reset"
	purposeSession = "session"
)

// UserLookup resolves the user named by a token.
type UserLookup interface {
	Get(ctx context.Context, id int64) (*models.User, error)
}

// Claims carries the user id and the token purpose alongside the registered claims.
type Claims struct {
	UserID  int64  `json:"user_id"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenIssuer signs HS256 tokens with the process-wide secret key.
type TokenIssuer struct {
	secret []byte
	users  UserLookup
	now    func() time.Time
}

// NewTokenIssuer creates a [TokenIssuer]. A nil clock uses [time.Now].
func NewTokenIssuer(secret string, users UserLookup, clock func() time.Time) *TokenIssuer {
	if clock == nil {
		clock = time.Now
	}
	return &TokenIssuer{secret: []byte(secret), users: users, now: clock}
}

// IssueResetToken returns a signed token that identifies user until now+ttl.
//
// A non-positive ttl produces a token that is already expired.
func (i *TokenIssuer) IssueResetToken(user *models.User, ttl time.Duration) (string, error) {
	if ttl < 0 {
		ttl = 0
	}
	return i.sign(user.ID, purposeReset, ttl)
}

// VerifyResetToken returns the user named by a valid, unexpired reset token.
//
// Any failure (bad signature, expiry, malformed input, wrong purpose, deleted user) yields nil.
func (i *TokenIssuer) VerifyResetToken(ctx context.Context, token string) *models.User {
	claims, err := i.parse(token, purposeReset)
	if err != nil {
		return nil
	}

	user, err := i.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil
	}
	return user
}

// IssueSessionToken returns a signed session token for the login cookie.
func (i *TokenIssuer) IssueSessionToken(user *models.User, ttl time.Duration) (string, error) {
	return i.sign(user.ID, purposeSession, ttl)
}

// ParseSessionToken returns the user id of a valid session token or [shared.ErrNotAuthenticated].
func (i *TokenIssuer) ParseSessionToken(token string) (int64, error) {
	claims, err := i.parse(token, purposeSession)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	return claims.UserID, nil
}

func (i *TokenIssuer) sign(userID int64, purpose string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := &Claims{
		UserID:  userID,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (i *TokenIssuer) parse(token, purpose string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Purpose != purpose {
		return nil, fmt.Errorf("token purpose %q, want %q", claims.Purpose, purpose)
	}
	return claims, nil
}
