package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/musicapp/internal/auth"
	"github.com/desertthunder/musicapp/internal/models"
	"github.com/desertthunder/musicapp/internal/repositories"
	"github.com/desertthunder/musicapp/internal/shared"
)

// RegisterForm is the account registration payload.
type RegisterForm struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserService manages accounts, credentials and password resets.
type UserService struct {
	db       *sql.DB
	users    *repositories.UserRepository
	tokens   *auth.TokenIssuer
	resetTTL time.Duration
	logger   *log.Logger
}

// NewUserService creates a [UserService]. A non-positive resetTTL uses [auth.DefaultResetTTL].
func NewUserService(db *sql.DB, tokens *auth.TokenIssuer, resetTTL time.Duration, logger *log.Logger) *UserService {
	if resetTTL <= 0 {
		resetTTL = auth.DefaultResetTTL
	}
	return &UserService{
		db:       db,
		users:    repositories.NewUserRepository(db),
		tokens:   tokens,
		resetTTL: resetTTL,
		logger:   serviceLogger(logger, "users"),
	}
}

// Register creates a regular account.
func (s *UserService) Register(ctx context.Context, form RegisterForm) (*models.User, error) {
	return s.CreateUser(ctx, form, false, false)
}

// CreateUser creates an account with the given role flags.
func (s *UserService) CreateUser(ctx context.Context, form RegisterForm, admin, manager bool) (*models.User, error) {
	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     strings.TrimSpace(form.Username),
		Email:        strings.ToLower(strings.TrimSpace(form.Email)),
		PasswordHash: hash,
		IsAdmin:      admin,
		IsManager:    manager,
	}

	err = repositories.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return repositories.NewUserRepository(tx).Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "username", user.Username, "admin", admin, "manager", manager)
	return user, nil
}

// Get returns the user with the given ID.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.users.Get(ctx, id)
}

// Authenticate checks an email and password pair.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", shared.ErrNotAuthenticated)
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid email or password", shared.ErrNotAuthenticated)
	}
	return user, nil
}

// RequestPasswordReset issues a reset token for the account with this email.
//
// An unknown email returns an empty token and no error so callers cannot probe for accounts.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, shared.ErrNotFound) {
		s.logger.Debug("reset requested for unknown email")
		return "", nil
	}
	if err != nil {
		return "", err
	}

	token, err := s.tokens.IssueResetToken(user, s.resetTTL)
	if err != nil {
		return "", err
	}

	s.logger.Info("password reset requested", "user_id", user.ID, "expires_in", s.resetTTL)
	return token, nil
}

// ResetPassword sets a new password for the user named by a valid reset token.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) (*models.User, error) {
	user := s.tokens.VerifyResetToken(ctx, token)
	if user == nil {
		return nil, fmt.Errorf("%w: that is an invalid or expired token", shared.ErrInvalidInput)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	err = repositories.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return repositories.NewUserRepository(tx).UpdatePassword(ctx, user.ID, hash)
	})
	if err != nil {
		return nil, persistenceErr(err)
	}

	s.logger.Info("password reset", "user_id", user.ID)
	return user, nil
}

// ResetTokenFor issues a reset token for a username, used by the CLI.
func (s *UserService) ResetTokenFor(ctx context.Context, username string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	return s.tokens.IssueResetToken(user, s.resetTTL)
}
