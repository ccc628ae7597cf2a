package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/musicapp/internal/services"
	"github.com/desertthunder/musicapp/internal/shared"
	"github.com/desertthunder/musicapp/internal/ui"
)

// UserCreate creates an account, optionally with the admin or manager role.
func (r *Runner) UserCreate(ctx context.Context, cmd *cli.Command) error {
	a, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.users.CreateUser(ctx, services.RegisterForm{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	}, cmd.Bool("admin"), cmd.Bool("manager"))
	if err != nil {
		return err
	}

	return r.writePlain("%s %s (id %d)\n", ui.Styles.OK("created"), user.Username, user.ID)
}

// UserResetToken prints a password reset link valid for the configured lifetime.
func (r *Runner) UserResetToken(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	a, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	token, err := a.users.ResetTokenFor(ctx, username)
	if err != nil {
		return err
	}

	if err := r.writePlain("/reset_password/%s\n", token); err != nil {
		return err
	}
	return r.writePlain("%s\n", ui.Styles.Help(fmt.Sprintf("expires in %s", r.config.Auth.ResetTokenTTL())))
}
