// Package admin implements the operator commands of fintrack-admin:
//
//	migrate                 apply pending database migrations
//	suspend <user-id>       disable an account
//	set-password <email>    replace a password, prompting without echo
package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

var ErrUsage = errors.New("usage: fintrack-admin migrate | suspend <user-id> | set-password <email> [-c config.json]")

// UserService is the part of services.UserService the commands use.
type UserService interface {
	Suspend(ctx context.Context, userID string) (*models.User, error)
	SetPassword(ctx context.Context, email, newPassword string) (*models.User, error)
}

type Admin struct {
	users   UserService
	migrate func(ctx context.Context) error
	out     io.Writer
}

func New(users UserService, migrate func(ctx context.Context) error, out io.Writer) *Admin {
	return &Admin{users: users, migrate: migrate, out: out}
}

// Run executes the command named by args[0]. Trailing arguments beyond the
// command's operand are left to the config loader.
func (a *Admin) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "migrate":
		if err := a.migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Migrations applied")
		return nil

	case "suspend":
		if len(args) < 2 {
			return ErrUsage
		}
		u, err := a.users.Suspend(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "User %s suspended\n", u.Email)
		return nil

	case "set-password":
		if len(args) < 2 {
			return ErrUsage
		}
		return a.setPassword(ctx, args[1])

	default:
		return ErrUsage
	}
}

func (a *Admin) setPassword(ctx context.Context, email string) error {
	pw, err := getPassword(a.out, "New password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	again, err := getPassword(a.out, "Repeat password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)

	if !bytes.Equal(pw, again) {
		return errPasswordMismatch
	}

	u, err := a.users.SetPassword(ctx, email, string(pw))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Password updated for %s\n", u.Email)
	return nil
}
