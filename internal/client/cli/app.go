// Package cli implements the usercli commands on top of the API client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/userdesk/user-management/internal/client"
	"github.com/userdesk/user-management/internal/core/domain"
)

const usage = `usage: usercli <command> [flags]

Account:
  register                     create an account and sign in
  login   [-email E]           sign in
  logout                       sign out and revoke the token
  whoami                       show the signed-in user
  profile [-name N] [-email E] [-password]
                               update your own account

Admin:
  users list                   list every account
  users get    ID
  users create [-name N] [-email E] [-role admin|user]
  users update ID [-name N] [-email E] [-role admin|user]
  users delete ID
`

// apiClient is the part of client.Client the commands use.
type apiClient interface {
	Session() *client.Session
	Register(ctx context.Context, in client.RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, in client.ProfileUpdate) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, in client.CreateUserInput) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, in client.UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type App struct {
	api apiClient
	in  *bufio.Reader
	out io.Writer
}

func NewApp(api apiClient, in io.Reader, out io.Writer) *App {
	return &App{api: api, in: bufio.NewReader(in), out: out}
}

// Run executes one command. Errors are already user-facing.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errors.New("no command given")
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "register":
		err = a.register(ctx)
	case "login":
		err = a.login(ctx, rest)
	case "logout":
		err = a.logout(ctx)
	case "whoami", "me":
		err = a.whoami(ctx)
	case "profile":
		err = a.profile(ctx, rest)
	case "users":
		err = a.users(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	return humanize(err)
}

// humanize rewrites errors that have a fixed user-facing wording.
func humanize(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrNotAuthenticated):
		return errors.New("please log in first")
	case errors.Is(err, client.ErrAccessDenied):
		return errors.New("Access Denied: this command requires the admin role")
	case client.IsStatus(err, http.StatusUnauthorized):
		return errors.New("session expired or invalid, please log in again")
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		var b strings.Builder
		b.WriteString(apiErr.Message)
		for field, msgs := range apiErr.Fields {
			for _, m := range msgs {
				fmt.Fprintf(&b, "\n  %s: %s", field, m)
			}
		}
		return errors.New(b.String())
	}
	return err
}
