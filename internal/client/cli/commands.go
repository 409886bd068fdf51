package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/userdesk/user-management/internal/client"
	"github.com/userdesk/user-management/internal/core/domain"
)

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func (a *App) register(ctx context.Context) error {
	name, err := promptLine(a.in, a.out, "Name")
	if err != nil {
		return err
	}
	email, err := promptLine(a.in, a.out, "Email")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.out, "Password")
	if err != nil {
		return err
	}
	confirmation, err := promptPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}

	u, err := a.api.Register(ctx, client.RegisterInput{
		Name:                 name,
		Email:                email,
		Password:             password,
		PasswordConfirmation: confirmation,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and signed in as %s (%s)\n", u.Email, u.Role)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login", a.out)
	email := fs.String("email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := valueOrPrompt(a.in, a.out, *email, "Email")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.out, "Password")
	if err != nil {
		return err
	}

	u, err := a.api.Login(ctx, e, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", u.Email, u.Role)
	return nil
}

func (a *App) logout(ctx context.Context) error {
	if err := client.Require(a.api.Session(), ""); err != nil {
		return err
	}
	if err := a.api.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	if err := client.Require(a.api.Session(), ""); err != nil {
		return err
	}
	u, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	printUser(a.out, u)
	return nil
}

func (a *App) profile(ctx context.Context, args []string) error {
	if err := client.Require(a.api.Session(), ""); err != nil {
		return err
	}

	fs := newFlagSet("profile", a.out)
	name := fs.String("name", "", "new name")
	email := fs.String("email", "", "new email")
	changePassword := fs.Bool("password", false, "change password (prompts)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var in client.ProfileUpdate
	if *name != "" {
		in.Name = name
	}
	if *email != "" {
		in.Email = email
	}
	if *changePassword {
		current, err := promptPassword(a.out, "Current password")
		if err != nil {
			return err
		}
		next, err := promptPassword(a.out, "New password")
		if err != nil {
			return err
		}
		confirmation, err := promptPassword(a.out, "Confirm new password")
		if err != nil {
			return err
		}
		in.CurrentPassword, in.Password, in.PasswordConfirmation = &current, &next, &confirmation
	}
	if in == (client.ProfileUpdate{}) {
		return errors.New("nothing to update: pass -name, -email or -password")
	}

	u, err := a.api.UpdateProfile(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated successfully")
	printUser(a.out, u)
	return nil
}

func (a *App) users(ctx context.Context, args []string) error {
	if err := client.Require(a.api.Session(), domain.RoleAdmin); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("users: missing subcommand (list, get, create, update, delete)")
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return a.listUsers(ctx)
	case "get":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		u, err := a.api.GetUser(ctx, id)
		if err != nil {
			return err
		}
		printUser(a.out, u)
		return nil
	case "create":
		return a.createUser(ctx, rest)
	case "update":
		return a.updateUser(ctx, rest)
	case "delete":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := a.api.DeleteUser(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "User deleted successfully")
		return nil
	default:
		return fmt.Errorf("users: unknown subcommand %q", sub)
	}
}

func (a *App) listUsers(ctx context.Context) error {
	users, err := a.api.ListUsers(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, formatTime(u.CreatedAt))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Total users: %d\n", len(users))
	return nil
}

func (a *App) createUser(ctx context.Context, args []string) error {
	fs := newFlagSet("users create", a.out)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	role := fs.String("role", "user", "admin or user")
	if err := fs.Parse(args); err != nil {
		return err
	}

	n, err := valueOrPrompt(a.in, a.out, *name, "Name")
	if err != nil {
		return err
	}
	e, err := valueOrPrompt(a.in, a.out, *email, "Email")
	if err != nil {
		return err
	}
	password, err := promptPassword(a.out, "Password")
	if err != nil {
		return err
	}

	u, err := a.api.CreateUser(ctx, client.CreateUserInput{Name: n, Email: e, Password: password, Role: *role})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "User created successfully")
	printUser(a.out, u)
	return nil
}

func (a *App) updateUser(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}

	fs := newFlagSet("users update", a.out)
	name := fs.String("name", "", "new name")
	email := fs.String("email", "", "new email")
	role := fs.String("role", "", "admin or user")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var in client.UserUpdate
	if *name != "" {
		in.Name = name
	}
	if *email != "" {
		in.Email = email
	}
	if *role != "" {
		in.Role = role
	}
	if in == (client.UserUpdate{}) {
		return errors.New("nothing to update: pass -name, -email or -role")
	}

	u, err := a.api.UpdateUser(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "User updated successfully")
	printUser(a.out, u)
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("missing user id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", args[0])
	}
	return id, nil
}

func printUser(w io.Writer, u *domain.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", u.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Role:\t%s\n", u.Role)
	fmt.Fprintf(tw, "Created:\t%s\n", formatTime(u.CreatedAt))
	_ = tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
