package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/artwall/internal/common"
)

// getPassword is an indirection used to facilitate testing.
var getPassword = GetPassword

// Name sets the display name from args, or prompts for the display name
// and the real name. An empty answer keeps the current value; "-" clears
// the real name.
func (a *App) Name(ctx context.Context, args []string) error {
	if len(args) > 0 {
		if err := a.identity.SetDisplayName(ctx, strings.Join(args, " ")); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Display name updated.")
		return nil
	}

	current, err := a.identity.Identity(ctx)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, fmt.Sprintf("Display name [%s]", current.DisplayName), a.out)
	if err != nil {
		return err
	}
	if name == "" {
		name = current.DisplayName
	}

	realName, err := getSimpleText(a.reader, "Real name (optional, '-' to clear)", a.out)
	if err != nil {
		return err
	}
	switch realName {
	case "":
		realName = current.RealName
	case "-":
		realName = ""
	}

	if err := a.identity.SetProfile(ctx, name, realName); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated.")
	return nil
}

func (a *App) Whoami(ctx context.Context, _ []string) error {
	id, err := a.identity.Identity(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "User id:      %s\n", id.UserID)
	fmt.Fprintf(a.out, "Display name: %s\n", id.DisplayName)
	if id.RealName != "" {
		fmt.Fprintf(a.out, "Real name:    %s\n", id.RealName)
	}

	info := a.session.Describe()
	switch {
	case !info.Privileged:
		fmt.Fprintln(a.out, "Admin:        no")
	case info.Opaque:
		fmt.Fprintln(a.out, "Admin:        yes")
	default:
		line := "yes"
		if info.Subject != "" {
			line += " (" + info.Subject + ")"
		}
		if !info.ExpiresAt.IsZero() {
			if info.Expired(time.Now()) {
				line += ", token expired " + formatTime(info.ExpiresAt)
			} else {
				line += ", token valid until " + formatTime(info.ExpiresAt)
			}
		}
		fmt.Fprintln(a.out, "Admin:        "+line)
	}
	if m := a.Mode(); m != "" {
		fmt.Fprintf(a.out, "Mode:         %s\n", m)
	}
	return nil
}

// Login prompts for the admin password without echo.
func (a *App) Login(ctx context.Context, _ []string) error {
	if a.isPrivileged() {
		fmt.Fprintln(a.out, "Already logged in as admin.")
		return nil
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Admin mode enabled.")
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if !a.isPrivileged() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Admin mode disabled.")
	return nil
}
