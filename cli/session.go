// ABOUTME: Account CLI commands: login, logout, whoami and areas
// ABOUTME: Login stores the backend token; logout always clears the local session and caches
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/roster/api"
	"github.com/harperreed/roster/models"
)

// LoginCommand signs in and stores the session.
func LoginCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", app.Config.Username, "Username")
	remember := fs.Bool("remember", false, "Ask for a long-lived token")
	passwordStdin := fs.Bool("password-stdin", false, "Read the password from stdin")
	_ = fs.Parse(args)

	ctx := context.Background()

	user := *username
	if user == "" {
		_, _ = fmt.Fprint(app.Out, "Username: ")
		line, err := app.readLine()
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		user = line
	}
	if strings.TrimSpace(user) == "" {
		return fmt.Errorf("username is required")
	}

	var password string
	if *passwordStdin {
		line, err := app.readLine()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = line
	} else {
		_, _ = fmt.Fprint(app.Out, "Password: ")
		pw, err := app.readPassword()
		_, _ = fmt.Fprintln(app.Out)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = pw
	}

	resp, err := app.API.Login(ctx, user, password, *remember)
	if err != nil {
		var verr *api.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("login rejected: %w", err)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	if err := app.Session.Save(ctx, resp); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	app.Config.Username = user
	if err := app.Config.Save(); err != nil {
		app.Logger.Warn("could not remember username", "err", err)
	}

	name := resp.User.Name
	if name == "" {
		name = resp.User.Username
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Logged in as %s\n", name)
	if resp.ExpiresAt != "" {
		_, _ = fmt.Fprintf(app.Out, "  Session expires: %s\n", resp.ExpiresAt)
	}

	// Warm the profile cache; a failure here does not undo the login.
	if _, err := app.Profile(ctx); err != nil {
		app.Logger.Warn("could not load profile", "err", err)
	}

	return nil
}

// LogoutCommand ends the session.
func LogoutCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	_ = fs.Parse(args)

	if err := app.Logout(context.Background()); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(app.Out, "✓ Logged out")
	return nil
}

// WhoamiCommand prints the signed-in user's profile.
func WhoamiCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	refresh := fs.Bool("refresh", false, "Skip the cache")
	_ = fs.Parse(args)

	ctx := context.Background()

	var info models.UserInfo
	if *refresh {
		snap, err := app.UserInfo.Reload(ctx)
		if err != nil {
			return explain(err)
		}
		info = snap.Value
	} else {
		p, err := app.Profile(ctx)
		if err != nil {
			return err
		}
		info = p
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Name:\t%s\n", info.DisplayName())
	_, _ = fmt.Fprintf(w, "Username:\t%s\n", info.User.Username)
	if email := info.DisplayEmail(); email != "" {
		_, _ = fmt.Fprintf(w, "Email:\t%s\n", email)
	}
	if occ := info.Occupation(); occ != "" {
		_, _ = fmt.Fprintf(w, "Occupation:\t%s\n", occ)
	}
	phone, mobile := info.Phones()
	if phone != "" {
		_, _ = fmt.Fprintf(w, "Phone:\t%s\n", phone)
	}
	if mobile != "" {
		_, _ = fmt.Fprintf(w, "Mobile:\t%s\n", mobile)
	}
	var groups []string
	for _, g := range info.Groups {
		if g.Name != nil && *g.Name != "" {
			groups = append(groups, *g.Name)
		}
	}
	if len(groups) > 0 {
		_, _ = fmt.Fprintf(w, "Groups:\t%s\n", strings.Join(groups, ", "))
	}
	if t, ok, err := app.Session.ExpiresAt(ctx); err == nil && ok {
		_, _ = fmt.Fprintf(w, "Session expires:\t%s\n", t.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// AreasCommand lists the areas the user may access.
func AreasCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("areas", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()
	token, err := app.Session.Valid(ctx)
	if err != nil {
		return explain(err)
	}

	areas, err := app.API.Areas(ctx, token)
	if err != nil {
		return explain(err)
	}

	if len(areas) == 0 {
		_, _ = fmt.Fprintln(app.Out, "No areas available.")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tAREA\tTITLE\tRIGHTS")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t------")
	for _, a := range areas {
		title := ""
		if a.Title != nil {
			title = *a.Title
		}
		if a.Area == app.Config.AreaID {
			title += " *"
		}
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", a.ID, a.Area, title, rights(a.Rights))
	}
	return w.Flush()
}

func rights(r models.Rights) string {
	flags := []byte("---")
	if r.Read {
		flags[0] = 'r'
	}
	if r.Write {
		flags[1] = 'w'
	}
	if r.Admin {
		flags[2] = 'a'
	}
	return string(flags)
}
