// ABOUTME: Charm sync CLI commands for the charm-backed cache
// ABOUTME: Links, pushes and wipes the store and reports the cached directory and profile it holds
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/harperreed/roster/auth"
)

// SyncCommand dispatches `roster sync <subcommand>`.
func SyncCommand(app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("sync requires a subcommand (link, status, now, auto, unlink, wipe)")
	}
	if app.Charm == nil {
		return fmt.Errorf("sync needs the charm backend: set \"backend\": \"charm\" in %s or pass --backend charm", app.Config.FilePath())
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "link":
		return syncLink(app, rest)
	case "status":
		return syncStatus(app, rest)
	case "now":
		return syncNow(app, rest)
	case "auto":
		return syncAuto(app, rest)
	case "unlink":
		return syncUnlink(app, rest)
	case "wipe":
		return syncWipe(app, rest)
	}
	return fmt.Errorf("unknown sync command: %s", sub)
}

// syncLink pulls the remote copy of the cache, which registers the device
// key with the charm server on first use.
func syncLink(app *App, args []string) error {
	fs := flag.NewFlagSet("sync link", flag.ExitOnError)
	host := fs.String("host", "", "Charm server to use from now on")
	_ = fs.Parse(args)

	if *host != "" && *host != app.Config.CharmHost {
		app.Config.CharmHost = *host
		if err := app.Config.Save(); err != nil {
			return fmt.Errorf("failed to save charm server: %w", err)
		}
		_, _ = fmt.Fprintf(app.Out, "✓ Charm server set to %s\n", *host)
		_, _ = fmt.Fprintln(app.Out, "Run 'roster sync link' again to link against it.")
		return nil
	}

	_, _ = fmt.Fprintf(app.Out, "Linking to %s...\n", app.Charm.Host())
	_, _ = fmt.Fprintln(app.Out, "Charm authenticates this device with its SSH key; the directory login is separate.")
	_, _ = fmt.Fprintln(app.Out)

	if err := app.Charm.Sync(); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	if id, err := app.Charm.ID(); err != nil {
		_, _ = fmt.Fprintln(app.Out, "✓ Device linked (account ID unavailable)")
	} else {
		_, _ = fmt.Fprintf(app.Out, "✓ Linked to account: %s\n", id)
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Auto-sync: %s\n", onOff(app.Charm.AutoSync()))
	_, _ = fmt.Fprintln(app.Out)

	return writeSyncedEntries(context.Background(), app, time.Now())
}

func syncStatus(app *App, args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ExitOnError)
	_ = fs.Parse(args)

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Server:\t%s\n", app.Charm.Host())
	_, _ = fmt.Fprintf(w, "Auto-sync:\t%s\n", onOff(app.Charm.AutoSync()))
	if app.Charm.IsConnected() {
		_, _ = fmt.Fprintln(w, "Status:\tconnected")
		if id, err := app.Charm.ID(); err == nil {
			_, _ = fmt.Fprintf(w, "Account:\t%s\n", id)
		}
	} else {
		_, _ = fmt.Fprintln(w, "Status:\tnot connected")
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(app.Out)

	if err := writeSyncedEntries(context.Background(), app, time.Now()); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(app.Out)
	if app.Charm.AutoSync() {
		_, _ = fmt.Fprintln(app.Out, "Every cache write is pushed to the server.")
	} else {
		_, _ = fmt.Fprintln(app.Out, "Auto-sync is off; run 'roster sync now' to push the cache.")
	}
	return nil
}

func syncNow(app *App, args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Show what the store holds after syncing")
	_ = fs.Parse(args)

	if *verbose {
		_, _ = fmt.Fprintf(app.Out, "Syncing with %s...\n", app.Charm.Host())
	}
	if err := app.Charm.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	_, _ = fmt.Fprintln(app.Out, "✓ Synced")

	if *verbose {
		_, _ = fmt.Fprintln(app.Out)
		return writeSyncedEntries(context.Background(), app, time.Now())
	}
	return nil
}

func syncAuto(app *App, args []string) error {
	fs := flag.NewFlagSet("sync auto", flag.ExitOnError)
	enable := fs.Bool("enable", false, "Push every cache write")
	disable := fs.Bool("disable", false, "Only push on 'roster sync now'")
	_ = fs.Parse(args)

	if *enable == *disable {
		return fmt.Errorf("usage: roster sync auto --enable|--disable")
	}

	app.Config.CharmAutoSync = *enable
	if err := app.Config.Save(); err != nil {
		return fmt.Errorf("failed to save auto-sync setting: %w", err)
	}
	app.Charm.SetAutoSync(*enable)

	if *enable {
		_, _ = fmt.Fprintln(app.Out, "✓ Auto-sync enabled")
	} else {
		_, _ = fmt.Fprintln(app.Out, "✓ Auto-sync disabled")
	}
	return nil
}

// syncUnlink only explains: charm has no unlink call, the device key has to
// be removed from the account.
func syncUnlink(app *App, args []string) error {
	fs := flag.NewFlagSet("sync unlink", flag.ExitOnError)
	_ = fs.Parse(args)

	_, _ = fmt.Fprintf(app.Out, "To unlink this device from %s:\n\n", app.Charm.Host())
	_, _ = fmt.Fprintln(app.Out, "  1. Remove this device's SSH key from your Charm account")
	_, _ = fmt.Fprintln(app.Out, "  2. Delete local charm data: rm -rf ~/.local/share/charm")
	_, _ = fmt.Fprintln(app.Out)
	_, _ = fmt.Fprintln(app.Out, "The cached directory and your directory session stay on this device;")
	_, _ = fmt.Fprintln(app.Out, "run 'roster logout' to remove them.")
	return nil
}

// syncWipe resets the store. The session keys live in the same store, so
// this also signs the user out of the directory.
func syncWipe(app *App, args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm the wipe")
	_ = fs.Parse(args)

	if !*confirm {
		_, _ = fmt.Fprintln(app.Out, "WARNING: This deletes the cached directory and profile and signs you out of the directory.")
		_, _ = fmt.Fprintln(app.Out)
		_, _ = fmt.Fprintln(app.Out, "To confirm, run:")
		_, _ = fmt.Fprintln(app.Out, "  roster sync wipe --confirm")
		return nil
	}

	if err := app.Charm.Reset(); err != nil {
		return fmt.Errorf("failed to reset charm store: %w", err)
	}

	_, _ = fmt.Fprintln(app.Out, "✓ Cached directory and profile wiped")
	_, _ = fmt.Fprintln(app.Out, "✓ Logged out")
	_, _ = fmt.Fprintln(app.Out, "Your Charm account is still linked. Run 'roster login' to sign in again.")
	return nil
}

// writeSyncedEntries lists the cache namespaces the store carries.
func writeSyncedEntries(ctx context.Context, app *App, now time.Time) error {
	entries := []struct {
		name   string
		key    string
		window time.Duration
	}{
		{"contacts", auth.ContactsCacheKey, app.Contacts.MaxAge()},
		{"profile", auth.UserInfoCacheKey, app.UserInfo.MaxAge()},
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ENTRY\tKEY\tSTORED\tSTATE")
	for _, e := range entries {
		storedAt, ok := app.Cache.StoredAt(ctx, e.key)
		if !ok {
			_, _ = fmt.Fprintf(w, "%s\t%s\t-\tnot cached\n", e.name, e.key)
			continue
		}
		state := "fresh"
		if now.Sub(storedAt) > e.window {
			state = "stale"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.name, e.key, storedAt.Local().Format("2006-01-02 15:04:05"), state)
	}
	return w.Flush()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
