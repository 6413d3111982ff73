// ABOUTME: Cache CLI commands
// ABOUTME: Shows the age of the cached directory and profile and evicts them on request
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/roster/cache"
	"github.com/harperreed/roster/config"
)

// CacheStatusCommand prints where the cache lives and how old each entry is.
func CacheStatusCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("cache status", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()
	now := time.Now()

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Backend:\t%s\n", app.Config.Backend)
	if app.Config.Backend != config.BackendCharm {
		_, _ = fmt.Fprintf(w, "Database:\t%s\n", app.Config.DBPath)
	}

	user, err := app.Session.User(ctx)
	switch {
	case err != nil:
		_, _ = fmt.Fprintf(w, "Session:\tunreadable (%v)\n", err)
	case user == nil:
		_, _ = fmt.Fprintln(w, "Session:\tnot logged in")
	default:
		status := "active"
		if expired, err := app.Session.IsExpired(ctx); err == nil && expired {
			status = "expired"
		}
		_, _ = fmt.Fprintf(w, "Session:\t%s (%s)\n", user.Username, status)
	}
	if lister, ok := app.Store.(cache.Lister); ok {
		writeKeyCounts(ctx, w, lister)
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, "ENTRY\tSTORED\tWINDOW\tSTATE")
	_, _ = fmt.Fprintln(w, "-----\t------\t------\t-----")

	contacts, contactsAt, ok := app.Contacts.Cached(ctx)
	writeEntry(w, fmt.Sprintf("contacts (%d)", len(contacts)), contactsAt, ok, app.Contacts.MaxAge(), now)

	_, profileAt, ok := app.UserInfo.Cached(ctx)
	writeEntry(w, "profile", profileAt, ok, app.UserInfo.MaxAge(), now)

	return w.Flush()
}

// keyNamespaces groups stored keys for display.
var keyNamespaces = []struct{ label, prefix string }{
	{"session and profile", "auth_"},
	{"directory", "contacts_"},
}

func writeKeyCounts(ctx context.Context, w io.Writer, lister cache.Lister) {
	parts := make([]string, 0, len(keyNamespaces))
	for _, ns := range keyNamespaces {
		keys, err := lister.KeysWithPrefix(ctx, ns.prefix)
		if err != nil {
			_, _ = fmt.Fprintf(w, "Keys:\tunreadable (%v)\n", err)
			return
		}
		parts = append(parts, fmt.Sprintf("%d %s", len(keys), ns.label))
	}
	_, _ = fmt.Fprintf(w, "Keys:\t%s\n", strings.Join(parts, ", "))
}

func writeEntry(w *tabwriter.Writer, name string, storedAt time.Time, ok bool, window time.Duration, now time.Time) {
	if !ok {
		_, _ = fmt.Fprintf(w, "%s\t-\t%s\tnot cached\n", name, window)
		return
	}
	state := "fresh"
	if now.Sub(storedAt) > window {
		state = "stale"
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, storedAt.Local().Format("2006-01-02 15:04:05"), window, state)
}

// CacheClearCommand evicts the cached directory and profile. The session is
// kept; the next command fetches fresh data.
func CacheClearCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("cache clear", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()
	app.Contacts.Invalidate(ctx)
	app.UserInfo.Invalidate(ctx)

	_, _ = fmt.Fprintln(app.Out, "✓ Cache cleared")
	return nil
}
