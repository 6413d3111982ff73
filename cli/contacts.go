// ABOUTME: Contact directory CLI commands
// ABOUTME: Searches, sorts and pages the cached directory; shows one group with its members
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/harperreed/roster/directory"
	"github.com/harperreed/roster/models"
)

// pageJSON is the --json shape of a contacts page.
type pageJSON struct {
	Contacts   []models.Contact `json:"contacts"`
	Page       int              `json:"page"`
	TotalPages int              `json:"total_pages"`
	TotalItems int              `json:"total_items"`
}

// ContactsCommand lists the directory.
func ContactsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("contacts", flag.ExitOnError)
	query := fs.String("query", "", "Search name, phone, email, task, group or address")
	sortBy := fs.String("sort", string(directory.SortName), "Sort column: type, name, landline, mobile, email, tasks, group (empty keeps backend order)")
	desc := fs.Bool("desc", false, "Sort descending")
	page := fs.Int("page", 1, "Page number")
	pageSize := fs.Int("page-size", app.Config.PageSize, "Rows per page")
	group := fs.Int("group", 0, "Show only this group and its members")
	asJSON := fs.Bool("json", false, "Print JSON")
	_ = fs.Parse(args)

	field, err := directory.ParseSortField(*sortBy)
	if err != nil {
		return err
	}
	dir := directory.Asc
	if *desc {
		dir = directory.Desc
	}

	records, err := app.Records(context.Background())
	if err != nil {
		return err
	}

	q := directory.Query{
		Text:      *query,
		Sort:      field,
		Direction: dir,
		Page:      *page,
		PageSize:  *pageSize,
	}
	if *group != 0 {
		g, ok := directory.FindGroup(records, *group)
		if !ok {
			return fmt.Errorf("group not found: %d", *group)
		}
		id := g.ID
		q.FocusID = &id
		q.Text = g.Name
	}

	view := directory.Derive(records, q)

	if *asJSON {
		out := pageJSON{
			Contacts:   view.Page.Items,
			Page:       view.Page.Number,
			TotalPages: view.Page.TotalPages,
			TotalItems: view.Page.TotalItems,
		}
		if out.Contacts == nil {
			out.Contacts = []models.Contact{}
		}
		enc := json.NewEncoder(app.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if view.Page.TotalItems == 0 {
		_, _ = fmt.Fprintln(app.Out, "No contacts found")
		return nil
	}
	if len(view.Page.Items) == 0 {
		_, _ = fmt.Fprintf(app.Out, "Page %d is empty (%d page(s))\n", *page, view.Page.TotalPages)
		return nil
	}

	if err := writeContacts(app.Out, view.Page.Items); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(app.Out, "\nPage %d/%d • %d contact(s)\n", view.Page.Number, view.Page.TotalPages, view.Page.TotalItems)
	return nil
}

// GroupCommand shows one group and all of its members.
func GroupCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("group", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "Print JSON")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("group ID is required")
	}
	id, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid group ID: %w", err)
	}

	records, err := app.Records(context.Background())
	if err != nil {
		return err
	}

	rows, ok := directory.Focus(records, id)
	if !ok {
		return fmt.Errorf("group not found: %d", id)
	}

	if *asJSON {
		enc := json.NewEncoder(app.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	g := rows[0]
	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Group:\t%s\n", g.Name)
	for _, f := range []struct{ label, value string }{
		{"Address", g.Address},
		{"Landline", g.Landline},
		{"Mobile", g.Mobile},
		{"Fax", g.Fax},
		{"Email", g.Email},
		{"Tasks", g.TasksText()},
	} {
		if f.value != "" {
			_, _ = fmt.Fprintf(w, "%s:\t%s\n", f.label, f.value)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	members := rows[1:]
	if len(members) == 0 {
		_, _ = fmt.Fprintln(app.Out, "\nNo members")
		return nil
	}
	_, _ = fmt.Fprintln(app.Out)
	if err := writeContacts(app.Out, members); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(app.Out, "\nTotal: %d member(s)\n", len(members))
	return nil
}

func writeContacts(out io.Writer, rows []models.Contact) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TYPE\tNAME\tLANDLINE\tMOBILE\tEMAIL\tTASKS\tGROUP/ADDRESS\tID")
	_, _ = fmt.Fprintln(w, "----\t----\t--------\t------\t-----\t-----\t-------------\t--")

	for _, c := range rows {
		kind := "P"
		if c.IsGroup() {
			kind = "G"
		}
		name := c.Name
		if c.Level > 0 {
			name = "  " + name
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			kind, name, dash(c.Landline), dash(c.Mobile), dash(c.Email),
			dash(c.TasksText()), dash(c.GroupOrAddress()), c.ID)
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
