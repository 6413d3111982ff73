// ABOUTME: Visualization CLI commands
// ABOUTME: Emits GraphViz DOT for the directory or one group and prints the summary dashboard
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/roster/viz"
)

// VizCommand generates a group/member graph.
func VizCommand(app *App, args []string) error {
	if len(args) > 0 && args[0] == "dashboard" {
		return VizDashboardCommand(app, args[1:])
	}

	fs := flag.NewFlagSet("viz", flag.ExitOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	group := fs.Int("group", 0, "Only this group and its members")
	_ = fs.Parse(args)

	records, err := app.Records(context.Background())
	if err != nil {
		return err
	}

	generator := viz.NewGraphGenerator(records)

	var dot string
	if *group != 0 {
		dot, err = generator.GenerateGroupGraph(*group)
	} else {
		dot, err = generator.GenerateCompleteGraph()
	}
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}

	_, _ = fmt.Fprintln(app.Out, dot)
	return nil
}

// VizDashboardCommand prints directory statistics.
func VizDashboardCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("viz dashboard", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx := context.Background()
	records, err := app.Records(ctx)
	if err != nil {
		return err
	}
	_, storedAt, _ := app.Contacts.Cached(ctx)

	stats := viz.GenerateDashboardStats(records, storedAt)
	_, _ = fmt.Fprint(app.Out, viz.RenderDashboard(stats))
	return nil
}
