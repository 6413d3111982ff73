// ABOUTME: Entry point for the roster CLI, TUI and MCP server
// ABOUTME: Loads config, opens the cache store and routes to subcommands
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harperreed/roster/cli"
	"github.com/harperreed/roster/config"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.local/share/roster/config.json)")
	dbPath := flag.String("db-path", "", "Cache database path (sqlite backend)")
	backend := flag.String("backend", "", "Cache backend: sqlite or charm")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("roster version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *backend != "" {
		cfg.Backend = *backend
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Error: %v", err)
		}
	}

	command := args[0]
	commandArgs := args[1:]

	var run func(app *cli.App) error
	switch command {
	case "login":
		run = func(app *cli.App) error { return cli.LoginCommand(app, commandArgs) }
	case "logout":
		run = func(app *cli.App) error { return cli.LogoutCommand(app, commandArgs) }
	case "whoami":
		run = func(app *cli.App) error { return cli.WhoamiCommand(app, commandArgs) }
	case "areas":
		run = func(app *cli.App) error { return cli.AreasCommand(app, commandArgs) }
	case "contacts":
		run = func(app *cli.App) error { return cli.ContactsCommand(app, commandArgs) }
	case "group":
		run = func(app *cli.App) error { return cli.GroupCommand(app, commandArgs) }
	case "tui":
		run = func(app *cli.App) error { return cli.TUICommand(app, commandArgs) }
	case "mcp":
		run = func(app *cli.App) error { return cli.MCPCommand(app, version) }
	case "viz":
		run = func(app *cli.App) error { return cli.VizCommand(app, commandArgs) }
	case "sync":
		run = func(app *cli.App) error { return cli.SyncCommand(app, commandArgs) }
	case "cache":
		if len(commandArgs) == 0 {
			fmt.Println("Error: cache requires a subcommand (status, clear)")
			printUsage()
			os.Exit(1)
		}
		sub, subArgs := commandArgs[0], commandArgs[1:]
		switch sub {
		case "status":
			run = func(app *cli.App) error { return cli.CacheStatusCommand(app, subArgs) }
		case "clear":
			run = func(app *cli.App) error { return cli.CacheClearCommand(app, subArgs) }
		default:
			fmt.Printf("Unknown cache command: %s\n\n", sub)
			printUsage()
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	app, err := cli.Open(cfg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	err = run(app)
	if cerr := app.Close(); cerr != nil {
		app.Logger.Warn("failed to close cache store", "err", cerr)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func printUsage() {
	fmt.Printf(`roster v%s - Staff contact directory

USAGE:
  roster [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.local/share/roster/config.json)
  --db-path <path>       Cache database path (sqlite backend)
  --backend <name>       Cache backend: sqlite or charm

COMMANDS:
  login                  Sign in to the directory server
    --username <name>      Username (default: last used)
    --remember             Ask for a long-lived token
    --password-stdin       Read the password from stdin
  logout                 Sign out and clear the local session and caches
  whoami                 Show your profile
    --refresh              Skip the cache
  areas                  List the areas you can access

  contacts               List the directory
    --query <text>         Search name, phone, email, task, group or address
    --sort <column>        type, name, landline, mobile, email, tasks, group
    --desc                 Sort descending
    --page <n>             Page number (default: 1)
    --page-size <n>        Rows per page
    --group <id>           Show only this group and its members
    --json                 Print JSON
  group <id>             Show one group with all members
    --json                 Print JSON

  tui                    Interactive browser
    --scroll               Reveal rows while scrolling instead of paging
    --sort-members         Sort the members of a focused group

  viz                    GraphViz DOT of groups and members
    --output <file>        Output file (default: stdout)
    --group <id>           Only this group
  viz dashboard          Directory statistics

  cache status           Show cache age and session state
  cache clear            Evict cached contacts and profile

  sync link|status|now|auto|unlink|wipe
                         Manage the Charm cloud cache (backend=charm)

  mcp                    Start MCP server on stdio

EXAMPLES:
  roster login --username jdoe
  roster contacts --query kita --sort group
  roster group 42
  roster viz --group 42 --output kita.dot

`, version)
}
