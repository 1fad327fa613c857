// ABOUTME: Entry point for the Olivia operator console
// ABOUTME: Routes to the TUI or one-shot CLI commands based on arguments
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/olivinha/console/api"
	"github.com/olivinha/console/cli"
	"github.com/olivinha/console/execution"
	"github.com/olivinha/console/options"
	"github.com/olivinha/console/review"
	"github.com/olivinha/console/tui"
)

const version = "0.2.1"

// Deployment defaults; override via flags or environment.
const (
	defaultAPIURL  = "https://console.olivinha.site/api"
	defaultExecURL = "https://console.olivinha.site/executions"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	apiURL := flag.String("api-url", "", "Conciliation API base URL (default: $CONSOLE_API_URL)")
	execURL := flag.String("exec-url", "", "Execution API base URL (default: $CONSOLE_EXEC_URL)")
	authMode := flag.String("auth", "", "Credential transport, cookie or bearer (default: $CONSOLE_AUTH or bearer)")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("console version %s\n", version)
		os.Exit(0)
	}

	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	client, err := buildClient(*apiURL, *execURL, *authMode)
	if err != nil {
		log.Fatalf("Failed to configure client: %v", err)
	}

	store := options.NewStore()
	queue := review.NewQueue(client)

	args := flag.Args()
	command := "tui"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "tui":
		if err := runTUI(client, store, queue); err != nil {
			log.Fatalf("TUI failed: %v", err)
		}

	case "login":
		if err := cli.LoginCommand(client, args); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "logout":
		if err := cli.LogoutCommand(client, args); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "queue":
		if err := cli.QueueCommand(queue, args); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "exec":
		if len(args) == 0 {
			fmt.Println("Error: exec requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		if err := runExecCommand(client, store, args[0], args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "options":
		if err := cli.OptionsCommand(store, args); err != nil {
			log.Fatalf("Error: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runExecCommand(client *api.Client, store *options.Store, subcommand string, args []string) error {
	switch subcommand {
	case "start":
		return cli.ExecStartCommand(client, store, args)
	case "status":
		return cli.ExecStatusCommand(client, args)
	case "history":
		return cli.ExecHistoryCommand(client, args)
	default:
		return fmt.Errorf("unknown exec command: %s", subcommand)
	}
}

func runTUI(client *api.Client, store *options.Store, queue *review.Queue) error {
	session := review.NewSession(client)

	updates := make(chan execution.State, 64)
	orch := execution.New(client, store, clockwork.NewRealClock(), func(state execution.State) {
		enqueueUpdate(updates, state)
	})

	model := tui.NewModel(client, queue, session, orch, store, updates)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// enqueueUpdate delivers a snapshot without ever blocking the polling
// loop. When the channel is full the oldest queued update is shed so the
// newest one, which may be the terminal snapshot, always lands.
func enqueueUpdate(updates chan execution.State, state execution.State) {
	for {
		select {
		case updates <- state:
			return
		default:
		}
		select {
		case <-updates:
		default:
		}
	}
}

func buildClient(apiURL, execURL, authMode string) (*api.Client, error) {
	apiURL = resolve(apiURL, "CONSOLE_API_URL", defaultAPIURL)
	execURL = resolve(execURL, "CONSOLE_EXEC_URL", defaultExecURL)
	authMode = resolve(authMode, "CONSOLE_AUTH", "bearer")

	var transport api.CredentialTransport
	switch authMode {
	case "bearer":
		transport = api.NewBearerTransport()
	case "cookie":
		var err error
		transport, err = api.NewCookieTransport(apiURL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown auth mode %q (want cookie or bearer)", authMode)
	}

	return api.NewClient(apiURL, execURL, transport), nil
}

func resolve(flagValue, envKey, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(envKey); env != "" {
		return env
	}
	return fallback
}

func printUsage() {
	fmt.Printf(`console v%s - Olivia conciliation operator console

USAGE:
  console [global flags] [command] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --api-url <url>        Conciliation API base URL ($CONSOLE_API_URL)
  --exec-url <url>       Execution API base URL ($CONSOLE_EXEC_URL)
  --auth <mode>          Credential transport: cookie or bearer ($CONSOLE_AUTH)

COMMANDS:
  tui                    Interactive console (default)
  login                  Log in and store the session token
    --user <name>          Username (prompted if omitted)
  logout                 Drop the session
  queue                  List pending conciliations
    --query <text>         Filter by owner, bank, or amount
  exec start             Submit a processing run and follow it
    --start-date <date>    Override the start date for this run
  exec status <id>       One status snapshot for an execution
  exec history           List past executions
    --all                  Show every entry instead of the last 5
  options [show]         Show the persisted execution options
  options set            Edit the persisted execution options
    --start-date <date>    Start date (YYYY-MM-DD)
    --exclude <a,b>        Comma-separated excluded categories
  options reset          Restore the default options

EXAMPLES:
  # Interactive review
  console

  # Log in against a local backend
  console --api-url http://localhost:8080/api login --user admin

  # Kick off processing and watch it finish
  console exec start --start-date 2026-01-15
`, version)
}
