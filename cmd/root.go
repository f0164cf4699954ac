// Package cmd implements the CLI command structure for tasklist.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasklist-go/internal/config"
	"github.com/nibzard/tasklist-go/internal/fakeapi"
	"github.com/nibzard/tasklist-go/internal/logging"
	"github.com/nibzard/tasklist-go/internal/task"
	"github.com/nibzard/tasklist-go/internal/ui"
	"github.com/nibzard/tasklist-go/internal/web"
)

// Version is set via ldflags at build time.
var Version = "dev"

// ErrActionFailed is returned when a task action failed and the message has
// already been shown to the user.
var ErrActionFailed = errors.New("action failed")

// Run executes the tasklist CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tasklist", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	loaded, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// With no command, or a flag where the command would be, open the TUI.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "ls", "list":
		return lsCommand(ctx, cfg, remainingArgs)
	case "add":
		return addCommand(ctx, cfg, remainingArgs)
	case "toggle":
		return toggleCommand(ctx, cfg, remainingArgs)
	case "rm", "delete":
		return rmCommand(ctx, cfg, remainingArgs)
	case "serve":
		return serveCommand(ctx, cfg, remainingArgs)
	case "api":
		return apiCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(ctx, loaded, remainingArgs)
	case "config":
		return configCommand(loaded, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// commandLogger logs to stderr with the configured options.
func commandLogger(cfg *config.Config) *log.Logger {
	return logging.New(os.Stderr, loggerOptions(cfg))
}

func loggerOptions(cfg *config.Config) logging.Options {
	return logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
}

func newClient(cfg *config.Config, logger *log.Logger) (*task.Client, error) {
	client, err := task.NewClient(cfg.APIURL,
		task.WithTimeout(cfg.RequestTimeout()),
		task.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("creating api client: %w", err)
	}
	return client, nil
}

func workDir(cfg *config.Config) (string, error) {
	if cfg.ProjectRoot != "" {
		return cfg.ProjectRoot, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return wd, nil
}

// tuiCommand launches the TUI. It logs to a per-run file so the log output
// does not draw over the screen.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	dir, err := workDir(cfg)
	if err != nil {
		return err
	}
	runLog, err := logging.NewRunLogger(cfg.LogDir, dir)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer runLog.Close()

	logger := runLog.Logger(loggerOptions(cfg))
	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("starting tui", "api_url", client.BaseURL(), "log", runLog.LogPath)

	return ui.RunTUI(ctx, client,
		ui.WithLogger(logger),
		ui.WithAPIURL(client.BaseURL()),
	)
}

// serveCommand serves the HTML page.
func serveCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.ListenAddr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logger := commandLogger(cfg)
	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Serving http://%s (API %s)\n", *addr, client.BaseURL())
	return web.NewServer(client, web.WithLogger(logger)).Run(ctx, *addr)
}

// apiCommand runs the in-memory task API.
func apiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist api", flag.ContinueOnError)
	addr := fs.String("addr", apiListenAddr(cfg.APIURL), "Listen address")
	atomic := fs.Bool("atomic", os.Getenv("CI") == "true", "Mount the atomic test-isolation endpoints")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	srv := fakeapi.NewServer(fakeapi.NewStore(),
		fakeapi.WithAtomic(*atomic),
		fakeapi.WithLogger(commandLogger(cfg)),
	)
	return srv.ListenAndServe(ctx, *addr)
}

// apiListenAddr derives a listen address from the configured API URL.
func apiListenAddr(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil || u.Host == "" {
		return "localhost:8000"
	}
	if u.Port() == "" {
		return u.Hostname() + ":8000"
	}
	return u.Host
}

// doctorCommand checks config, API reachability, and the log directory.
func doctorCommand(ctx context.Context, loaded *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("tasklist doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := loaded.Config

	fmt.Println("Tasklist Doctor")
	fmt.Println("===============")
	fmt.Println()

	allOK := true

	fmt.Println("Config files:")
	if len(loaded.Files) == 0 {
		fmt.Println("  ⚠️  None found (using defaults)")
	}
	for _, f := range loaded.Files {
		fmt.Printf("  ✅ %s\n", f)
	}
	fmt.Println()

	fmt.Printf("API: %s (from %s)\n", cfg.APIURL, loaded.Sources["api_url"])
	client, err := newClient(cfg, logging.Discard())
	if err != nil {
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	} else {
		if err := client.Health(ctx); err != nil {
			fmt.Printf("  ❌ Health check: %v\n", err)
			allOK = false
		} else {
			fmt.Println("  ✅ Health check OK")
		}
		if tasks, err := client.List(ctx); err != nil {
			fmt.Printf("  ❌ Task list: %v\n", err)
			allOK = false
		} else {
			fmt.Printf("  ✅ Task list OK (%d tasks)\n", len(tasks))
			if *verbose {
				for _, t := range tasks {
					fmt.Printf("    - [%d] %s\n", t.ID, t.Title)
				}
			}
		}
	}
	fmt.Println()

	fmt.Printf("Log directory: %s\n", cfg.LogDir)
	if info, err := os.Stat(cfg.LogDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (will be created on first tui run)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if !info.IsDir() {
		fmt.Println("  ❌ Error: path is not a directory")
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. Tasklist may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// configCommand prints an example config file, or the effective values.
func configCommand(loaded *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("tasklist config", flag.ContinueOnError)
	show := fs.Bool("show", false, "Show effective values and where they came from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if !*show {
		fmt.Print(config.ExampleConfig())
		return nil
	}
	if f := loaded.GetConfigFile(); f != "" {
		fmt.Printf("# config file: %s\n", f)
	}
	for _, field := range config.ConfigFields() {
		fmt.Printf("%-24s = %-28q # %s\n", field, loaded.Config.Value(field), loaded.Sources[field])
	}
	return nil
}

// tailCommand tails the latest TUI run log.
func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tasklist tail", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dir, err := workDir(cfg)
	if err != nil {
		return err
	}
	logDir, err := logging.FindLogDir(cfg.LogDir, dir)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Println("No log files found.")
		return nil
	}

	fmt.Printf("Tailing: %s\n", logPath)
	if *follow {
		fmt.Println("(Ctrl+C to stop)")
	}
	fmt.Println()

	err = logging.TailLog(ctx, os.Stdout, logPath, *n, *follow)
	if *follow && ctx.Err() != nil {
		return nil
	}
	return err
}

func versionCommand() error {
	fmt.Printf("tasklist version %s\n", Version)
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasklist - A to-do list client for a REST task API")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasklist [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui           Launch terminal UI (default command)")
	fmt.Fprintln(w, "  ls            List tasks")
	fmt.Fprintln(w, "  add <title>   Add a task")
	fmt.Fprintln(w, "  toggle <id>   Flip a task between open and completed")
	fmt.Fprintln(w, "  rm <id>       Delete a task after confirmation")
	fmt.Fprintln(w, "  serve         Serve the task list as a web page")
	fmt.Fprintln(w, "  api           Run an in-memory task API")
	fmt.Fprintln(w, "  doctor        Check config, API reachability, and log directory")
	fmt.Fprintln(w, "  config        Print an example config file")
	fmt.Fprintln(w, "  tail          Tail the latest TUI log file")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rm Options:")
	fmt.Fprintln(w, "  -y    Delete without asking")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve Options:")
	fmt.Fprintln(w, "  -addr string")
	fmt.Fprintln(w, "        Listen address (default from listen_addr)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Api Options:")
	fmt.Fprintln(w, "  -addr string")
	fmt.Fprintln(w, "        Listen address (default from api_url)")
	fmt.Fprintln(w, "  -atomic")
	fmt.Fprintln(w, "        Mount /atomic/* test-isolation endpoints (default when CI=true)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options:")
	fmt.Fprintln(w, "  -show")
	fmt.Fprintln(w, "        Show effective values and their sources")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
}
