// Command varafleet runs CodeQL variant-analysis queries across a fleet of
// repositories and manages the local results of past runs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"varafleet/internal/adapter/driven/download"
	githubadapter "varafleet/internal/adapter/driven/github"
	sqliteadapter "varafleet/internal/adapter/driven/sqlite"
	storageadapter "varafleet/internal/adapter/driven/storage"
	"varafleet/internal/application"
	"varafleet/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "varafleet",
	Short: "Run one CodeQL query against many repositories",
	Long: `varafleet submits a query pack to GitHub's multi-repository
variant-analysis API, monitors the remote run, and keeps a local record of
every run: a normalized per-repository result summary plus the small result
artifacts, fetched automatically under configurable size and count caps.`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registerCommands()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func registerCommands() {
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(downloadCmd())
	rootCmd.AddCommand(rmCmd())
}

// app bundles the wired adapters for one command invocation.
type app struct {
	cfg          *config.Config
	history      *sqliteadapter.HistoryRepo
	store        *storageadapter.Store
	orchestrator *application.Orchestrator
	notifier     *consoleNotifier
}

// withApp loads configuration, opens the database, wires all adapters, and
// runs fn. The database is closed when fn returns.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}

	store, err := storageadapter.NewStore(cfg.StorageRoot)
	if err != nil {
		return err
	}

	history := sqliteadapter.NewHistoryRepo(db)
	notifier := newConsoleNotifier(os.Stdout, history)

	client := githubadapter.NewClient()
	monitor := githubadapter.NewMonitor(client, cfg.PollInterval)
	engine := download.NewEngine(store, cfg.DownloadConcurrency)
	creds := application.NewStaticCredentialProvider(cfg.GitHubToken)

	orchestrator := application.NewOrchestrator(
		creds,
		client,
		monitor,
		history,
		store,
		engine,
		notifier,
		cfg.MaxAutoDownloadSize,
		cfg.MaxAutoDownloadCount,
	)

	return fn(ctx, &app{
		cfg:          cfg,
		history:      history,
		store:        store,
		orchestrator: orchestrator,
		notifier:     notifier,
	})
}

// parseRepositories merges the --repos flag with an optional newline-delimited
// list file.
func parseRepositories(repos []string, listFile string) ([]string, error) {
	var targets []string
	for _, nwo := range repos {
		if nwo = strings.TrimSpace(nwo); nwo != "" {
			targets = append(targets, nwo)
		}
	}

	if listFile != "" {
		data, err := os.ReadFile(listFile)
		if err != nil {
			return nil, fmt.Errorf("reading repository list %s: %w", listFile, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
				targets = append(targets, line)
			}
		}
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no target repositories: pass --repos or --repo-list")
	}

	return targets, nil
}
