package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"varafleet/internal/domain/model"
	"varafleet/internal/domain/port/driven"
)

func runCmd() *cobra.Command {
	var (
		name       string
		language   string
		packPath   string
		controller string
		repos      []string
		listFile   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a query and monitor it to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				targets, err := parseRepositories(repos, listFile)
				if err != nil {
					return err
				}

				if controller == "" {
					controller = a.cfg.ControllerRepo
				}
				if controller == "" {
					return fmt.Errorf("no controller repository: pass --controller or set VARAFLEET_CONTROLLER_REPO")
				}

				pack, err := os.ReadFile(packPath)
				if err != nil {
					return fmt.Errorf("reading query pack %s: %w", packPath, err)
				}

				if name == "" {
					name = strings.TrimSuffix(filepath.Base(packPath), filepath.Ext(packPath))
				}

				if err := a.orchestrator.SubmitQuery(ctx, model.QuerySubmission{
					Name:           name,
					Language:       language,
					ControllerRepo: controller,
					Repositories:   targets,
					QueryPack:      pack,
				}); err != nil {
					return err
				}

				// Monitoring runs detached; block here so the process
				// survives until the run is classified and downloads finish.
				a.orchestrator.Wait()
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "run name (defaults to the query pack file name)")
	cmd.Flags().StringVar(&language, "language", "", "query language, e.g. javascript")
	cmd.Flags().StringVar(&packPath, "query-pack", "", "path to the query pack bundle")
	cmd.Flags().StringVar(&controller, "controller", "", "controller repository (owner/repo)")
	cmd.Flags().StringSliceVar(&repos, "repos", nil, "target repositories (owner/repo, comma-separated)")
	cmd.Flags().StringVar(&listFile, "repo-list", "", "file with one target repository per line")
	_ = cmd.MarkFlagRequired("language")
	_ = cmd.MarkFlagRequired("query-pack")

	return cmd
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List tracked runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				entries, err := a.history.ListAll(ctx)
				if err != nil {
					return err
				}
				a.notifier.renderHistory(entries)
				return nil
			})
		},
	}
}

func downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <storage-key>",
		Short: "Re-run the auto-download pass for a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				summary, err := a.store.ReadSummary(args[0])
				if err != nil {
					return err
				}
				return a.orchestrator.AutoDownload(ctx, *summary)
			})
		},
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <storage-key>",
		Short: "Delete a tracked run and its stored results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return removeRun(ctx, a.history, a.store, args[0])
			})
		},
	}
}

// removeRun deletes a run's history row and its stored results. A missing
// history row is tolerated so an orphaned run directory can still be cleaned
// up.
func removeRun(ctx context.Context, history driven.HistoryStore, store driven.ResultStore, storageKey string) error {
	if err := history.Remove(ctx, storageKey); err != nil && !errors.Is(err, driven.ErrRunNotFound) {
		return err
	}
	return store.RemoveRun(storageKey)
}
