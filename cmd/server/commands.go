package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-analytics/internal/analytics"
	"github.com/phrazzld/scry-analytics/internal/api/schema"
	"github.com/phrazzld/scry-analytics/internal/platform/database"
	"github.com/phrazzld/scry-analytics/internal/platform/logger"
	"github.com/phrazzld/scry-analytics/internal/service/auth"
	"github.com/spf13/cobra"
)

func newRootCmd(load configLoader) *cobra.Command {
	root := &cobra.Command{
		Use:          "scry-analytics",
		Short:        "Study session scoring and learning analytics",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newReportCmd(load),
		newCleanupCmd(load),
		newTokenCmd(load),
	)
	return root
}

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap(ctx, load, os.Stdout)
			if err != nil {
				return err
			}
			defer app.cleanup()

			return app.Run(ctx)
		},
	}
}

func newMigrateCmd(load configLoader) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log := logger.SetupWithWriter(cfg.Server, cmd.ErrOrStderr())

			ctx := cmd.Context()
			db, err := database.Open(ctx, cfg.Database, log)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = db.Close() }()

			if status {
				statuses, err := database.Status(ctx, db, cfg.Database.Driver, log)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tAPPLIED\tMIGRATION")
				for _, s := range statuses {
					fmt.Fprintf(w, "%d\t%t\t%s\n", s.Version, s.Applied, s.Path)
				}
				return w.Flush()
			}

			applied, err := database.Migrate(ctx, db, cfg.Database.Driver, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", applied)
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "list migrations and whether they are applied")
	return cmd
}

func newReportCmd(load configLoader) *cobra.Command {
	var (
		rangeFlag string
		validate  bool
	)

	cmd := &cobra.Command{
		Use:   "report <user-id>",
		Short: "Print a user's analytics report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}
			rng, err := analytics.ParseTimeRange(rangeFlag)
			if err != nil {
				return err
			}

			app, err := bootstrap(cmd.Context(), load, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.cleanup()

			report, err := app.studyService.Dashboard(cmd.Context(), userID, rng)
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}

			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
			if validate {
				if err := schema.ValidateDashboard(data); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().StringVar(&rangeFlag, "range", string(analytics.RangeAll), "time range: week, month, quarter or all")
	cmd.Flags().BoolVar(&validate, "validate", false, "check the report against the dashboard JSON schema")
	return cmd
}

func newCleanupCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete card outcomes older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap(cmd.Context(), load, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.cleanup()

			removed, err := app.studyService.CleanupOutcomes(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d card outcomes\n", removed)
			return nil
		},
	}
}

func newTokenCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue an access token for a user, for development",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}

			cfg, err := load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log := logger.SetupWithWriter(cfg.Server, cmd.ErrOrStderr())

			jwtService, err := auth.NewJWTService(cfg.Auth)
			if err != nil {
				return err
			}
			token, err := jwtService.GenerateToken(logger.WithLogger(cmd.Context(), log), userID)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}
