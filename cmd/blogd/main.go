package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quewww/blog/internal/app"
	"github.com/quewww/blog/internal/infra/config"
	"github.com/quewww/blog/internal/infra/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "blogd",
		Short:        "Multi-user blog server",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file; environment variables override it")

	if usage, err := config.Usage(&app.Config{}, "Environment variables:"); err == nil {
		root.SetUsageTemplate(root.UsageTemplate() + "\n" + usage + "\n")
	}

	load := func(cmd *cobra.Command) (app.Config, error) {
		var cfg app.Config

		if err := config.Parse(cmd.Context(), &cfg, configPath); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}

		logging.Configure(cmd.Context(), cfg.Log, app.Name)

		return cfg, nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}

			return serve(cmd.Context(), cfg)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "initdb",
		Short: "Create the database tables and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}

			return initDB(cmd.Context(), cfg)
		},
	})

	return root
}

func serve(ctx context.Context, cfg app.Config) (err error) {
	log := logging.GetLogger("cmd.blogd")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.InfoContext(ctx, "shutdown")
		}
	}()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("new app: %w", err)
	}

	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	return nil
}

func initDB(ctx context.Context, cfg app.Config) (err error) {
	log := logging.GetLogger("cmd.blogd")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", "err", err)
		} else {
			log.InfoContext(ctx, "database initialized", "driver", cfg.Database.Driver)
		}
	}()

	if err := app.InitDB(ctx, cfg.Database); err != nil {
		return fmt.Errorf("init db: %w", err)
	}

	return nil
}
