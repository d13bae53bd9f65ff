// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ViniZap4/stride-server/auth"
	"github.com/ViniZap4/stride-server/config"
	httpapi "github.com/ViniZap4/stride-server/http"
	"github.com/ViniZap4/stride-server/mirror"
	"github.com/ViniZap4/stride-server/trash"
	"github.com/ViniZap4/stride-server/ws"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "stride",
		Short:         "Stride notes and productivity server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults to $STRIDE_CONFIG)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the remote database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(configPath)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("no database_url configured")
			}
			if err := mirror.Migrate(cfg.DatabaseURL); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "export DIR",
		Short: "Write the folder tree as markdown files under DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return offline(configPath, func(rt *services) error {
				if err := rt.org.Export(args[0]); err != nil {
					return err
				}
				log.Info().Str("dir", args[0]).Msg("tree exported")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "import DIR",
		Short: "Replace the folder tree with the markdown files under DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return offline(configPath, func(rt *services) error {
				if err := rt.org.Import(args[0]); err != nil {
					return err
				}
				log.Info().Str("dir", args[0]).Msg("tree imported")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Remove trash items past the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return offline(configPath, func(rt *services) error {
				log.Info().Int("purged", rt.org.PurgeTrash()).Msg("trash purged")
				return nil
			})
		},
	})

	return cmd
}

// setup loads the configuration and configures the global logger.
func setup(configPath string) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return cfg, fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return cfg, nil
}

// offline runs fn against the local store without starting the API.
func offline(configPath string, fn func(*services) error) error {
	cfg, err := setup(configPath)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	rt, err := open(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt)
}

func serve(configPath string) error {
	cfg, err := setup(configPath)
	if err != nil {
		return err
	}
	if cfg.Password == config.Default().Password {
		log.Warn().Msg("using the default password; set STRIDE_PASSWORD")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(log.Logger)
	go hub.Run(ctx)

	rt, err := open(ctx, cfg, hub.Broadcast)
	if err != nil {
		return err
	}
	defer rt.Close()

	go trash.NewSweeper(rt.org.PurgeTrash, cfg.Trash.Sweep, log.Logger).Run(ctx)

	opts := httpapi.Options{
		Auth:        auth.New(cfg.Password, cfg.Secret(), auth.DefaultTTL),
		Hub:         hub,
		Metrics:     rt.metrics,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log.Logger,
	}
	if rt.mirror != nil {
		opts.Accounts = rt.accounts
		opts.Mirror = rt.mirror
	}
	app := httpapi.NewServer(rt.org, opts).App()

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("data", cfg.DataPath).Bool("sync", rt.mirror != nil).Msg("server starting")
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
