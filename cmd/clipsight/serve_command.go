package main

import (
	"context"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"clipsight/internal/logging"
	"clipsight/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the validation and extraction HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			validator, err := ctx.newValidator(false)
			if err != nil {
				return err
			}
			extractor, err := ctx.newExtractor(false)
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if bind == "" {
				bind = cfg.Server.Bind
			}

			// Serve runs are long-lived, so they also log to a session file
			// under the configured log directory.
			logFile, err := logging.OpenLogFile(filepath.Join(cfg.Paths.LogDir, "serve.log"))
			if err != nil {
				return err
			}
			defer logFile.Close()
			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: io.MultiWriter(cmd.ErrOrStderr(), logFile),
			})
			if err != nil {
				return err
			}

			srv := server.New(server.Config{
				Bind:      bind,
				Store:     store,
				Validator: validator,
				Extractor: extractor,
				Logger:    logger,
			})

			runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(runCtx)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (defaults to server.bind from config)")
	return cmd
}
