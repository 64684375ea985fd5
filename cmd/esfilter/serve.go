package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atomic77/esfilter/pkg/server"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	cfg := server.Config{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.DbLocation = root.DbLocation
			return runServe(cmd.Context(), root, cfg)
		},
	}
	cmd.Flags().StringVar(&cfg.ListenAddr, "listen", "", "address to listen on")
	cmd.Flags().IntVar(&cfg.Port, "port", 8080, "port to listen on")
	cmd.Flags().BoolVar(&cfg.Debug, "debug", false, "log every request body")
	return cmd
}

func runServe(ctx context.Context, root *rootOptions, cfg server.Config) error {
	log, err := root.logger()
	if err != nil {
		return err
	}
	defer log.Sync()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := server.New(cfg, log)
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Close()
	log.Info("server configured", zap.String("db", cfg.DbLocation), zap.Int("port", cfg.Port), zap.Bool("debug", cfg.Debug))

	err = s.ListenAndServe(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
