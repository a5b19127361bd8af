package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ragchat/internal/config"
	"ragchat/internal/handler"
	"ragchat/internal/provider"
	"ragchat/internal/session"
)

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func buildController(cfg *config.Config) (*session.Controller, error) {
	p, err := provider.New(cfg.Provider)
	if err != nil {
		return nil, err
	}
	p = provider.WithRetry(p, cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay())
	return session.NewController(p, cfg), nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctrl, err := buildController(cfg)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:    cfg.Server.Addr,
				Handler: handler.New(ctrl, cfg.Server),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Server.Addr).Str("provider", cfg.Provider.Name).Msg("server listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				log.Info().Msg("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
