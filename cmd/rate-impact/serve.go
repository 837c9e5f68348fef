package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/rate-impact/internal/config"
	"github.com/iwvelando/rate-impact/internal/lead"
	"github.com/iwvelando/rate-impact/internal/presets"
	"github.com/iwvelando/rate-impact/internal/server"
	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	shutdownTimeout   = 15 * time.Second
	leadClientTimeout = 20 * time.Second
)

type serveFlags struct {
	serverConfig string
	address      string
	maxBodySize  string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the projection and lead capture API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, root, flags)
		},
	}
	cmd.Flags().StringVar(&flags.serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&flags.address, "address", "", "listen address override (e.g. :8080)")
	cmd.Flags().StringVar(&flags.maxBodySize, "max-body-size", "", "request body limit override (e.g. 64K, 1M)")
	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions, flags *serveFlags) error {
	const op = "main.runServe"

	srvCfg, err := server.LoadConfig(flags.serverConfig)
	if err != nil {
		return err
	}
	if flags.address != "" {
		srvCfg.Address = flags.address
	}
	if flags.maxBodySize != "" {
		size, err := server.ParseSize(flags.maxBodySize)
		if err != nil {
			return err
		}
		srvCfg.SetBodySizeBytes(size)
	}

	logger, err := initializeLogger(srvCfg.Logging, root.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	env, err := config.LoadEnvironment(config.DefaultEnvFiles...)
	if err != nil {
		return err
	}

	redisURL := srvCfg.Presets.RedisURL
	if redisURL == "" {
		redisURL = env.PresetsRedisURL
	}

	handler := server.NewHandler(logger, srvCfg.BodySizeBytes(), version, server.Options{
		Presets:     presets.NewStore(cmd.Context(), redisURL, srvCfg.Presets.KeyPrefix, logger),
		Leads:       newSubmitter(env, logger),
		BookingURL:  srvCfg.BookingURL,
		CORSOrigins: srvCfg.CORSOrigins,
	})

	httpSrv := &http.Server{
		Addr:         srvCfg.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", op),
			zap.String("address", srvCfg.Address),
			zap.Int64("maxBodySize", srvCfg.BodySizeBytes()),
			zap.String("version", version),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server",
		zap.String("op", op),
	)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// newSubmitter wires whichever lead collaborators the environment configures.
// A missing collaborator is skipped on every submission.
func newSubmitter(env config.Environment, logger *zap.Logger) *lead.Submitter {
	const op = "main.newSubmitter"
	client := &http.Client{Timeout: leadClientTimeout}

	var crm lead.CRM
	zoho, err := lead.NewZohoCRM(lead.ZohoConfig{
		DC:           env.ZohoDC,
		ClientID:     env.ZohoClientID,
		ClientSecret: env.ZohoClientSecret,
		RefreshToken: env.ZohoRefreshToken,
	}, lead.WithZohoHTTPClient(client))
	if err != nil {
		logger.Warn("lead CRM disabled",
			zap.String("op", op),
			zap.Error(err),
		)
	} else {
		crm = zoho
	}

	var notifier lead.Notifier
	resend, err := lead.NewResendNotifier(lead.ResendConfig{
		APIKey: env.ResendAPIKey,
		From:   env.FromEmail,
		To:     env.TeamNotifyEmail,
	}, lead.WithResendHTTPClient(client))
	if err != nil {
		logger.Warn("lead notifications disabled",
			zap.String("op", op),
			zap.Error(err),
		)
	} else {
		notifier = resend
	}

	return lead.NewSubmitter(crm, notifier, logger)
}
