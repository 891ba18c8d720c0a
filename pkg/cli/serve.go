package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/buildhook/pkg/cli/config"
	controller "github.com/m-mizutani/buildhook/pkg/controller/http"
	"github.com/m-mizutani/buildhook/pkg/usecase"
	"github.com/m-mizutani/buildhook/pkg/utils/errutil"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		configPath string
		serverCfg  config.Server
		triggerCfg config.Trigger
		buildCfg   config.Build
		notifyCfg  config.Notify
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Optional TOML config file",
			Destination: &configPath,
			Sources:     cli.EnvVars("BUILDHOOK_CONFIG"),
		},
	}
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, triggerCfg.Flags()...)
	flags = append(flags, buildCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook listener",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if configPath != "" {
				file, err := config.LoadFile(configPath)
				if err != nil {
					return err
				}
				if err := file.Apply(c.IsSet, &serverCfg, &triggerCfg, &buildCfg, &notifyCfg); err != nil {
					return err
				}
			}

			rule, err := triggerCfg.TriggerRule()
			if err != nil {
				return err
			}

			runner, err := buildCfg.NewRunner()
			if err != nil {
				return err
			}
			if _, err := os.Stat(runner.Script()); err != nil {
				logger.Warn("Build script is not accessible yet, builds will fail until it exists",
					"script", runner.Script(),
					"error", err,
				)
			}

			sentryEnabled, err := notifyCfg.ConfigureSentry()
			if err != nil {
				return err
			}
			defer errutil.Flush(2 * time.Second)

			logger.Info("Starting buildhook server",
				slog.Any("server", serverCfg),
				slog.String("target_repo", rule.Repository),
				slog.String("branch_policy", rule.Policy.String()),
				slog.Any("build", buildCfg),
				slog.Any("notify", notifyCfg),
				slog.Bool("sentry", sentryEnabled),
			)

			ucOpts := []usecase.Option{
				usecase.WithLaunchDelay(buildCfg.LaunchDelay),
			}
			if buildCfg.SerializeBuilds {
				ucOpts = append(ucOpts, usecase.WithSerializedBuilds())
			}
			if notifier := notifyCfg.Notifier(); notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
			}
			webhookUC := usecase.NewWebhook(rule, runner, ucOpts...)

			server, err := controller.NewServer(
				ctx,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(serverCfg.WebhookSecret),
				controller.WithTriggeredMessage(serverCfg.TriggeredMessage),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			serverErr := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-serverErr:
				return err
			}

			// Running builds are not awaited; they belong to the build script
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
