package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/NeuralTrust/banhammer/pkg/dependency_container"
	infraLogger "github.com/NeuralTrust/banhammer/pkg/infra/logger"
	"github.com/NeuralTrust/banhammer/pkg/infra/prometheus"
	"github.com/NeuralTrust/banhammer/pkg/server"
	"github.com/NeuralTrust/banhammer/pkg/server/router"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := infraLogger.NewLogger("server")
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if cfg.Metrics.Enabled {
				prometheus.Initialize(prometheus.MetricsConfig{
					EnableStoreLatency: cfg.Metrics.EnableStoreLatency,
					EnableProcess:      cfg.Metrics.EnableProcess,
				})
			}

			container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
				Cfg:    cfg,
				Logger: logger,
			})
			if err != nil {
				return err
			}
			defer container.Close()

			srv := server.NewAPIServer(server.APIServerDI{
				Config: cfg,
				Logger: logger,
				Routers: []router.ServerRouter{
					router.NewAPIRouter(container.MiddlewareTransport, container.HandlerTransport),
				},
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Run()
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			logger.Info("shutting down server...")
			if err := srv.Shutdown(); err != nil {
				logger.WithError(err).Error("error shutting down server")
				return err
			}
			logger.Info("server gracefully stopped")
			return nil
		},
	}
}
