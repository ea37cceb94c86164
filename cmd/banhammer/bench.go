package main

import (
	"fmt"

	"github.com/NeuralTrust/banhammer/pkg/bench"
	"github.com/NeuralTrust/banhammer/pkg/dependency_container"
	"github.com/NeuralTrust/banhammer/pkg/engine"
	infraLogger "github.com/NeuralTrust/banhammer/pkg/infra/logger"
	"github.com/spf13/cobra"
)

func benchCmd() *cobra.Command {
	opts := bench.Options{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time incr, peek or status calls against the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := infraLogger.NewLogger("bench")
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
				Cfg:    cfg,
				Logger: logger,
			})
			if err != nil {
				return err
			}
			defer container.Close()

			stats, err := bench.NewRunner(container.Engine).Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s/%s: %s\n", opts.Operation, opts.Metric, opts.Token, stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Operation, "op", engine.OperationIncr, "operation to time: incr, peek or status")
	cmd.Flags().StringVar(&opts.Token, "token", "1234", "token to count against")
	cmd.Flags().StringVar(&opts.Metric, "metric", "login_failed", "metric to count against")
	cmd.Flags().IntVar(&opts.Threshold, "threshold", 0, "threshold index for incr and peek")
	cmd.Flags().IntVarP(&opts.Iterations, "iterations", "n", 1000, "number of calls")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 1, "calls in flight")
	return cmd
}
