package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/NeuralTrust/banhammer/pkg/domain/counter"
	"github.com/NeuralTrust/banhammer/pkg/infra/actions"
	"github.com/NeuralTrust/banhammer/pkg/infra/cache"
	infraLogger "github.com/NeuralTrust/banhammer/pkg/infra/logger"
	"github.com/NeuralTrust/banhammer/pkg/infra/store"
	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	var token, metric string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the redis keys kept for a token and metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := infraLogger.NewLogger("inspect")
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			thresholds, ok := cfg.Bans[metric]
			if !ok {
				return fmt.Errorf("metric %q is not configured", metric)
			}
			if !cfg.Redis.Enabled {
				return errors.New("inspect needs redis, enable it in the redis config section")
			}

			client, err := cache.NewClient(cache.Config{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				TLS:      cfg.Redis.TLS,
			}, logger)
			if err != nil {
				return err
			}
			defer client.RedisClient().Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Connected to Redis")

			return inspect(
				cmd.Context(),
				cmd.OutOrStdout(),
				store.NewRedisStore(client.RedisClient(), nil),
				actions.NewBlocker(client, nil),
				token,
				metric,
				len(thresholds),
			)
		},
	}
	cmd.Flags().StringVar(&token, "token", "1234", "token to inspect")
	cmd.Flags().StringVar(&metric, "metric", "login_failed", "metric to inspect")
	return cmd
}

func inspect(
	ctx context.Context,
	out io.Writer,
	inspector store.Inspector,
	blocker actions.Blocker,
	token string,
	metric string,
	thresholds int,
) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tEVENTS\tTTL")
	for i := 0; i < thresholds; i++ {
		info, err := inspector.Inspect(ctx, counter.Key(token, metric, i))
		if err != nil {
			return err
		}
		ttl := "-"
		if info.TTL >= 0 {
			ttl = info.TTL.String()
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", info.Key, info.Events, ttl)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	blocked, err := blocker.IsBlocked(ctx, token)
	if err != nil {
		return err
	}
	if !blocked {
		fmt.Fprintf(out, "%s is not blocked\n", token)
		return nil
	}
	left, err := blocker.Remaining(ctx, token)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is blocked for %s\n", token, left)
	return nil
}
