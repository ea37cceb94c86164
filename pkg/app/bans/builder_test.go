package bans_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/app/bans"
	"github.com/NeuralTrust/banhammer/pkg/config"
	"github.com/NeuralTrust/banhammer/pkg/domain/action"
	domain "github.com/NeuralTrust/banhammer/pkg/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type locator map[string]action.Action

func (l locator) GetAction(name string) (action.Action, error) {
	if name == "broken" {
		return nil, errors.New("kafka host is required")
	}
	a, ok := l[name]
	if !ok {
		return nil, domain.ErrUnknownAction
	}
	return a, nil
}

func noop(name string) action.Action {
	return action.New(name, func(context.Context, string, time.Duration, string, time.Duration, int64) error {
		return nil
	})
}

func defaultLocator() locator {
	return locator{
		"block_local":    noop("block_local"),
		"report_central": noop("report_central"),
		"record_local":   noop("record_local"),
	}
}

func TestBuilder_Build(t *testing.T) {
	cfg := config.BansConfig{
		"login_failed": {
			{Window: time.Hour, Limit: 10, Actions: []string{"block_local"}, ActionDuration: time.Hour},
			{Window: time.Hour, Limit: 100, Actions: []string{"report_central", "block_local"}, ActionDuration: 24 * time.Hour},
		},
		"login_successful": {
			{Window: time.Minute, Limit: 10, Actions: []string{"record_local"}, ActionDuration: time.Hour},
		},
	}

	l, err := bans.NewBuilder(defaultLocator()).Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"login_failed", "login_successful"}, l.Metrics())

	rung, err := l.Threshold("login_failed", 1)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, rung.Window)
	assert.Equal(t, int64(100), rung.Limit)
	assert.Equal(t, 24*time.Hour, rung.ActionDuration)
	assert.Equal(t, []string{"report_central", "block_local"}, rung.ActionNames())
}

func TestBuilder_UnknownAction(t *testing.T) {
	cfg := config.BansConfig{
		"login_failed": {
			{Window: time.Hour, Limit: 10, Actions: []string{"block_local"}},
			{Window: time.Hour, Limit: 100, Actions: []string{"send_email"}},
		},
	}

	_, err := bans.NewBuilder(defaultLocator()).Build(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownAction)

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "login_failed", cfgErr.Metric)
	assert.Equal(t, 1, cfgErr.Threshold)
	assert.Contains(t, cfgErr.Error(), "send_email")
}

func TestBuilder_ActionBuildFailure(t *testing.T) {
	cfg := config.BansConfig{
		"login_failed": {{Window: time.Hour, Limit: 10, Actions: []string{"broken"}}},
	}

	_, err := bans.NewBuilder(defaultLocator()).Build(cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
	assert.ErrorContains(t, err, "kafka host is required")
}

func TestBuilder_InvalidThreshold(t *testing.T) {
	cfg := config.BansConfig{
		"login_failed": {{Window: 0, Limit: 10, Actions: []string{"block_local"}}},
	}

	_, err := bans.NewBuilder(defaultLocator()).Build(cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
	assert.True(t, domain.IsConfigurationError(err))
}
