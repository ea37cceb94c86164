package actions_test

import (
	"context"
	"testing"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/infra/actions"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_DefaultsToWarn(t *testing.T) {
	logger, hook := test.NewNullLogger()
	a, err := actions.NewLogFactory(logger).WithSettings("log", nil)
	require.NoError(t, err)

	require.NoError(t, a.Execute(context.Background(), "1.2.3.4", time.Hour, "login_failed", time.Hour, 10))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "threshold breached", entry.Message)
	assert.Equal(t, "1.2.3.4", entry.Data["token"])
	assert.Equal(t, "login_failed", entry.Data["metric"])
	assert.Equal(t, int64(10), entry.Data["limit"])
}

func TestLog_CustomLevelAndMessage(t *testing.T) {
	logger, hook := test.NewNullLogger()
	factory := actions.NewLogFactory(logger)
	settings := map[string]interface{}{"level": "error", "message": "login abuse"}
	require.NoError(t, factory.ValidateConfig(settings))

	a, err := factory.WithSettings("alert", settings)
	require.NoError(t, err)
	require.NoError(t, a.Execute(context.Background(), "1.2.3.4", time.Hour, "login_failed", time.Hour, 10))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "login abuse", entry.Message)
	assert.Equal(t, "alert", entry.Data["action"])
}

func TestLog_RejectsUnknownLevel(t *testing.T) {
	logger, _ := test.NewNullLogger()
	assert.Error(t, actions.NewLogFactory(logger).ValidateConfig(map[string]interface{}{"level": "loud"}))
}
