package actions

import (
	"context"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/domain/action"
	"github.com/sirupsen/logrus"
)

const LogType = "log"

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Message string `mapstructure:"message"`
}

type LogFactory struct {
	logger *logrus.Logger
}

func NewLogFactory(logger *logrus.Logger) *LogFactory {
	return &LogFactory{logger: logger}
}

func (f *LogFactory) Type() string {
	return LogType
}

func (f *LogFactory) ValidateConfig(settings map[string]interface{}) error {
	var conf LogConfig
	if err := decodeSettings(settings, &conf); err != nil {
		return err
	}
	if conf.Level != "" {
		if _, err := logrus.ParseLevel(conf.Level); err != nil {
			return err
		}
	}
	return nil
}

func (f *LogFactory) WithSettings(name string, settings map[string]interface{}) (action.Action, error) {
	var conf LogConfig
	if err := decodeSettings(settings, &conf); err != nil {
		return nil, err
	}
	level := logrus.WarnLevel
	if conf.Level != "" {
		parsed, err := logrus.ParseLevel(conf.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}
	message := conf.Message
	if message == "" {
		message = "threshold breached"
	}

	return action.New(name, func(
		_ context.Context,
		token string,
		duration time.Duration,
		metric string,
		window time.Duration,
		limit int64,
	) error {
		f.logger.WithFields(logrus.Fields{
			"action":          name,
			"token":           token,
			"metric":          metric,
			"window":          window.String(),
			"limit":           limit,
			"action_duration": duration.String(),
		}).Log(level, message)
		return nil
	}), nil
}
