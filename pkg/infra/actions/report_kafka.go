package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/domain/action"
	"github.com/confluentinc/confluent-kafka-go/kafka"
)

const (
	ReportKafkaType = "report_kafka"

	// DefaultKafkaTimeout bounds the wait for a delivery report.
	DefaultKafkaTimeout = 5 * time.Second
)

type KafkaConfig struct {
	Host    string        `mapstructure:"host"`
	Port    string        `mapstructure:"port"`
	Topic   string        `mapstructure:"topic"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Producer is the subset of *kafka.Producer the action needs.
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

type ReportKafkaFactory struct {
	newProducer func(conf KafkaConfig) (Producer, error)
	clock       func() time.Time
}

func NewReportKafkaFactory() *ReportKafkaFactory {
	return &ReportKafkaFactory{
		newProducer: func(conf KafkaConfig) (Producer, error) {
			return kafka.NewProducer(&kafka.ConfigMap{
				"bootstrap.servers": fmt.Sprintf("%s:%s", conf.Host, conf.Port),
			})
		},
		clock: time.Now,
	}
}

func (f *ReportKafkaFactory) Type() string {
	return ReportKafkaType
}

func (f *ReportKafkaFactory) ValidateConfig(settings map[string]interface{}) error {
	var conf KafkaConfig
	if err := decodeSettings(settings, &conf); err != nil {
		return fmt.Errorf("invalid kafka config: %w", err)
	}
	if conf.Host == "" {
		return errors.New("kafka host is required")
	}
	if conf.Port == "" {
		return errors.New("kafka port is required")
	}
	if conf.Topic == "" {
		return errors.New("kafka topic is required")
	}
	if conf.Timeout < 0 {
		return errors.New("kafka timeout must not be negative")
	}
	return nil
}

func (f *ReportKafkaFactory) WithSettings(name string, settings map[string]interface{}) (action.Action, error) {
	var conf KafkaConfig
	if err := decodeSettings(settings, &conf); err != nil {
		return nil, fmt.Errorf("invalid kafka config: %w", err)
	}
	if conf.Timeout <= 0 {
		conf.Timeout = DefaultKafkaTimeout
	}
	producer, err := f.newProducer(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &ReportKafka{name: name, cfg: conf, producer: producer, clock: f.clock}, nil
}

// ReportKafka produces the breach report to a topic, keyed by token, and waits
// for delivery at most cfg.Timeout.
type ReportKafka struct {
	name     string
	cfg      KafkaConfig
	producer Producer
	clock    func() time.Time
}

func (a *ReportKafka) Name() string {
	return a.name
}

func (a *ReportKafka) Execute(
	ctx context.Context,
	token string,
	duration time.Duration,
	metric string,
	window time.Duration,
	limit int64,
) error {
	if a.producer == nil {
		return errors.New("kafka producer is not initialized")
	}
	data, err := json.Marshal(newReport(token, duration, metric, window, limit, a.clock()))
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	deliveryChan := make(chan kafka.Event, 1)
	err = a.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &a.cfg.Topic, Partition: kafka.PartitionAny},
		Key:            []byte(token),
		Value:          data,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	select {
	case e := <-deliveryChan:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event: %v", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("delivery not confirmed: %w", ctx.Err())
	}
}

func (a *ReportKafka) Close() {
	if a.producer != nil {
		a.producer.Flush(5000)
		a.producer.Close()
	}
}
