package actions

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	messages   []*kafka.Message
	deliverErr error
	produceErr error
	silent     bool
	flushed    bool
	closed     bool
}

func (p *fakeProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	if p.produceErr != nil {
		return p.produceErr
	}
	p.messages = append(p.messages, msg)
	if p.silent {
		return nil
	}
	delivered := *msg
	delivered.TopicPartition.Error = p.deliverErr
	deliveryChan <- &delivered
	return nil
}

func (p *fakeProducer) Flush(int) int {
	p.flushed = true
	return 0
}

func (p *fakeProducer) Close() {
	p.closed = true
}

func newKafkaFactory(p *fakeProducer) *ReportKafkaFactory {
	f := NewReportKafkaFactory()
	f.newProducer = func(KafkaConfig) (Producer, error) { return p, nil }
	f.clock = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }
	return f
}

var kafkaSettings = map[string]interface{}{
	"host":  "localhost",
	"port":  9092,
	"topic": "bans",
}

func TestReportKafka_ValidateConfig(t *testing.T) {
	f := NewReportKafkaFactory()
	assert.NoError(t, f.ValidateConfig(kafkaSettings))
	assert.ErrorContains(t, f.ValidateConfig(map[string]interface{}{"port": "9092", "topic": "bans"}), "host")
	assert.ErrorContains(t, f.ValidateConfig(map[string]interface{}{"host": "localhost", "topic": "bans"}), "port")
	assert.ErrorContains(t, f.ValidateConfig(map[string]interface{}{"host": "localhost", "port": "9092"}), "topic")
	assert.ErrorContains(t, f.ValidateConfig(map[string]interface{}{
		"host": "localhost", "port": "9092", "topic": "bans", "timeout": "-1s",
	}), "timeout")
}

func TestReportKafka_ProducesReport(t *testing.T) {
	p := &fakeProducer{}
	a, err := newKafkaFactory(p).WithSettings("report_kafka", kafkaSettings)
	require.NoError(t, err)

	require.NoError(t, a.Execute(context.Background(), "1.2.3.4", time.Hour, "login_failed", time.Hour, 10))
	require.Len(t, p.messages, 1)

	msg := p.messages[0]
	assert.Equal(t, "bans", *msg.TopicPartition.Topic)
	assert.Equal(t, []byte("1.2.3.4"), msg.Key)

	var report Report
	require.NoError(t, json.Unmarshal(msg.Value, &report))
	assert.Equal(t, Report{
		Token:      "1.2.3.4",
		Duration:   3600,
		Metric:     "login_failed",
		Window:     3600,
		Limit:      10,
		ReportedAt: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}, report)

	a.(*ReportKafka).Close()
	assert.True(t, p.flushed)
	assert.True(t, p.closed)
}

func TestReportKafka_DeliveryFailure(t *testing.T) {
	p := &fakeProducer{deliverErr: errors.New("broker down")}
	a, err := newKafkaFactory(p).WithSettings("report_kafka", kafkaSettings)
	require.NoError(t, err)

	err = a.Execute(context.Background(), "1.2.3.4", time.Hour, "login_failed", time.Hour, 10)
	assert.ErrorContains(t, err, "broker down")
}

func TestReportKafka_ProduceFailure(t *testing.T) {
	p := &fakeProducer{produceErr: errors.New("queue full")}
	a, err := newKafkaFactory(p).WithSettings("report_kafka", kafkaSettings)
	require.NoError(t, err)

	err = a.Execute(context.Background(), "1.2.3.4", time.Hour, "login_failed", time.Hour, 10)
	assert.ErrorContains(t, err, "queue full")
}

func TestReportKafka_UnconfirmedDeliveryHonoursContext(t *testing.T) {
	p := &fakeProducer{silent: true}
	a, err := newKafkaFactory(p).WithSettings("report_kafka", kafkaSettings)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = a.Execute(ctx, "1.2.3.4", time.Hour, "login_failed", time.Hour, 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReportKafka_DefaultTimeout(t *testing.T) {
	a, err := newKafkaFactory(&fakeProducer{}).WithSettings("report_kafka", kafkaSettings)
	require.NoError(t, err)
	assert.Equal(t, DefaultKafkaTimeout, a.(*ReportKafka).cfg.Timeout)
}

func TestReportKafka_UnconfirmedDeliveryIsBoundedWithoutDeadline(t *testing.T) {
	p := &fakeProducer{silent: true}
	a, err := newKafkaFactory(p).WithSettings("report_kafka", map[string]interface{}{
		"host":    "localhost",
		"port":    9092,
		"topic":   "bans",
		"timeout": "20ms",
	})
	require.NoError(t, err)

	start := time.Now()
	err = a.Execute(context.Background(), "1.2.3.4", time.Hour, "login_failed", time.Hour, 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, p.messages, 1)
}
