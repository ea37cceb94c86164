package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/domain/action"
	"github.com/NeuralTrust/banhammer/pkg/infra/breaker"
	"github.com/NeuralTrust/banhammer/pkg/infra/httpx"
)

const ReportCentralType = "report_central"

type CentralConfig struct {
	URL     string            `mapstructure:"url"`
	Timeout time.Duration     `mapstructure:"timeout"`
	Headers map[string]string `mapstructure:"headers"`
	Breaker breaker.Config    `mapstructure:"breaker"`
}

type ReportCentralFactory struct {
	client httpx.Client
	clock  func() time.Time
}

func NewReportCentralFactory(client httpx.Client) *ReportCentralFactory {
	if client == nil {
		client = httpx.NewFastHTTPClient(httpx.WithUserAgent("banhammer"))
	}
	return &ReportCentralFactory{client: client, clock: time.Now}
}

func (f *ReportCentralFactory) Type() string {
	return ReportCentralType
}

func (f *ReportCentralFactory) ValidateConfig(settings map[string]interface{}) error {
	var conf CentralConfig
	if err := decodeSettings(settings, &conf); err != nil {
		return err
	}
	if conf.URL == "" {
		return errors.New("report_central url is required")
	}
	u, err := url.Parse(conf.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("report_central url %q must be an absolute http(s) url", conf.URL)
	}
	if conf.Timeout < 0 {
		return errors.New("report_central timeout must not be negative")
	}
	return nil
}

func (f *ReportCentralFactory) WithSettings(name string, settings map[string]interface{}) (action.Action, error) {
	var conf CentralConfig
	if err := decodeSettings(settings, &conf); err != nil {
		return nil, err
	}
	if conf.Timeout == 0 {
		conf.Timeout = httpx.DefaultTimeout
	}
	return &ReportCentral{
		name:    name,
		cfg:     conf,
		client:  f.client,
		breaker: breaker.FromConfig(name, conf.Breaker),
		clock:   f.clock,
	}, nil
}

// ReportCentral posts the breach report as JSON to a central collector.
type ReportCentral struct {
	name    string
	cfg     CentralConfig
	client  httpx.Client
	breaker breaker.CircuitBreaker
	clock   func() time.Time
}

func (a *ReportCentral) Name() string {
	return a.name
}

func (a *ReportCentral) Execute(
	ctx context.Context,
	token string,
	duration time.Duration,
	metric string,
	window time.Duration,
	limit int64,
) error {
	body, err := json.Marshal(newReport(token, duration, metric, window, limit, a.clock()))
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	return a.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.URL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range a.cfg.Headers {
			req.Header.Set(k, v)
		}

		resp, err := a.client.Do(req)
		if err != nil {
			return fmt.Errorf("failed to report to %s: %w", a.cfg.URL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024)) //nolint:errcheck
			return fmt.Errorf("central report rejected with status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
		}
		return nil
	})
}
