package response

import (
	"github.com/NeuralTrust/banhammer/pkg/domain/ladder"
	"github.com/NeuralTrust/banhammer/pkg/engine"
)

// ThresholdReport describes one rung and the count observed against it.
// Durations are in seconds and Rate is events per second over the window.
type ThresholdReport struct {
	Action         []string `json:"action"`
	ActionDuration int64    `json:"action_duration"`
	Count          int64    `json:"count"`
	Limit          int64    `json:"limit"`
	Rate           float64  `json:"rate"`
	Window         int64    `json:"window"`
}

func NewThresholdReport(t ladder.Threshold, count int64) ThresholdReport {
	report := ThresholdReport{
		Action:         t.ActionNames(),
		ActionDuration: int64(t.ActionDuration.Seconds()),
		Count:          count,
		Limit:          t.Limit,
		Window:         int64(t.Window.Seconds()),
	}
	if seconds := t.Window.Seconds(); seconds > 0 {
		report.Rate = float64(count) / seconds
	}
	return report
}

// NewThresholdReports reports every rung in ladder order. Missing snapshot
// entries count as zero.
func NewThresholdReports(rungs []ladder.Threshold, snapshot engine.Snapshot) []ThresholdReport {
	reports := make([]ThresholdReport, 0, len(rungs))
	for i, rung := range rungs {
		reports = append(reports, NewThresholdReport(rung, snapshot[i]))
	}
	return reports
}

type CheckOutput struct {
	Passed   bool              `json:"passed"`
	Rates    engine.Snapshot   `json:"rates,omitempty"`
	Breaches []ThresholdReport `json:"breaches"`
}

type StatusOutput struct {
	Token      string            `json:"token,omitempty"`
	Metric     string            `json:"metric,omitempty"`
	Rates      engine.Snapshot   `json:"rates"`
	Thresholds []ThresholdReport `json:"thresholds"`
}

type LoginOutput struct {
	Success  bool              `json:"success"`
	Passed   bool              `json:"passed"`
	Breaches []ThresholdReport `json:"breaches"`
}
