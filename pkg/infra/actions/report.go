package actions

import (
	"time"
)

// Report is the breach payload sent to remote collectors. Durations are in
// seconds.
type Report struct {
	Token      string    `json:"token"`
	Duration   int64     `json:"duration"`
	Metric     string    `json:"metric"`
	Window     int64     `json:"window"`
	Limit      int64     `json:"limit"`
	ReportedAt time.Time `json:"reported_at"`
}

func newReport(token string, duration time.Duration, metric string, window time.Duration, limit int64, now time.Time) Report {
	return Report{
		Token:      token,
		Duration:   seconds(duration),
		Metric:     metric,
		Window:     seconds(window),
		Limit:      limit,
		ReportedAt: now.UTC(),
	}
}
