package request

import "errors"

type MetricCheckRequest struct {
	Token     string `json:"token"`
	Threshold int    `json:"threshold"`
}

func (r *MetricCheckRequest) Validate() error {
	if r.Threshold < 0 {
		return errors.New("threshold must not be negative")
	}
	return nil
}
