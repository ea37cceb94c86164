package actions

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// decodeSettings decodes free-form action settings, accepting "2s" style
// durations.
func decodeSettings(settings map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// seconds renders a duration the way reports and records expose it.
func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
