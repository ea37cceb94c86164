package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/domain/action"
	"github.com/NeuralTrust/banhammer/pkg/domain/breach"
)

const AuditDBType = "audit_db"

type AuditDBFactory struct {
	repo  breach.Repository
	clock func() time.Time
}

func NewAuditDBFactory(repo breach.Repository) *AuditDBFactory {
	return &AuditDBFactory{repo: repo, clock: time.Now}
}

func (f *AuditDBFactory) Type() string {
	return AuditDBType
}

func (f *AuditDBFactory) ValidateConfig(map[string]interface{}) error {
	if f.repo == nil {
		return errors.New("audit_db requires a configured database")
	}
	return nil
}

func (f *AuditDBFactory) WithSettings(name string, _ map[string]interface{}) (action.Action, error) {
	return action.New(name, func(
		ctx context.Context,
		token string,
		duration time.Duration,
		metric string,
		window time.Duration,
		limit int64,
	) error {
		err := f.repo.Save(ctx, &breach.Record{
			Token:          token,
			Metric:         metric,
			WindowSeconds:  seconds(window),
			Limit:          limit,
			ActionDuration: seconds(duration),
			CreatedAt:      f.clock().UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to save breach record: %w", err)
		}
		return nil
	}), nil
}
