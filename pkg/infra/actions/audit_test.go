package actions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NeuralTrust/banhammer/pkg/domain/breach"
	"github.com/NeuralTrust/banhammer/pkg/infra/actions"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	records []*breach.Record
	err     error
}

func (r *memoryRepository) Save(_ context.Context, record *breach.Record) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id uuid.UUID) (*breach.Record, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memoryRepository) ListByToken(_ context.Context, token string, _ int) ([]*breach.Record, error) {
	var out []*breach.Record
	for _, rec := range r.records {
		if rec.Token == token {
			out = append(out, rec)
		}
	}
	return out, nil
}

func TestAuditDB_SavesRecord(t *testing.T) {
	repo := &memoryRepository{}
	a, err := actions.NewAuditDBFactory(repo).WithSettings("audit_db", nil)
	require.NoError(t, err)

	require.NoError(t, a.Execute(context.Background(), "1.2.3.4", 24*time.Hour, "login_failed", time.Hour, 100))
	require.Len(t, repo.records, 1)
	rec := repo.records[0]
	assert.Equal(t, "1.2.3.4", rec.Token)
	assert.Equal(t, "login_failed", rec.Metric)
	assert.Equal(t, int64(3600), rec.WindowSeconds)
	assert.Equal(t, int64(100), rec.Limit)
	assert.Equal(t, int64(86400), rec.ActionDuration)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestAuditDB_SaveFailure(t *testing.T) {
	repo := &memoryRepository{err: errors.New("disk full")}
	a, err := actions.NewAuditDBFactory(repo).WithSettings("audit_db", nil)
	require.NoError(t, err)

	err = a.Execute(context.Background(), "1.2.3.4", time.Hour, "login_failed", time.Hour, 10)
	assert.ErrorContains(t, err, "disk full")
}

func TestAuditDB_RequiresRepository(t *testing.T) {
	assert.Error(t, actions.NewAuditDBFactory(nil).ValidateConfig(nil))
}
