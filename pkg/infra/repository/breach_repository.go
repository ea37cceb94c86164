package repository

import (
	"context"
	"errors"

	"github.com/NeuralTrust/banhammer/pkg/domain/breach"
	domain "github.com/NeuralTrust/banhammer/pkg/domain/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type breachRepository struct {
	db *gorm.DB
}

func NewBreachRepository(db *gorm.DB) breach.Repository {
	return &breachRepository{db: db}
}

func (r *breachRepository) Save(ctx context.Context, record *breach.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *breachRepository) Get(ctx context.Context, id uuid.UUID) (*breach.Record, error) {
	var record breach.Record
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("breach record", id)
		}
		return nil, err
	}
	return &record, nil
}

func (r *breachRepository) ListByToken(ctx context.Context, token string, limit int) ([]*breach.Record, error) {
	var records []*breach.Record
	query := r.db.WithContext(ctx).
		Where("token = ?", token).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
