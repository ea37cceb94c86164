package breach

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Save(ctx context.Context, record *Record) error
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	// ListByToken returns the newest records first.
	ListByToken(ctx context.Context, token string, limit int) ([]*Record, error)
}
