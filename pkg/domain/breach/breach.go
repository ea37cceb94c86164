package breach

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is an audited threshold breach. Durations are stored in seconds.
type Record struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Token          string    `json:"token" gorm:"type:text;not null;index"`
	Metric         string    `json:"metric" gorm:"type:text;not null;index"`
	WindowSeconds  int64     `json:"window"`
	Limit          int64     `json:"limit" gorm:"column:breach_limit"`
	ActionDuration int64     `json:"action_duration"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
}

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return nil
}

func (r *Record) TableName() string {
	return "breach_records"
}
