package migrations

import (
	"github.com/NeuralTrust/banhammer/pkg/domain/breach"
	"github.com/NeuralTrust/banhammer/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20261018_create_breach_records",
		Name: "Create breach_records table for audited threshold breaches",
		Up: func(db *gorm.DB) error {
			return db.AutoMigrate(&breach.Record{})
		},
		Down: func(db *gorm.DB) error {
			return db.Migrator().DropTable(&breach.Record{})
		},
	})
}
