package database

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/MappingProcimec/mapping-erp/internal/model"
)

// NewConnection initializes the connection pool using GORM and migrates the
// schema. Migration failures are logged but not fatal so the process can come
// up against a schema managed out of band.
func NewConnection(dsn string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		logger.Warn("auto-migration incomplete", zap.Error(err))
	}

	return db, nil
}

// Migrate creates or updates the schema for every model the engine persists.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Area{},
		&model.Project{},
		&model.Supplier{},
		&model.BudgetCode{},
		&model.PurchaseRequest{},
		&model.LineItem{},
		&model.ApprovalEvent{},
	)
}
