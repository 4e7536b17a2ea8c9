package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MappingProcimec/mapping-erp/internal/model"
)

// defaultAreas are created on first start so requests have somewhere to live
// before an administrator curates the catalog.
var defaultAreas = []model.Area{
	{Name: "Operations", Code: "OPS"},
	{Name: "Maintenance", Code: "MNT"},
	{Name: "Administration", Code: "ADM"},
	{Name: "Information Technology", Code: "IT"},
}

// SeedReferenceData inserts the default areas when the table is empty.
func SeedReferenceData(db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&model.Area{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := db.Create(&defaultAreas).Error; err != nil {
		return err
	}
	logger.Info("seeded default areas", zap.Int("count", len(defaultAreas)))
	return nil
}
