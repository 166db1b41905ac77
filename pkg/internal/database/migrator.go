package database

import (
	"github.com/openballot/openballot/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.User{},
	&models.Poll{},
	&models.Option{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			AutoMaintainRange,
			&models.Vote{},
		)...,
	); err != nil {
		return err
	}

	return nil
}
