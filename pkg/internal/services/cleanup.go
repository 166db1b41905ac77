package services

import (
	"time"

	"github.com/openballot/openballot/pkg/internal/database"
	"github.com/openballot/openballot/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// DoAutoDatabaseCleanup permanently removes polls and options that were
// soft deleted longer ago than the retention window. Vote rows are hard
// deleted together with their poll, so live tallies are never touched
// by this job.
func DoAutoDatabaseCleanup() {
	retention := viper.GetInt("cleanup.retention_days")
	if retention <= 0 {
		retention = 30
	}
	deadline := time.Now().AddDate(0, 0, -retention)

	log.Debug().Time("deadline", deadline).Msg("Now cleaning up entire database...")

	for _, model := range []any{&models.Option{}, &models.Poll{}} {
		tx := database.C.Unscoped().
			Where("deleted_at IS NOT NULL AND deleted_at < ?", deadline).
			Delete(model)
		if tx.Error != nil {
			log.Error().Err(tx.Error).Msg("An error occurred when running database cleanup...")
		} else if tx.RowsAffected > 0 {
			log.Debug().Int64("affected", tx.RowsAffected).Msg("Purged soft deleted records...")
		}
	}
}
