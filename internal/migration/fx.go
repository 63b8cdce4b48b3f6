package migration

import (
	"github.com/tamedachi/tamedachi/internal/config"
	petdomain "github.com/tamedachi/tamedachi/internal/pet/domain"
	submissiondomain "github.com/tamedachi/tamedachi/internal/submission/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned SQL migrations target postgres; other dialects (local
		// sqlite, mysql) fall back to schema sync from the models.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&petdomain.Pet{},
				&submissiondomain.Submission{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
