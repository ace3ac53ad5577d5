package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/verihub/verify-engine/internal/repository"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		createEmailVerificationsTable(),
		createVerificationServicesTable(),
	})

	return m.Migrate()
}

func createEmailVerificationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_email_verifications",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.VerificationModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_email_verifications_email_date ON email_verifications (email, verification_date DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_email_verifications_provider ON email_verifications (provider)`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.VerificationModel{})
		},
	}
}

func createVerificationServicesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_verification_services",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.ServiceModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ServiceModel{})
		},
	}
}
