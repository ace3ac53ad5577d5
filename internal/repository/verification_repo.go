package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/verihub/verify-engine/internal/domain"
	"gorm.io/gorm"
)

type VerificationRepository interface {
	Create(ctx context.Context, result *domain.VerificationResult) error
	HistoryByEmail(ctx context.Context, email string) ([]domain.VerificationResult, error)
}

type GormVerificationRepo struct {
	db *gorm.DB
}

func NewGormVerificationRepo(db *gorm.DB) *GormVerificationRepo {
	return &GormVerificationRepo{db: db}
}

// Create inserts one immutable verification row. Each call uses its own
// pooled connection; rows are independent so no locking is needed.
func (r *GormVerificationRepo) Create(ctx context.Context, result *domain.VerificationResult) error {
	model := verificationModelFromDomain(result)
	if model == nil {
		return nil
	}

	if strings.TrimSpace(model.ID) == "" {
		model.ID = uuid.NewString()
	}
	if model.VerificationDate.IsZero() {
		model.VerificationDate = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if result != nil {
		*result = *verificationModelToDomain(model)
	}
	return nil
}

// HistoryByEmail returns every verification for an exact address, newest
// first. An address with no history yields an empty slice, not an error.
func (r *GormVerificationRepo) HistoryByEmail(ctx context.Context, email string) ([]domain.VerificationResult, error) {
	var models []VerificationModel
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("verification_date DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	results := make([]domain.VerificationResult, 0, len(models))
	for i := range models {
		results = append(results, *verificationModelToDomain(&models[i]))
	}

	return results, nil
}
