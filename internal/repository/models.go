package repository

import (
	"encoding/json"
	"time"

	"github.com/verihub/verify-engine/internal/domain"
)

// VerificationModel is the persistence model for the email_verifications
// table. Rows are append-only and never updated.
type VerificationModel struct {
	ID               string          `gorm:"type:uuid;primaryKey"`
	Email            string          `gorm:"type:varchar(255);not null;index:idx_email_verifications_email"`
	Provider         domain.Provider `gorm:"type:varchar(50);not null"`
	IsValid          *bool           `gorm:"type:boolean"`
	Score            *float64        `gorm:"type:double precision"`
	Details          json.RawMessage `gorm:"type:jsonb"`
	Error            *string         `gorm:"type:text"`
	VerificationDate time.Time       `gorm:"not null"`
}

func (VerificationModel) TableName() string {
	return "email_verifications"
}

// ServiceModel is the persistence model for verification_services, the
// seeded provider definition table read at startup. Absence of a row never
// disables a provider; only absence of its credential does.
type ServiceModel struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(50);uniqueIndex;not null"`
	BaseURL   string `gorm:"type:varchar(255)"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ServiceModel) TableName() string {
	return "verification_services"
}

func verificationModelFromDomain(r *domain.VerificationResult) *VerificationModel {
	if r == nil {
		return nil
	}

	return &VerificationModel{
		ID:               r.ID,
		Email:            r.Email,
		Provider:         r.Provider,
		IsValid:          r.IsValid,
		Score:            r.Score,
		Details:          r.Details,
		Error:            r.Error,
		VerificationDate: r.VerificationDate,
	}
}

func verificationModelToDomain(m *VerificationModel) *domain.VerificationResult {
	if m == nil {
		return nil
	}

	return &domain.VerificationResult{
		ID:               m.ID,
		Email:            m.Email,
		Provider:         m.Provider,
		IsValid:          m.IsValid,
		Score:            m.Score,
		Details:          m.Details,
		Error:            m.Error,
		VerificationDate: m.VerificationDate,
	}
}
