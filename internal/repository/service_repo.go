package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ServiceDefinition describes one seeded provider row.
type ServiceDefinition struct {
	Name     string
	BaseURL  string
	IsActive bool
}

type ServiceRepository interface {
	Seed(ctx context.Context, definitions []ServiceDefinition) error
	ListActive(ctx context.Context) ([]ServiceDefinition, error)
}

type GormServiceRepo struct {
	db *gorm.DB
}

func NewGormServiceRepo(db *gorm.DB) *GormServiceRepo {
	return &GormServiceRepo{db: db}
}

// Seed inserts provider definitions, leaving existing rows untouched so the
// seed stays idempotent across restarts.
func (r *GormServiceRepo) Seed(ctx context.Context, definitions []ServiceDefinition) error {
	models := make([]ServiceModel, 0, len(definitions))
	for _, def := range definitions {
		models = append(models, ServiceModel{
			Name:     def.Name,
			BaseURL:  def.BaseURL,
			IsActive: def.IsActive,
		})
	}
	if len(models) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&models).Error
}

func (r *GormServiceRepo) ListActive(ctx context.Context) ([]ServiceDefinition, error) {
	var models []ServiceModel
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	definitions := make([]ServiceDefinition, 0, len(models))
	for _, model := range models {
		definitions = append(definitions, ServiceDefinition{
			Name:     model.Name,
			BaseURL:  model.BaseURL,
			IsActive: model.IsActive,
		})
	}

	return definitions, nil
}
