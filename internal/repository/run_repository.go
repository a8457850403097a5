package repository

import (
	"context"

	"neotrack/internal/models"

	"gorm.io/gorm"
)

type RunRepository interface {
	Create(ctx context.Context, run *models.IngestRun) error
	Update(ctx context.Context, run *models.IngestRun) error
	GetRecent(ctx context.Context, limit int) ([]models.IngestRun, error)
}

type runRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(ctx context.Context, run *models.IngestRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *runRepository) Update(ctx context.Context, run *models.IngestRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *runRepository) GetRecent(ctx context.Context, limit int) ([]models.IngestRun, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var runs []models.IngestRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).
		Error
	return runs, err
}
