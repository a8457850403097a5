package repository

import (
	"context"
	"errors"

	"neotrack/internal/models"

	"gorm.io/gorm"
)

type NEORepository interface {
	LoadRecords(ctx context.Context, records []models.NEORecord) error
	GetAsteroidsPaginated(ctx context.Context, page, limit int) ([]models.Asteroid, error)
	CountAsteroids(ctx context.Context) (int64, error)
	CountApproaches(ctx context.Context) (int64, error)
}

type neoRepository struct {
	db *gorm.DB
}

func NewNEORepository(db *gorm.DB) NEORepository {
	return &neoRepository{db: db}
}

// LoadRecords применяет пачку записей одной транзакцией: апсерт астероида по
// id плюс безусловная вставка события. Дедупликации событий нет — повторная
// загрузка пересекающихся окон даёт дубликаты строк, это известное поведение.
func (r *neoRepository) LoadRecords(ctx context.Context, records []models.NEORecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			asteroid := rec.AsteroidRow()

			var existing models.Asteroid
			err := tx.Where("id = ?", asteroid.ID).First(&existing).Error

			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := tx.Create(&asteroid).Error; err != nil {
					return err
				}
			} else if err == nil {
				if err := tx.Save(&asteroid).Error; err != nil {
					return err
				}
			} else {
				return err
			}

			approach := rec.CloseApproachRow()
			if err := tx.Create(&approach).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *neoRepository) GetAsteroidsPaginated(ctx context.Context, page, limit int) ([]models.Asteroid, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit

	var asteroids []models.Asteroid
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&asteroids).
		Error

	return asteroids, err
}

func (r *neoRepository) CountAsteroids(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Asteroid{}).
		Count(&count).
		Error
	return count, err
}

func (r *neoRepository) CountApproaches(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CloseApproach{}).
		Count(&count).
		Error
	return count, err
}
