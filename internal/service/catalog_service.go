package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"neotrack/internal/catalog"
	"neotrack/internal/repository"
	"neotrack/internal/utils"
)

type CatalogService interface {
	QueryNames() []string
	RunQuery(ctx context.Context, name string, filters catalog.Filters) (*repository.Result, error)
	ExportQuery(ctx context.Context, name string, filters catalog.Filters) (string, error)
}

type catalogService struct {
	repo      repository.CatalogRepository
	cacheRepo repository.CacheRepository
	dialect   catalog.Dialect
	exportDir string
}

func NewCatalogService(
	repo repository.CatalogRepository,
	cacheRepo repository.CacheRepository,
	dialect catalog.Dialect,
	exportDir string,
) CatalogService {
	return &catalogService{
		repo:      repo,
		cacheRepo: cacheRepo,
		dialect:   dialect,
		exportDir: exportDir,
	}
}

func (s *catalogService) QueryNames() []string {
	return catalog.Names()
}

// RunQuery выполняет именованный запрос каталога. Неизвестное имя — пустой
// результат, не ошибка: дашборд просто отрисует пустую таблицу.
func (s *catalogService) RunQuery(ctx context.Context, name string, filters catalog.Filters) (*repository.Result, error) {
	query, ok := catalog.Build(name, filters, s.dialect)
	if !ok {
		return &repository.Result{Columns: []string{}, Rows: [][]interface{}{}}, nil
	}

	cacheKey := filters.CacheKey(name)

	var cached repository.Result
	if found, err := s.cacheRepo.GetJSON(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	result, err := s.repo.Run(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run catalog query %q: %w", name, err)
	}

	if err := s.cacheRepo.SetJSON(ctx, cacheKey, result, 5*time.Minute); err != nil {
		log.Printf("Failed to cache catalog result: %v", err)
	}

	return result, nil
}

// ExportQuery выполняет запрос и выгружает результат в xlsx-файл.
func (s *catalogService) ExportQuery(ctx context.Context, name string, filters catalog.Filters) (string, error) {
	result, err := s.RunQuery(ctx, name, filters)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("catalog_export_%d.xlsx", time.Now().UTC().Unix())
	path := filepath.Join(s.exportDir, filename)

	if err := utils.CreateExcelFile(path, name, result); err != nil {
		return "", fmt.Errorf("failed to create excel file: %w", err)
	}

	return path, nil
}
