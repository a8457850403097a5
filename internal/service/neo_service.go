package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"neotrack/internal/clients"
	"neotrack/internal/ingest"
	"neotrack/internal/models"
	"neotrack/internal/repository"

	"github.com/google/uuid"
)

// IngestConfig — параметры офлайн-пайплайна.
type IngestConfig struct {
	StartDate    string
	RecordLimit  int
	WindowDays   int
	RequestDelay time.Duration
	ArchivePath  string
}

type NEOService interface {
	// FetchToArchive — стадия fetch: обход окон и запись JSON-артефакта.
	FetchToArchive(ctx context.Context) (*models.IngestRun, error)
	// LoadArchive — стадия load: чтение артефакта и загрузка в хранилище.
	LoadArchive(ctx context.Context) (int, error)
	// Ingest — обе стадии подряд, с защитой от повторного запуска.
	Ingest(ctx context.Context) error
	GetRecentRuns(ctx context.Context, limit int) ([]models.IngestRun, error)
	GetAsteroids(ctx context.Context, page, limit int) ([]models.Asteroid, error)
	CountAsteroids(ctx context.Context) (int64, error)
	CountApproaches(ctx context.Context) (int64, error)
}

type neoService struct {
	repo      repository.NEORepository
	runRepo   repository.RunRepository
	cacheRepo repository.CacheRepository
	client    clients.NEOClient
	cfg       IngestConfig
}

func NewNEOService(
	repo repository.NEORepository,
	runRepo repository.RunRepository,
	cacheRepo repository.CacheRepository,
	client clients.NEOClient,
	cfg IngestConfig,
) NEOService {
	return &neoService{
		repo:      repo,
		runRepo:   runRepo,
		cacheRepo: cacheRepo,
		client:    client,
		cfg:       cfg,
	}
}

// FetchToArchive обходит фид и пишет артефакт. Не-2xx ответа фида достаточно,
// чтобы остановить обход, но собранное всё равно сохраняется — прогон
// помечается как partial. Ошибка извлечения полей роняет прогон целиком,
// артефакт при этом не пишется.
func (s *neoService) FetchToArchive(ctx context.Context) (*models.IngestRun, error) {
	startDate, err := time.Parse("2006-01-02", s.cfg.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid ingest start date %q: %w", s.cfg.StartDate, err)
	}

	log.Printf("NEO ingest: fetching up to %d records from %s in %d-day windows",
		s.cfg.RecordLimit, s.cfg.StartDate, s.cfg.WindowDays)

	run := &models.IngestRun{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
	}
	params, _ := json.Marshal(map[string]interface{}{
		"start_date":   s.cfg.StartDate,
		"record_limit": s.cfg.RecordLimit,
		"window_days":  s.cfg.WindowDays,
	})
	run.Params = params

	fetcher := ingest.NewFetcher(s.client, s.cfg.RecordLimit, s.cfg.WindowDays, s.cfg.RequestDelay)
	result, fetchErr := fetcher.Run(ctx, startDate)

	run.RecordsCollected = len(result.Records)
	run.WindowsFetched = result.Windows

	var statusErr *clients.StatusError
	switch {
	case fetchErr == nil:
		run.Status = models.RunStatusCompleted
	case errors.As(fetchErr, &statusErr):
		run.Status = models.RunStatusPartial
		run.Error = fetchErr.Error()
		log.Printf("NEO ingest: feed failure after %d records: %v", len(result.Records), fetchErr)
	default:
		run.Status = models.RunStatusFailed
		run.Error = fetchErr.Error()
		s.finishRun(ctx, run)
		return run, fetchErr
	}

	if err := ingest.WriteArchive(s.cfg.ArchivePath, result.Records); err != nil {
		run.Status = models.RunStatusFailed
		run.Error = err.Error()
		s.finishRun(ctx, run)
		return run, err
	}
	run.ArchivePath = s.cfg.ArchivePath

	s.finishRun(ctx, run)
	log.Printf("NEO ingest: collected %d records into %s", len(result.Records), s.cfg.ArchivePath)
	return run, nil
}

func (s *neoService) finishRun(ctx context.Context, run *models.IngestRun) {
	now := time.Now().UTC()
	run.FinishedAt = &now
	if err := s.runRepo.Create(ctx, run); err != nil {
		log.Printf("Failed to record ingest run: %v", err)
	}
}

func (s *neoService) LoadArchive(ctx context.Context) (int, error) {
	records, err := ingest.ReadArchive(s.cfg.ArchivePath)
	if err != nil {
		return 0, err
	}

	if err := s.repo.LoadRecords(ctx, records); err != nil {
		return 0, fmt.Errorf("failed to load records: %w", err)
	}

	log.Printf("NEO ingest: loaded %d records into the store", len(records))
	return len(records), nil
}

func (s *neoService) Ingest(ctx context.Context) error {
	guardKey := "neo:ingest:last_run"
	if cached, _ := s.cacheRepo.Get(ctx, guardKey); cached != "" {
		log.Println("NEO ingest: skipped, recent run found")
		return nil
	}

	if _, err := s.FetchToArchive(ctx); err != nil {
		return err
	}
	if _, err := s.LoadArchive(ctx); err != nil {
		return err
	}

	if err := s.cacheRepo.Set(ctx, guardKey, "1", 10*time.Minute); err != nil {
		log.Printf("Failed to set ingest guard: %v", err)
	}
	return nil
}

func (s *neoService) GetRecentRuns(ctx context.Context, limit int) ([]models.IngestRun, error) {
	return s.runRepo.GetRecent(ctx, limit)
}

func (s *neoService) GetAsteroids(ctx context.Context, page, limit int) ([]models.Asteroid, error) {
	return s.repo.GetAsteroidsPaginated(ctx, page, limit)
}

func (s *neoService) CountAsteroids(ctx context.Context) (int64, error) {
	return s.repo.CountAsteroids(ctx)
}

func (s *neoService) CountApproaches(ctx context.Context) (int64, error) {
	return s.repo.CountApproaches(ctx)
}
