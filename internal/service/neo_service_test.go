package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"neotrack/internal/clients"
	"neotrack/internal/ingest"
	"neotrack/internal/models"
	"neotrack/internal/repository"
	"neotrack/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memNEORepo struct {
	mu     sync.Mutex
	loaded []models.NEORecord
}

func (r *memNEORepo) LoadRecords(_ context.Context, records []models.NEORecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaded = append(r.loaded, records...)
	return nil
}

func (r *memNEORepo) GetAsteroidsPaginated(context.Context, int, int) ([]models.Asteroid, error) {
	return nil, nil
}

func (r *memNEORepo) CountAsteroids(context.Context) (int64, error)  { return 0, nil }
func (r *memNEORepo) CountApproaches(context.Context) (int64, error) { return 0, nil }

type memRunRepo struct {
	runs []models.IngestRun
}

func (r *memRunRepo) Create(_ context.Context, run *models.IngestRun) error {
	r.runs = append(r.runs, *run)
	return nil
}

func (r *memRunRepo) Update(_ context.Context, run *models.IngestRun) error { return nil }

func (r *memRunRepo) GetRecent(_ context.Context, limit int) ([]models.IngestRun, error) {
	return r.runs, nil
}

type memCache struct {
	values map[string]string
}

func newMemCache() *memCache { return &memCache{values: map[string]string{}} }

func (c *memCache) Get(_ context.Context, key string) (string, error) { return c.values[key], nil }

func (c *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func (c *memCache) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }

func (c *memCache) SetJSON(context.Context, string, interface{}, time.Duration) error { return nil }

// scriptClient отдаёт заранее заданные ответы по одному на окно.
type scriptClient struct {
	responses []map[string]interface{}
	errs      []error
	calls     int
}

func (c *scriptClient) FetchFeed(_ context.Context, _, _ string) (map[string]interface{}, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	if i < len(c.responses) {
		return c.responses[i], nil
	}
	return map[string]interface{}{"near_earth_objects": map[string]interface{}{}}, nil
}

func neoEntry(id int, name, date string) map[string]interface{} {
	return map[string]interface{}{
		"id":                   fmt.Sprintf("%d", id),
		"neo_reference_id":     fmt.Sprintf("%d", id),
		"name":                 name,
		"absolute_magnitude_h": 22.5,
		"estimated_diameter": map[string]interface{}{
			"kilometers": map[string]interface{}{
				"estimated_diameter_min": 0.1,
				"estimated_diameter_max": 0.3,
			},
		},
		"is_potentially_hazardous_asteroid": false,
		"close_approach_data": []interface{}{
			map[string]interface{}{
				"close_approach_date": date,
				"relative_velocity": map[string]interface{}{
					"kilometers_per_hour": "45000.5",
				},
				"miss_distance": map[string]interface{}{
					"astronomical": "0.02",
					"kilometers":   "2992000",
					"lunar":        "7.8",
				},
				"orbiting_body": "Earth",
			},
		},
	}
}

func feedWith(entries ...map[string]interface{}) map[string]interface{} {
	objs := make([]interface{}, len(entries))
	for i, e := range entries {
		objs[i] = e
	}
	return map[string]interface{}{
		"near_earth_objects": map[string]interface{}{
			"2024-01-01": objs,
		},
	}
}

func newTestService(t *testing.T, client clients.NEOClient, cache repository.CacheRepository, limit int) (service.NEOService, *memNEORepo, *memRunRepo, string) {
	t.Helper()

	repo := &memNEORepo{}
	runRepo := &memRunRepo{}
	archive := filepath.Join(t.TempDir(), "records.json")

	svc := service.NewNEOService(repo, runRepo, cache, client, service.IngestConfig{
		StartDate:    "2024-01-01",
		RecordLimit:  limit,
		WindowDays:   7,
		RequestDelay: 0,
		ArchivePath:  archive,
	})
	return svc, repo, runRepo, archive
}

func TestFetchToArchive_Completed(t *testing.T) {
	client := &scriptClient{
		responses: []map[string]interface{}{
			feedWith(neoEntry(101, "(TA)", "2024-01-02"), neoEntry(102, "(TB)", "2024-01-03")),
		},
	}
	svc, _, runRepo, archive := newTestService(t, client, newMemCache(), 2)

	run, err := svc.FetchToArchive(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.RecordsCollected)
	assert.Equal(t, 1, run.WindowsFetched)
	assert.Equal(t, archive, run.ArchivePath)
	require.NotNil(t, run.FinishedAt)
	require.Len(t, runRepo.runs, 1)

	records, err := ingest.ReadArchive(archive)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(101), records[0].ID)
}

func TestFetchToArchive_PartialOnFeedFailure(t *testing.T) {
	client := &scriptClient{
		responses: []map[string]interface{}{
			feedWith(neoEntry(201, "(TC)", "2024-01-04")),
			nil,
		},
		errs: []error{nil, &clients.StatusError{StatusCode: 429, Body: "rate limited"}},
	}
	svc, _, _, archive := newTestService(t, client, newMemCache(), 10)

	run, err := svc.FetchToArchive(context.Background())
	require.NoError(t, err)

	// Собранное до отказа фида сохраняется, прогон помечается частичным.
	assert.Equal(t, models.RunStatusPartial, run.Status)
	assert.Equal(t, 1, run.RecordsCollected)
	assert.Contains(t, run.Error, "429")

	records, err := ingest.ReadArchive(archive)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFetchToArchive_FailedOnBadPayload(t *testing.T) {
	broken := neoEntry(301, "(TD)", "2024-01-05")
	delete(broken, "estimated_diameter")

	client := &scriptClient{responses: []map[string]interface{}{feedWith(broken)}}
	svc, _, runRepo, archive := newTestService(t, client, newMemCache(), 10)

	run, err := svc.FetchToArchive(context.Background())
	require.Error(t, err)

	assert.Equal(t, models.RunStatusFailed, run.Status)
	require.Len(t, runRepo.runs, 1)

	// Артефакт при провале не пишется.
	_, statErr := os.Stat(archive)
	assert.True(t, os.IsNotExist(statErr))
}

func TestIngest_GuardSkipsRecentRun(t *testing.T) {
	cache := newMemCache()
	cache.values["neo:ingest:last_run"] = "1"

	client := &scriptClient{}
	svc, repo, _, _ := newTestService(t, client, cache, 2)

	require.NoError(t, svc.Ingest(context.Background()))
	assert.Zero(t, client.calls)
	assert.Empty(t, repo.loaded)
}

func TestIngest_NoopCacheNeverGuards(t *testing.T) {
	client := &scriptClient{
		responses: []map[string]interface{}{
			feedWith(neoEntry(501, "(TF)", "2024-01-07")),
			feedWith(neoEntry(501, "(TF)", "2024-01-07")),
		},
	}
	svc, repo, _, _ := newTestService(t, client, repository.NewNoopCacheRepository(), 1)

	require.NoError(t, svc.Ingest(context.Background()))
	require.NoError(t, svc.Ingest(context.Background()))

	// Без Redis сторожевой ключ не взводится: обе загрузки выполняются.
	assert.Equal(t, 2, client.calls)
	assert.Len(t, repo.loaded, 2)
}

func TestIngest_FullPipeline(t *testing.T) {
	cache := newMemCache()
	client := &scriptClient{
		responses: []map[string]interface{}{
			feedWith(neoEntry(401, "(TE)", "2024-01-06")),
		},
	}
	svc, repo, runRepo, _ := newTestService(t, client, cache, 1)

	require.NoError(t, svc.Ingest(context.Background()))

	require.Len(t, repo.loaded, 1)
	assert.Equal(t, int64(401), repo.loaded[0].ID)
	assert.Equal(t, "1", cache.values["neo:ingest:last_run"])
	require.Len(t, runRepo.runs, 1)
	assert.Equal(t, models.RunStatusCompleted, runRepo.runs[0].Status)
}
