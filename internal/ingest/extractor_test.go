package ingest_test

import (
	"testing"

	"neotrack/internal/ingest"
	"neotrack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullAsteroid() map[string]interface{} {
	return map[string]interface{}{
		"id":                 "3542519",
		"neo_reference_id":   "3542519",
		"name":               "(2010 PK9)",
		"absolute_magnitude_h": 21.87,
		"is_potentially_hazardous_asteroid": true,
		"estimated_diameter": map[string]interface{}{
			"kilometers": map[string]interface{}{
				"estimated_diameter_min": 0.1010543415,
				"estimated_diameter_max": 0.2259643771,
			},
		},
	}
}

func fullApproach() map[string]interface{} {
	return map[string]interface{}{
		"close_approach_date": "2024-01-07",
		"relative_velocity": map[string]interface{}{
			"kilometers_per_hour": "52078.8525682628",
		},
		"miss_distance": map[string]interface{}{
			"astronomical": "0.3027469593",
			"kilometers":   "45290298.225725331",
			"lunar":        "117.7685671677",
		},
		"orbiting_body": "Earth",
	}
}

func TestExtractFields_CompletePair(t *testing.T) {
	rec, err := ingest.ExtractFields(fullAsteroid(), fullApproach())
	require.NoError(t, err)

	assert.Equal(t, models.NEORecord{
		ID:                             3542519,
		NeoReferenceID:                 3542519,
		Name:                           "(2010 PK9)",
		AbsoluteMagnitudeH:             21.87,
		EstimatedDiameterMinKM:         0.1010543415,
		EstimatedDiameterMaxKM:         0.2259643771,
		IsPotentiallyHazardousAsteroid: true,
		CloseApproachDate:              "2024-01-07",
		RelativeVelocityKMPH:           52078.8525682628,
		Astronomical:                   0.3027469593,
		MissDistanceKM:                 45290298.225725331,
		MissDistanceLunar:              117.7685671677,
		OrbitingBody:                   "Earth",
	}, rec)
}

func TestExtractFields_OptionalFieldsDefault(t *testing.T) {
	asteroid := fullAsteroid()
	delete(asteroid, "id")
	delete(asteroid, "neo_reference_id")
	delete(asteroid, "name")
	delete(asteroid, "absolute_magnitude_h")
	delete(asteroid, "is_potentially_hazardous_asteroid")

	approach := fullApproach()
	delete(approach, "orbiting_body")

	rec, err := ingest.ExtractFields(asteroid, approach)
	require.NoError(t, err)

	assert.Zero(t, rec.ID)
	assert.Zero(t, rec.NeoReferenceID)
	assert.Empty(t, rec.Name)
	assert.Zero(t, rec.AbsoluteMagnitudeH)
	assert.False(t, rec.IsPotentiallyHazardousAsteroid)
	assert.Empty(t, rec.OrbitingBody)
	// Обязательные вложенные поля при этом извлечены как обычно.
	assert.Equal(t, 0.1010543415, rec.EstimatedDiameterMinKM)
}

func TestExtractFields_MissingDiameterFails(t *testing.T) {
	asteroid := fullAsteroid()
	delete(asteroid, "estimated_diameter")

	_, err := ingest.ExtractFields(asteroid, fullApproach())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "estimated_diameter")
}

func TestExtractFields_MissingDiameterBoundFails(t *testing.T) {
	asteroid := fullAsteroid()
	kilometers := asteroid["estimated_diameter"].(map[string]interface{})["kilometers"].(map[string]interface{})
	delete(kilometers, "estimated_diameter_max")

	_, err := ingest.ExtractFields(asteroid, fullApproach())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "estimated_diameter_max")
}

func TestExtractFields_MissingVelocityFails(t *testing.T) {
	approach := fullApproach()
	delete(approach, "relative_velocity")

	_, err := ingest.ExtractFields(fullAsteroid(), approach)
	require.Error(t, err)
}

func TestExtractFields_MissingMissDistanceFieldFails(t *testing.T) {
	approach := fullApproach()
	missDistance := approach["miss_distance"].(map[string]interface{})
	delete(missDistance, "lunar")

	_, err := ingest.ExtractFields(fullAsteroid(), approach)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lunar")
}

func TestExtractFields_MissingDateFails(t *testing.T) {
	approach := fullApproach()
	delete(approach, "close_approach_date")

	_, err := ingest.ExtractFields(fullAsteroid(), approach)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "close_approach_date")
}

func TestExtractFields_BadDateFails(t *testing.T) {
	approach := fullApproach()
	approach["close_approach_date"] = "07.01.2024"

	_, err := ingest.ExtractFields(fullAsteroid(), approach)
	require.Error(t, err)
}

func TestExtractFields_PresentButGarbageOptionalFails(t *testing.T) {
	// Присутствующее некорректное значение — ошибка, умолчание только
	// при отсутствии ключа.
	asteroid := fullAsteroid()
	asteroid["id"] = "not-a-number"

	_, err := ingest.ExtractFields(asteroid, fullApproach())
	require.Error(t, err)
}

func TestExtractFields_NumericTypesCoerced(t *testing.T) {
	// NeoWs отдаёт id строкой, а величины числами или строками вперемешку.
	asteroid := fullAsteroid()
	asteroid["id"] = float64(2465633)
	asteroid["absolute_magnitude_h"] = "18.31"

	approach := fullApproach()
	approach["miss_distance"].(map[string]interface{})["lunar"] = 117.7685671677

	rec, err := ingest.ExtractFields(asteroid, approach)
	require.NoError(t, err)
	assert.Equal(t, int64(2465633), rec.ID)
	assert.Equal(t, 18.31, rec.AbsoluteMagnitudeH)
	assert.Equal(t, 117.7685671677, rec.MissDistanceLunar)
}
