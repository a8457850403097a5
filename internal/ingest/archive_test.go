package ingest_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"neotrack/internal/ingest"
	"neotrack/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "records.json")

	records := []models.NEORecord{
		{
			ID:                             1,
			NeoReferenceID:                 1,
			Name:                           "(2020 AB)",
			AbsoluteMagnitudeH:             22.1,
			EstimatedDiameterMinKM:         0.1,
			EstimatedDiameterMaxKM:         0.3,
			IsPotentiallyHazardousAsteroid: true,
			CloseApproachDate:              "2024-02-11",
			RelativeVelocityKMPH:           61234.5,
			Astronomical:                   0.04,
			MissDistanceKM:                 5984000,
			MissDistanceLunar:              15.5,
			OrbitingBody:                   "Earth",
		},
		{ID: 2, NeoReferenceID: 2, Name: "(2021 CD)", CloseApproachDate: "2024-02-12"},
	}

	require.NoError(t, ingest.WriteArchive(path, records))

	loaded, err := ingest.ReadArchive(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestArchive_FieldNamesMatchContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")

	require.NoError(t, ingest.WriteArchive(path, []models.NEORecord{{ID: 7, Name: "x"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)

	for _, field := range []string{
		"id", "neo_reference_id", "name", "absolute_magnitude_h",
		"estimated_diameter_min_km", "estimated_diameter_max_km",
		"is_potentially_hazardous_asteroid", "close_approach_date",
		"relative_velocity_kmph", "astronomical", "miss_distance_km",
		"miss_distance_lunar", "orbiting_body",
	} {
		assert.Contains(t, decoded[0], field)
	}
}

func TestArchive_ReadMissingFileFails(t *testing.T) {
	_, err := ingest.ReadArchive(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
