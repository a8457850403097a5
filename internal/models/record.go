package models

// NEORecord — плоская запись пайплайна: одна пара (астероид, сближение).
// Формат полей совпадает с промежуточным JSON-артефактом один в один.
type NEORecord struct {
	ID                             int64   `json:"id"`
	NeoReferenceID                 int64   `json:"neo_reference_id"`
	Name                           string  `json:"name"`
	AbsoluteMagnitudeH             float64 `json:"absolute_magnitude_h"`
	EstimatedDiameterMinKM         float64 `json:"estimated_diameter_min_km"`
	EstimatedDiameterMaxKM         float64 `json:"estimated_diameter_max_km"`
	IsPotentiallyHazardousAsteroid bool    `json:"is_potentially_hazardous_asteroid"`
	CloseApproachDate              string  `json:"close_approach_date"`
	RelativeVelocityKMPH           float64 `json:"relative_velocity_kmph"`
	Astronomical                   float64 `json:"astronomical"`
	MissDistanceKM                 float64 `json:"miss_distance_km"`
	MissDistanceLunar              float64 `json:"miss_distance_lunar"`
	OrbitingBody                   string  `json:"orbiting_body"`
}

// AsteroidRow возвращает проекцию записи для таблицы asteroids.
func (r NEORecord) AsteroidRow() Asteroid {
	hazardous := 0
	if r.IsPotentiallyHazardousAsteroid {
		hazardous = 1
	}
	return Asteroid{
		ID:                             r.ID,
		Name:                           r.Name,
		AbsoluteMagnitudeH:             r.AbsoluteMagnitudeH,
		EstimatedDiameterMinKM:         r.EstimatedDiameterMinKM,
		EstimatedDiameterMaxKM:         r.EstimatedDiameterMaxKM,
		IsPotentiallyHazardousAsteroid: hazardous,
	}
}

// CloseApproachRow возвращает проекцию записи для таблицы close_approach.
func (r NEORecord) CloseApproachRow() CloseApproach {
	return CloseApproach{
		NeoReferenceID:       r.NeoReferenceID,
		CloseApproachDate:    r.CloseApproachDate,
		RelativeVelocityKMPH: r.RelativeVelocityKMPH,
		Astronomical:         r.Astronomical,
		MissDistanceKM:       r.MissDistanceKM,
		MissDistanceLunar:    r.MissDistanceLunar,
		OrbitingBody:         r.OrbitingBody,
	}
}
