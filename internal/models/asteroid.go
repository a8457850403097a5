package models

// Asteroid — родительская сущность каталога. Первичный ключ приходит из
// NeoWs как есть, повторная загрузка перезаписывает атрибуты.
type Asteroid struct {
	ID                             int64   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name                           string  `gorm:"type:text" json:"name"`
	AbsoluteMagnitudeH             float64 `json:"absolute_magnitude_h"`
	EstimatedDiameterMinKM         float64 `gorm:"column:estimated_diameter_min_km" json:"estimated_diameter_min_km"`
	EstimatedDiameterMaxKM         float64 `gorm:"column:estimated_diameter_max_km" json:"estimated_diameter_max_km"`
	IsPotentiallyHazardousAsteroid int     `gorm:"not null;default:0" json:"is_potentially_hazardous_asteroid"`
}

func (Asteroid) TableName() string {
	return "asteroids"
}

// CloseApproach — событие сближения. Собственного ключа нет, повторная
// загрузка того же окна добавляет дубликаты строк (известное поведение).
type CloseApproach struct {
	NeoReferenceID       int64   `gorm:"index" json:"neo_reference_id"`
	CloseApproachDate    string  `gorm:"type:date;index" json:"close_approach_date"`
	RelativeVelocityKMPH float64 `gorm:"column:relative_velocity_kmph" json:"relative_velocity_kmph"`
	Astronomical         float64 `json:"astronomical"`
	MissDistanceKM       float64 `gorm:"column:miss_distance_km" json:"miss_distance_km"`
	MissDistanceLunar    float64 `json:"miss_distance_lunar"`
	OrbitingBody         string  `gorm:"type:text" json:"orbiting_body"`
}

func (CloseApproach) TableName() string {
	return "close_approach"
}
