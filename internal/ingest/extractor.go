package ingest

import (
	"fmt"
	"strconv"
	"time"

	"neotrack/internal/models"
)

const dateLayout = "2006-01-02"

// ExtractFields превращает пару (объект, событие сближения) из фида NeoWs в
// одну плоскую запись. Скалярные поля объекта и orbiting_body при отсутствии
// получают нулевые значения; вложенные diameter/velocity/miss_distance и дата
// сближения обязательны — их отсутствие роняет запись целиком.
func ExtractFields(asteroid, approach map[string]interface{}) (models.NEORecord, error) {
	var rec models.NEORecord
	var err error

	if rec.ID, err = optionalInt(asteroid, "id"); err != nil {
		return models.NEORecord{}, err
	}
	if rec.NeoReferenceID, err = optionalInt(asteroid, "neo_reference_id"); err != nil {
		return models.NEORecord{}, err
	}
	rec.Name = optionalString(asteroid, "name")
	if rec.AbsoluteMagnitudeH, err = optionalFloat(asteroid, "absolute_magnitude_h"); err != nil {
		return models.NEORecord{}, err
	}
	rec.IsPotentiallyHazardousAsteroid = optionalBool(asteroid, "is_potentially_hazardous_asteroid")

	kilometers, err := nestedMap(asteroid, "estimated_diameter", "kilometers")
	if err != nil {
		return models.NEORecord{}, err
	}
	if rec.EstimatedDiameterMinKM, err = requiredFloat(kilometers, "estimated_diameter_min"); err != nil {
		return models.NEORecord{}, err
	}
	if rec.EstimatedDiameterMaxKM, err = requiredFloat(kilometers, "estimated_diameter_max"); err != nil {
		return models.NEORecord{}, err
	}

	dateRaw, ok := approach["close_approach_date"].(string)
	if !ok {
		return models.NEORecord{}, fmt.Errorf("missing field close_approach_date")
	}
	parsed, err := time.Parse(dateLayout, dateRaw)
	if err != nil {
		return models.NEORecord{}, fmt.Errorf("parse close_approach_date %q: %w", dateRaw, err)
	}
	rec.CloseApproachDate = parsed.Format(dateLayout)

	velocity, err := nestedMap(approach, "relative_velocity")
	if err != nil {
		return models.NEORecord{}, err
	}
	if rec.RelativeVelocityKMPH, err = requiredFloat(velocity, "kilometers_per_hour"); err != nil {
		return models.NEORecord{}, err
	}

	missDistance, err := nestedMap(approach, "miss_distance")
	if err != nil {
		return models.NEORecord{}, err
	}
	if rec.Astronomical, err = requiredFloat(missDistance, "astronomical"); err != nil {
		return models.NEORecord{}, err
	}
	if rec.MissDistanceKM, err = requiredFloat(missDistance, "kilometers"); err != nil {
		return models.NEORecord{}, err
	}
	if rec.MissDistanceLunar, err = requiredFloat(missDistance, "lunar"); err != nil {
		return models.NEORecord{}, err
	}

	rec.OrbitingBody = optionalString(approach, "orbiting_body")

	return rec, nil
}

// nestedMap спускается по цепочке вложенных объектов; обрыв цепочки — ошибка.
func nestedMap(data map[string]interface{}, keys ...string) (map[string]interface{}, error) {
	current := data
	for _, key := range keys {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("missing nested field %s", key)
		}
		current = next
	}
	return current, nil
}

func optionalString(data map[string]interface{}, key string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func optionalBool(data map[string]interface{}, key string) bool {
	if val, ok := data[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}

// optionalInt возвращает 0 при отсутствии ключа, но присутствующее
// некорректное значение — ошибка, а не умолчание.
func optionalInt(data map[string]interface{}, key string) (int64, error) {
	val, ok := data[key]
	if !ok || val == nil {
		return 0, nil
	}
	return coerceInt(key, val)
}

func optionalFloat(data map[string]interface{}, key string) (float64, error) {
	val, ok := data[key]
	if !ok || val == nil {
		return 0, nil
	}
	return coerceFloat(key, val)
}

func requiredFloat(data map[string]interface{}, key string) (float64, error) {
	val, ok := data[key]
	if !ok {
		return 0, fmt.Errorf("missing field %s", key)
	}
	return coerceFloat(key, val)
}

// NeoWs отдаёт числа то строками, то числами — принимаем оба варианта.
func coerceInt(key string, val interface{}) (int64, error) {
	switch v := val.(type) {
	case float64:
		return int64(v), nil
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("field %s: %w", key, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("field %s: unexpected type %T", key, val)
	}
}

func coerceFloat(key string, val interface{}) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("field %s: %w", key, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("field %s: unexpected type %T", key, val)
	}
}
