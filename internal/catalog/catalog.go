package catalog

import (
	"fmt"
)

// Dialect выбирает SQL-функции, различающиеся между хранилищами.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Значения категориального фильтра опасности.
const (
	HazardousAll = "All"
	HazardousYes = "Yes"
	HazardousNo  = "No"
)

// Filters — пять скалярных ограничений дашборда плюс категориальный
// фильтр опасности. Даты в формате YYYY-MM-DD.
type Filters struct {
	StartDate   string
	EndDate     string
	VelocityMin float64
	AstroLimit  float64
	LunarLimit  float64
	Hazardous   string
}

// Query — параметризованный SQL с привязанными аргументами. Значения
// фильтров никогда не интерполируются в текст запроса.
type Query struct {
	SQL  string
	Args []interface{}
}

// Names возвращает имена запросов каталога в порядке исходного меню.
func Names() []string {
	return []string{
		"All Filtered Asteroids",
		"Count asteroid approaches",
		"Average velocity of each asteroid",
		"Top 10 fastest asteroids",
		"Hazardous asteroids with >3 approaches",
		"Month with most approaches",
		"Fastest ever asteroid approach",
		"Asteroids sorted by max estimated diameter",
		"Asteroids getting closer over time",
		"Closest approach details by asteroid",
		"Asteroids with velocity > 50000 km/h",
		"Approaches per month",
		"Asteroid with highest brightness (lowest magnitude)",
		"Hazardous vs non-hazardous asteroid count",
		"Hazardous vs non-hazardous approach events",
		"Asteroids closer than Moon",
		"Asteroids within 0.05 AU",
		"Asteroids with maximum relative velocity",
		"Asteroids with the closest approach to Earth",
		"Asteroids with the highest estimated diameter",
		"Asteroids approaching at high velocity",
		"Asteroids approaching Earth during a specific month",
		"Asteroids with highest approach frequency",
		"Asteroids with the highest miss distance",
		"Asteroids with multiple approaches in a month",
		"Asteroids that are both fast and hazardous",
		"Asteroids with increasing approach velocity over time",
	}
}

// BuildPredicate собирает общий предикат из пяти ограничений. Ветка
// опасности добавляет литерал 0/1 из закрытого перечисления, остальные
// значения уходят плейсхолдерами.
func BuildPredicate(f Filters) (string, []interface{}) {
	clause := "ca.close_approach_date BETWEEN ? AND ?" +
		" AND ca.astronomical < ?" +
		" AND ca.miss_distance_lunar < ?" +
		" AND ca.relative_velocity_kmph >= ?"
	args := []interface{}{f.StartDate, f.EndDate, f.AstroLimit, f.LunarLimit, f.VelocityMin}

	switch f.Hazardous {
	case HazardousYes:
		clause += " AND a.is_potentially_hazardous_asteroid = 1"
	case HazardousNo:
		clause += " AND a.is_potentially_hazardous_asteroid = 0"
	}

	return clause, args
}

// fromJoined — общий источник: события с присоединённым родителем. Джойн
// присутствует во всех запросах с предикатом, чтобы ветка опасности всегда
// разрешалась.
const fromJoined = "FROM close_approach ca JOIN asteroids a ON ca.neo_reference_id = a.id"

// monthOf возвращает выражение усечения даты до месяца YYYY-MM.
func monthOf(d Dialect, expr string) string {
	if d == DialectPostgres {
		return "to_char(" + expr + "::date, 'YYYY-MM')"
	}
	return "STRFTIME('%Y-%m', " + expr + ")"
}

// Build отображает имя запроса и фильтры в параметризованный SQL.
// Неизвестное имя — ok=false: дашборд отрисует пустую таблицу.
func Build(name string, f Filters, d Dialect) (Query, bool) {
	where, args := BuildPredicate(f)

	switch name {
	case "All Filtered Asteroids":
		return Query{
			SQL: "SELECT a.name, a.absolute_magnitude_h, a.estimated_diameter_min_km," +
				" a.estimated_diameter_max_km, a.is_potentially_hazardous_asteroid," +
				" ca.close_approach_date, ca.relative_velocity_kmph," +
				" ca.astronomical, ca.miss_distance_lunar " +
				fromJoined + " WHERE " + where + " LIMIT 10000",
			Args: args,
		}, true

	case "Count asteroid approaches":
		return Query{
			SQL: "SELECT ca.neo_reference_id, COUNT(*) AS approach_count " +
				fromJoined + " WHERE " + where +
				" GROUP BY ca.neo_reference_id LIMIT 10000",
			Args: args,
		}, true

	case "Average velocity of each asteroid":
		return Query{
			SQL: "SELECT ca.neo_reference_id, AVG(ca.relative_velocity_kmph) AS avg_velocity " +
				fromJoined + " WHERE " + where +
				" GROUP BY ca.neo_reference_id LIMIT 10000",
			Args: args,
		}, true

	case "Top 10 fastest asteroids":
		return Query{
			SQL: "SELECT ca.neo_reference_id, MAX(ca.relative_velocity_kmph) AS max_velocity " +
				fromJoined + " WHERE " + where +
				" GROUP BY ca.neo_reference_id ORDER BY max_velocity DESC LIMIT 10",
			Args: args,
		}, true

	case "Hazardous asteroids with >3 approaches":
		// Намеренно игнорирует общий предикат: глобальный счёт по опасным.
		return Query{
			SQL: "SELECT ca.neo_reference_id, COUNT(*) AS approach_count " +
				fromJoined +
				" WHERE a.is_potentially_hazardous_asteroid = 1" +
				" GROUP BY ca.neo_reference_id HAVING COUNT(*) > 3 LIMIT 10000",
		}, true

	case "Month with most approaches":
		return Query{
			SQL: "SELECT " + monthOf(d, "ca.close_approach_date") + " AS month, COUNT(*) AS total " +
				fromJoined + " WHERE " + where +
				" GROUP BY month ORDER BY total DESC LIMIT 1",
			Args: args,
		}, true

	case "Fastest ever asteroid approach":
		// Глобальный экстремум, предикат не применяется.
		return Query{
			SQL: "SELECT ca.neo_reference_id, ca.relative_velocity_kmph, ca.close_approach_date" +
				" FROM close_approach ca" +
				" WHERE ca.relative_velocity_kmph = (SELECT MAX(relative_velocity_kmph) FROM close_approach)" +
				" LIMIT 1",
		}, true

	case "Asteroids sorted by max estimated diameter":
		return Query{
			SQL: "SELECT id, name, estimated_diameter_max_km FROM asteroids" +
				" ORDER BY estimated_diameter_max_km DESC LIMIT 10",
		}, true

	case "Asteroids getting closer over time":
		return Query{
			SQL: "SELECT ca.neo_reference_id, ca.close_approach_date, ca.miss_distance_lunar " +
				fromJoined + " WHERE " + where +
				" ORDER BY ca.neo_reference_id, ca.close_approach_date",
			Args: args,
		}, true

	case "Closest approach details by asteroid":
		// Дата ближайшего сближения берётся через соединение с агрегатом,
		// а не голой колонкой при GROUP BY: такую форму принимают оба
		// диалекта. Минимум считается по отфильтрованным событиям.
		minPerAsteroid := "SELECT ca.neo_reference_id AS ref, MIN(ca.miss_distance_lunar) AS min_lunar " +
			fromJoined + " WHERE " + where + " GROUP BY ca.neo_reference_id"
		return Query{
			SQL: "SELECT a.name, ca.close_approach_date, ca.miss_distance_lunar AS closest " +
				fromJoined +
				" JOIN (" + minPerAsteroid + ") m" +
				" ON m.ref = ca.neo_reference_id AND ca.miss_distance_lunar = m.min_lunar" +
				" WHERE " + where + " LIMIT 10000",
			Args: append(append([]interface{}{}, args...), args...),
		}, true

	case "Asteroids with velocity > 50000 km/h":
		return Query{
			SQL: "SELECT a.name, ca.relative_velocity_kmph, ca.close_approach_date " +
				fromJoined +
				" WHERE ca.relative_velocity_kmph > 50000 AND " + where +
				" LIMIT 10000",
			Args: args,
		}, true

	case "Approaches per month":
		return Query{
			SQL: "SELECT " + monthOf(d, "ca.close_approach_date") + " AS month, COUNT(*) AS count " +
				fromJoined + " WHERE " + where +
				" GROUP BY month LIMIT 10000",
			Args: args,
		}, true

	case "Asteroid with highest brightness (lowest magnitude)":
		return Query{
			SQL: "SELECT id, name, absolute_magnitude_h FROM asteroids" +
				" ORDER BY absolute_magnitude_h ASC LIMIT 1",
		}, true

	case "Hazardous vs non-hazardous asteroid count":
		// Применяет базовый предикат без ветки опасности — она и есть
		// группирующий признак.
		base, baseArgs := BuildPredicate(Filters{
			StartDate:   f.StartDate,
			EndDate:     f.EndDate,
			VelocityMin: f.VelocityMin,
			AstroLimit:  f.AstroLimit,
			LunarLimit:  f.LunarLimit,
			Hazardous:   HazardousAll,
		})
		return Query{
			SQL: "SELECT hazard_status, COUNT(*) AS count FROM (" +
				"SELECT CASE WHEN a.is_potentially_hazardous_asteroid = 1" +
				" THEN 'Hazardous' ELSE 'Non-Hazardous' END AS hazard_status " +
				fromJoined + " WHERE " + base + " LIMIT 10000" +
				") AS grouped GROUP BY hazard_status",
			Args: baseArgs,
		}, true

	case "Hazardous vs non-hazardous approach events":
		return Query{
			SQL: "SELECT CASE WHEN a.is_potentially_hazardous_asteroid = 1" +
				" THEN 'Hazardous' ELSE 'Non-Hazardous' END AS hazard_status," +
				" COUNT(*) AS count " +
				fromJoined + " WHERE " + where +
				" GROUP BY hazard_status LIMIT 10000",
			Args: args,
		}, true

	case "Asteroids closer than Moon":
		// Порог < 1.0 лунной дистанции зашит в запрос поверх предиката.
		return Query{
			SQL: "SELECT a.name, ca.close_approach_date, ca.miss_distance_lunar " +
				fromJoined +
				" WHERE ca.miss_distance_lunar < 1.0 AND " + where +
				" LIMIT 10000",
			Args: args,
		}, true

	case "Asteroids within 0.05 AU":
		return Query{
			SQL: "SELECT a.name, ca.close_approach_date, ca.astronomical " +
				fromJoined +
				" WHERE ca.astronomical < 0.05 AND " + where +
				" LIMIT 10000",
			Args: args,
		}, true

	case "Asteroids with maximum relative velocity":
		return Query{
			SQL: "SELECT a.name, ca.relative_velocity_kmph, ca.close_approach_date " +
				fromJoined + " WHERE " + where +
				" ORDER BY ca.relative_velocity_kmph DESC LIMIT 10",
			Args: args,
		}, true

	case "Asteroids with the closest approach to Earth":
		return Query{
			SQL: "SELECT a.name, ca.close_approach_date, ca.miss_distance_lunar " +
				fromJoined + " WHERE " + where +
				" ORDER BY ca.miss_distance_lunar ASC LIMIT 10",
			Args: args,
		}, true

	case "Asteroids with the highest estimated diameter":
		return Query{
			SQL: "SELECT a.name, a.estimated_diameter_max_km, a.estimated_diameter_min_km" +
				" FROM asteroids a JOIN close_approach ca ON ca.neo_reference_id = a.id" +
				" WHERE " + where +
				" ORDER BY a.estimated_diameter_max_km DESC LIMIT 10",
			Args: args,
		}, true

	case "Asteroids approaching at high velocity":
		return Query{
			SQL: "SELECT a.name, ca.relative_velocity_kmph, ca.close_approach_date " +
				fromJoined +
				" WHERE ca.relative_velocity_kmph > 60000 AND " + where +
				" LIMIT 10",
			Args: args,
		}, true

	case "Asteroids approaching Earth during a specific month":
		// Месяц берётся из StartDate и привязывается параметром.
		monthArgs := append([]interface{}{f.StartDate}, args...)
		return Query{
			SQL: "SELECT a.name, ca.close_approach_date, ca.miss_distance_lunar " +
				fromJoined +
				" WHERE " + monthOf(d, "ca.close_approach_date") + " = " + monthOf(d, "?") +
				" AND " + where +
				" LIMIT 10",
			Args: monthArgs,
		}, true

	case "Asteroids with highest approach frequency":
		return Query{
			SQL: "SELECT ca.neo_reference_id, COUNT(*) AS approach_count " +
				fromJoined + " WHERE " + where +
				" GROUP BY ca.neo_reference_id ORDER BY approach_count DESC LIMIT 10",
			Args: args,
		}, true

	case "Asteroids with the highest miss distance":
		return Query{
			SQL: "SELECT a.name, ca.close_approach_date, ca.miss_distance_lunar " +
				fromJoined + " WHERE " + where +
				" ORDER BY ca.miss_distance_lunar DESC LIMIT 10",
			Args: args,
		}, true

	case "Asteroids with multiple approaches in a month":
		return Query{
			SQL: "SELECT ca.neo_reference_id, " + monthOf(d, "ca.close_approach_date") + " AS month," +
				" COUNT(*) AS approach_count " +
				fromJoined + " WHERE " + where +
				" GROUP BY ca.neo_reference_id, month HAVING COUNT(*) > 1 LIMIT 10",
			Args: args,
		}, true

	case "Asteroids that are both fast and hazardous":
		return Query{
			SQL: "SELECT a.name, ca.relative_velocity_kmph, ca.close_approach_date " +
				fromJoined +
				" WHERE ca.relative_velocity_kmph > 50000" +
				" AND a.is_potentially_hazardous_asteroid = 1 AND " + where +
				" LIMIT 10",
			Args: args,
		}, true

	case "Asteroids with increasing approach velocity over time":
		return Query{
			SQL: "SELECT ca.neo_reference_id, ca.close_approach_date, ca.relative_velocity_kmph " +
				fromJoined + " WHERE " + where +
				" ORDER BY ca.neo_reference_id, ca.close_approach_date",
			Args: args,
		}, true
	}

	return Query{}, false
}

// DefaultFilters — значения виджетов исходного дашборда.
func DefaultFilters() Filters {
	return Filters{
		StartDate:   "2024-01-01",
		EndDate:     "2025-01-01",
		VelocityMin: 0,
		AstroLimit:  0.5,
		LunarLimit:  10.0,
		Hazardous:   HazardousAll,
	}
}

// CacheKey — устойчивый ключ для кэширования результата запроса.
func (f Filters) CacheKey(name string) string {
	return fmt.Sprintf("catalog:%s:%s:%s:%g:%g:%g:%s",
		name, f.StartDate, f.EndDate, f.VelocityMin, f.AstroLimit, f.LunarLimit, f.Hazardous)
}
