package ingest

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"neotrack/internal/clients"
	"neotrack/internal/models"
)

// Fetcher обходит фид NeoWs последовательными окнами фиксированной длины и
// накапливает плоские записи до достижения лимита.
type Fetcher struct {
	client      clients.NEOClient
	recordLimit int
	windowDays  int
	delay       time.Duration
}

// FetchResult — итог обхода: записи и число опрошенных окон.
type FetchResult struct {
	Records []models.NEORecord
	Windows int
}

func NewFetcher(client clients.NEOClient, recordLimit, windowDays int, delay time.Duration) *Fetcher {
	return &Fetcher{
		client:      client,
		recordLimit: recordLimit,
		windowDays:  windowDays,
		delay:       delay,
	}
}

// Run выполняет обход начиная с startDate. Окна идут встык: границы
// [start, start+windowDays] включительно, следующее окно стартует на день
// позже конца текущего. Ошибка фида прерывает цикл, но собранное к этому
// моменту возвращается вызывающей стороне вместе с ошибкой.
func (f *Fetcher) Run(ctx context.Context, startDate time.Time) (FetchResult, error) {
	collected := make([]models.NEORecord, 0, f.recordLimit)
	windowStart := startDate
	windows := 0

	for len(collected) < f.recordLimit {
		if err := ctx.Err(); err != nil {
			return FetchResult{Records: collected, Windows: windows}, err
		}

		windowEnd := windowStart.AddDate(0, 0, f.windowDays)

		feed, err := f.client.FetchFeed(ctx,
			windowStart.Format(dateLayout), windowEnd.Format(dateLayout))
		if err != nil {
			return FetchResult{Records: collected, Windows: windows},
				fmt.Errorf("fetch window %s..%s: %w",
					windowStart.Format(dateLayout), windowEnd.Format(dateLayout), err)
		}
		windows++

		collected, err = appendWindow(collected, feed, f.recordLimit)
		if err != nil {
			return FetchResult{Records: collected, Windows: windows}, err
		}

		windowStart = windowEnd.AddDate(0, 0, 1)

		log.Printf("Records collected so far: %d", len(collected))

		if len(collected) >= f.recordLimit {
			break
		}

		// Пауза между окнами, чтобы не упереться в лимиты API.
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return FetchResult{Records: collected, Windows: windows}, ctx.Err()
		}
	}

	return FetchResult{Records: collected, Windows: windows}, nil
}

// appendWindow разворачивает ответ одного окна в плоские записи. Объект без
// событий сближения не даёт ни одной записи. При достижении лимита обход
// вложенных списков обрывается досрочно — частичное окно допустимо.
func appendWindow(collected []models.NEORecord, feed map[string]interface{}, limit int) ([]models.NEORecord, error) {
	neos, _ := feed["near_earth_objects"].(map[string]interface{})

	// Даты обходятся по возрастанию: при усечении по лимиту посреди окна
	// состав и порядок записей не зависят от порядка обхода map.
	dates := make([]string, 0, len(neos))
	for date := range neos {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		list, ok := neos[date].([]interface{})
		if !ok {
			return collected, fmt.Errorf("unexpected feed entry for date %s", date)
		}
		for _, entry := range list {
			asteroid, ok := entry.(map[string]interface{})
			if !ok {
				return collected, fmt.Errorf("unexpected asteroid entry for date %s", date)
			}
			approaches, _ := asteroid["close_approach_data"].([]interface{})
			for _, raw := range approaches {
				approach, ok := raw.(map[string]interface{})
				if !ok {
					return collected, fmt.Errorf("unexpected approach entry for date %s", date)
				}
				rec, err := ExtractFields(asteroid, approach)
				if err != nil {
					return collected, err
				}
				collected = append(collected, rec)
				if len(collected) >= limit {
					return collected, nil
				}
			}
		}
	}

	return collected, nil
}
