package worker

import (
	"context"
	"log"
	"time"

	"neotrack/internal/service"
)

// NEOWorker периодически перезапускает пайплайн загрузки. Полный прогон
// занимает минуты и добавляет дубликаты событий при пересечении окон,
// поэтому воркер включается явно через конфигурацию.
type NEOWorker struct {
	service  service.NEOService
	interval time.Duration
	stopChan chan struct{}
	running  bool
}

func NewNEOWorker(service service.NEOService, interval time.Duration) *NEOWorker {
	return &NEOWorker{
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (w *NEOWorker) Start() {
	if w.running {
		return
	}

	w.running = true
	log.Printf("NEO Worker started with interval %v", w.interval)

	w.runIngest()

	go w.run()
}

func (w *NEOWorker) Stop() {
	if !w.running {
		return
	}

	close(w.stopChan)
	w.running = false
	log.Println("NEO Worker stopped")
}

func (w *NEOWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runIngest()
		case <-w.stopChan:
			return
		}
	}
}

func (w *NEOWorker) runIngest() {
	// Полный обход при лимите 10000 записей укладывается в полчаса с запасом.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	log.Println("NEO Worker: starting ingest...")

	if err := w.service.Ingest(ctx); err != nil {
		log.Printf("NEO Worker ingest error: %v", err)
		return
	}

	log.Println("NEO Worker: ingest completed")
}
