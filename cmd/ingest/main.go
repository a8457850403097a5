package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"neotrack/internal/clients"
	"neotrack/internal/config"
	"neotrack/internal/repository"
	"neotrack/internal/service"
	"neotrack/pkg/database"
	"neotrack/pkg/redis"

	"github.com/joho/godotenv"
)

// Офлайн-пайплайн. Стадии соответствуют последовательной передаче артефакта:
// fetch пишет JSON-файл, load читает его и наполняет хранилище.
func main() {
	stage := flag.String("stage", "all", "pipeline stage to run: fetch, load or all")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(database.Config{
		Driver:   cfg.DB.Driver,
		Path:     cfg.DB.Path,
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Redis нужен только сторожевому ключу Ingest; офлайн-прогон без него
	// не останавливаем.
	cacheRepo := repository.NewNoopCacheRepository()
	redisClient, err := redis.Connect(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Printf("Redis unavailable, continuing without ingest guard: %v", err)
	} else {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient)
	}

	neoRepo := repository.NewNEORepository(db)
	runRepo := repository.NewRunRepository(db)

	neoClient := clients.NewNEOClient(clients.NEOConfig{
		APIKey:  cfg.NASA.APIKey,
		FeedURL: cfg.NASA.FeedURL,
	})

	neoService := service.NewNEOService(neoRepo, runRepo, cacheRepo, neoClient, service.IngestConfig{
		StartDate:    cfg.Ingest.StartDate,
		RecordLimit:  cfg.Ingest.RecordLimit,
		WindowDays:   cfg.Ingest.WindowDays,
		RequestDelay: cfg.Ingest.RequestDelay,
		ArchivePath:  cfg.Ingest.ArchivePath,
	})

	switch *stage {
	case "fetch":
		runFetch(ctx, neoService)
	case "load":
		runLoad(ctx, neoService)
	case "all":
		runFetch(ctx, neoService)
		runLoad(ctx, neoService)
	default:
		log.Fatalf("Unknown stage %q, expected fetch, load or all", *stage)
	}
}

func runFetch(ctx context.Context, neoService service.NEOService) {
	run, err := neoService.FetchToArchive(ctx)
	if err != nil {
		log.Fatal("Fetch stage failed:", err)
	}
	log.Printf("Fetch stage finished: status=%s records=%d windows=%d",
		run.Status, run.RecordsCollected, run.WindowsFetched)
}

func runLoad(ctx context.Context, neoService service.NEOService) {
	count, err := neoService.LoadArchive(ctx)
	if err != nil {
		log.Fatal("Load stage failed:", err)
	}
	log.Printf("Load stage finished: %d records loaded", count)
}
