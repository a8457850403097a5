package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"neotrack/internal/catalog"
	"neotrack/internal/clients"
	"neotrack/internal/config"
	"neotrack/internal/middleware"
	"neotrack/internal/repository"
	"neotrack/internal/service"
	"neotrack/internal/worker"
	"neotrack/pkg/database"
	"neotrack/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func main() {
	// Загрузка .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("=== NEO Tracker Backend Starting ===")

	cfg := config.Load()

	// Подключение к хранилищу
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

	// Подключение к Redis
	redisClient, err := redis.Connect(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer redisClient.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Репозитории
	neoRepo := repository.NewNEORepository(db)
	runRepo := repository.NewRunRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	neoClient := clients.NewNEOClient(clients.NEOConfig{
		APIKey:  cfg.NASA.APIKey,
		FeedURL: cfg.NASA.FeedURL,
	})

	// Сервисы
	neoService := service.NewNEOService(neoRepo, runRepo, cacheRepo, neoClient, service.IngestConfig{
		StartDate:    cfg.Ingest.StartDate,
		RecordLimit:  cfg.Ingest.RecordLimit,
		WindowDays:   cfg.Ingest.WindowDays,
		RequestDelay: cfg.Ingest.RequestDelay,
		ArchivePath:  cfg.Ingest.ArchivePath,
	})

	dialect := catalog.DialectSQLite
	if cfg.DB.Driver == "postgres" {
		dialect = catalog.DialectPostgres
	}
	catalogService := service.NewCatalogService(catalogRepo, cacheRepo, dialect, os.TempDir())

	// Фоновый воркер загрузки (по умолчанию выключен)
	scheduler := worker.NewScheduler()
	if cfg.Workers.NEOEnabled {
		scheduler.AddWorker(worker.NewNEOWorker(neoService, cfg.Workers.NEOInterval))
		log.Printf("NEO Worker enabled (interval: %v)", cfg.Workers.NEOInterval)
	}
	go scheduler.Start()
	defer scheduler.Stop()

	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS для фронтенда
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", cfg.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiting (только для продакшена)
	if !cfg.App.Debug {
		limiter := middleware.NewIPRateLimiter(
			rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
		r.Use(middleware.RateLimitMiddleware(limiter))
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d",
			cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	api := r.Group("/api/v1")

	// 1. Каталог запросов
	api.GET("/catalog/queries", func(c *gin.Context) {
		c.JSON(200, gin.H{"queries": catalogService.QueryNames()})
	})

	api.GET("/catalog/run", func(c *gin.Context) {
		ctx := c.Request.Context()

		name := c.Query("name")
		filters, err := parseFilters(c)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		result, err := catalogService.RunQuery(ctx, name, filters)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to run catalog query"})
			return
		}

		c.JSON(200, gin.H{
			"name":    name,
			"columns": result.Columns,
			"rows":    result.Rows,
			"count":   len(result.Rows),
		})
	})

	api.GET("/catalog/export", func(c *gin.Context) {
		ctx := c.Request.Context()

		name := c.Query("name")
		filters, err := parseFilters(c)
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		path, err := catalogService.ExportQuery(ctx, name, filters)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to export catalog query"})
			return
		}

		c.FileAttachment(path, "neo_catalog.xlsx")
	})

	// 2. Каталог астероидов
	api.GET("/asteroids", func(c *gin.Context) {
		ctx := c.Request.Context()
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		asteroids, err := neoService.GetAsteroids(ctx, page, limit)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to get asteroids"})
			return
		}

		c.JSON(200, gin.H{"items": asteroids})
	})

	// 3. История прогонов
	api.GET("/runs", func(c *gin.Context) {
		ctx := c.Request.Context()
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		runs, err := neoService.GetRecentRuns(ctx, limit)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to get ingest runs"})
			return
		}

		c.JSON(200, gin.H{"items": runs})
	})

	// 4. Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services": gin.H{
				"database": "connected",
				"redis":    "connected",
				"neo_api":  "enabled",
			},
		})
	})

	// 5. Системная статистика
	api.GET("/system/stats", func(c *gin.Context) {
		ctx := c.Request.Context()

		redisStats, _ := redis.GetStats(redisClient)
		asteroidCount, _ := neoService.CountAsteroids(ctx)
		approachCount, _ := neoService.CountApproaches(ctx)

		c.JSON(200, gin.H{
			"database": gin.H{
				"asteroids":        asteroidCount,
				"close_approaches": approachCount,
			},
			"redis": redisStats,
			"workers": gin.H{
				"neo_enabled": cfg.Workers.NEOEnabled,
			},
		})
	})

	// 6. Ручной перезапуск загрузки (для дебага)
	if cfg.App.Debug {
		api.POST("/refresh/neo", func(c *gin.Context) {
			ctx := c.Request.Context()
			if err := neoService.Ingest(ctx); err != nil {
				c.JSON(500, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"message": "NEO data refreshed"})
		})
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.App.Port)
		log.Printf("API available at http://localhost:%s/api/v1", cfg.App.Port)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited properly")
}

// parseFilters читает шесть параметров фильтра из query string. Значения по
// умолчанию совпадают с виджетами исходного дашборда.
func parseFilters(c *gin.Context) (catalog.Filters, error) {
	defaults := catalog.DefaultFilters()
	filters := catalog.Filters{}

	startDate := c.DefaultQuery("start_date", defaults.StartDate)
	if _, err := time.Parse("2006-01-02", startDate); err != nil {
		return filters, errors.New("invalid start_date, expected YYYY-MM-DD")
	}
	endDate := c.DefaultQuery("end_date", defaults.EndDate)
	if _, err := time.Parse("2006-01-02", endDate); err != nil {
		return filters, errors.New("invalid end_date, expected YYYY-MM-DD")
	}

	velocityMin, err := strconv.ParseFloat(
		c.DefaultQuery("velocity_min", strconv.FormatFloat(defaults.VelocityMin, 'f', -1, 64)), 64)
	if err != nil || velocityMin < 0 {
		return filters, errors.New("invalid velocity_min")
	}
	astroLimit, err := strconv.ParseFloat(
		c.DefaultQuery("astro_limit", strconv.FormatFloat(defaults.AstroLimit, 'f', -1, 64)), 64)
	if err != nil || astroLimit < 0 {
		return filters, errors.New("invalid astro_limit")
	}
	lunarLimit, err := strconv.ParseFloat(
		c.DefaultQuery("lunar_limit", strconv.FormatFloat(defaults.LunarLimit, 'f', -1, 64)), 64)
	if err != nil || lunarLimit < 0 {
		return filters, errors.New("invalid lunar_limit")
	}

	hazardous := c.DefaultQuery("hazardous", defaults.Hazardous)
	switch hazardous {
	case catalog.HazardousAll, catalog.HazardousYes, catalog.HazardousNo:
	default:
		return filters, errors.New("invalid hazardous, expected All, Yes or No")
	}

	filters.StartDate = startDate
	filters.EndDate = endDate
	filters.VelocityMin = velocityMin
	filters.AstroLimit = astroLimit
	filters.LunarLimit = lunarLimit
	filters.Hazardous = hazardous
	return filters, nil
}
