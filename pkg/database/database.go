package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"neotrack/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Connect открывает хранилище. По умолчанию — sqlite-файл (артефакт,
// передаваемый между стадиями), для серверного деплоя — postgres.
func Connect(config Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var db *gorm.DB
	var err error

	switch config.Driver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
		)
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	case "sqlite", "":
		if dir := filepath.Dir(config.Path); dir != "." {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				return nil, fmt.Errorf("create db dir: %w", mkErr)
			}
		}
		db, err = gorm.Open(sqlite.Open(config.Path), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", config.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if config.Driver == "postgres" {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		// Запись в sqlite идёт одним процессом, пул не нужен.
		sqlDB.SetMaxOpenConns(1)
	}

	log.Println("Database connected successfully")
	return db, nil
}

// Migrate создаёт схему, если её ещё нет. Повторный запуск безопасен.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Asteroid{},
		&models.CloseApproach{},
		&models.IngestRun{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migration completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	// Почти все запросы каталога фильтруют по дате и джойнят по ссылке.
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_close_approach_ref_date ON close_approach(neo_reference_id, close_approach_date)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_close_approach_velocity ON close_approach(relative_velocity_kmph)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_close_approach_lunar ON close_approach(miss_distance_lunar)").Error; err != nil {
		return err
	}
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_ingest_runs_started_at ON ingest_runs(started_at)").Error; err != nil {
		return err
	}
	return nil
}
