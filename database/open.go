package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rpupo63/portfolio-backend/config"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// Open connects to the database selected by DB_TYPE:
//
//	postgres  DATABASE_URL
//	supa      SUPABASE_DB_HOST / _USER / _PASSWORD / _NAME / _PORT
//	sqlite    SQLITE_PATH (default portfolio.db)
//
// DB_REPLICA_URLS registers comma separated postgres read replicas.
func Open(cfg map[string]string) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Duration(config.GetInt(cfg, "DB_SLOW_QUERY_MS", 500)) * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  config.GetBool(cfg, "DB_LOG_COLOR", true),
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if replicas := config.GetList(cfg, "DB_REPLICA_URLS"); len(replicas) > 0 {
		dialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, dsn := range replicas {
			dialectors = append(dialectors, postgres.Open(dsn))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: dialectors,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("register read replicas: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if _, isSQLite := dialector.(*sqlite.Dialector); isSQLite {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(config.GetInt(cfg, "DB_MAX_IDLE_CONNS", 10))
		sqlDB.SetMaxOpenConns(config.GetInt(cfg, "DB_MAX_OPEN_CONNS", 50))
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	return db, nil
}

func dialectorFor(cfg map[string]string) (gorm.Dialector, error) {
	switch dbType := config.GetString(cfg, "DB_TYPE", "postgres"); dbType {
	case "postgres":
		dsn := config.GetString(cfg, "DATABASE_URL", "")
		if dsn == "" {
			return nil, errs.NewEnvironmentVariableError("DATABASE_URL")
		}
		return postgres.New(postgres.Config{DSN: dsn}), nil
	case "supa":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(cfg, "SUPABASE_DB_HOST", ""),
			config.GetString(cfg, "SUPABASE_DB_USER", ""),
			config.GetString(cfg, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(cfg, "SUPABASE_DB_NAME", ""),
			config.GetString(cfg, "SUPABASE_DB_PORT", "5432"),
		)
		return postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), nil
	case "sqlite":
		path := config.GetString(cfg, "SQLITE_PATH", "portfolio.db")
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return sqlite.Open(path + sep + "_foreign_keys=on&_busy_timeout=5000"), nil
	default:
		return nil, errs.NewConfigError("DB_TYPE", fmt.Errorf("unsupported DB_TYPE %q", dbType))
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
