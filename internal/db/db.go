package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dailyfocus/dailyfocus-backend/internal/logger"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
	"github.com/dailyfocus/dailyfocus-backend/internal/utils"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New connects to Postgres when POSTGRES_HOST is set, otherwise falls back
// to a local sqlite file so the backend runs without any infrastructure.
func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "", log)

	var dialector gorm.Dialector
	if postgresHost != "" {
		postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
		postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
		postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		postgresName := utils.GetEnv("POSTGRES_NAME", "dailyfocus", log)

		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

		serviceLog.Info("Connecting to Postgres...", "host", postgresHost, "db", postgresName)
		dialector = postgres.Open(dsn)
	} else {
		sqlitePath := utils.GetEnv("SQLITE_PATH", "dailyfocus.db", log)
		serviceLog.Info("POSTGRES_HOST not set, using sqlite", "path", sqlitePath)
		dialector = sqlite.Open(sqlitePath)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Conversation{},
		&types.Message{},
		&types.AnalysisReport{},
		&types.UserProfile{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
