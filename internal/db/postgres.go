package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/types"
	"github.com/wolverine5550/lexsona-backend/internal/utils"
)

type DatabaseService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewDatabaseService connects to Postgres when POSTGRES_HOST is configured and
// falls back to an embedded sqlite file otherwise (local development).
func NewDatabaseService(log *logger.Logger) (*DatabaseService, error) {
	serviceLog := log.With("service", "DatabaseService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "", log)

	var (
		db  *gorm.DB
		err error
	)
	if postgresHost != "" {
		postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
		postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
		postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
		postgresName := utils.GetEnv("POSTGRES_NAME", "lexsona", log)

		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

		serviceLog.Info("Connecting to Postgres...")
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	} else {
		sqlitePath := utils.GetEnv("SQLITE_PATH", "lexsona.db", log)
		serviceLog.Info("POSTGRES_HOST not set, using embedded sqlite", "path", sqlitePath)
		db, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	}
	if err != nil {
		serviceLog.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DatabaseService{db: db, log: serviceLog}, nil
}

func (s *DatabaseService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	err := s.db.AutoMigrate(
		&types.Podcast{},
		&types.PodcastFeatures{},
		&types.AuthorPreferences{},
		&types.PodcastFeedback{},
		&types.PreferenceAdjustment{},
		&types.PodcastMetrics{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *DatabaseService) DB() *gorm.DB {
	return s.db
}
