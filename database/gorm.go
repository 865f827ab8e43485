package database

import (
	"fmt"
	"time"

	"github.com/dabhanushali/enacton-training/config"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/gofiber/fiber/v2/log"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GORMStore struct {
	db *gorm.DB
}

// DSN builds the PostgreSQL connection string from the environment
func DSN(env *config.EnvironmentVariable) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)
}

// Dialector picks the database/sql driver behind GORM. DB_DRIVER=postgres
// routes through lib/pq; anything else uses the pgx driver bundled with
// gorm.io/driver/postgres.
func Dialector(env *config.EnvironmentVariable, dsn string) gorm.Dialector {
	if env.DB_DRIVER == "postgres" {
		return postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        dsn,
		})
	}
	return postgres.Open(dsn)
}

// StartGORM initializes a GORM connection to PostgreSQL
func StartGORM() (*GORMStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	gormLogger := logger.Default.LogMode(logger.Info)
	if getEnv.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(Dialector(getEnv, DSN(getEnv)), &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
	})
	if err != nil {
		log.Errorf("[DB] Unable to connect to PostgreSQL with GORM: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Infof("[DB] Connected to PostgreSQL (driver=%s)", getEnv.DB_DRIVER)

	return &GORMStore{db: db}, nil
}

// NewGORMStore wraps an existing connection
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// Models lists every table managed by AutoMigrate, parents before children
func Models() []interface{} {
	return []interface{}{
		&model.Role{},
		&model.Profile{},
		&model.Course{},
		&model.Module{},
		&model.AssessmentTemplate{},
		&model.AssessmentQuestion{},
		&model.QuestionOption{},
		&model.Enrollment{},
		&model.ModuleProgress{},
		&model.Project{},
		&model.ProjectAssignment{},
		&model.ProjectSubmission{},
		&model.ProjectEvaluation{},
		&model.UserNotification{},
		&model.AuditLog{},
		&model.CronJobLog{},
		&model.JWTTokenBlacklist{},
	}
}

// Init runs AutoMigrate and makes sure the fixed role set exists
func (s *GORMStore) Init() error {
	log.Info("[DB] Running AutoMigrate...")

	if err := s.db.AutoMigrate(Models()...); err != nil {
		log.Errorf("[DB] AutoMigrate failed: %v", err)
		return err
	}

	if err := NewSeeder(s.db).SeedRoles(); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	log.Info("[DB] AutoMigrate completed")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Info("[DB] Closing PostgreSQL connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in repositories/handlers
func (s *GORMStore) GetDB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
