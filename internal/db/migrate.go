package db

import (
	"errors"
	"fmt"
	"os"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mjaworski/window-offers/internal/auth"
	"github.com/mjaworski/window-offers/internal/config"
	"github.com/mjaworski/window-offers/internal/models"
)

// ConnectAndMigrate opens the store (sqlite path or postgres DSN) and
// brings the schema up to date: SQL migrations via golang-migrate when
// MIGRATIONS=1, AutoMigrate otherwise (dev convenience).
func ConnectAndMigrate(rawDSN string, log *zap.Logger) (*gorm.DB, error) {
	dsn := NormalizeDSN(rawDSN)
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check environment configuration")
	}
	logLevel := logger.Silent
	if config.ParseBool("DB_DEBUG", false) {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// map driver duplicate-key errors to gorm.ErrDuplicatedKey so the
		// services can return Conflict instead of a generic failure
		TranslateError: true,
	}

	var db *gorm.DB
	var err error
	if IsPostgresDSN(dsn) {
		for i := 0; i < 10; i++ {
			db, err = gorm.Open(postgres.Open(dsn), cfg)
			if err == nil {
				break
			}
			log.Warn("retrying DB connection", zap.Error(err))
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to connect database after retries: %w", err)
		}
	} else {
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	if config.ParseBool("MIGRATIONS", false) {
		if !IsPostgresDSN(dsn) {
			return nil, errors.New("MIGRATIONS=1 requires a postgres DSN")
		}
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	for _, table := range []string{"users", "options", "offers", "offer_items", "invoices", "invoice_items"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}
	if config.ParseBool("DB_SEED", false) {
		seed(db, log)
	}
	return db, nil
}

// AutoMigrate creates/updates the schema for every aggregate.
func AutoMigrate(db *gorm.DB) error {
	modelsToMigrate := []interface{}{
		&models.User{}, &models.Option{}, &models.Offer{}, &models.OfferItem{},
		&models.Invoice{}, &models.InvoiceItem{},
	}
	for _, m := range modelsToMigrate {
		if migErr := db.AutoMigrate(m); migErr != nil {
			return fmt.Errorf("automigrate %T: %w", m, migErr)
		}
	}
	return nil
}

// seed creates the initial admin account when no users exist yet.
// Credentials come from ADMIN_EMAIL/ADMIN_PASSWORD with dev defaults.
func seed(db *gorm.DB, log *zap.Logger) {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin12345"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Warn("seed: hash admin password", zap.Error(err))
		return
	}
	admin := models.User{Email: email, FullName: "Administrator", HashedPassword: hash, Role: models.RoleAdmin, IsActive: true}
	if err := db.Create(&admin).Error; err != nil {
		log.Warn("seed: create admin user", zap.Error(err))
		return
	}
	log.Info("seeded admin user", zap.String("email", email))
}

// runSQLMigrations executes migrations in ./migrations using the
// golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
