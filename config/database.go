package config

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// ColumnDef describes a column that older databases may be missing.
type ColumnDef struct {
	Table      string
	Column     string
	Definition string
}

// AdditiveColumns are applied on every boot so databases created by earlier releases catch up.
var AdditiveColumns = []ColumnDef{
	{"menu_items", "short_description", "TEXT NULL"},
	{"menu_items", "full_description", "TEXT NULL"},
	{"menu_items", "allergens", "TEXT NULL"},
	{"menu_items", "ingredients", "TEXT NULL"},
	{"wines", "region", "VARCHAR(255) NULL"},
	{"wines", "description", "TEXT NULL"},
	{"wines", "full_description", "TEXT NULL"},
	{"wines", "price_glass", "DECIMAL(10,2) NULL"},
	{"wines", "price_bottle", "DECIMAL(10,2) NULL"},
	{"wines", "image_url", "VARCHAR(500) NULL"},
	{"wines", "grape", "VARCHAR(255) NULL"},
	{"wines", "pairing", "TEXT NULL"},
	{"wines", "is_available", "BOOLEAN DEFAULT TRUE"},
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// InitDatabase connects to MySQL, creates missing tables and adds missing columns.
func InitDatabase(modelDefs ...interface{}) *gorm.DB {
	if db != nil {
		return db
	}

	cfg := Get()

	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(cfg.Log.Level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var err error
	db, err = gorm.Open(mysql.Open(DSN(cfg.Database)), &gorm.Config{Logger: gLogger})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	// Fail at boot rather than on the first query.
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("database ping failed: %v", err)
	}

	if err := Migrate(db, modelDefs...); err != nil {
		log.Fatalf("failed to initialize database tables: %v", err)
	}

	return db
}

// DSN renders the MySQL connection string, preferring an explicit URI.
func DSN(c DatabaseConfig) string {
	if c.URI != "" {
		return c.URI
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

// Migrate creates tables that do not exist yet and then applies AdditiveColumns.
// Existing tables are never altered beyond adding columns.
func Migrate(db *gorm.DB, modelDefs ...interface{}) error {
	for _, model := range modelDefs {
		if db.Migrator().HasTable(model) {
			continue
		}
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("auto migrate %T: %w", model, err)
		}
	}

	for _, col := range AdditiveColumns {
		added, err := EnsureColumn(db, col.Table, col.Column, col.Definition)
		if err != nil {
			return err
		}
		if added {
			log.Printf("added column %s.%s", col.Table, col.Column)
		}
	}
	return nil
}

// EnsureColumn adds table.column with the given definition when the current schema lacks it.
// It reports whether the column was added. Running it twice is a no-op the second time.
func EnsureColumn(db *gorm.DB, table, column, definition string) (bool, error) {
	if !identifierPattern.MatchString(table) || !identifierPattern.MatchString(column) {
		return false, fmt.Errorf("invalid identifier %q.%q", table, column)
	}

	var cnt int64
	err := db.Raw(
		"SELECT COUNT(*) AS cnt FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?",
		table, column,
	).Scan(&cnt).Error
	if err != nil {
		return false, fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	if cnt > 0 {
		return false, nil
	}

	if err := db.Exec(fmt.Sprintf("ALTER TABLE `%s` ADD COLUMN `%s` %s", table, column, definition)).Error; err != nil {
		return false, fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return true, nil
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

// DB provides access to initialized gorm DB instance.
func DB() *gorm.DB {
	if db == nil {
		log.Fatal("database not initialized, call InitDatabase first")
	}
	return db
}
