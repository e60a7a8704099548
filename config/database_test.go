package config

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const columnCountQuery = "SELECT COUNT(*) AS cnt FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?"

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func TestEnsureColumn_AddsMissingColumn(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(columnCountQuery)).
		WithArgs("menu_items", "allergens").
		WillReturnRows(sqlmock.NewRows([]string{"cnt"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE `menu_items` ADD COLUMN `allergens` TEXT NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	added, err := EnsureColumn(gdb, "menu_items", "allergens", "TEXT NULL")
	require.NoError(t, err)
	assert.True(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureColumn_ExistingColumnIsNoop(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(columnCountQuery)).
		WithArgs("wines", "pairing").
		WillReturnRows(sqlmock.NewRows([]string{"cnt"}).AddRow(1))

	added, err := EnsureColumn(gdb, "wines", "pairing", "TEXT NULL")
	require.NoError(t, err)
	assert.False(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureColumn_InspectError(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(columnCountQuery)).
		WillReturnError(errors.New("connection reset"))

	_, err := EnsureColumn(gdb, "wines", "grape", "VARCHAR(255) NULL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inspect wines.grape")
}

func TestEnsureColumn_RejectsBadIdentifiers(t *testing.T) {
	gdb, mock := newMockDB(t)

	_, err := EnsureColumn(gdb, "wines; DROP TABLE users", "grape", "TEXT")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "mysql://explicit", DSN(DatabaseConfig{URI: "mysql://explicit", Host: "ignored"}))
	assert.Equal(t,
		"app:secret@tcp(db:3306)/restaurant_db?charset=utf8mb4&parseTime=True&loc=Local",
		DSN(DatabaseConfig{User: "app", Password: "secret", Host: "db", Port: "3306", Name: "restaurant_db"}),
	)
}
