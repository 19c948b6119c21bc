package utils

import (
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLog "gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// OpenDB открывает базу по DSN: sqlite://<путь> для локальной работы и тестов, иначе PostgreSQL.
func OpenDB(dsn string, logger gormLog.Interface) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger, TranslateError: true}
	if logger == nil {
		cfg.Logger = gormLog.Discard
	}

	if path, ok := strings.CutPrefix(dsn, sqlitePrefix); ok {
		db, err := gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite не любит параллельных писателей, а :memory: живет в рамках одного соединения
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	return gorm.Open(NewPostgresUUIDDialector(postgres.Config{DSN: dsn}), cfg)
}
