// Кастомный PostgreSQL диалектор для GORM, который использует нативный тип uuid вместо bytea для uuid.UUID полей.
package utils

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/gofrs/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/migrator"
	"gorm.io/gorm/schema"
)

var (
	uuidType     = reflect.TypeOf(uuid.UUID{})
	nullUUIDType = reflect.TypeOf(uuid.NullUUID{})
)

// PostgresUUIDDialector оборачивает стандартный postgres.Dialector и переопределяет DataTypeOf для UUID типов.
type PostgresUUIDDialector struct {
	*postgres.Dialector
}

func NewPostgresUUIDDialector(config postgres.Config) gorm.Dialector {
	return &PostgresUUIDDialector{
		Dialector: postgres.New(config).(*postgres.Dialector),
	}
}

func (d *PostgresUUIDDialector) Migrator(db *gorm.DB) gorm.Migrator {
	return &PostgresUUIDMigrator{
		Migrator: postgres.Migrator{
			Migrator: migrator.Migrator{
				Config: migrator.Config{
					DB:                          db,
					Dialector:                   d,
					CreateIndexAfterCreateTable: true,
				},
			},
		},
	}
}

type PostgresUUIDMigrator struct {
	postgres.Migrator
}

func isUUIDField(field *schema.Field) bool {
	t := field.FieldType
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t == uuidType || t == nullUUIDType
}

func (m *PostgresUUIDMigrator) DataTypeOf(field *schema.Field) string {
	if isUUIDField(field) {
		return "uuid"
	}
	return m.Migrator.DataTypeOf(field)
}

// AlterColumn не трогает колонки, которые уже имеют тип uuid.
func (m *PostgresUUIDMigrator) AlterColumn(value interface{}, field string) error {
	stmt := &gorm.Statement{DB: m.DB}
	if err := stmt.Parse(value); err != nil {
		return err
	}

	schemaField := stmt.Schema.LookUpField(field)
	if schemaField == nil {
		return fmt.Errorf("failed to look up field with name: %s", field)
	}

	if isUUIDField(schemaField) {
		columnTypes, err := m.DB.Migrator().ColumnTypes(value)
		if err != nil {
			return err
		}
		for _, columnType := range columnTypes {
			if columnType.Name() == schemaField.DBName && strings.EqualFold(columnType.DatabaseTypeName(), "uuid") {
				slog.Debug("Skip AlterColumn, already uuid", "table", stmt.Table, "column", schemaField.DBName)
				return nil
			}
		}
	}

	return m.DB.Exec(
		"ALTER TABLE ? ALTER COLUMN ? TYPE ?",
		clause.Table{Name: stmt.Table}, clause.Column{Name: schemaField.DBName},
		clause.Expr{SQL: m.DataTypeOf(schemaField)},
	).Error
}
