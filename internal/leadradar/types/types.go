// Типы колонок JSONB для моделей форм и полей.
//
// Основные возможности:
//   - FieldConfig: конфигурация поля, хранимая как есть, без схемы на уровне БД.
//   - FormConfig: настройки формы (порядок секций, режимы сбора, оформление).
package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

var emptyObject = []byte("{}")

// FieldConfig сырой JSON конфигурации поля. Проверка содержимого выполняется пакетом builder.
type FieldConfig []byte

func (fc FieldConfig) Value() (driver.Value, error) {
	if len(fc) == 0 {
		return emptyObject, nil
	}
	return []byte(fc), nil
}

func (fc *FieldConfig) Scan(value interface{}) error {
	if value == nil {
		*fc = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		*fc = bytes.Clone(v)
	case string:
		*fc = FieldConfig(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
	return nil
}

func (FieldConfig) GormDataType() string {
	return "jsonb"
}

func (fc FieldConfig) MarshalJSON() ([]byte, error) {
	if len(fc) == 0 {
		return emptyObject, nil
	}
	return fc, nil
}

func (fc *FieldConfig) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*fc = nil
		return nil
	}
	*fc = bytes.Clone(data)
	return nil
}

// FormConfig type
type FormConfig struct {
	CaptureStart  string          `json:"captureStart,omitempty"`
	ContactPolicy string          `json:"contactPolicy,omitempty"`
	CaptureModes  []string        `json:"captureModes,omitempty"`
	Theming       json.RawMessage `json:"theming,omitempty"`
}

func (cfg FormConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (cfg *FormConfig) Scan(value interface{}) error {
	if value == nil {
		*cfg = FormConfig{}
		return nil
	}

	var res []byte
	switch v := value.(type) {
	case []byte:
		res = v
	case string:
		res = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	return json.Unmarshal(res, cfg)
}

func (FormConfig) GormDataType() string {
	return "jsonb"
}
