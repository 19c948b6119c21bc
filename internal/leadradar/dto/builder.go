// Структуры данных (DTO) протокола конструктора форм: конверт ответа, тегированные операции PATCH builder и представления формы и поля.
//
// Основные возможности:
//   - Конверт {ok, data} / {ok:false, error} для всех ответов API.
//   - Тегированные операции REORDER, PATCH_FIELD, DUPLICATE_FIELD, DELETE_FIELD, PATCH_FORM.
//   - Представление формы, поля и снимка конструктора.
package dto

import (
	"encoding/json"
	"time"
)

// Envelope конверт любого ответа API.
type Envelope struct {
	Ok    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// RawEnvelope конверт на стороне клиента: Ok указатель, чтобы отличить отсутствие поля от false.
type RawEnvelope struct {
	Ok    *bool           `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *ErrorBody      `json:"error"`
}

type ErrorBody struct {
	Code          int    `json:"code"`
	Message       string `json:"message"`
	RuMessage     string `json:"ruMessage,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

const (
	OpReorder        = "REORDER"
	OpPatchField     = "PATCH_FIELD"
	OpDuplicateField = "DUPLICATE_FIELD"
	OpDeleteField    = "DELETE_FIELD"
	OpPatchForm      = "PATCH_FORM"
)

// BuilderOp тело PATCH /forms/{id}/builder. Значимые поля зависят от Op.
type BuilderOp struct {
	Op      string          `json:"op" validate:"required,oneof=REORDER PATCH_FIELD DUPLICATE_FIELD DELETE_FIELD PATCH_FORM"`
	Order   []string        `json:"order,omitempty"`
	FieldID string          `json:"fieldId,omitempty"`
	Patch   json.RawMessage `json:"patch,omitempty" swaggertype:"object"`
}

type FieldPatch struct {
	Label       *string         `json:"label,omitempty" validate:"omitempty,max=200"`
	Required    *bool           `json:"required,omitempty"`
	IsActive    *bool           `json:"isActive,omitempty"`
	Placeholder *string         `json:"placeholder,omitempty" validate:"omitempty,max=200"`
	HelpText    *string         `json:"helpText,omitempty" validate:"omitempty,max=1000"`
	Config      json.RawMessage `json:"config,omitempty" swaggertype:"object"`
	Section     *string         `json:"section,omitempty"`
}

type FormPatch struct {
	Name   *string     `json:"name,omitempty"`
	Status *string     `json:"status,omitempty"`
	Config *FormConfig `json:"config,omitempty"`
}

type FormConfig struct {
	CaptureStart  string          `json:"captureStart,omitempty"`
	ContactPolicy string          `json:"contactPolicy,omitempty"`
	CaptureModes  []string        `json:"captureModes,omitempty"`
	Theming       json.RawMessage `json:"theming,omitempty" swaggertype:"object"`
}

type FormLight struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Config    FormConfig `json:"config"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`
}

type Field struct {
	ID          string          `json:"id"`
	Key         string          `json:"key"`
	Label       string          `json:"label"`
	Type        string          `json:"type"`
	Required    bool            `json:"required"`
	IsActive    bool            `json:"isActive"`
	Section     string          `json:"section"`
	SortOrder   int             `json:"sortOrder"`
	Placeholder *string         `json:"placeholder,omitempty"`
	HelpText    *string         `json:"helpText,omitempty"`
	Config      json.RawMessage `json:"config" swaggertype:"object"`
}

// BuilderSnapshot ответ GET /forms/{id}/builder.
type BuilderSnapshot struct {
	Form   FormLight `json:"form"`
	Fields []Field   `json:"fields"`
}
