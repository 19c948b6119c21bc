// Пакет builder реализует ядро конструктора форм LeadRadar: упорядоченный набор полей из двух секций (FORM и CONTACT), расчет точки вставки при перетаскивании, оптимистичные локальные изменения и их синхронизацию с BuilderAPI через тегированные операции.
//
// Основные возможности:
//   - Хранилище полей FieldStore с неизменяемыми операциями вставки, удаления и перемещения.
//   - Расчет позиции сброса по геометрии перетаскиваемого элемента и целевой строки.
//   - Политика выбора секции, дедупликация контактных полей и генерация уникальных ключей.
//   - Координатор изменений: оптимистичное обновление и сохранение полного порядка полей.
//   - Типизированная конфигурация поля, проверяемая один раз на границе хранилища.
package builder

import (
	"encoding/json"
	"strings"
)

// Section одна из двух фиксированных секций формы.
type Section string

const (
	SectionForm    Section = "FORM"
	SectionContact Section = "CONTACT"
)

// Sections в порядке, в котором они отправляются в REORDER.
var Sections = []Section{SectionForm, SectionContact}

func (s Section) Valid() bool {
	return s == SectionForm || s == SectionContact
}

type FieldType string

const (
	TypeText         FieldType = "TEXT"
	TypeTextarea     FieldType = "TEXTAREA"
	TypeEmail        FieldType = "EMAIL"
	TypePhone        FieldType = "PHONE"
	TypeNumber       FieldType = "NUMBER"
	TypeDate         FieldType = "DATE"
	TypeCheckbox     FieldType = "CHECKBOX"
	TypeSingleSelect FieldType = "SINGLE_SELECT"
	TypeMultiSelect  FieldType = "MULTI_SELECT"
	TypeRating       FieldType = "RATING"
	TypeAttachment   FieldType = "ATTACHMENT"
	TypeAudio        FieldType = "AUDIO"
)

var fieldTypes = map[FieldType]struct{}{
	TypeText: {}, TypeTextarea: {}, TypeEmail: {}, TypePhone: {}, TypeNumber: {}, TypeDate: {},
	TypeCheckbox: {}, TypeSingleSelect: {}, TypeMultiSelect: {}, TypeRating: {},
	TypeAttachment: {}, TypeAudio: {},
}

func (t FieldType) Valid() bool {
	_, ok := fieldTypes[t]
	return ok
}

func (t FieldType) IsChoice() bool {
	return t == TypeSingleSelect || t == TypeMultiSelect
}

// ContactKeys фиксированные ключи контактных полей и их тип по умолчанию.
var ContactKeys = map[string]FieldType{
	"firstName": TypeText,
	"lastName":  TypeText,
	"email":     TypeEmail,
	"phone":     TypePhone,
	"company":   TypeText,
	"jobTitle":  TypeText,
	"website":   TypeText,
	"street":    TypeText,
	"zip":       TypeText,
	"city":      TypeText,
	"country":   TypeText,
}

func IsContactKey(key string) bool {
	_, ok := ContactKeys[key]
	return ok
}

// IsSystemKey сообщает, является ли поле системным. Системные поля нельзя удалять и дублировать.
func IsSystemKey(key string) bool {
	return strings.HasPrefix(key, "system_") || strings.HasPrefix(key, "__")
}

// Field поле формы в том виде, в котором его отдает BuilderAPI.
type Field struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	IsActive    bool      `json:"isActive"`
	Section     Section   `json:"section"`
	SortOrder   int       `json:"sortOrder"`
	Placeholder *string   `json:"placeholder,omitempty"`
	HelpText    *string   `json:"helpText,omitempty"`
	Config      Config    `json:"config"`
}

func (f Field) IsContact() bool {
	return IsContactKey(f.Key)
}

func (f Field) IsSystem() bool {
	return IsSystemKey(f.Key)
}

// MarshalJSON держит config.section в согласии с секцией поля.
func (f Field) MarshalJSON() ([]byte, error) {
	type alias Field
	a := alias(f)
	a.Config.Section = f.Section
	return json.Marshal(a)
}

// UnmarshalJSON разбирает config по типу поля, поэтому невалидная конфигурация не попадает в хранилище.
func (f *Field) UnmarshalJSON(b []byte) error {
	type alias Field
	var raw struct {
		alias
		Config json.RawMessage `json:"config"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*f = Field(raw.alias)

	cfg, err := ParseConfig(f.Type, raw.Config)
	if err != nil {
		return err
	}
	switch {
	case f.Section == "" && cfg.Section != "":
		f.Section = cfg.Section
	case f.Section == "":
		f.Section = SectionForm
	}
	cfg.Section = f.Section
	f.Config = cfg
	return nil
}

type FormStatus string

const (
	FormDraft    FormStatus = "DRAFT"
	FormActive   FormStatus = "ACTIVE"
	FormArchived FormStatus = "ARCHIVED"
)

func (s FormStatus) Valid() bool {
	return s == FormDraft || s == FormActive || s == FormArchived
}

// Значения captureStart.
const (
	CaptureFormFirst    = "FORM_FIRST"
	CaptureContactFirst = "CONTACT_FIRST"
)

// FormConfig настройки формы. Ядро их только переносит, но не вычисляет.
type FormConfig struct {
	CaptureStart  string          `json:"captureStart,omitempty"`
	ContactPolicy string          `json:"contactPolicy,omitempty"`
	CaptureModes  []string        `json:"captureModes,omitempty"`
	Theming       json.RawMessage `json:"theming,omitempty"`
}

type Form struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Status FormStatus `json:"status"`
	Config FormConfig `json:"config"`
}

// SectionOrder порядок секций при показе формы: по умолчанию FORM, затем CONTACT.
func (f Form) SectionOrder() []Section {
	if f.Config.CaptureStart == CaptureContactFirst {
		return []Section{SectionContact, SectionForm}
	}
	return []Section{SectionForm, SectionContact}
}

// FieldDraft тело запроса на создание поля.
type FieldDraft struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	IsActive    bool      `json:"isActive"`
	Placeholder *string   `json:"placeholder,omitempty"`
	HelpText    *string   `json:"helpText,omitempty"`
	Config      Config    `json:"config"`
}

// FieldPatch частичное изменение поля. Nil означает "не менять".
type FieldPatch struct {
	Label       *string  `json:"label,omitempty"`
	Required    *bool    `json:"required,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
	Placeholder *string  `json:"placeholder,omitempty"`
	HelpText    *string  `json:"helpText,omitempty"`
	Config      *Config  `json:"config,omitempty"`
	Section     *Section `json:"section,omitempty"`
}

// withoutSection возвращает копию изменения без смены секции и признак того, что в ней что-то осталось.
func (p FieldPatch) withoutSection() (FieldPatch, bool) {
	p.Section = nil
	return p, p.Label != nil || p.Required != nil || p.IsActive != nil ||
		p.Placeholder != nil || p.HelpText != nil || p.Config != nil
}

type FormPatch struct {
	Name   *string     `json:"name,omitempty"`
	Status *FormStatus `json:"status,omitempty"`
	Config *FormConfig `json:"config,omitempty"`
}
