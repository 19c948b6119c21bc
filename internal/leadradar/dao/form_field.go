package dao

import (
	"errors"
	"time"

	"github.com/bmue76/leadradar/internal/leadradar/dto"
	policy "github.com/bmue76/leadradar/internal/leadradar/redactor-policy"
	"github.com/bmue76/leadradar/internal/leadradar/types"
	"github.com/bmue76/leadradar/internal/leadradar/utils"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// ErrOrderMismatch порядок в REORDER не является перестановкой полей формы.
var ErrOrderMismatch = errors.New("order is not a permutation of form fields")

type FormField struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FormId uuid.UUID `json:"form_id" gorm:"type:uuid;uniqueIndex:form_field_key_idx,priority:1;not null"`
	Key    string    `json:"key" gorm:"uniqueIndex:form_field_key_idx,priority:2;not null"`

	Label       string            `json:"label"`
	Type        string            `json:"type" gorm:"not null"`
	Required    bool              `json:"required"`
	IsActive    bool              `json:"is_active"`
	Section     string            `json:"section" gorm:"not null"`
	SortOrder   int               `json:"sort_order"`
	Placeholder *string           `json:"placeholder" extensions:"x-nullable"`
	HelpText    *string           `json:"help_text" extensions:"x-nullable"`
	Config      types.FieldConfig `json:"config"`
}

func (FormField) TableName() string { return "form_fields" }

func (f *FormField) BeforeCreate(tx *gorm.DB) error {
	if f.ID.IsNil() {
		f.ID = GenUUID()
	}
	return nil
}

// BeforeSave убирает HTML из подписи и placeholder, подсказка сохраняет простое форматирование.
func (f *FormField) BeforeSave(tx *gorm.DB) error {
	f.Label = policy.StripText(f.Label)
	if f.Placeholder != nil {
		p := policy.StripText(*f.Placeholder)
		f.Placeholder = &p
	}
	if f.HelpText != nil {
		h := policy.SanitizeHelpText(*f.HelpText)
		f.HelpText = &h
	}
	return nil
}

func (f *FormField) ToDTO() *dto.Field {
	if f == nil {
		return nil
	}
	cfg, _ := f.Config.MarshalJSON()
	return &dto.Field{
		ID:          f.ID.String(),
		Key:         f.Key,
		Label:       f.Label,
		Type:        f.Type,
		Required:    f.Required,
		IsActive:    f.IsActive,
		Section:     f.Section,
		SortOrder:   f.SortOrder,
		Placeholder: f.Placeholder,
		HelpText:    f.HelpText,
		Config:      cfg,
	}
}

// Clone копия поля с новым ключом. Идентификатор выдается при создании.
func (f FormField) Clone(key string) FormField {
	f.ID = uuid.Nil
	f.CreatedAt = time.Time{}
	f.UpdatedAt = time.Time{}
	f.Key = key
	return f
}

// GetFormField возвращает поле формы или gorm.ErrRecordNotFound.
func GetFormField(db *gorm.DB, formId uuid.UUID, id uuid.UUID) (FormField, error) {
	var field FormField
	err := db.Where("form_id = ?", formId).Where("id = ?", id).First(&field).Error
	return field, err
}

// NextSortOrder позиция в конце секции.
func NextSortOrder(db *gorm.DB, formId uuid.UUID, section string) (int, error) {
	var next int
	err := db.Model(&FormField{}).
		Select("COALESCE(MAX(sort_order), -1) + 1").
		Where("form_id = ?", formId).
		Where("section = ?", section).
		Scan(&next).Error
	return next, err
}

// FormKeys множество занятых ключей формы.
func FormKeys(db *gorm.DB, formId uuid.UUID) (map[string]struct{}, error) {
	var keys []string
	if err := db.Model(&FormField{}).Where("form_id = ?", formId).Pluck("key", &keys).Error; err != nil {
		return nil, err
	}
	return utils.SliceToSet(keys), nil
}

// ReorderFields переписывает sortOrder по полному порядку полей. Позиция считается внутри секции поля.
func ReorderFields(tx *gorm.DB, formId uuid.UUID, order []string) error {
	var fields []FormField
	if err := tx.Select("id", "section").Where("form_id = ?", formId).Find(&fields).Error; err != nil {
		return err
	}

	sections := utils.SliceToMap(&fields, func(f *FormField) string { return f.ID.String() })
	ids := make(map[string]struct{}, len(sections))
	for id := range sections {
		ids[id] = struct{}{}
	}
	if !utils.IsPermutation(order, ids) {
		return ErrOrderMismatch
	}

	pos := make(map[string]int, 2)
	for _, id := range order {
		sec := sections[id].Section
		if err := tx.Model(&FormField{}).
			Where("id = ?", sections[id].ID).
			UpdateColumn("sort_order", pos[sec]).Error; err != nil {
			return err
		}
		pos[sec]++
	}
	return nil
}
