package dao

import (
	"time"

	"github.com/bmue76/leadradar/internal/leadradar/dto"
	policy "github.com/bmue76/leadradar/internal/leadradar/redactor-policy"
	"github.com/bmue76/leadradar/internal/leadradar/types"
	"github.com/bmue76/leadradar/internal/leadradar/utils"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const FormStatusArchived = "ARCHIVED"

type Form struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TenantId string           `json:"tenant" gorm:"index;not null"`
	Name     string           `json:"name" gorm:"not null"`
	Status   string           `json:"status" gorm:"not null;default:'DRAFT'"`
	Config   types.FormConfig `json:"config"`

	// Срок хранения архивной формы считается от ArchivedAt, переименование его не сдвигает.
	ArchivedAt *time.Time `json:"archived_at" gorm:"index"`

	Fields []FormField `json:"fields" gorm:"foreignKey:FormId;constraint:OnDelete:CASCADE"`
}

func (Form) TableName() string { return "forms" }

func (form *Form) BeforeCreate(tx *gorm.DB) error {
	if form.ID.IsNil() {
		form.ID = GenUUID()
	}
	return nil
}

// SetStatus меняет статус формы и отмечает вход в архив или выход из него.
func (form *Form) SetStatus(status string, now time.Time) {
	if status == form.Status {
		return
	}
	form.Status = status
	if status == FormStatusArchived {
		form.ArchivedAt = &now
	} else {
		form.ArchivedAt = nil
	}
}

func (form *Form) BeforeSave(tx *gorm.DB) error {
	form.Name = policy.StripText(form.Name)
	return nil
}

// ToLightDTO преобразует Form в FormLight без полей.
func (form *Form) ToLightDTO() *dto.FormLight {
	if form == nil {
		return nil
	}
	return &dto.FormLight{
		ID:     form.ID.String(),
		Name:   form.Name,
		Status: form.Status,
		Config: dto.FormConfig{
			CaptureStart:  form.Config.CaptureStart,
			ContactPolicy: form.Config.ContactPolicy,
			CaptureModes:  form.Config.CaptureModes,
			Theming:       form.Config.Theming,
		},
		CreatedAt:  form.CreatedAt,
		UpdatedAt:  form.UpdatedAt,
		ArchivedAt: form.ArchivedAt,
	}
}

// ToBuilderDTO снимок конструктора: форма и поля в порядке секций.
func (form *Form) ToBuilderDTO() *dto.BuilderSnapshot {
	if form == nil {
		return nil
	}
	return &dto.BuilderSnapshot{
		Form:   *form.ToLightDTO(),
		Fields: utils.SliceToSlice(&form.Fields, func(f *FormField) dto.Field { return *f.ToDTO() }),
	}
}

// GetTenantForm возвращает форму арендатора или gorm.ErrRecordNotFound.
func GetTenantForm(db *gorm.DB, tenant string, id uuid.UUID) (Form, error) {
	var form Form
	err := db.Where("tenant_id = ?", tenant).Where("id = ?", id).First(&form).Error
	return form, err
}

// LoadFields заполняет form.Fields в порядке показа: сначала FORM, затем CONTACT, внутри секции по sortOrder.
func (form *Form) LoadFields(db *gorm.DB) error {
	form.Fields = nil
	return db.Where("form_id = ?", form.ID).
		Order("CASE section WHEN 'FORM' THEN 0 ELSE 1 END, sort_order, created_at").
		Find(&form.Fields).Error
}
