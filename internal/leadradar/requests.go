package leadradar

import (
	"encoding/json"
	"time"

	"github.com/bmue76/leadradar/internal/leadradar/builder"
	"github.com/bmue76/leadradar/internal/leadradar/dao"
	"github.com/bmue76/leadradar/internal/leadradar/dto"
	"github.com/bmue76/leadradar/internal/leadradar/types"
	"github.com/gofrs/uuid"
)

type reqForm struct {
	Name   string          `json:"name" validate:"formName"`
	Status string          `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE ARCHIVED"`
	Config *dto.FormConfig `json:"config,omitempty"`
}

func (req *reqForm) toDao(tenant string) dao.Form {
	form := dao.Form{
		TenantId: tenant,
		Name:     req.Name,
		Status:   string(builder.FormDraft),
	}
	if req.Status != "" {
		form.SetStatus(req.Status, time.Now())
	}
	if req.Config != nil {
		form.Config = formConfigToDao(*req.Config)
	}
	return form
}

func formConfigToDao(cfg dto.FormConfig) types.FormConfig {
	return types.FormConfig{
		CaptureStart:  cfg.CaptureStart,
		ContactPolicy: cfg.ContactPolicy,
		CaptureModes:  cfg.CaptureModes,
		Theming:       cfg.Theming,
	}
}

// reqField тело POST /forms/{id}/fields. Секция берется из config.section.
type reqField struct {
	Key         string          `json:"key" validate:"omitempty,fieldKey"`
	Label       string          `json:"label" validate:"max=200"`
	Type        string          `json:"type" validate:"fieldType"`
	Required    bool            `json:"required"`
	IsActive    *bool           `json:"isActive"`
	Placeholder *string         `json:"placeholder" validate:"omitempty,max=200"`
	HelpText    *string         `json:"helpText" validate:"omitempty,max=1000"`
	Config      json.RawMessage `json:"config"`
}

// toDao разбирает конфигурацию и собирает поле. Ключ и позиция назначаются обработчиком.
func (req *reqField) toDao(formId uuid.UUID) (dao.FormField, error) {
	t := builder.FieldType(req.Type)
	cfg, err := builder.ParseConfig(t, req.Config)
	if err != nil {
		return dao.FormField{}, err
	}
	if cfg.Section == "" {
		cfg.Section = builder.SectionForm
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return dao.FormField{}, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return dao.FormField{
		FormId:      formId,
		Key:         req.Key,
		Label:       req.Label,
		Type:        req.Type,
		Required:    req.Required,
		IsActive:    active,
		Section:     string(cfg.Section),
		Placeholder: req.Placeholder,
		HelpText:    req.HelpText,
		Config:      raw,
	}, nil
}
