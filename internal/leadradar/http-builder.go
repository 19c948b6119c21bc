// Обработчики конструктора форм: создание поля и тегированные операции PATCH builder.
//
// Основные возможности:
//   - Создание поля в конце секции с уникальным ключом.
//   - REORDER: полный порядок полей, sortOrder переписывается в одной транзакции.
//   - PATCH_FIELD, DUPLICATE_FIELD, DELETE_FIELD, PATCH_FORM.
//   - Защита системных и контактных полей.
package leadradar

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bmue76/leadradar/internal/leadradar/apierrors"
	"github.com/bmue76/leadradar/internal/leadradar/builder"
	"github.com/bmue76/leadradar/internal/leadradar/dao"
	"github.com/bmue76/leadradar/internal/leadradar/dto"
	"github.com/bmue76/leadradar/pkg/limiter"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var builderOps = map[string]struct{}{
	dto.OpReorder:        {},
	dto.OpPatchField:     {},
	dto.OpDuplicateField: {},
	dto.OpDeleteField:    {},
	dto.OpPatchForm:      {},
}

// createFormField godoc
// @id createFormField
// @Summary конструктор: создать поле
// @Description Создает поле в конце секции из config.section (по умолчанию FORM). Если ключ не указан, он строится из подписи.
// @Tags Builder
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param formId path string true "ID формы"
// @Param field body reqField true "Новое поле"
// @Success 201 {object} dto.Field "Созданное поле"
// @Header 201 {integer} X-Entity-Remain "Сколько полей еще можно добавить в форму"
// @Failure 400 {object} dto.Envelope "Ошибка валидации"
// @Failure 409 {object} dto.Envelope "Ключ уже занят"
// @Router /api/forms/{formId}/fields/ [post]
func (s *Services) createFormField(c echo.Context) error {
	form := c.(FormContext).Form
	if form.Status == string(builder.FormArchived) {
		return EErrorDefined(c, apierrors.ErrFormArchived)
	}

	var req reqField
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrFormBadRequest)
	}
	if !builder.FieldType(req.Type).Valid() {
		return EErrorDefined(c, apierrors.ErrFieldTypeInvalid.WithFormattedMessage(req.Type))
	}
	if err := c.Validate(req); err != nil {
		return EErrorDefined(c, apierrors.ErrFormRequestValidate)
	}

	field, err := req.toDao(form.ID)
	if err != nil {
		return EErrorDefined(c, configError(err))
	}
	if !limiter.Limiter.CanAddField(form.TenantId, form.ID) {
		return EErrorDefined(c, apierrors.ErrFieldLimitExceed)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		keys, err := dao.FormKeys(tx, form.ID)
		if err != nil {
			return err
		}
		if field.Key == "" {
			field.Key = builder.UniqueKey(builder.Slugify(field.Label), keys)
		} else if _, taken := keys[field.Key]; taken {
			return keyConflict(field.Key)
		}

		if field.SortOrder, err = dao.NextSortOrder(tx, form.ID, field.Section); err != nil {
			return err
		}
		return tx.Create(&field).Error
	})
	s.countOp("CREATE_FIELD", err)
	if err != nil {
		return s.builderError(c, err, field.Key)
	}

	c.Response().Header().Set(limiter.RemainHeader, strconv.Itoa(limiter.Limiter.GetRemainingFields(form.TenantId, form.ID)))
	return EOk(c, http.StatusCreated, field.ToDTO())
}

// patchFormBuilder godoc
// @id patchFormBuilder
// @Summary конструктор: операция над полями или формой
// @Description Тегированная операция: REORDER, PATCH_FIELD, DUPLICATE_FIELD, DELETE_FIELD, PATCH_FORM.
// @Tags Builder
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param formId path string true "ID формы"
// @Param op body dto.BuilderOp true "Операция"
// @Success 200 {object} dto.Envelope "Результат операции"
// @Failure 400 {object} dto.Envelope "Ошибка валидации"
// @Failure 404 {object} dto.Envelope "Поле не найдено"
// @Router /api/forms/{formId}/builder/ [patch]
func (s *Services) patchFormBuilder(c echo.Context) error {
	form := c.(FormContext).Form

	var req dto.BuilderOp
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrFormBadRequest)
	}
	if _, ok := builderOps[req.Op]; !ok {
		return EErrorDefined(c, apierrors.ErrBuilderOpUnknown.WithFormattedMessage(req.Op))
	}
	if err := c.Validate(req); err != nil {
		return EErrorDefined(c, apierrors.ErrFormRequestValidate)
	}
	if form.Status == string(builder.FormArchived) && req.Op != dto.OpPatchForm {
		return EErrorDefined(c, apierrors.ErrFormArchived)
	}

	var data any
	var err error
	switch req.Op {
	case dto.OpReorder:
		err = s.reorderFields(form, req.Order)
	case dto.OpPatchField:
		var patch dto.FieldPatch
		if len(req.Patch) > 0 {
			if err := json.Unmarshal(req.Patch, &patch); err != nil {
				return EErrorDefined(c, apierrors.ErrFormBadRequest)
			}
		}
		if err := c.Validate(patch); err != nil {
			return EErrorDefined(c, apierrors.ErrFormRequestValidate)
		}
		if patch.Label != nil && strings.TrimSpace(*patch.Label) == "" {
			return EErrorDefined(c, apierrors.ErrFormRequestValidate)
		}
		data, err = s.patchField(form, req.FieldID, patch)
	case dto.OpDuplicateField:
		data, err = s.duplicateField(form, req.FieldID)
	case dto.OpDeleteField:
		err = s.deleteField(form, req.FieldID)
	case dto.OpPatchForm:
		data, err = s.patchForm(form, req.Patch)
	}
	s.countOp(req.Op, err)
	if err != nil {
		return s.builderError(c, err, "")
	}

	return EOk(c, http.StatusOK, data)
}

func (s *Services) reorderFields(form dao.Form, order []string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return dao.ReorderFields(tx, form.ID, order)
	})
	if errors.Is(err, dao.ErrOrderMismatch) {
		return apierrors.ErrFieldOrderMismatch
	}
	return err
}

// patchField применяет частичное изменение. Смена секции ставит поле в конец новой секции.
func (s *Services) patchField(form dao.Form, fieldId string, patch dto.FieldPatch) (*dto.Field, error) {
	var field dao.FormField
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if field, err = getOpField(tx, form, fieldId); err != nil {
			return err
		}

		if patch.Label != nil {
			field.Label = *patch.Label
		}
		if patch.Required != nil {
			field.Required = *patch.Required
		}
		if patch.IsActive != nil {
			field.IsActive = *patch.IsActive
		}
		if patch.Placeholder != nil {
			field.Placeholder = patch.Placeholder
		}
		if patch.HelpText != nil {
			field.HelpText = patch.HelpText
		}

		moved := patch.Section != nil && *patch.Section != field.Section
		if moved {
			sec := builder.Section(*patch.Section)
			if !sec.Valid() {
				return apierrors.ErrFieldSectionInvalid.WithFormattedMessage(*patch.Section)
			}
			field.Section = string(sec)
			if field.SortOrder, err = dao.NextSortOrder(tx, form.ID, field.Section); err != nil {
				return err
			}
		}

		if patch.Config != nil || moved {
			raw := []byte(field.Config)
			if patch.Config != nil {
				raw = patch.Config
			}
			cfg, err := builder.ParseConfig(builder.FieldType(field.Type), raw)
			if err != nil {
				return configError(err)
			}
			cfg.Section = builder.Section(field.Section)
			if field.Config, err = json.Marshal(cfg); err != nil {
				return err
			}
		}

		return tx.Save(&field).Error
	})
	if err != nil {
		return nil, err
	}
	return field.ToDTO(), nil
}

// duplicateField копирует поле в конец его секции. Контактные и системные поля не копируются.
func (s *Services) duplicateField(form dao.Form, fieldId string) (*dto.Field, error) {
	if !limiter.Limiter.CanAddField(form.TenantId, form.ID) {
		return nil, apierrors.ErrFieldLimitExceed
	}

	var clone dao.FormField
	err := s.db.Transaction(func(tx *gorm.DB) error {
		src, err := getOpField(tx, form, fieldId)
		if err != nil {
			return err
		}
		if builder.IsSystemKey(src.Key) {
			return apierrors.ErrSystemFieldLocked.WithFormattedMessage(src.Key)
		}
		if builder.IsContactKey(src.Key) {
			return apierrors.ErrContactFieldDuplicate.WithFormattedMessage(src.Key)
		}

		keys, err := dao.FormKeys(tx, form.ID)
		if err != nil {
			return err
		}
		clone = src.Clone(builder.CopyKey(src.Key, keys))
		if clone.SortOrder, err = dao.NextSortOrder(tx, form.ID, clone.Section); err != nil {
			return err
		}
		return tx.Create(&clone).Error
	})
	if err != nil {
		return nil, err
	}
	return clone.ToDTO(), nil
}

func (s *Services) deleteField(form dao.Form, fieldId string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		field, err := getOpField(tx, form, fieldId)
		if err != nil {
			return err
		}
		if builder.IsSystemKey(field.Key) {
			return apierrors.ErrSystemFieldLocked.WithFormattedMessage(field.Key)
		}
		return tx.Delete(&field).Error
	})
}

func (s *Services) patchForm(form dao.Form, raw json.RawMessage) (*dto.FormLight, error) {
	var patch dto.FormPatch
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &patch); err != nil {
			return nil, apierrors.ErrFormBadRequest
		}
	}

	if patch.Name != nil {
		if !validFormName(*patch.Name) {
			return nil, apierrors.ErrFormRequestValidate
		}
		form.Name = *patch.Name
	}
	if patch.Status != nil {
		if !builder.FormStatus(*patch.Status).Valid() {
			return nil, apierrors.ErrFormStatusInvalid.WithFormattedMessage(*patch.Status)
		}
		form.SetStatus(*patch.Status, time.Now())
	}
	if patch.Config != nil {
		switch patch.Config.CaptureStart {
		case "", builder.CaptureFormFirst, builder.CaptureContactFirst:
		default:
			return nil, apierrors.ErrFormRequestValidate
		}
		form.Config = formConfigToDao(*patch.Config)
	}

	if err := s.db.Omit("Fields").Save(&form).Error; err != nil {
		return nil, err
	}
	return form.ToLightDTO(), nil
}

func getOpField(tx *gorm.DB, form dao.Form, fieldId string) (dao.FormField, error) {
	if fieldId == "" {
		return dao.FormField{}, apierrors.ErrFieldIDRequired
	}
	id, err := uuid.FromString(fieldId)
	if err != nil {
		return dao.FormField{}, apierrors.ErrInvalidID
	}
	field, err := dao.GetFormField(tx, form.ID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dao.FormField{}, apierrors.ErrFieldNotFound
	}
	return field, err
}

func keyConflict(key string) apierrors.DefinedError {
	if builder.IsContactKey(key) {
		return apierrors.ErrContactFieldDuplicate.WithFormattedMessage(key)
	}
	return apierrors.ErrFieldKeyConflict.WithFormattedMessage(key)
}

func configError(err error) apierrors.DefinedError {
	var ve *builder.ValidationError
	if errors.As(err, &ve) && ve.Field == "config.section" {
		return apierrors.ErrFieldSectionInvalid.WithFormattedMessage(ve.Reason)
	}
	return apierrors.ErrFieldConfigInvalid.WithFormattedMessage(err.Error())
}

func (s *Services) builderError(c echo.Context, err error, key string) error {
	var defined apierrors.DefinedError
	switch {
	case errors.As(err, &defined):
		return EErrorDefined(c, defined)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return EErrorDefined(c, keyConflict(key))
	}
	return EError(c, err)
}

func (s *Services) countOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.builderOps.WithLabelValues(op, result).Inc()
}
