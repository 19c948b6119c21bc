// Обработчики форм арендатора: список, создание и снимок конструктора.
//
// Основные возможности:
//   - Загрузка формы арендатора в контекст запроса (FormContext).
//   - Список и создание форм.
//   - Снимок конструктора: форма и поля в порядке секций.
package leadradar

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bmue76/leadradar/internal/leadradar/apierrors"
	"github.com/bmue76/leadradar/internal/leadradar/dao"
	"github.com/bmue76/leadradar/internal/leadradar/dto"
	"github.com/bmue76/leadradar/internal/leadradar/utils"
	"github.com/bmue76/leadradar/pkg/limiter"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type FormContext struct {
	TenantContext
	Form dao.Form
}

func (s *Services) FormMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantCtx := c.(TenantContext)

		formId, err := uuid.FromString(c.Param("formId"))
		if err != nil {
			return EErrorDefined(c, apierrors.ErrInvalidID)
		}

		form, err := dao.GetTenantForm(s.db, tenantCtx.Tenant, formId)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return EErrorDefined(c, apierrors.ErrFormNotFound)
			}
			return EError(c, err)
		}

		return next(FormContext{tenantCtx, form})
	}
}

func (s *Services) AddFormServices(g *echo.Group) {
	formGroup := g.Group(":formId/", s.FormMiddleware)

	g.GET("", s.getFormList)
	g.POST("", s.createForm)

	formGroup.GET("builder/", s.getFormBuilder)
	formGroup.PATCH("builder/", s.patchFormBuilder)
	formGroup.POST("fields/", s.createFormField)
}

// getFormList godoc
// @id getFormList
// @Summary формы: список форм арендатора
// @Tags Forms
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} dto.FormLight "Список форм"
// @Header 200 {integer} X-Entity-Remain "Сколько форм еще можно создать"
// @Failure 401 {object} dto.Envelope "Нет токена арендатора"
// @Router /api/forms/ [get]
func (s *Services) getFormList(c echo.Context) error {
	tenant := c.(TenantContext).Tenant

	var forms []dao.Form
	if err := s.db.Where("tenant_id = ?", tenant).Order("created_at").Find(&forms).Error; err != nil {
		return EError(c, err)
	}

	c.Response().Header().Set(limiter.RemainHeader, strconv.Itoa(limiter.Limiter.GetRemainingForms(tenant)))
	return EOk(c, http.StatusOK,
		utils.SliceToSlice(&forms, func(f *dao.Form) dto.FormLight { return *f.ToLightDTO() }),
	)
}

// createForm godoc
// @id createForm
// @Summary формы: создать форму
// @Tags Forms
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param form body reqForm true "Данные формы"
// @Success 201 {object} dto.FormLight "Созданная форма"
// @Failure 400 {object} dto.Envelope "Ошибка валидации данных формы"
// @Router /api/forms/ [post]
func (s *Services) createForm(c echo.Context) error {
	tenant := c.(TenantContext).Tenant

	var req reqForm
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrFormBadRequest)
	}
	if err := c.Validate(req); err != nil {
		return EErrorDefined(c, apierrors.ErrFormRequestValidate)
	}

	if !limiter.Limiter.CanCreateForm(tenant) {
		return EErrorDefined(c, apierrors.ErrFormLimitExceed)
	}

	form := req.toDao(tenant)
	if err := s.db.Create(&form).Error; err != nil {
		return EError(c, err)
	}

	return EOk(c, http.StatusCreated, form.ToLightDTO())
}

// getFormBuilder godoc
// @id getFormBuilder
// @Summary конструктор: снимок формы и полей
// @Tags Builder
// @Produce json
// @Security ApiKeyAuth
// @Param formId path string true "ID формы"
// @Success 200 {object} dto.BuilderSnapshot "Форма и поля"
// @Failure 404 {object} dto.Envelope "Форма не найдена"
// @Router /api/forms/{formId}/builder/ [get]
func (s *Services) getFormBuilder(c echo.Context) error {
	form := c.(FormContext).Form

	if err := form.LoadFields(s.db); err != nil {
		return EError(c, err)
	}
	return EOk(c, http.StatusOK, form.ToBuilderDTO())
}
