// Валидация запросов API конструктора через go-playground/validator.
//
// Основные возможности:
//   - Ключ поля: латиница, цифры и подчеркивание, не длиннее 64 символов.
//   - Название формы: от 1 до 120 символов, не только пробелы.
//   - Секция и тип поля из фиксированных наборов.
package leadradar

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/bmue76/leadradar/internal/leadradar/builder"
	"github.com/go-playground/validator"
)

var fieldKeyRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	validations := map[string]validator.Func{
		"fieldKey":  fieldKeyValidator,
		"formName":  formNameValidator,
		"section":   sectionValidator,
		"fieldType": fieldTypeValidator,
	}
	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil
		}
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		_, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		return err
	}
	return nil
}

func fieldKeyValidator(fl validator.FieldLevel) bool {
	return fieldKeyRegexp.MatchString(fl.Field().String())
}

func formNameValidator(fl validator.FieldLevel) bool {
	return validFormName(fl.Field().String())
}

func validFormName(name string) bool {
	n := utf8.RuneCountInString(name)
	return strings.TrimSpace(name) != "" && n <= 120
}

func sectionValidator(fl validator.FieldLevel) bool {
	return builder.Section(fl.Field().String()).Valid()
}

func fieldTypeValidator(fl validator.FieldLevel) bool {
	return builder.FieldType(fl.Field().String()).Valid()
}
