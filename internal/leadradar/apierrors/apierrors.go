// Пакет содержит определения ошибок API LeadRadar. Каждая ошибка имеет код, статус HTTP и описание на английском и русском, что позволяет клиенту показывать сообщение как есть.  Также включает helper-функцию для форматирования сообщений об ошибках.
//
// Основные возможности:
//   - Ошибки авторизации арендатора.
//   - Ошибки форм и конструктора форм (порядок полей, ключи, системные поля).
//   - Коды ошибок, соответствующие кодам HTTP статусов.
//   - Функция для форматирования сообщений об ошибках с использованием аргументов.
package apierrors

import (
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"message"`
	RuErr      string `json:"ruMessage,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

var (
	// 11** - tenant token errors
	ErrAccessTokenRequired = DefinedError{Code: 1101, StatusCode: http.StatusUnauthorized, Err: "access token is required", RuErr: "Требуется токен доступа"}
	ErrTokenExpired        = DefinedError{Code: 1102, StatusCode: http.StatusUnauthorized, Err: "token expired", RuErr: "Срок действия токена истек"}
	ErrTokenInvalid        = DefinedError{Code: 1103, StatusCode: http.StatusUnauthorized, Err: "invalid token", RuErr: "Неверный токен"}
	ErrTenantRequired      = DefinedError{Code: 1104, StatusCode: http.StatusUnauthorized, Err: "token has no tenant", RuErr: "В токене не указан арендатор"}

	// 32** - form errors
	ErrFormNotFound        = DefinedError{Code: 3201, StatusCode: http.StatusNotFound, Err: "form not found", RuErr: "Форма не найдена"}
	ErrFormBadRequest      = DefinedError{Code: 3205, StatusCode: http.StatusBadRequest, Err: "bad request", RuErr: "Некорректный запрос"}
	ErrFormRequestValidate = DefinedError{Code: 3206, StatusCode: http.StatusBadRequest, Err: "validation error", RuErr: "Введены некорректные данные"}
	ErrFormStatusInvalid   = DefinedError{Code: 3216, StatusCode: http.StatusBadRequest, Err: "unknown form status '%s'", RuErr: "Неизвестный статус формы '%s'"}
	ErrFormArchived        = DefinedError{Code: 3217, StatusCode: http.StatusConflict, Err: "archived form cannot be edited", RuErr: "Архивную форму нельзя изменять"}
	ErrFormLimitExceed     = DefinedError{Code: 3218, StatusCode: http.StatusPaymentRequired, Err: "form limit exceed", RuErr: "Количество ваших форм достигло лимита вашего плана"}
	ErrFieldLimitExceed    = DefinedError{Code: 3219, StatusCode: http.StatusPaymentRequired, Err: "field limit exceed", RuErr: "Количество полей формы достигло лимита вашего плана"}

	// 33** - builder errors
	ErrBuilderOpUnknown      = DefinedError{Code: 3300, StatusCode: http.StatusBadRequest, Err: "unknown builder operation '%s'", RuErr: "Неизвестная операция конструктора '%s'"}
	ErrFieldNotFound         = DefinedError{Code: 3301, StatusCode: http.StatusNotFound, Err: "field not found", RuErr: "Поле не найдено"}
	ErrFieldKeyConflict      = DefinedError{Code: 3302, StatusCode: http.StatusConflict, Err: "field with key '%s' already exists", RuErr: "Поле с ключом '%s' уже существует"}
	ErrFieldConfigInvalid    = DefinedError{Code: 3303, StatusCode: http.StatusBadRequest, Err: "invalid field config: %s", RuErr: "Некорректная конфигурация поля: %s"}
	ErrFieldOrderMismatch    = DefinedError{Code: 3304, StatusCode: http.StatusBadRequest, Err: "order must list every field of the form exactly once", RuErr: "Порядок должен содержать каждое поле формы ровно один раз"}
	ErrSystemFieldLocked     = DefinedError{Code: 3305, StatusCode: http.StatusForbidden, Err: "system field '%s' cannot be changed this way", RuErr: "Системное поле '%s' нельзя изменить таким образом"}
	ErrContactFieldDuplicate = DefinedError{Code: 3306, StatusCode: http.StatusConflict, Err: "contact field '%s' can exist only once", RuErr: "Контактное поле '%s' может быть только одно"}
	ErrFieldTypeInvalid      = DefinedError{Code: 3307, StatusCode: http.StatusBadRequest, Err: "unknown field type '%s'", RuErr: "Неизвестный тип поля '%s'"}
	ErrFieldSectionInvalid   = DefinedError{Code: 3308, StatusCode: http.StatusBadRequest, Err: "unknown section '%s'", RuErr: "Неизвестная секция '%s'"}
	ErrFieldIDRequired       = DefinedError{Code: 3309, StatusCode: http.StatusBadRequest, Err: "fieldId is required", RuErr: "Не указан идентификатор поля"}

	// 5*** - general errors
	ErrGeneric       = DefinedError{Code: 5000, StatusCode: http.StatusBadRequest, Err: "Something went wrong. Please try again later or contact the support team.", RuErr: "Что-то пошло не так. Повторите попытку позже или обратитесь в службу поддержки"}
	ErrEntityToLarge = DefinedError{Code: 5001, StatusCode: http.StatusRequestEntityTooLarge, Err: "request entity too large", RuErr: "Слишком большой запрос"}
	ErrNotFound      = DefinedError{Code: 5004, StatusCode: http.StatusNotFound, Err: "not found", RuErr: "Не найдено"}

	// 9*** - misc errors
	ErrInvalidID = DefinedError{Code: 9003, StatusCode: http.StatusBadRequest, Err: "invalid ID", RuErr: "Указан неверный ID"}
)

func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.RuErr = fmt.Sprintf(e.RuErr, args...)
	} else {
		e.Err = strings.Replace(e.Err, "%s", "", -1)
		e.RuErr = strings.Replace(e.RuErr, "%s", "", -1)
	}
	return e
}
