// Вспомогательные функции ответа API: конверт {ok, data} для успешных ответов и {ok:false, error} для ошибок с логированием неожиданных ошибок.
//
// Основные возможности:
//   - Стандартный формат ответа с кодом ошибки и идентификатором запроса.
//   - Логирование ошибок API с контекстом (метод, URL, арендатор, место вызова).
//   - Преобразование статусов echo (413, 404, 405) в ошибки каталога.
package leadradar

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/bmue76/leadradar/internal/leadradar/apierrors"
	"github.com/bmue76/leadradar/internal/leadradar/dto"
	"github.com/labstack/echo/v4"
)

// EOk успешный ответ в конверте. data == nil дает {"ok":true}.
func EOk(c echo.Context, status int, data any) error {
	return c.JSON(status, dto.Envelope{Ok: true, Data: data})
}

// Возврат ErrGeneric с логированием исходной ошибки
func EError(c echo.Context, err error) error {
	if customErr, ok := err.(apierrors.DefinedError); ok {
		return EErrorDefined(c, customErr)
	}
	if err == nil {
		slog.Error("Unknown API error",
			"method", c.Request().Method,
			"url", c.Request().URL,
			"tenant", tenantOf(c),
			getCallerFile(),
		)
	} else {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			"url", c.Request().URL,
			"tenant", tenantOf(c),
			getCallerFile(),
		)
	}
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// Возврат ошибки <status>. 404 и 405 не логируются
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	switch status {
	case http.StatusRequestEntityTooLarge:
		return EErrorDefined(c, apierrors.ErrEntityToLarge)
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		er := apierrors.ErrNotFound
		er.StatusCode = status
		return EErrorDefined(c, er)
	}

	slog.Error("API error",
		"err", err,
		"method", c.Request().Method,
		slog.Int("status", status),
		"url", c.Request().URL,
		"tenant", tenantOf(c),
		getCallerFile(),
	)
	er := apierrors.ErrGeneric
	er.StatusCode = status
	return EErrorDefined(c, er)
}

// EErrorDefined возвращает конверт ошибки с кодом каталога и X-Request-Id запроса. Если код статуса не определен, используется 400 Bad Request.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, dto.Envelope{
		Ok: false,
		Error: &dto.ErrorBody{
			Code:          err.Code,
			Message:       err.Err,
			RuMessage:     err.RuErr,
			CorrelationID: c.Response().Header().Get(echo.HeaderXRequestID),
		},
	})
}

func tenantOf(c echo.Context) string {
	switch ctx := c.(type) {
	case FormContext:
		return ctx.Tenant
	case TenantContext:
		return ctx.Tenant
	}
	return ""
}

// getCallerFile возвращает файл и строку, из которых был вызван helper ошибки.
func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
