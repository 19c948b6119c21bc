package builder

import (
	"errors"
	"fmt"
)

var (
	ErrBusy        = errors.New("builder: previous change is still being saved")
	ErrClosed      = errors.New("builder: coordinator is closed")
	ErrNotLoaded   = errors.New("builder: form is not loaded")
	ErrNotFound    = errors.New("builder: field not found")
	ErrKeyConflict = errors.New("builder: field key already exists")
	ErrSystemField = errors.New("builder: system field")
	ErrDragState   = errors.New("builder: invalid drag state")
	ErrSuperseded  = errors.New("builder: result superseded by reload")
)

// ValidationError ошибка, обнаруженная до сетевого вызова.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NetworkError транспорт не смог доставить запрос или прочитать ответ.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// BadResponseError ответ не JSON или не соответствует ожидаемой форме.
type BadResponseError struct {
	Op     string
	Status int
	Reason string
	Err    error
}

func (e *BadResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: bad response (status %d): %s: %v", e.Op, e.Status, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: bad response (status %d): %s", e.Op, e.Status, e.Reason)
}

func (e *BadResponseError) Unwrap() error {
	return e.Err
}

// ServerError ответ {ok:false}. Сообщение и код показываются пользователю как есть.
type ServerError struct {
	Op            string
	Status        int
	Code          int
	Message       string
	CorrelationID string
}

func (e *ServerError) Error() string {
	if e.CorrelationID != "" {
		return fmt.Sprintf("%s: server error %d: %s (correlation id %s)", e.Op, e.Code, e.Message, e.CorrelationID)
	}
	return fmt.Sprintf("%s: server error %d: %s", e.Op, e.Code, e.Message)
}
