package leadradar

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
)

// getSwaggerJSON отдает спецификацию, собранную swag, с host текущего запроса.
func (s *Services) getSwaggerJSON(c echo.Context) error {
	f, err := os.Open(s.cfg.SwaggerJSON)
	if errors.Is(err, fs.ErrNotExist) {
		return EErrorMsgStatus(c, err, http.StatusNotFound)
	}
	if err != nil {
		return EError(c, err)
	}
	defer f.Close()

	data := make(map[string]interface{})
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return EError(c, err)
	}
	data["host"] = c.Request().Host
	return c.JSON(http.StatusOK, data)
}
