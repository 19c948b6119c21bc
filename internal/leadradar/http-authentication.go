// Аутентификация арендатора по Bearer JWT (HS256). Токен несет claim tenant, все формы запроса ограничиваются этим арендатором.
//
// Основные возможности:
//   - Middleware проверки токена и извлечения арендатора.
//   - Выпуск токена арендатора для CLI и тестов.
package leadradar

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bmue76/leadradar/internal/leadradar/apierrors"
	"github.com/bmue76/leadradar/internal/leadradar/dao"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const tenantClaim = "tenant"

type TenantContext struct {
	echo.Context
	Tenant string
}

// IssueTenantToken подписывает токен арендатора. ttl <= 0 - без срока действия.
func IssueTenantToken(secret []byte, tenant string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		tenantClaim: tenant,
		"iat":       jwt.NewNumericDate(time.Now()),
		"jti":       dao.GenUUID().String(),
	}
	if ttl > 0 {
		claims["exp"] = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func TenantMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}

			schema, tokenString, ok := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
			if !ok || strings.TrimSpace(schema) != "Bearer" {
				return EErrorDefined(c, apierrors.ErrAccessTokenRequired)
			}

			token, err := jwt.Parse(strings.TrimSpace(tokenString), func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return EErrorDefined(c, apierrors.ErrTokenExpired)
				}
				return EErrorDefined(c, apierrors.ErrTokenInvalid)
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return EErrorDefined(c, apierrors.ErrTokenInvalid)
			}
			tenant, _ := claims[tenantClaim].(string)
			if tenant == "" {
				return EErrorDefined(c, apierrors.ErrTenantRequired)
			}

			return next(TenantContext{c, tenant})
		}
	}
}
