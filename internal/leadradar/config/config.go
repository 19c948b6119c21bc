// Управление конфигурацией сервера LeadRadar из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Значения по умолчанию для адресов и порогов.
//   - Маскировка секретных значений в логах.
package config

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"
)

type Config struct {
	ListenAddr  string `env:"LISTEN_ADDR"`
	MetricsAddr string `env:"METRICS_ADDR"`

	// postgres DSN или sqlite://<путь>
	DatabaseDSN string `env:"DATABASE_URL"`

	SecretKey string `env:"SECRET_KEY"`

	// сервис квот арендаторов, пусто - без ограничений
	LimiterURL string `env:"LIMITER_URL"`

	// через сколько дней архивная форма удаляется, 0 - никогда
	ArchivedRetentionDays int `env:"ARCHIVED_RETENTION_DAYS"`

	SlowQueryMs int  `env:"SLOW_QUERY_MS"`
	CORSEnable  bool `env:"CORS_ENABLE"`

	SwaggerEnable bool   `env:"SWAGGER_ENABLE"`
	SwaggerJSON   string `env:"SWAGGER_JSON"`
}

// ReadConfig загружает конфигурацию из окружения. SECRET_KEY и DATABASE_URL обязательны.
func ReadConfig() (*Config, error) {
	config := &Config{
		ListenAddr:  ":8080",
		MetricsAddr: ":2112",
		SlowQueryMs: 500,
		SwaggerJSON: "docs/swagger.json",
	}

	envConfig("env", config)

	if config.SecretKey == "" {
		return nil, errors.New("SECRET_KEY is required")
	}
	if config.DatabaseDSN == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if config.ArchivedRetentionDays < 0 {
		config.ArchivedRetentionDays = 0
	}
	if config.SlowQueryMs < 0 {
		config.SlowQueryMs = 0
	}
	return config, nil
}

func (c *Config) ArchivedRetention() time.Duration {
	return time.Duration(c.ArchivedRetentionDays) * 24 * time.Hour
}

func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryMs) * time.Millisecond
}

// Присваивает полям в переданной структуре значения переменных. Название переменной для каждого поля лежит в теге этого поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if fEnvTag == "" || !Exist(fEnvTag) {
			continue
		}

		value := GetEnv(fEnvTag)
		if value == "" {
			continue
		}

		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", maskSecret(fName, fEnvTag, value)),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(value)
		case int:
			v.Field(i).SetInt(int64(GetIntEnv(fEnvTag)))
		case bool:
			v.Field(i).SetBool(GetBoolEnv(fEnvTag))
		}
	}
}

// Secure passwords in log
func maskSecret(name, tag, value string) string {
	lower := strings.ToLower(name)
	secret := strings.Contains(lower, "pass") || strings.Contains(lower, "secret") || strings.Contains(lower, "token") ||
		tag == "DATABASE_URL"
	if !secret {
		return value
	}
	runes := []rune(value)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
