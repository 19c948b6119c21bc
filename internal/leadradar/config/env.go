package config

import (
	"os"
	"strconv"
)

// Exist - возвращает true, если переменная окружения key задана
func Exist(key string) bool {
	_, exist := os.LookupEnv(key)
	return exist
}

func GetEnv(key string) string {
	val, _ := os.LookupEnv(key)
	return val
}

// GetEnvDefault - значение переменной или def, если переменная пуста
func GetEnvDefault(key, def string) string {
	if val := GetEnv(key); val != "" {
		return val
	}
	return def
}

// GetIntEnv - возвращает содержимое числовой переменной. При ошибке разбора возвращается 0
func GetIntEnv(key string) int {
	v, err := strconv.Atoi(GetEnv(key))
	if err != nil {
		return 0
	}
	return v
}

// GetBoolEnv - возвращает содержимое логической переменной. При ошибке разбора возвращается false
func GetBoolEnv(key string) bool {
	v, err := strconv.ParseBool(GetEnv(key))
	if err != nil {
		return false
	}
	return v
}
