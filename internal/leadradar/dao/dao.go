// DAO (Data Access Object) форм и полей конструктора. Содержит модели GORM, хуки очистки текста, преобразование в DTO и операции, которые должны выполняться в одной транзакции (переупорядочивание, дублирование).
//
// Основные возможности:
//   - Модели Form и FormField с уникальным ключом поля в пределах формы.
//   - Очистка подписей и подсказок полей перед сохранением.
//   - Переписывание sortOrder по полному порядку полей.
//   - Выбор следующей позиции в секции и набора занятых ключей.
package dao

import (
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// GenUUID генерирует уникальный идентификатор в формате UUID.
func GenUUID() uuid.UUID {
	u2, _ := uuid.NewV4()
	return u2
}

// Migrate создает или обновляет таблицы конструктора.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Form{}, &FormField{})
}
