package maintenance

import (
	"log/slog"
	"time"

	"github.com/bmue76/leadradar/internal/leadradar/dao"
	"gorm.io/gorm"
)

const cleanBatch = 50

// ArchivedFormsCleaner удаляет формы, которые находятся в архиве дольше retention, вместе с полями.
// Формы без archived_at (архивированные до появления колонки) считаются по updated_at.
type ArchivedFormsCleaner struct {
	db        *gorm.DB
	retention time.Duration
	now       func() time.Time
}

func NewArchivedFormsCleaner(db *gorm.DB, retention time.Duration) *ArchivedFormsCleaner {
	return &ArchivedFormsCleaner{db: db, retention: retention, now: time.Now}
}

func (ac *ArchivedFormsCleaner) CleanArchivedForms() {
	if ac.retention <= 0 {
		return
	}
	slog.Info("Start clean archived forms")
	cutoff := ac.now().Add(-ac.retention)
	var forms []dao.Form
	if err := ac.db.
		Where("status = ?", dao.FormStatusArchived).
		Where("archived_at < ? OR (archived_at IS NULL AND updated_at < ?)", cutoff, cutoff).
		Limit(cleanBatch).
		Find(&forms).Error; err != nil {
		slog.Error("Get archived forms", "err", err)
		return
	}

	for _, form := range forms {
		err := ac.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("form_id = ?", form.ID).Delete(&dao.FormField{}).Error; err != nil {
				return err
			}
			return tx.Delete(&form).Error
		})
		if err != nil {
			slog.Error("Delete archived form", "formId", form.ID, "err", err)
		}
	}
	slog.Info("Finish clean archived forms", "count", len(forms))
}
