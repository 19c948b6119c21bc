package maintenance

import (
	"testing"
	"time"

	"github.com/bmue76/leadradar/internal/leadradar/dao"
	"github.com/bmue76/leadradar/internal/leadradar/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := utils.OpenDB("sqlite://:memory:", nil)
	require.NoError(t, err)
	require.NoError(t, dao.Migrate(db))
	return db
}

func createForm(t *testing.T, db *gorm.DB, status string, fields ...dao.FormField) dao.Form {
	t.Helper()
	form := dao.Form{TenantId: "acme", Name: "Messe", Status: status}
	require.NoError(t, db.Create(&form).Error)
	for i := range fields {
		fields[i].FormId = form.ID
		fields[i].SortOrder = i
		require.NoError(t, db.Create(&fields[i]).Error)
	}
	return form
}

func field(key, section string) dao.FormField {
	return dao.FormField{Key: key, Label: key, Type: "TEXT", Section: section, IsActive: true}
}

func TestFormStatsCollector(t *testing.T) {
	db := newTestDB(t)
	createForm(t, db, "DRAFT", field("notes", "FORM"), field("email", "CONTACT"))
	createForm(t, db, "DRAFT")
	createForm(t, db, "ACTIVE", field("rate", "FORM"))

	c, err := NewFormStatsCollector(db, prometheus.NewRegistry())
	require.NoError(t, err)
	c.Collect()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.forms.WithLabelValues("DRAFT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.forms.WithLabelValues("ACTIVE")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.fields.WithLabelValues("FORM")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fields.WithLabelValues("CONTACT")))
}

func TestArchivedFormsCleaner(t *testing.T) {
	db := newTestDB(t)
	old := createForm(t, db, "ARCHIVED", field("notes", "FORM"))
	renamed := createForm(t, db, "ARCHIVED")
	legacy := createForm(t, db, "ARCHIVED")
	recent := createForm(t, db, "ARCHIVED")
	draft := createForm(t, db, "DRAFT")

	past := time.Now().Add(-40 * 24 * time.Hour)
	require.NoError(t, db.Model(&old).UpdateColumns(map[string]any{"archived_at": past, "updated_at": past}).Error)
	// переименована недавно, но в архиве давно
	require.NoError(t, db.Model(&renamed).UpdateColumn("archived_at", past).Error)
	require.NoError(t, db.Model(&legacy).UpdateColumn("updated_at", past).Error)
	require.NoError(t, db.Model(&recent).UpdateColumn("archived_at", time.Now()).Error)
	require.NoError(t, db.Model(&draft).UpdateColumn("updated_at", past).Error)

	NewArchivedFormsCleaner(db, 0).CleanArchivedForms()
	var count int64
	require.NoError(t, db.Model(&dao.Form{}).Count(&count).Error)
	assert.EqualValues(t, 5, count)

	NewArchivedFormsCleaner(db, 30*24*time.Hour).CleanArchivedForms()

	var ids []string
	require.NoError(t, db.Model(&dao.Form{}).Order("created_at").Pluck("id", &ids).Error)
	assert.ElementsMatch(t, []string{recent.ID.String(), draft.ID.String()}, ids)

	require.NoError(t, db.Model(&dao.FormField{}).Where("form_id = ?", old.ID).Count(&count).Error)
	assert.Zero(t, count)
}
