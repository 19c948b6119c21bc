// Фоновые задачи обслуживания: метрики по формам и удаление давно архивированных форм.
package maintenance

import (
	"log/slog"

	"github.com/bmue76/leadradar/internal/leadradar/dao"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type FormStatsCollector struct {
	db     *gorm.DB
	forms  *prometheus.GaugeVec
	fields *prometheus.GaugeVec
}

func NewFormStatsCollector(db *gorm.DB, reg prometheus.Registerer) (*FormStatsCollector, error) {
	c := &FormStatsCollector{
		db: db,
		forms: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "leadradar",
			Name:      "forms",
			Help:      "Forms by status",
		}, []string{"status"}),
		fields: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "leadradar",
			Name:      "form_fields",
			Help:      "Form fields by section",
		}, []string{"section"}),
	}
	for _, col := range []prometheus.Collector{c.forms, c.fields} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type groupCount struct {
	Name  string
	Count int64
}

func (c *FormStatsCollector) Collect() {
	var forms, fields []groupCount
	if err := c.db.Model(&dao.Form{}).Select("status AS name, count(*) AS count").Group("status").Scan(&forms).Error; err != nil {
		slog.Error("Collect form stats", "err", err)
		return
	}
	if err := c.db.Model(&dao.FormField{}).Select("section AS name, count(*) AS count").Group("section").Scan(&fields).Error; err != nil {
		slog.Error("Collect field stats", "err", err)
		return
	}

	c.forms.Reset()
	for _, r := range forms {
		c.forms.WithLabelValues(r.Name).Set(float64(r.Count))
	}
	c.fields.Reset()
	for _, r := range fields {
		c.fields.WithLabelValues(r.Name).Set(float64(r.Count))
	}
}
