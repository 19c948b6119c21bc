// Квоты арендатора на формы и поля. По умолчанию ограничений нет, внешний сервис квот подключается через LIMITER_URL.
package limiter

import (
	"log/slog"
	"net/url"

	"github.com/bmue76/leadradar/internal/leadradar/config"
	"github.com/gofrs/uuid"
)

type LimiterInt interface {
	CanCreateForm(tenant string) bool
	CanAddField(tenant string, formId uuid.UUID) bool

	GetRemainingForms(tenant string) int
	GetRemainingFields(tenant string, formId uuid.UUID) int
}

var Limiter LimiterInt = CommunityLimiter{}

// RemainHeader заголовок с остатком квоты, и в ответах сервиса квот, и в ответах API.
const RemainHeader = "X-Entity-Remain"

func Init(cfg *config.Config) {
	if cfg.LimiterURL == "" {
		slog.Info("Using Community limiter")
		Limiter = CommunityLimiter{}
		return
	}
	host, err := url.Parse(cfg.LimiterURL)
	if err != nil || host.Host == "" {
		slog.Error("Bad LIMITER_URL, backoff to Community limiter", "err", err)
		Limiter = CommunityLimiter{}
		return
	}
	slog.Info("Using external limiter", "host", host.Host)
	Limiter = NewExternalLimiter(host)
}

type CommunityLimiter struct{}

func (c CommunityLimiter) CanCreateForm(tenant string) bool {
	return true
}

func (c CommunityLimiter) CanAddField(tenant string, formId uuid.UUID) bool {
	return true
}

func (c CommunityLimiter) GetRemainingForms(tenant string) int {
	return 99999999
}

func (c CommunityLimiter) GetRemainingFields(tenant string, formId uuid.UUID) int {
	return 99999999
}
