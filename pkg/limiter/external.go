package limiter

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// ExternalLimiter спрашивает сервис квот. Ответ 200 - можно, остаток в заголовке X-Entity-Remain.
// Если сервис недоступен, действие запрещается.
type ExternalLimiter struct {
	host   *url.URL
	client *retryablehttp.Client
}

func NewExternalLimiter(host *url.URL) *ExternalLimiter {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.HTTPClient.Timeout = 5 * time.Second
	client.Logger = nil
	return &ExternalLimiter{host: host, client: client}
}

func (c ExternalLimiter) CanCreateForm(tenant string) bool {
	return c.doRequest("/can/create/tenant/" + url.PathEscape(tenant) + "/form")
}

func (c ExternalLimiter) CanAddField(tenant string, formId uuid.UUID) bool {
	return c.doRequest("/can/add/tenant/" + url.PathEscape(tenant) + "/form/" + formId.String() + "/field")
}

func (c ExternalLimiter) GetRemainingForms(tenant string) int {
	return c.doRemainRequest("/remain/tenant/" + url.PathEscape(tenant) + "/forms")
}

func (c ExternalLimiter) GetRemainingFields(tenant string, formId uuid.UUID) int {
	return c.doRemainRequest("/remain/tenant/" + url.PathEscape(tenant) + "/form/" + formId.String() + "/fields")
}

func (c ExternalLimiter) get(path string) (*http.Response, error) {
	return c.client.Get(c.host.ResolveReference(&url.URL{Path: path}).String())
}

func (c ExternalLimiter) doRemainRequest(path string) int {
	resp, err := c.get(path)
	if err != nil {
		slog.Error("Request remains", "err", err)
		return -1
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return -1
	}

	remain, err := strconv.Atoi(resp.Header.Get(RemainHeader))
	if err != nil {
		slog.Error("Parse remain answer", "raw", resp.Header.Get(RemainHeader), "err", err)
		return -1
	}
	return remain
}

func (c ExternalLimiter) doRequest(path string) bool {
	resp, err := c.get(path)
	if err != nil {
		slog.Error("Request access rule", "err", err)
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
