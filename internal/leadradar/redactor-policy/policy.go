// Политики очистки пользовательского текста, который попадает в подписи и подсказки полей формы.
//
// Основные возможности:
//   - Удаление любых HTML тегов (StripTagsPolicy).
//   - Ограниченный набор форматирования для подсказок (HelpTextPolicy).
//   - Получение чистого текста без HTML сущностей (StripText).
package policy

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var HelpTextPolicy *bluemonday.Policy = bluemonday.NewPolicy()

var spaceRegexp = regexp.MustCompile(`\s+`)

func init() {
	HelpTextPolicy.AllowElements("b", "strong", "i", "em", "br")
	HelpTextPolicy.AllowAttrs("href").OnElements("a")
	HelpTextPolicy.AllowURLSchemes("https", "mailto")
	HelpTextPolicy.RequireNoFollowOnLinks(true)
	HelpTextPolicy.AddTargetBlankToFullyQualifiedLinks(true)
}

// StripText возвращает текст без тегов и HTML сущностей, пробелы схлопываются.
func StripText(s string) string {
	s = html.UnescapeString(StripTagsPolicy.Sanitize(s))
	return strings.TrimSpace(spaceRegexp.ReplaceAllString(s, " "))
}

// SanitizeHelpText очищает подсказку поля, оставляя простое форматирование и ссылки.
func SanitizeHelpText(s string) string {
	return strings.TrimSpace(HelpTextPolicy.Sanitize(s))
}
