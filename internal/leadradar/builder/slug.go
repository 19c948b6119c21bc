package builder

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fallbackKey = "field"

// Буквы, которые не раскладываются через NFD.
var ligatures = strings.NewReplacer(
	"ß", "ss", "æ", "ae", "Æ", "Ae", "œ", "oe", "Œ", "Oe", "ø", "o", "Ø", "O", "ł", "l", "Ł", "L",
)

// Slugify превращает произвольное имя в ключ поля: ASCII, lowerCamelCase.
// "Größe des Unternehmens" -> "grosseDesUnternehmens". Пустой результат заменяется на "field".
func Slugify(name string) string {
	name = ligatures.Replace(name)
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		stripped = name
	}

	words := strings.FieldsFunc(stripped, func(r rune) bool {
		return r >= utf8.RuneSelf || !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})

	var b strings.Builder
	for i, w := range words {
		if isUpper(w) {
			w = strings.ToLower(w)
		}
		if i == 0 {
			b.WriteString(strings.ToLower(w[:1]) + w[1:])
		} else {
			b.WriteString(strings.ToUpper(w[:1]) + w[1:])
		}
	}

	key := b.String()
	if key == "" {
		return fallbackKey
	}
	if unicode.IsDigit(rune(key[0])) {
		return fallbackKey + strings.ToUpper(key[:1]) + key[1:]
	}
	return key
}

func isUpper(w string) bool {
	return strings.ToUpper(w) == w
}

// UniqueKey подбирает ключ base, base2, base3, ... которого нет в taken.
// Контактные и системные ключи зарезервированы и никогда не выдаются.
func UniqueKey(base string, taken map[string]struct{}) string {
	if base == "" {
		base = fallbackKey
	}
	busy := func(k string) bool {
		_, ok := taken[k]
		return ok || IsContactKey(k) || IsSystemKey(k)
	}
	if !busy(base) {
		return base
	}
	for n := 2; ; n++ {
		if k := base + strconv.Itoa(n); !busy(k) {
			return k
		}
	}
}

// CopyKey ключ для копии поля: числовой суффикс исходного ключа отбрасывается,
// поэтому копия notes2 получает notes3, а не notes22.
func CopyKey(src string, taken map[string]struct{}) string {
	base := strings.TrimRightFunc(src, unicode.IsDigit)
	if base == "" {
		base = src
	}
	return UniqueKey(base, taken)
}
