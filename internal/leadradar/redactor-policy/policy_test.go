package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripText(t *testing.T) {
	cases := map[string]string{
		"Vorname":                           "Vorname",
		"<b>E-Mail</b>  Adresse":            "E-Mail Adresse",
		"Tom &amp; Jerry":                   "Tom & Jerry",
		"<script>alert(1)</script>Firma":    "Firma",
		"  \n Interesse \t an  Produkt ":    "Interesse an Produkt",
		"<img src=x onerror=alert(1)>Stadt": "Stadt",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, StripText(in))
		})
	}
}

func TestSanitizeHelpText(t *testing.T) {
	t.Run("keeps formatting", func(t *testing.T) {
		assert.Equal(t, "<b>Pflicht</b> für Rückruf", SanitizeHelpText("<b>Pflicht</b> für Rückruf"))
	})

	t.Run("drops scripts and handlers", func(t *testing.T) {
		out := SanitizeHelpText(`<i onclick="x()">Hinweis</i><script>x()</script>`)
		assert.Equal(t, "<i>Hinweis</i>", out)
	})

	t.Run("drops javascript links", func(t *testing.T) {
		out := SanitizeHelpText(`<a href="javascript:alert(1)">link</a>`)
		assert.NotContains(t, out, "javascript")
	})
}
