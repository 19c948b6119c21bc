package builder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := ParseConfig(TypeRating, nil)
		require.NoError(t, err)
		assert.Equal(t, RatingSettings{Max: 5}, cfg.Settings)

		cfg, err = ParseConfig(TypeText, []byte("null"))
		require.NoError(t, err)
		assert.Equal(t, TextSettings{}, cfg.Settings)
	})

	t.Run("choice", func(t *testing.T) {
		cfg, err := ParseConfig(TypeSingleSelect, []byte(`{"section":"CONTACT","variant":"radio","options":["A","B"]}`))
		require.NoError(t, err)
		assert.Equal(t, SectionContact, cfg.Section)
		assert.Equal(t, "radio", cfg.Variant)
		assert.Equal(t, []string{"A", "B"}, cfg.Options())
	})

	t.Run("attachment and audio", func(t *testing.T) {
		cfg, err := ParseConfig(TypeAttachment, []byte(`{"attachment":{"accept":["image/*"],"maxFiles":4}}`))
		require.NoError(t, err)
		assert.Equal(t, AttachmentSettings{Accept: []string{"image/*"}, MaxFiles: 4}, cfg.Settings)

		cfg, err = ParseConfig(TypeAudio, []byte(`{"audio":{"maxDurationSec":30,"allowRecord":false,"allowPick":true}}`))
		require.NoError(t, err)
		assert.Equal(t, AudioSettings{MaxDurationSec: 30, AllowPick: true}, cfg.Settings)
	})

	invalid := []struct {
		name string
		typ  FieldType
		raw  string
	}{
		{"empty options", TypeMultiSelect, `{"options":[]}`},
		{"missing options", TypeSingleSelect, `{}`},
		{"blank option", TypeSingleSelect, `{"options":["A"," "]}`},
		{"duplicate option", TypeSingleSelect, `{"options":["A","A"]}`},
		{"rating too small", TypeRating, `{"ratingMax":1}`},
		{"rating too large", TypeRating, `{"ratingMax":11}`},
		{"too many files", TypeAttachment, `{"attachment":{"maxFiles":11}}`},
		{"audio without source", TypeAudio, `{"audio":{"maxDurationSec":10}}`},
		{"audio too long", TypeAudio, `{"audio":{"maxDurationSec":601,"allowRecord":true}}`},
		{"unknown variant", TypeText, `{"variant":"huge"}`},
		{"unknown section", TypeText, `{"section":"SIDEBAR"}`},
		{"malformed", TypeText, `{"section":`},
		{"unknown type", "SIGNATURE", `{}`},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(tt.typ, []byte(tt.raw))
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestConfigValidateMismatch(t *testing.T) {
	cfg := Config{Settings: RatingSettings{Max: 5}}
	assert.Error(t, cfg.Validate(TypeText))
	assert.NoError(t, cfg.Validate(TypeRating))
	assert.NoError(t, Config{}.Validate(TypeText))
}

func TestFieldJSON(t *testing.T) {
	raw := `{"id":"f1","key":"interest","label":"Interest","type":"MULTI_SELECT","required":false,"isActive":true,
		"section":"FORM","sortOrder":3,"config":{"section":"CONTACT","variant":"chips","options":["A","B"]}}`

	var f Field
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	assert.Equal(t, SectionForm, f.Section)
	assert.Equal(t, SectionForm, f.Config.Section, "field section wins over config section")
	assert.Equal(t, ChoiceSettings{Options: []string{"A", "B"}}, f.Config.Settings)

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"f1","key":"interest","label":"Interest","type":"MULTI_SELECT","required":false,"isActive":true,
		"section":"FORM","sortOrder":3,"config":{"section":"FORM","variant":"chips","options":["A","B"]}}`, string(out))

	t.Run("section from config", func(t *testing.T) {
		var f Field
		require.NoError(t, json.Unmarshal([]byte(`{"id":"x","key":"x","type":"TEXT","config":{"section":"CONTACT"}}`), &f))
		assert.Equal(t, SectionContact, f.Section)
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		var f Field
		err := json.Unmarshal([]byte(`{"id":"x","key":"x","type":"SINGLE_SELECT","config":{"options":[]}}`), &f)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}
