package builder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Settings типоспецифичная часть конфигурации поля. Набор реализаций закрыт:
// TextSettings, ChoiceSettings, RatingSettings, AttachmentSettings, AudioSettings.
type Settings interface {
	validate() error
	fill(w *wireConfig)
}

// Config конфигурация поля. Ключ объединения - пара (тип поля, вариант).
type Config struct {
	Section  Section
	Variant  string
	Settings Settings
}

type TextSettings struct{}

type ChoiceSettings struct {
	Options []string `json:"options" yaml:"options"`
}

type RatingSettings struct {
	Max int `json:"ratingMax" yaml:"ratingMax"`
}

type AttachmentSettings struct {
	Accept   []string `json:"accept" yaml:"accept"`
	MaxFiles int      `json:"maxFiles" yaml:"maxFiles"`
}

type AudioSettings struct {
	MaxDurationSec int  `json:"maxDurationSec" yaml:"maxDurationSec"`
	AllowRecord    bool `json:"allowRecord" yaml:"allowRecord"`
	AllowPick      bool `json:"allowPick" yaml:"allowPick"`
}

const (
	defaultRatingMax      = 5
	defaultMaxFiles       = 1
	defaultMaxDurationSec = 120
)

// Допустимые варианты отображения по типу поля. Пустой вариант допустим всегда.
var variants = map[FieldType][]string{
	TypeText:         {"short", "long"},
	TypeTextarea:     {"compact", "expanded"},
	TypeCheckbox:     {"checkbox", "toggle", "consent"},
	TypeSingleSelect: {"dropdown", "radio", "chips"},
	TypeMultiSelect:  {"checkboxes", "chips"},
	TypeRating:       {"stars", "numbers", "smileys"},
	TypeAttachment:   {"files", "images", "businessCard"},
}

// wireConfig плоская JSON-схема конфигурации.
type wireConfig struct {
	Section    Section             `json:"section,omitempty"`
	Variant    string              `json:"variant,omitempty"`
	Options    []string            `json:"options,omitempty"`
	RatingMax  *int                `json:"ratingMax,omitempty"`
	Attachment *AttachmentSettings `json:"attachment,omitempty"`
	Audio      *AudioSettings      `json:"audio,omitempty"`
}

func (TextSettings) validate() error { return nil }

func (TextSettings) fill(*wireConfig) {}

func (s ChoiceSettings) validate() error {
	if len(s.Options) == 0 {
		return &ValidationError{Field: "config.options", Reason: "select fields need at least one option"}
	}
	seen := make(map[string]struct{}, len(s.Options))
	for _, o := range s.Options {
		if strings.TrimSpace(o) == "" {
			return &ValidationError{Field: "config.options", Reason: "option must not be empty"}
		}
		if _, ok := seen[o]; ok {
			return &ValidationError{Field: "config.options", Reason: fmt.Sprintf("duplicate option %q", o)}
		}
		seen[o] = struct{}{}
	}
	return nil
}

func (s ChoiceSettings) fill(w *wireConfig) {
	w.Options = slices.Clone(s.Options)
}

func (s RatingSettings) validate() error {
	if s.Max < 2 || s.Max > 10 {
		return &ValidationError{Field: "config.ratingMax", Reason: "rating scale must be between 2 and 10"}
	}
	return nil
}

func (s RatingSettings) fill(w *wireConfig) {
	m := s.Max
	w.RatingMax = &m
}

func (s AttachmentSettings) validate() error {
	if s.MaxFiles < 1 || s.MaxFiles > 10 {
		return &ValidationError{Field: "config.attachment.maxFiles", Reason: "maxFiles must be between 1 and 10"}
	}
	for _, a := range s.Accept {
		if strings.TrimSpace(a) == "" {
			return &ValidationError{Field: "config.attachment.accept", Reason: "accepted type must not be empty"}
		}
	}
	return nil
}

func (s AttachmentSettings) fill(w *wireConfig) {
	c := s
	c.Accept = slices.Clone(s.Accept)
	w.Attachment = &c
}

func (s AudioSettings) validate() error {
	if s.MaxDurationSec < 1 || s.MaxDurationSec > 600 {
		return &ValidationError{Field: "config.audio.maxDurationSec", Reason: "duration must be between 1 and 600 seconds"}
	}
	if !s.AllowRecord && !s.AllowPick {
		return &ValidationError{Field: "config.audio", Reason: "either recording or picking a file must be allowed"}
	}
	return nil
}

func (s AudioSettings) fill(w *wireConfig) {
	c := s
	w.Audio = &c
}

// DefaultConfig конфигурация по умолчанию для типа. Для списков она невалидна, пока не заданы варианты.
func DefaultConfig(t FieldType, section Section) Config {
	cfg := Config{Section: section}
	switch t {
	case TypeSingleSelect, TypeMultiSelect:
		cfg.Settings = ChoiceSettings{}
	case TypeRating:
		cfg.Settings = RatingSettings{Max: defaultRatingMax}
	case TypeAttachment:
		cfg.Settings = AttachmentSettings{MaxFiles: defaultMaxFiles}
	case TypeAudio:
		cfg.Settings = AudioSettings{MaxDurationSec: defaultMaxDurationSec, AllowRecord: true, AllowPick: true}
	default:
		cfg.Settings = TextSettings{}
	}
	return cfg
}

// ParseConfig разбирает и проверяет конфигурацию поля заданного типа.
// Это единственное место, где JSON конфигурации превращается в типизированное значение.
func ParseConfig(t FieldType, raw []byte) (Config, error) {
	if !t.Valid() {
		return Config{}, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown field type %q", t)}
	}

	var w wireConfig
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if err := json.Unmarshal(raw, &w); err != nil {
			return Config{}, &ValidationError{Field: "config", Reason: "malformed config", Err: err}
		}
	}
	if w.Section != "" && !w.Section.Valid() {
		return Config{}, &ValidationError{Field: "config.section", Reason: fmt.Sprintf("unknown section %q", w.Section)}
	}

	cfg := DefaultConfig(t, w.Section)
	cfg.Variant = w.Variant
	switch s := cfg.Settings.(type) {
	case ChoiceSettings:
		s.Options = w.Options
		cfg.Settings = s
	case RatingSettings:
		if w.RatingMax != nil {
			s.Max = *w.RatingMax
		}
		cfg.Settings = s
	case AttachmentSettings:
		if w.Attachment != nil {
			s = *w.Attachment
		}
		cfg.Settings = s
	case AudioSettings:
		if w.Audio != nil {
			s = *w.Audio
		}
		cfg.Settings = s
	}

	if err := cfg.Validate(t); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет, что настройки соответствуют типу поля и сами по себе корректны.
func (c Config) Validate(t FieldType) error {
	if c.Section != "" && !c.Section.Valid() {
		return &ValidationError{Field: "config.section", Reason: fmt.Sprintf("unknown section %q", c.Section)}
	}
	if c.Variant != "" && !slices.Contains(variants[t], c.Variant) {
		return &ValidationError{Field: "config.variant", Reason: fmt.Sprintf("variant %q is not supported by %s", c.Variant, t)}
	}

	settings := c.Settings
	if settings == nil {
		settings = DefaultConfig(t, c.Section).Settings
	}
	var match bool
	switch settings.(type) {
	case ChoiceSettings:
		match = t.IsChoice()
	case RatingSettings:
		match = t == TypeRating
	case AttachmentSettings:
		match = t == TypeAttachment
	case AudioSettings:
		match = t == TypeAudio
	case TextSettings:
		match = !t.IsChoice() && t != TypeRating && t != TypeAttachment && t != TypeAudio
	}
	if !match {
		return &ValidationError{Field: "config", Reason: fmt.Sprintf("settings %T do not belong to %s", settings, t)}
	}
	return settings.validate()
}

// Options варианты выбора, если поле - список.
func (c Config) Options() []string {
	if s, ok := c.Settings.(ChoiceSettings); ok {
		return slices.Clone(s.Options)
	}
	return nil
}

func (c Config) MarshalJSON() ([]byte, error) {
	w := wireConfig{Section: c.Section, Variant: c.Variant}
	if c.Settings != nil {
		c.Settings.fill(&w)
	}
	return json.Marshal(w)
}
