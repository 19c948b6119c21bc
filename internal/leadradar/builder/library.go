package builder

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

type LibraryKind string

const (
	KindGeneric LibraryKind = "GENERIC"
	KindContact LibraryKind = "CONTACT"
	KindPreset  LibraryKind = "PRESET"
)

// LibraryItem шаблон поля. Для контактных элементов Key фиксирован,
// для остальных это основа ключа (если пусто - используется Label).
type LibraryItem struct {
	ID          string      `yaml:"id"`
	Kind        LibraryKind `yaml:"kind"`
	Label       string      `yaml:"label"`
	Type        FieldType   `yaml:"type"`
	Key         string      `yaml:"key,omitempty"`
	Section     Section     `yaml:"section,omitempty"`
	Required    bool        `yaml:"required,omitempty"`
	Placeholder string      `yaml:"placeholder,omitempty"`
	HelpText    string      `yaml:"helpText,omitempty"`

	Variant    string              `yaml:"variant,omitempty"`
	Options    []string            `yaml:"options,omitempty"`
	RatingMax  int                 `yaml:"ratingMax,omitempty"`
	Attachment *AttachmentSettings `yaml:"attachment,omitempty"`
	Audio      *AudioSettings      `yaml:"audio,omitempty"`
}

// Config типизированная конфигурация поля, созданного из шаблона в секции section.
func (it LibraryItem) Config(section Section) Config {
	cfg := DefaultConfig(it.Type, section)
	cfg.Variant = it.Variant
	switch s := cfg.Settings.(type) {
	case ChoiceSettings:
		s.Options = slices.Clone(it.Options)
		cfg.Settings = s
	case RatingSettings:
		if it.RatingMax != 0 {
			s.Max = it.RatingMax
		}
		cfg.Settings = s
	case AttachmentSettings:
		if it.Attachment != nil {
			s = *it.Attachment
			s.Accept = slices.Clone(it.Attachment.Accept)
		}
		cfg.Settings = s
	case AudioSettings:
		if it.Audio != nil {
			s = *it.Audio
		}
		cfg.Settings = s
	}
	return cfg
}

// Draft тело запроса на создание поля по решению политики.
func (it LibraryItem) Draft(res Resolution) FieldDraft {
	d := FieldDraft{
		Key:      res.Key,
		Label:    it.Label,
		Type:     it.Type,
		Required: it.Required,
		IsActive: true,
		Config:   it.Config(res.Section),
	}
	if it.Placeholder != "" {
		p := it.Placeholder
		d.Placeholder = &p
	}
	if it.HelpText != "" {
		h := it.HelpText
		d.HelpText = &h
	}
	return d
}

// Catalog статический каталог шаблонов.
type Catalog struct {
	items []LibraryItem
	byID  map[string]int
}

type catalogFile struct {
	Items []LibraryItem `yaml:"items"`
}

func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode library: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(file.Items))}
	contactKeys := make(map[string]string)
	for _, it := range file.Items {
		if it.ID == "" {
			return nil, fmt.Errorf("library item %q has no id", it.Label)
		}
		if _, ok := c.byID[it.ID]; ok {
			return nil, fmt.Errorf("duplicate library item %q", it.ID)
		}
		if !it.Type.Valid() {
			return nil, fmt.Errorf("library item %q: unknown type %q", it.ID, it.Type)
		}
		if it.Section != "" && !it.Section.Valid() {
			return nil, fmt.Errorf("library item %q: unknown section %q", it.ID, it.Section)
		}
		switch it.Kind {
		case KindContact:
			if !IsContactKey(it.Key) {
				return nil, fmt.Errorf("library item %q: %q is not a contact key", it.ID, it.Key)
			}
			if prev, ok := contactKeys[it.Key]; ok {
				return nil, fmt.Errorf("library items %q and %q share contact key %q", prev, it.ID, it.Key)
			}
			contactKeys[it.Key] = it.ID
		case KindGeneric, KindPreset:
		default:
			return nil, fmt.Errorf("library item %q: unknown kind %q", it.ID, it.Kind)
		}
		if err := it.Config(SectionForm).Validate(it.Type); err != nil {
			return nil, fmt.Errorf("library item %q: %w", it.ID, err)
		}

		c.byID[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c, nil
}

//go:embed library.yaml
var defaultLibrary []byte

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultLibrary))
})

// DefaultCatalog каталог, встроенный в бинарник.
func DefaultCatalog() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Item(id string) (LibraryItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return LibraryItem{}, false
	}
	return c.items[i], true
}

func (c *Catalog) Items() []LibraryItem {
	return slices.Clone(c.items)
}

// ByKind элементы одного вида в порядке каталога.
func (c *Catalog) ByKind(kind LibraryKind) []LibraryItem {
	var out []LibraryItem
	for _, it := range c.items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}
