package builder

import (
	"fmt"
	"slices"
	"sort"
)

// FieldStore упорядоченные списки полей секций FORM и CONTACT.
// Значение неизменяемо: каждая операция возвращает новое хранилище и не трогает исходное.
type FieldStore struct {
	form    []Field
	contact []Field
}

// FromFields раскладывает поля по секциям и упорядочивает по sortOrder.
// При равных sortOrder сохраняется исходный порядок.
func FromFields(fields []Field) FieldStore {
	var s FieldStore
	for _, f := range fields {
		if f.Section == SectionContact {
			s.contact = append(s.contact, f)
		} else {
			f.Section = SectionForm
			s.form = append(s.form, f)
		}
	}
	for _, list := range [][]Field{s.form, s.contact} {
		sort.SliceStable(list, func(i, j int) bool { return list[i].SortOrder < list[j].SortOrder })
	}
	return s
}

func (s FieldStore) list(sec Section) []Field {
	if sec == SectionContact {
		return s.contact
	}
	return s.form
}

func (s FieldStore) with(sec Section, list []Field) FieldStore {
	if sec == SectionContact {
		s.contact = list
	} else {
		s.form = list
	}
	return s
}

// Section копия списка полей секции.
func (s FieldStore) Section(sec Section) []Field {
	return slices.Clone(s.list(sec))
}

func (s FieldStore) SectionLen(sec Section) int {
	return len(s.list(sec))
}

func (s FieldStore) Len() int {
	return len(s.form) + len(s.contact)
}

// Locate возвращает секцию и позицию поля.
func (s FieldStore) Locate(id string) (Section, int, bool) {
	for _, sec := range Sections {
		if i := slices.IndexFunc(s.list(sec), func(f Field) bool { return f.ID == id }); i >= 0 {
			return sec, i, true
		}
	}
	return "", -1, false
}

func (s FieldStore) Field(id string) (Field, bool) {
	sec, i, ok := s.Locate(id)
	if !ok {
		return Field{}, false
	}
	return s.list(sec)[i], true
}

// FindByKey ищет поле по ключу в обеих секциях.
func (s FieldStore) FindByKey(key string) (Field, bool) {
	for _, sec := range Sections {
		if f, ok := s.FindByKeyIn(sec, key); ok {
			return f, true
		}
	}
	return Field{}, false
}

func (s FieldStore) FindByKeyIn(sec Section, key string) (Field, bool) {
	for _, f := range s.list(sec) {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Keys множество ключей всех полей формы.
func (s FieldStore) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, s.Len())
	for _, sec := range Sections {
		for _, f := range s.list(sec) {
			keys[f.Key] = struct{}{}
		}
	}
	return keys
}

// Order полная последовательность id: сначала FORM, затем CONTACT.
func (s FieldStore) Order() []string {
	order := make([]string, 0, s.Len())
	for _, sec := range Sections {
		for _, f := range s.list(sec) {
			order = append(order, f.ID)
		}
	}
	return order
}

// Fields все поля с материализованным sortOrder (позиция внутри своей секции).
func (s FieldStore) Fields() []Field {
	out := make([]Field, 0, s.Len())
	for _, sec := range Sections {
		for i, f := range s.list(sec) {
			f.Section = sec
			f.Config.Section = sec
			f.SortOrder = i
			out = append(out, f)
		}
	}
	return out
}

// InsertAt вставляет поле в секцию. Индекс приводится к диапазону [0, len].
func (s FieldStore) InsertAt(sec Section, index int, f Field) FieldStore {
	list := s.list(sec)
	f.Section = sec
	f.Config.Section = sec
	return s.with(sec, slices.Insert(slices.Clone(list), clamp(index, 0, len(list)), f))
}

// RemoveFrom удаляет поле из секции и возвращает его.
func (s FieldStore) RemoveFrom(sec Section, id string) (FieldStore, Field, bool) {
	list := s.list(sec)
	i := slices.IndexFunc(list, func(f Field) bool { return f.ID == id })
	if i < 0 {
		return s, Field{}, false
	}
	removed := list[i]
	return s.with(sec, slices.Delete(slices.Clone(list), i, i+1)), removed, true
}

// MoveWithin перемещает поле внутри секции: удаление на from и вставка на to (итоговый индекс).
func (s FieldStore) MoveWithin(sec Section, from, to int) (FieldStore, bool) {
	list := s.list(sec)
	if from < 0 || from >= len(list) {
		return s, false
	}
	to = clamp(to, 0, len(list)-1)
	if from == to {
		return s, true
	}
	moved := list[from]
	next := slices.Delete(slices.Clone(list), from, from+1)
	next = slices.Insert(next, to, moved)
	return s.with(sec, next), true
}

// Replace заменяет атрибуты поля, сохраняя его секцию и позицию.
func (s FieldStore) Replace(f Field) (FieldStore, bool) {
	sec, i, ok := s.Locate(f.ID)
	if !ok {
		return s, false
	}
	next := slices.Clone(s.list(sec))
	f.Section = sec
	f.Config.Section = sec
	next[i] = f
	return s.with(sec, next), true
}

// Validate проверяет инварианты: id и ключи уникальны во всем наборе полей.
func (s FieldStore) Validate() error {
	ids := make(map[string]Section, s.Len())
	keys := make(map[string]string, s.Len())
	for _, sec := range Sections {
		for _, f := range s.list(sec) {
			if f.ID == "" {
				return fmt.Errorf("field %q has no id", f.Key)
			}
			if prev, ok := ids[f.ID]; ok {
				return fmt.Errorf("field %s present in %s and %s", f.ID, prev, sec)
			}
			ids[f.ID] = sec
			if other, ok := keys[f.Key]; ok {
				return fmt.Errorf("key %q used by %s and %s: %w", f.Key, other, f.ID, ErrKeyConflict)
			}
			keys[f.Key] = f.ID
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
