package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textField(id, key string, sec Section, order int) Field {
	return Field{
		ID:        id,
		Key:       key,
		Label:     key,
		Type:      TypeText,
		IsActive:  true,
		Section:   sec,
		SortOrder: order,
		Config:    DefaultConfig(TypeText, sec),
	}
}

func sampleStore() FieldStore {
	return FromFields([]Field{
		textField("c1", "email", SectionContact, 0),
		textField("b", "b", SectionForm, 1),
		textField("a", "a", SectionForm, 0),
		textField("c", "c", SectionForm, 2),
		textField("c2", "company", SectionContact, 1),
	})
}

func ids(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.ID
	}
	return out
}

func TestFromFields(t *testing.T) {
	t.Run("split and sort", func(t *testing.T) {
		s := sampleStore()
		assert.Equal(t, []string{"a", "b", "c"}, ids(s.Section(SectionForm)))
		assert.Equal(t, []string{"c1", "c2"}, ids(s.Section(SectionContact)))
		assert.Equal(t, []string{"a", "b", "c", "c1", "c2"}, s.Order())
		assert.Equal(t, 5, s.Len())
	})

	t.Run("stable on equal sortOrder", func(t *testing.T) {
		s := FromFields([]Field{
			textField("x", "x", SectionForm, 0),
			textField("y", "y", SectionForm, 0),
			textField("z", "z", SectionForm, 0),
		})
		assert.Equal(t, []string{"x", "y", "z"}, s.Order())
	})

	t.Run("unknown section goes to FORM", func(t *testing.T) {
		s := FromFields([]Field{textField("x", "x", "", 0)})
		sec, idx, ok := s.Locate("x")
		require.True(t, ok)
		assert.Equal(t, SectionForm, sec)
		assert.Equal(t, 0, idx)
	})
}

func TestStoreImmutable(t *testing.T) {
	s := sampleStore()
	before := s.Order()

	_ = s.InsertAt(SectionForm, 1, textField("n", "n", SectionForm, 0))
	_, _, _ = s.RemoveFrom(SectionForm, "a")
	_, _ = s.MoveWithin(SectionForm, 0, 2)
	_, _ = s.Replace(textField("b", "b", SectionForm, 0))

	assert.Equal(t, before, s.Order())
}

func TestInsertAt(t *testing.T) {
	s := sampleStore()

	t.Run("middle", func(t *testing.T) {
		next := s.InsertAt(SectionForm, 1, textField("n", "n", SectionContact, 0))
		assert.Equal(t, []string{"a", "n", "b", "c"}, ids(next.Section(SectionForm)))
		f, _ := next.Field("n")
		assert.Equal(t, SectionForm, f.Section)
		assert.Equal(t, SectionForm, f.Config.Section)
	})

	t.Run("clamped", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c", "n"}, ids(s.InsertAt(SectionForm, 99, textField("n", "n", SectionForm, 0)).Section(SectionForm)))
		assert.Equal(t, []string{"n", "a", "b", "c"}, ids(s.InsertAt(SectionForm, -3, textField("n", "n", SectionForm, 0)).Section(SectionForm)))
	})
}

func TestRemoveFrom(t *testing.T) {
	s := sampleStore()

	next, removed, ok := s.RemoveFrom(SectionForm, "b")
	require.True(t, ok)
	assert.Equal(t, "b", removed.ID)
	assert.Equal(t, []string{"a", "c"}, ids(next.Section(SectionForm)))

	_, _, ok = s.RemoveFrom(SectionContact, "b")
	assert.False(t, ok, "field lives in another section")
}

func TestMoveWithin(t *testing.T) {
	s := sampleStore()

	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"last to first", 2, 0, []string{"c", "a", "b"}},
		{"first to last", 0, 2, []string{"b", "c", "a"}},
		{"same index", 1, 1, []string{"a", "b", "c"}},
		{"clamped", 0, 10, []string{"b", "c", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := s.MoveWithin(SectionForm, tt.from, tt.to)
			require.True(t, ok)
			assert.Equal(t, tt.want, ids(next.Section(SectionForm)))
			assert.ElementsMatch(t, ids(s.Section(SectionForm)), ids(next.Section(SectionForm)))
		})
	}

	_, ok := s.MoveWithin(SectionForm, 5, 0)
	assert.False(t, ok)
}

func TestFieldsMaterialiseSortOrder(t *testing.T) {
	s, _ := sampleStore().MoveWithin(SectionForm, 2, 0)
	got := map[string]int{}
	for _, f := range s.Fields() {
		got[f.ID] = f.SortOrder
	}
	assert.Equal(t, map[string]int{"c": 0, "a": 1, "b": 2, "c1": 0, "c2": 1}, got)
}

func TestStoreValidate(t *testing.T) {
	assert.NoError(t, sampleStore().Validate())

	dupKey := sampleStore().InsertAt(SectionForm, 0, textField("z", "email", SectionForm, 0))
	assert.ErrorIs(t, dupKey.Validate(), ErrKeyConflict)

	dupID := sampleStore().InsertAt(SectionContact, 0, textField("a", "other", SectionContact, 0))
	assert.Error(t, dupID.Validate())
}

func TestFindByKey(t *testing.T) {
	s := sampleStore()

	f, ok := s.FindByKey("company")
	require.True(t, ok)
	assert.Equal(t, "c2", f.ID)

	_, ok = s.FindByKeyIn(SectionForm, "company")
	assert.False(t, ok)

	_, ok = s.FindByKey("missing")
	assert.False(t, ok)
	assert.Contains(t, s.Keys(), "email")
}
