package builder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// fakeAPI серверная сторона в памяти с записью вызовов и внедрением ошибок.
type fakeAPI struct {
	mu       sync.Mutex
	form     Form
	fields   []Field
	nextID   int
	calls    []string
	reorders [][]string
	fail     map[string]error

	// gate != nil блокирует CreateField до закрытия канала
	gate    chan struct{}
	entered chan struct{}
}

func newFakeAPI(fields ...Field) *fakeAPI {
	return &fakeAPI{
		form:   Form{ID: "form-1", Name: "Messe 2026", Status: FormDraft},
		fields: fields,
		fail:   map[string]error{},
	}
}

func (f *fakeAPI) record(op string) error {
	f.calls = append(f.calls, op)
	return f.fail[op]
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func (f *fakeAPI) Fail(op string, err error) {
	f.mu.Lock()
	f.fail[op] = err
	f.mu.Unlock()
}

func (f *fakeAPI) Snapshot() FieldStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FromFields(f.fields)
}

func (f *fakeAPI) index(id string) int {
	return slices.IndexFunc(f.fields, func(x Field) bool { return x.ID == id })
}

func (f *fakeAPI) trailing(sec Section) int {
	n := 0
	for _, x := range f.fields {
		if x.Section == sec && x.SortOrder >= n {
			n = x.SortOrder + 1
		}
	}
	return n
}

func (f *fakeAPI) Load(_ context.Context, formID string) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("LOAD"); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Form: f.form, Fields: slices.Clone(f.fields)}, nil
}

func (f *fakeAPI) CreateField(_ context.Context, formID string, d FieldDraft) (Field, error) {
	if f.gate != nil {
		f.entered <- struct{}{}
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CREATE"); err != nil {
		return Field{}, err
	}
	for _, x := range f.fields {
		if x.Key == d.Key {
			return Field{}, &ServerError{Op: "create", Status: 409, Code: 3302, Message: "key exists"}
		}
	}
	sec := d.Config.Section
	if !sec.Valid() {
		sec = SectionForm
	}
	f.nextID++
	field := Field{
		ID:        fmt.Sprintf("srv-%d", f.nextID),
		Key:       d.Key,
		Label:     d.Label,
		Type:      d.Type,
		Required:  d.Required,
		IsActive:  d.IsActive,
		Section:   sec,
		SortOrder: f.trailing(sec),
		Config:    d.Config,
	}
	field.Config.Section = sec
	f.fields = append(f.fields, field)
	return field, nil
}

func (f *fakeAPI) Reorder(_ context.Context, formID string, order []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reorders = append(f.reorders, slices.Clone(order))
	if err := f.record("REORDER"); err != nil {
		return err
	}
	if len(order) != len(f.fields) {
		return &ServerError{Op: "reorder", Status: 400, Code: 3304, Message: "order mismatch"}
	}
	pos := map[Section]int{}
	for _, id := range order {
		i := f.index(id)
		if i < 0 {
			return &ServerError{Op: "reorder", Status: 400, Code: 3304, Message: "order mismatch"}
		}
		sec := f.fields[i].Section
		f.fields[i].SortOrder = pos[sec]
		pos[sec]++
	}
	return nil
}

func (f *fakeAPI) PatchField(_ context.Context, formID, fieldID string, p FieldPatch) (Field, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("PATCH_FIELD"); err != nil {
		return Field{}, err
	}
	i := f.index(fieldID)
	if i < 0 {
		return Field{}, &ServerError{Op: "patch", Status: 404, Code: 3301, Message: "not found"}
	}
	x := f.fields[i]
	if p.Label != nil {
		x.Label = *p.Label
	}
	if p.Required != nil {
		x.Required = *p.Required
	}
	if p.IsActive != nil {
		x.IsActive = *p.IsActive
	}
	if p.Placeholder != nil {
		x.Placeholder = p.Placeholder
	}
	if p.HelpText != nil {
		x.HelpText = p.HelpText
	}
	if p.Config != nil {
		x.Config = *p.Config
	}
	if p.Section != nil && *p.Section != x.Section {
		x.Section = *p.Section
		x.SortOrder = f.trailing(x.Section)
	}
	x.Config.Section = x.Section
	f.fields[i] = x
	return x, nil
}

func (f *fakeAPI) DuplicateField(_ context.Context, formID, fieldID string) (Field, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DUPLICATE_FIELD"); err != nil {
		return Field{}, err
	}
	i := f.index(fieldID)
	if i < 0 {
		return Field{}, &ServerError{Op: "duplicate", Status: 404, Code: 3301, Message: "not found"}
	}
	taken := map[string]struct{}{}
	for _, x := range f.fields {
		taken[x.Key] = struct{}{}
	}
	clone := f.fields[i]
	f.nextID++
	clone.ID = fmt.Sprintf("srv-%d", f.nextID)
	clone.Key = CopyKey(clone.Key, taken)
	clone.SortOrder = f.trailing(clone.Section)
	f.fields = append(f.fields, clone)
	return clone, nil
}

func (f *fakeAPI) DeleteField(_ context.Context, formID, fieldID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DELETE_FIELD"); err != nil {
		return err
	}
	i := f.index(fieldID)
	if i < 0 {
		return &ServerError{Op: "delete", Status: 404, Code: 3301, Message: "not found"}
	}
	f.fields = slices.Delete(f.fields, i, i+1)
	return nil
}

func (f *fakeAPI) PatchForm(_ context.Context, formID string, p FormPatch) (Form, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("PATCH_FORM"); err != nil {
		return Form{}, err
	}
	if p.Name != nil {
		f.form.Name = *p.Name
	}
	if p.Status != nil {
		f.form.Status = *p.Status
	}
	if p.Config != nil {
		f.form.Config = *p.Config
	}
	return f.form, nil
}

var errTransport = &NetworkError{Op: "test", Err: errors.New("connection reset")}
