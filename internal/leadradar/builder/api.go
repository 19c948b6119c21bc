package builder

import "context"

// Snapshot состояние формы, которое отдает GET builder.
type Snapshot struct {
	Form   Form    `json:"form"`
	Fields []Field `json:"fields"`
}

// BuilderAPI серверная сторона конструктора. Каждый вызов - одна тегированная операция.
type BuilderAPI interface {
	Load(ctx context.Context, formID string) (Snapshot, error)
	CreateField(ctx context.Context, formID string, draft FieldDraft) (Field, error)
	Reorder(ctx context.Context, formID string, order []string) error
	PatchField(ctx context.Context, formID, fieldID string, patch FieldPatch) (Field, error)
	DuplicateField(ctx context.Context, formID, fieldID string) (Field, error)
	DeleteField(ctx context.Context, formID, fieldID string) error
	PatchForm(ctx context.Context, formID string, patch FormPatch) (Form, error)
}
