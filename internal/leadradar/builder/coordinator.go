package builder

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
)

// AddResult итог добавления из библиотеки. Selected - поле уже существовало и было выбрано.
type AddResult struct {
	Field    Field
	Selected bool
}

type Option func(*Coordinator)

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

func WithCatalog(cat *Catalog) Option {
	return func(c *Coordinator) {
		c.catalog = cat
	}
}

// Coordinator применяет изменения конструктора оптимистично и сохраняет их через BuilderAPI.
//
// Пока структурное изменение (добавление, перемещение, дублирование, удаление, смена секции)
// не завершено, следующие возвращают ErrBusy. Результаты сетевых вызовов, вернувшиеся
// после Close или Reload, отбрасываются. Автоматического отката нет: после ошибки
// сохранения состояние восстанавливается через Reload.
type Coordinator struct {
	api      BuilderAPI
	formID   string
	log      *slog.Logger
	catalog  *Catalog
	policy   SectionAssignmentPolicy
	resolver DropPositionResolver

	mu         sync.Mutex
	store      FieldStore
	form       Form
	loaded     bool
	selected   string
	active     Section
	busy       bool
	generation uint64
	closed     bool
}

func NewCoordinator(api BuilderAPI, formID string, opts ...Option) *Coordinator {
	c := &Coordinator{
		api:    api,
		formID: formID,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.catalog == nil {
		c.catalog = DefaultCatalog()
	}
	c.log = c.log.With("formId", formID)
	return c
}

// Load загружает форму с сервера и полностью заменяет локальное состояние.
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	snap, err := c.api.Load(ctx, c.formID)
	if err != nil {
		return err
	}
	store := FromFields(snap.Fields)
	if err := store.Validate(); err != nil {
		return &BadResponseError{Op: "load", Reason: "inconsistent field set", Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLocked(gen); err != nil {
		return err
	}
	c.store = store
	c.form = snap.Form
	c.loaded = true
	if _, ok := store.Field(c.selected); !ok {
		c.selected = ""
	}
	if !c.active.Valid() {
		c.active = snap.Form.SectionOrder()[0]
	}
	c.log.Debug("builder loaded", "fields", store.Len())
	return nil
}

// Reload единственный путь сверки с сервером после ошибки сохранения.
func (c *Coordinator) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

// AddFromLibrary добавляет поле по шаблону в точку at.
// Если точка лежит в другой секции, чем выбрала политика, поле добавляется в конец своей секции.
func (c *Coordinator) AddFromLibrary(ctx context.Context, itemID string, at Position) (AddResult, error) {
	item, ok := c.catalog.Item(itemID)
	if !ok {
		return AddResult{}, &ValidationError{Field: "libraryItemId", Reason: fmt.Sprintf("unknown library item %q", itemID), Err: ErrNotFound}
	}

	store, gen, err := c.begin()
	if err != nil {
		return AddResult{}, err
	}
	defer c.end()

	res, err := c.policy.Resolve(store, item)
	if err != nil {
		return AddResult{}, err
	}
	if res.SelectExisting != "" {
		existing, _ := store.Field(res.SelectExisting)
		if _, err := c.update(gen, func() {
			c.selected = existing.ID
			// вид там, где поле сейчас, даже если его перенесли в FORM
			c.active = existing.Section
		}); err != nil {
			return AddResult{}, err
		}
		c.log.Debug("contact field already present", "key", existing.Key, "fieldId", existing.ID)
		return AddResult{Field: existing, Selected: true}, nil
	}

	draft := item.Draft(res)
	if err := draft.Config.Validate(draft.Type); err != nil {
		return AddResult{}, err
	}

	created, err := c.api.CreateField(ctx, c.formID, draft)
	if err != nil {
		return AddResult{}, err
	}
	if !created.Section.Valid() {
		created.Section = res.Section
	}
	index := at.Index
	if at.Section != created.Section {
		index = math.MaxInt
	}

	order, err := c.update(gen, func() {
		c.store = c.store.InsertAt(created.Section, index, created)
		created, _ = c.store.Field(created.ID)
		c.selected = created.ID
		c.active = created.Section
	})
	if err != nil {
		return AddResult{}, err
	}
	c.log.Debug("field created", "fieldId", created.ID, "key", created.Key, "section", created.Section)

	return AddResult{Field: created}, c.persistOrder(ctx, "add", order)
}

// Move перемещает поле в точку to. to.Index - индекс промежутка в списке до перемещения,
// как его возвращает DropPositionResolver.
func (c *Coordinator) Move(ctx context.Context, fieldID string, to Position) error {
	if !to.Section.Valid() {
		return &ValidationError{Field: "section", Reason: fmt.Sprintf("unknown section %q", to.Section)}
	}

	store, gen, err := c.begin()
	if err != nil {
		return err
	}
	defer c.end()

	field, ok := store.Field(fieldID)
	if !ok {
		return fmt.Errorf("move %s: %w", fieldID, ErrNotFound)
	}
	if field.Section != to.Section {
		return c.moveAcross(ctx, gen, store, field, to)
	}

	_, from, _ := store.Locate(fieldID)
	final := to.Index
	if final > from {
		final--
	}
	final = clamp(final, 0, store.SectionLen(field.Section)-1)
	if final == from {
		return nil
	}

	order, err := c.update(gen, func() {
		c.store, _ = c.store.MoveWithin(field.Section, from, final)
	})
	if err != nil {
		return err
	}
	return c.persistOrder(ctx, "move", order)
}

// moveAcross переносит поле в другую секцию: локально, затем PATCH_FIELD и REORDER.
// Ошибка любого из вызовов оставляет локальное состояние как есть.
func (c *Coordinator) moveAcross(ctx context.Context, gen uint64, store FieldStore, field Field, to Position) error {
	if other, ok := store.FindByKeyIn(to.Section, field.Key); ok && other.ID != field.ID {
		return &ValidationError{
			Field:  "key",
			Reason: fmt.Sprintf("%s already has a field with key %q", to.Section, field.Key),
			Err:    ErrKeyConflict,
		}
	}

	if _, err := c.update(gen, func() {
		next, moved, ok := c.store.RemoveFrom(field.Section, field.ID)
		if ok {
			c.store = next.InsertAt(to.Section, to.Index, moved)
		}
		c.active = to.Section
	}); err != nil {
		return err
	}

	sec := to.Section
	patched, err := c.api.PatchField(ctx, c.formID, field.ID, FieldPatch{Section: &sec})
	if err != nil {
		c.log.Warn("section change not saved, reload to resynchronize", "fieldId", field.ID, "section", sec, "err", err)
		return err
	}

	order, err := c.update(gen, func() {
		c.store, _ = c.store.Replace(patched)
	})
	if err != nil {
		return err
	}
	return c.persistOrder(ctx, "move", order)
}

// Duplicate копирует поле с новым ключом в конец его секции.
func (c *Coordinator) Duplicate(ctx context.Context, fieldID string) (Field, error) {
	store, gen, err := c.begin()
	if err != nil {
		return Field{}, err
	}
	defer c.end()

	src, ok := store.Field(fieldID)
	if !ok {
		return Field{}, fmt.Errorf("duplicate %s: %w", fieldID, ErrNotFound)
	}
	if src.IsSystem() {
		return Field{}, &ValidationError{Field: "key", Reason: "system fields cannot be duplicated", Err: ErrSystemField}
	}
	if src.IsContact() {
		return Field{}, &ValidationError{Field: "key", Reason: fmt.Sprintf("contact field %q can exist only once", src.Key), Err: ErrKeyConflict}
	}

	clone, err := c.api.DuplicateField(ctx, c.formID, fieldID)
	if err != nil {
		return Field{}, err
	}

	order, err := c.update(gen, func() {
		c.store = c.store.InsertAt(src.Section, c.store.SectionLen(src.Section), clone)
		clone, _ = c.store.Field(clone.ID)
		c.selected = clone.ID
	})
	if err != nil {
		return Field{}, err
	}
	return clone, c.persistOrder(ctx, "duplicate", order)
}

// Delete удаляет поле. Локально поле убирается только после ответа сервера.
// Системные поля отклоняются без сетевого вызова.
func (c *Coordinator) Delete(ctx context.Context, fieldID string) error {
	store, gen, err := c.begin()
	if err != nil {
		return err
	}
	defer c.end()

	field, ok := store.Field(fieldID)
	if !ok {
		return fmt.Errorf("delete %s: %w", fieldID, ErrNotFound)
	}
	if field.IsSystem() {
		return &ValidationError{Field: "key", Reason: fmt.Sprintf("system field %q cannot be deleted", field.Key), Err: ErrSystemField}
	}

	if err := c.api.DeleteField(ctx, c.formID, fieldID); err != nil {
		return err
	}

	_, err = c.update(gen, func() {
		c.store, _, _ = c.store.RemoveFrom(field.Section, fieldID)
		if c.selected == fieldID {
			c.selected = ""
		}
	})
	if err == nil {
		c.log.Debug("field deleted", "fieldId", fieldID, "key", field.Key)
	}
	return err
}

// PatchField меняет атрибуты поля. Смена секции выполняется как перенос в конец новой секции
// и подчиняется тем же правилам, что и Move.
func (c *Coordinator) PatchField(ctx context.Context, fieldID string, patch FieldPatch) (Field, error) {
	if patch.Section != nil && !patch.Section.Valid() {
		return Field{}, &ValidationError{Field: "section", Reason: fmt.Sprintf("unknown section %q", *patch.Section)}
	}
	if patch.Label != nil && strings.TrimSpace(*patch.Label) == "" {
		return Field{}, &ValidationError{Field: "label", Reason: "label must not be empty"}
	}

	store, gen, err := c.snapshot()
	if err != nil {
		return Field{}, err
	}
	field, ok := store.Field(fieldID)
	if !ok {
		return Field{}, fmt.Errorf("patch %s: %w", fieldID, ErrNotFound)
	}
	if patch.Config != nil {
		if err := patch.Config.Validate(field.Type); err != nil {
			return Field{}, err
		}
	}

	if patch.Section == nil || *patch.Section == field.Section {
		patch.Section = nil
		return c.patchAttributes(ctx, gen, fieldID, patch)
	}

	store, gen, err = c.begin()
	if err != nil {
		return Field{}, err
	}
	defer c.end()

	field, ok = store.Field(fieldID)
	if !ok {
		return Field{}, fmt.Errorf("patch %s: %w", fieldID, ErrNotFound)
	}
	if rest, changed := patch.withoutSection(); changed {
		if field, err = c.patchAttributes(ctx, gen, fieldID, rest); err != nil {
			return Field{}, err
		}
	}
	to := Position{Section: *patch.Section, Index: store.SectionLen(*patch.Section)}
	if err := c.moveAcross(ctx, gen, store, field, to); err != nil {
		return Field{}, err
	}
	moved, _ := c.Store().Field(fieldID)
	return moved, nil
}

func (c *Coordinator) patchAttributes(ctx context.Context, gen uint64, fieldID string, patch FieldPatch) (Field, error) {
	updated, err := c.api.PatchField(ctx, c.formID, fieldID, patch)
	if err != nil {
		return Field{}, err
	}
	var found bool
	if _, err := c.update(gen, func() {
		if c.store, found = c.store.Replace(updated); found {
			updated, _ = c.store.Field(fieldID)
		}
	}); err != nil {
		return Field{}, err
	}
	if !found {
		return Field{}, fmt.Errorf("patch %s: %w", fieldID, ErrNotFound)
	}
	return updated, nil
}

// PatchForm меняет имя, статус или настройки формы.
func (c *Coordinator) PatchForm(ctx context.Context, patch FormPatch) (Form, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return Form{}, &ValidationError{Field: "name", Reason: "name must not be empty"}
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return Form{}, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", *patch.Status)}
	}
	if patch.Config != nil {
		switch patch.Config.CaptureStart {
		case "", CaptureFormFirst, CaptureContactFirst:
		default:
			return Form{}, &ValidationError{Field: "config.captureStart", Reason: fmt.Sprintf("unknown capture start %q", patch.Config.CaptureStart)}
		}
	}

	_, gen, err := c.snapshot()
	if err != nil {
		return Form{}, err
	}
	form, err := c.api.PatchForm(ctx, c.formID, patch)
	if err != nil {
		return Form{}, err
	}
	if _, err := c.update(gen, func() { c.form = form }); err != nil {
		return Form{}, err
	}
	return form, nil
}

// Commit исполняет завершенный жест перетаскивания.
func (c *Coordinator) Commit(ctx context.Context, cm Commit) error {
	switch cm.Kind {
	case DragLibraryItem:
		_, err := c.AddFromLibrary(ctx, cm.LibraryItemID, cm.Position)
		return err
	case DragExistingField:
		return c.Move(ctx, cm.FieldID, cm.Position)
	}
	return fmt.Errorf("%w: unknown commit kind %d", ErrDragState, cm.Kind)
}

// DropPosition точка вставки для текущего состояния хранилища.
func (c *Coordinator) DropPosition(item DragItem, target DropTarget) (Position, bool) {
	return c.resolver.Resolve(c.Store(), item, target)
}

func (c *Coordinator) Select(fieldID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.store.Field(fieldID)
	if !ok {
		return fmt.Errorf("select %s: %w", fieldID, ErrNotFound)
	}
	c.selected = f.ID
	c.active = f.Section
	return nil
}

func (c *Coordinator) Selected() (Field, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == "" {
		return Field{}, false
	}
	return c.store.Field(c.selected)
}

func (c *Coordinator) ActiveSection() Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Coordinator) SetActiveSection(sec Section) error {
	if !sec.Valid() {
		return &ValidationError{Field: "section", Reason: fmt.Sprintf("unknown section %q", sec)}
	}
	c.mu.Lock()
	c.active = sec
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) Store() FieldStore {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}

func (c *Coordinator) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Coordinator) Catalog() *Catalog {
	return c.catalog
}

func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Close отключает координатор. Вызовы, завершившиеся после Close, ничего не применяют.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.generation++
	c.mu.Unlock()
}

func (c *Coordinator) snapshot() (FieldStore, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return FieldStore{}, 0, ErrClosed
	case !c.loaded:
		return FieldStore{}, 0, ErrNotLoaded
	}
	return c.store, c.generation, nil
}

// begin резервирует координатор под структурное изменение.
func (c *Coordinator) begin() (FieldStore, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.closed:
		return FieldStore{}, 0, ErrClosed
	case !c.loaded:
		return FieldStore{}, 0, ErrNotLoaded
	case c.busy:
		return FieldStore{}, 0, ErrBusy
	}
	c.busy = true
	return c.store, c.generation, nil
}

func (c *Coordinator) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *Coordinator) checkLocked(gen uint64) error {
	if c.closed {
		return ErrClosed
	}
	if gen != c.generation {
		return ErrSuperseded
	}
	return nil
}

// update применяет fn под блокировкой, если состояние не было заменено, и возвращает полный порядок полей.
func (c *Coordinator) update(gen uint64, fn func()) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLocked(gen); err != nil {
		c.log.Debug("late result discarded", "err", err)
		return nil, err
	}
	fn()
	return c.store.Order(), nil
}

func (c *Coordinator) persistOrder(ctx context.Context, op string, order []string) error {
	if err := c.api.Reorder(ctx, c.formID, order); err != nil {
		c.log.Warn("field order not saved, reload to resynchronize", "op", op, "err", err)
		return err
	}
	return nil
}
