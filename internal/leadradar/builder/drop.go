package builder

// DragKind что перетаскивается.
type DragKind int

const (
	DragLibraryItem DragKind = iota + 1
	DragExistingField
)

func (k DragKind) String() string {
	switch k {
	case DragLibraryItem:
		return "LIBRARY_ITEM"
	case DragExistingField:
		return "EXISTING_FIELD"
	}
	return "UNKNOWN"
}

// Rect прямоугольник элемента в координатах экрана (Y растет вниз).
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func (r Rect) MidY() float64 {
	return r.Y + r.Height/2
}

// DragItem перетаскиваемый элемент.
type DragItem struct {
	Kind          DragKind
	LibraryItemID string
	FieldID       string
	Rect          Rect
}

// DropTarget цель сброса: либо вся секция (FieldID пуст), либо строка существующего поля.
type DropTarget struct {
	Section Section
	FieldID string
	Rect    Rect
}

func SectionTarget(sec Section) DropTarget {
	return DropTarget{Section: sec}
}

func FieldTarget(fieldID string, row Rect) DropTarget {
	return DropTarget{FieldID: fieldID, Rect: row}
}

// Position точка вставки. Index - индекс промежутка в списке секции до перемещения.
type Position struct {
	Section Section `json:"section"`
	Index   int     `json:"index"`
}

// DropPositionResolver переводит жест в точку вставки.
type DropPositionResolver struct{}

// Resolve возвращает точку вставки или false, если цель больше не указывает на живое поле.
// Строка поля: центр перетаскиваемого элемента ниже центра строки - вставка после нее, иначе перед ней.
func (DropPositionResolver) Resolve(store FieldStore, item DragItem, target DropTarget) (Position, bool) {
	if target.FieldID == "" {
		if !target.Section.Valid() {
			return Position{}, false
		}
		return Position{Section: target.Section, Index: store.SectionLen(target.Section)}, true
	}

	sec, idx, ok := store.Locate(target.FieldID)
	if !ok {
		return Position{}, false
	}
	if item.Rect.MidY() > target.Rect.MidY() {
		idx++
	}
	return Position{Section: sec, Index: clamp(idx, 0, store.SectionLen(sec))}, true
}
