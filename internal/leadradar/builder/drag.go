package builder

import "fmt"

type DragState int

const (
	DragIdle DragState = iota
	DraggingLibraryItem
	DraggingField
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DraggingLibraryItem:
		return "draggingLibraryItem"
	case DraggingField:
		return "draggingField"
	}
	return "unknown"
}

// Commit результат завершенного жеста, который исполняет Coordinator.Commit.
type Commit struct {
	Kind          DragKind
	LibraryItemID string
	FieldID       string
	Position      Position
}

// DragSession сессия указателя: Start, Move*, затем End или Cancel.
// Move только пересчитывает индикатор и никогда не меняет хранилище.
type DragSession struct {
	state     DragState
	item      DragItem
	indicator *Position
	resolver  DropPositionResolver
}

func (s *DragSession) State() DragState {
	return s.state
}

// Indicator текущая расчетная точка вставки.
func (s *DragSession) Indicator() (Position, bool) {
	if s.indicator == nil {
		return Position{}, false
	}
	return *s.indicator, true
}

func (s *DragSession) Start(item DragItem) error {
	if s.state != DragIdle {
		return fmt.Errorf("%w: start while %s", ErrDragState, s.state)
	}
	switch item.Kind {
	case DragLibraryItem:
		if item.LibraryItemID == "" {
			return fmt.Errorf("%w: library item id is empty", ErrDragState)
		}
		s.state = DraggingLibraryItem
	case DragExistingField:
		if item.FieldID == "" {
			return fmt.Errorf("%w: field id is empty", ErrDragState)
		}
		s.state = DraggingField
	default:
		return fmt.Errorf("%w: unknown drag kind %d", ErrDragState, item.Kind)
	}
	s.item = item
	s.indicator = nil
	return nil
}

// Move обновляет положение элемента и индикатор. target == nil - указатель вне цели.
func (s *DragSession) Move(store FieldStore, rect Rect, target *DropTarget) (Position, bool, error) {
	if s.state == DragIdle {
		return Position{}, false, fmt.Errorf("%w: move without start", ErrDragState)
	}
	s.item.Rect = rect
	s.indicator = nil
	if target == nil {
		return Position{}, false, nil
	}
	pos, ok := s.resolver.Resolve(store, s.item, *target)
	if ok {
		s.indicator = &pos
	}
	return pos, ok, nil
}

// End завершает жест. Если цель устарела, возвращается false и ничего не меняется.
func (s *DragSession) End(store FieldStore, rect Rect, target *DropTarget) (Commit, bool, error) {
	if s.state == DragIdle {
		return Commit{}, false, fmt.Errorf("%w: end without start", ErrDragState)
	}
	item := s.item
	item.Rect = rect
	s.reset()

	if target == nil {
		return Commit{}, false, nil
	}
	pos, ok := s.resolver.Resolve(store, item, *target)
	if !ok {
		return Commit{}, false, nil
	}
	if item.Kind == DragExistingField {
		if _, found := store.Field(item.FieldID); !found {
			return Commit{}, false, nil
		}
	}
	return Commit{
		Kind:          item.Kind,
		LibraryItemID: item.LibraryItemID,
		FieldID:       item.FieldID,
		Position:      pos,
	}, true, nil
}

// Cancel прерывает жест без изменений.
func (s *DragSession) Cancel() {
	s.reset()
}

func (s *DragSession) reset() {
	s.state = DragIdle
	s.item = DragItem{}
	s.indicator = nil
}
