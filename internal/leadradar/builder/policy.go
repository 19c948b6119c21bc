package builder

import "fmt"

// Resolution решение политики для элемента библиотеки.
// Непустой SelectExisting означает: поле уже есть, его нужно выбрать, а не создавать.
type Resolution struct {
	Section        Section
	Key            string
	SelectExisting string
}

// SectionAssignmentPolicy выбирает секцию и ключ нового поля и не допускает дублей контактных полей.
type SectionAssignmentPolicy struct{}

func (SectionAssignmentPolicy) Resolve(store FieldStore, item LibraryItem) (Resolution, error) {
	switch item.Kind {
	case KindContact:
		if !IsContactKey(item.Key) {
			return Resolution{}, &ValidationError{Field: "key", Reason: fmt.Sprintf("%q is not a contact key", item.Key)}
		}
		if existing, ok := store.FindByKey(item.Key); ok {
			return Resolution{Section: existing.Section, Key: existing.Key, SelectExisting: existing.ID}, nil
		}
		return Resolution{Section: SectionContact, Key: item.Key}, nil

	case KindGeneric, KindPreset:
		sec := SectionForm
		if item.Section == SectionContact {
			sec = SectionContact
		}
		base := item.Key
		if base == "" {
			base = item.Label
		}
		return Resolution{Section: sec, Key: UniqueKey(Slugify(base), store.Keys())}, nil
	}
	return Resolution{}, &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown library item kind %q", item.Kind)}
}
