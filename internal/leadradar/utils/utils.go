// Вспомогательные функции для работы со слайсами и множествами, часто используемые в обработчиках и DAO.
//
// Основные возможности:
//   - Преобразование слайсов в множества (map[T]struct{}).
//   - Преобразование слайсов в слайсы другого типа с применением функции.
//   - Проверка, что слайс является перестановкой другого набора значений.
package utils

func SliceToSet[T comparable](ids []T) map[T]struct{} {
	res := make(map[T]struct{}, len(ids))
	for _, id := range ids {
		res[id] = struct{}{}
	}
	return res
}

func SliceToSlice[T any, U any](in *[]T, f func(*T) U) []U {
	if in == nil {
		return make([]U, 0)
	}
	out := make([]U, len(*in))
	for i, v := range *in {
		out[i] = f(&v)
	}
	return out
}

func SliceToMap[K comparable, V any](in *[]V, f func(*V) K) map[K]V {
	out := make(map[K]V)
	if in == nil {
		return out
	}
	for _, v := range *in {
		out[f(&v)] = v
	}
	return out
}

// IsPermutation возвращает true, если order содержит каждый элемент set ровно один раз и ничего больше.
func IsPermutation[T comparable](order []T, set map[T]struct{}) bool {
	if len(order) != len(set) {
		return false
	}
	seen := make(map[T]struct{}, len(order))
	for _, v := range order {
		if _, ok := set[v]; !ok {
			return false
		}
		if _, dup := seen[v]; dup {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}
