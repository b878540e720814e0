package sharedutil

func FilterSlice[T any](ss []T, test func(T) bool) []T {
	if ss == nil {
		return nil
	}
	result := make([]T, 0)
	for _, s := range ss {
		if test(s) {
			result = append(result, s)
		}
	}
	return result
}

func MapSlice[T any, U any](ts []T, f func(T) U) []U {
	if ts == nil {
		return nil
	}
	result := make([]U, len(ts))
	for i, t := range ts {
		result[i] = f(t)
	}
	return result
}

func FilterMapSlice[T any, U any](ts []T, f func(T) (U, bool)) []U {
	if ts == nil {
		return nil
	}
	result := make([]U, 0)
	for _, t := range ts {
		if u, ok := f(t); ok {
			result = append(result, u)
		}
	}
	return result
}

func ToSet[T comparable](ts []T) map[T]struct{} {
	set := make(map[T]struct{}, len(ts))
	for _, t := range ts {
		set[t] = struct{}{}
	}
	return set
}

// MoveToFront returns a copy of items with the first item matching
// test moved to index 0. The order of the others is preserved.
func MoveToFront[T any](items []T, test func(T) bool) []T {
	result := make([]T, 0, len(items))
	idx := -1
	for i, it := range items {
		if idx < 0 && test(it) {
			idx = i
			result = append(result, it)
			break
		}
	}
	for i, it := range items {
		if i != idx {
			result = append(result, it)
		}
	}
	return result
}
