package arrays

func Check[T comparable](compare T, slice []T) bool {
	for _, val := range slice {
		if val == compare {
			return true
		}
	}

	return false
}

func CheckFunc[T any](f func(T) bool, slice []T) bool {
	for _, val := range slice {
		if f(val) {
			return true
		}
	}

	return false
}

func Filter[T any](slice []T, f func(T) bool) []T {
	filtered := make([]T, 0)

	for _, val := range slice {
		if f(val) {
			filtered = append(filtered, val)
		}
	}

	return filtered
}

func Map[T any](slice []T, f func(T) T) []T {
	if len(slice) == 0 {
		return nil
	}

	mapped := make([]T, 0)

	for _, val := range slice {
		mapped = append(mapped, f(val))
	}

	return mapped
}
