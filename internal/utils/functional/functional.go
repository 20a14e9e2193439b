package functional

// Map applies fn to every element of the input slice and returns the results.
func Map[T any, R any](list []T, fn func(T) R) []R {
	result := make([]R, 0, len(list))
	for _, item := range list {
		result = append(result, fn(item))
	}
	return result
}
