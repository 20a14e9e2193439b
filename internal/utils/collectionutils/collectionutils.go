package collectionutils

// Associate transforms a slice of items into a map by applying the transform
// function to each item. The transform function returns a key-value pair for
// each item, which is then added to the resulting map.
func Associate[T any, K comparable, V any](list []T, transform func(T) (K, V)) map[K]V {
	result := make(map[K]V, len(list))
	for _, item := range list {
		key, value := transform(item)
		result[key] = value
	}
	return result
}

// GetOrDefault returns the value for key if present, otherwise defaultValue.
func GetOrDefault[K comparable, V any](m map[K]V, key K, defaultValue V) V {
	if value, exists := m[key]; exists {
		return value
	}
	return defaultValue
}
