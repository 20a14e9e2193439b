package stringutils

import "fmt"

// INClause expands a list into positional placeholders and the matching
// argument slice for use inside a SQL IN (...) clause.
func INClause[T any](list []T) (placeholders []string, args []any) {
	placeholders = make([]string, len(list))
	args = make([]any, len(list))
	for i, item := range list {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = item
	}

	return placeholders, args
}
