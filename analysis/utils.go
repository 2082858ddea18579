// analysis/utils.go
package analysis

import "strings"

// QueryID returns the short identifier of a SQL text, e.g. "se-1a2B3c".
func QueryID(sqlText string) string {
	id, _ := GenerateQueryID(sqlText, normalizeQuery(sqlText))
	return id
}

// QueryTypeFromID returns the query type based on the identifier prefix.
func QueryTypeFromID(id string) string {
	switch {
	case strings.HasPrefix(id, "se-"):
		return "select"
	case strings.HasPrefix(id, "in-"):
		return "insert"
	case strings.HasPrefix(id, "up-"):
		return "update"
	case strings.HasPrefix(id, "de-"):
		return "delete"
	case strings.HasPrefix(id, "wi-"):
		return "with"
	default:
		return "other"
	}
}
