package output

import (
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)

	// Longest alternatives first so LEFT JOIN wins over JOIN.
	majorKeywordRegex = regexp.MustCompile(`(?i)\b(LEFT OUTER JOIN|RIGHT OUTER JOIN|INNER JOIN|LEFT JOIN|RIGHT JOIN|FULL JOIN|CROSS JOIN|GROUP BY|ORDER BY|UNION ALL|INSERT INTO|DELETE FROM|SELECT|FROM|WHERE|JOIN|ON|HAVING|LIMIT|OFFSET|UNION|INTERSECT|EXCEPT|SET|VALUES|UPDATE)\b`)
	indentedKeywordRegex = regexp.MustCompile(`(?i)\b(AND|OR)\b`)
)

// formatSQL formats a SQL query for better readability with basic indentation.
// Quoted literals are left untouched.
func formatSQL(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	var b strings.Builder
	for i, part := range splitQuoted(query) {
		if i%2 == 1 {
			b.WriteString(part)
			continue
		}
		part = whitespaceRegex.ReplaceAllString(part, " ")
		part = majorKeywordRegex.ReplaceAllStringFunc(part, func(m string) string {
			return "\n" + strings.ToUpper(m)
		})
		part = indentedKeywordRegex.ReplaceAllStringFunc(part, func(m string) string {
			return "\n" + strings.ToUpper(m)
		})
		b.WriteString(part)
	}

	lines := strings.Split(b.String(), "\n")
	formatted := make([]string, 0, len(lines))
	indentLevel := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ")") && indentLevel > 0 {
			indentLevel--
		}
		indent := strings.Repeat("  ", indentLevel)
		if strings.HasPrefix(line, "AND ") || strings.HasPrefix(line, "OR ") {
			indent += "  "
		}
		formatted = append(formatted, indent+line)

		indentLevel += strings.Count(line, "(") - strings.Count(line, ")")
		if strings.HasPrefix(line, ")") {
			indentLevel++
		}
		if indentLevel < 0 {
			indentLevel = 0
		}
	}
	return strings.Join(formatted, "\n")
}

// splitQuoted splits s into alternating unquoted and single-quoted runs.
// Odd indexes are the quoted runs, quotes included. A doubled quote stays
// inside its run.
func splitQuoted(s string) []string {
	var (
		parts []string
		start int
		inStr bool
	)
	for i := 0; i < len(s); i++ {
		if s[i] != '\'' {
			continue
		}
		if !inStr {
			parts = append(parts, s[start:i])
			start = i
			inStr = true
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			i++
			continue
		}
		parts = append(parts, s[start:i+1])
		start = i + 1
		inStr = false
	}
	if inStr {
		// Unterminated literal: keep it as a quoted run.
		parts = append(parts, s[start:])
		return parts
	}
	return append(parts, s[start:])
}
