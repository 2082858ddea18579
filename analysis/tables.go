package analysis

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Alain-L/slowq/config"
)

// tableRef matches a table identifier that is bare, `backquoted`, "quoted"
// or wrapped in the host's {braces} placeholder syntax.
const tableRef = "(?:`(\\{?[a-z0-9_]+\\}?)`|\"(\\{?[a-z0-9_]+\\}?)\"|(\\{?[a-z0-9_]+\\}?))"

var lineBreaks = regexp.MustCompile(`\r\n|\n|\r`)

var tableRefRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bFROM\s+` + tableRef),
	regexp.MustCompile(`(?i)\bJOIN\s+` + tableRef),
	regexp.MustCompile(`(?i)\bUPDATE\s+` + tableRef),
	regexp.MustCompile(`(?i)\bINTO\s+` + tableRef),
}

// ExtractTables lists the tables a statement reads or writes, as they appear
// in the text minus the {braces}. The result is deduplicated and sorted.
func ExtractTables(sql string) []string {
	seen := make(map[string]bool)
	var tables []string

	for _, re := range tableRefRegexes {
		for _, m := range re.FindAllStringSubmatch(sql, -1) {
			t := strings.Trim(strings.TrimSpace(firstNonEmpty(m[1:])), "{}")
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			tables = append(tables, t)
		}
	}

	sort.Strings(tables)
	return tables
}

// NormalizeTableName turns a table reference from SQL text into the host's
// unprefixed table name: braces and quotes go, then the prefix. Logs recorded
// with the stock "mdl_" prefix still resolve on sites using another prefix.
func NormalizeTableName(raw, prefix string) string {
	t := strings.TrimSpace(raw)
	t = strings.Trim(t, "{}")
	t = strings.Trim(t, "`\"")

	if strings.HasPrefix(t, prefix) {
		return t[len(prefix):]
	}
	if prefix != config.DefaultPrefix && strings.HasPrefix(t, config.DefaultPrefix) {
		return t[len(config.DefaultPrefix):]
	}
	return t
}

func firstNonEmpty(groups []string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}
	return ""
}

// asciiUpper upper-cases ASCII letters only, so byte offsets stay valid
// against the original text.
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 32
		}
	}
	return string(b)
}

// extractClause returns the text after the first start keyword up to the
// nearest end keyword, trimmed. Empty when start is absent.
func extractClause(sql, start string, ends []string) string {
	upper := asciiUpper(sql)
	spos := strings.Index(upper, start)
	if spos == -1 {
		return ""
	}
	spos += len(start)
	rest, restUpper := sql[spos:], upper[spos:]

	endpos := -1
	for _, end := range ends {
		if p := strings.Index(restUpper, end); p != -1 && (endpos == -1 || p < endpos) {
			endpos = p
		}
	}
	if endpos != -1 {
		rest = rest[:endpos]
	}
	return strings.TrimSpace(rest)
}
