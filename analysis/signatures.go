package analysis

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"sync"
)

// builderPool reuses strings.Builder instances to reduce allocations during normalization.
var builderPool = sync.Pool{
	New: func() interface{} {
		return &strings.Builder{}
	},
}

// queryPrefixes maps the leading keyword of a statement to its ID prefix.
var queryPrefixes = []struct {
	keyword string
	prefix  string
}{
	{"SELECT", "se-"},
	{"INSERT", "in-"},
	{"UPDATE", "up-"},
	{"DELETE", "de-"},
	{"WITH", "wi-"},
}

// ============================================================================
// SQL Pattern Extraction (Normalization)
// ============================================================================

// normalizeQuery reduces an SQL text to its shape: literals and placeholders
// become '?', {table} braces are dropped, whitespace collapses and the rest is
// lower-cased. Texts that differ only by values share a normalized form.
func normalizeQuery(query string) string {
	if len(query) == 0 {
		return ""
	}

	buf := builderPool.Get().(*strings.Builder)
	buf.Reset()
	buf.Grow(len(query))
	defer builderPool.Put(buf)

	lastWasSpace := false

	for i := 0; i < len(query); i++ {
		c := query[i]

		// Single-quoted strings
		if c == '\'' {
			buf.WriteByte('?')
			for i+1 < len(query) {
				i++
				if query[i] == '\'' {
					if i+1 < len(query) && query[i+1] == '\'' {
						i++
					} else {
						break
					}
				}
			}
			lastWasSpace = false
			continue
		}

		// Double-quoted and backquoted identifiers: kept, lower-cased
		if c == '"' || c == '`' {
			quote := c
			buf.WriteByte(quote)
			for i+1 < len(query) {
				i++
				c = query[i]
				buf.WriteByte(lower(c))
				if c == quote {
					break
				}
			}
			lastWasSpace = false
			continue
		}

		if c == '\n' || c == '\r' || c == '\t' || c == ' ' {
			if !lastWasSpace {
				buf.WriteByte(' ')
				lastWasSpace = true
			}
			continue
		}

		// {table} -> table
		if c == '{' || c == '}' {
			continue
		}

		// Positional ($1) and named (:name) placeholders
		if c == '$' && i+1 < len(query) && isDigit(query[i+1]) {
			buf.WriteByte('?')
			for i+1 < len(query) && isDigit(query[i+1]) {
				i++
			}
			lastWasSpace = false
			continue
		}
		if c == ':' && i+1 < len(query) && isIdentifierStart(query[i+1]) && (i == 0 || query[i-1] != ':') {
			buf.WriteByte('?')
			for i+1 < len(query) && isIdentifierChar(query[i+1]) {
				i++
			}
			lastWasSpace = false
			continue
		}

		// Numbers not glued to an identifier
		if isDigit(c) || (c == '-' && i+1 < len(query) && isDigit(query[i+1])) {
			if i == 0 || !isIdentifierChar(query[i-1]) {
				buf.WriteByte('?')
				if c == '-' {
					i++
				}
				for i+1 < len(query) && (isDigit(query[i+1]) || query[i+1] == '.') {
					i++
				}
				lastWasSpace = false
				continue
			}
		}

		buf.WriteByte(lower(c))
		lastWasSpace = false
	}

	return strings.TrimSpace(buf.String())
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 32
	}
	return c
}

func isIdentifierStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentifierChar(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ============================================================================
// Hash & ID Generation
// ============================================================================

// GenerateQueryID creates a short, human-readable identifier for an SQL query:
// a type prefix and six characters of the MD5 of its normalized form.
func GenerateQueryID(rawQuery, normalizedQuery string) (id, fullHash string) {
	prefix := detectQueryPrefix(rawQuery)
	hashBytes := md5.Sum([]byte(normalizedQuery))
	fullHash = hex.EncodeToString(hashBytes[:])
	id = prefix + generateShortHash(hashBytes[:])
	return
}

func detectQueryPrefix(rawQuery string) string {
	query := skipLeadingComments(rawQuery)
	for _, p := range queryPrefixes {
		if matchesKeyword(query, p.keyword) {
			return p.prefix
		}
	}
	return "xx-"
}

// skipLeadingComments returns query without leading whitespace, /* */ blocks
// (nested) and -- lines.
func skipLeadingComments(query string) string {
	i := 0
	n := len(query)
	for i < n {
		if query[i] == ' ' || query[i] == '\t' || query[i] == '\n' || query[i] == '\r' {
			i++
			continue
		}
		if i+1 < n && query[i] == '/' && query[i+1] == '*' {
			i += 2
			depth := 1
			for i+1 < n && depth > 0 {
				switch {
				case query[i] == '/' && query[i+1] == '*':
					depth++
					i += 2
				case query[i] == '*' && query[i+1] == '/':
					depth--
					i += 2
				default:
					i++
				}
			}
			if depth > 0 {
				return ""
			}
			continue
		}
		if i+1 < n && query[i] == '-' && query[i+1] == '-' {
			i += 2
			for i < n && query[i] != '\n' {
				i++
			}
			if i < n {
				i++
			}
			continue
		}
		break
	}
	if i >= n {
		return ""
	}
	return query[i:]
}

// matchesKeyword reports whether query starts with keyword (upper case),
// ignoring case.
func matchesKeyword(query, keyword string) bool {
	if len(query) < len(keyword) {
		return false
	}
	for i := 0; i < len(keyword); i++ {
		c := query[i]
		if c >= 'a' && c <= 'z' {
			c -= 32
		}
		if c != keyword[i] {
			return false
		}
	}
	return len(query) == len(keyword) || !isIdentifierChar(query[len(keyword)])
}

// generateShortHash keeps the first six base64 characters that are not
// '+', '/' or '='.
func generateShortHash(hashBytes []byte) string {
	b64 := base64.StdEncoding.EncodeToString(hashBytes)
	var shortHash [6]byte
	j := 0
	for i := 0; i < len(b64) && j < 6; i++ {
		c := b64[i]
		if c != '+' && c != '/' && c != '=' {
			shortHash[j] = c
			j++
		}
	}
	return string(shortHash[:j])
}
