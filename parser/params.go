package parser

import (
	"encoding/json"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ParamKind is the scalar type of a bound parameter.
type ParamKind int

const (
	ParamNull ParamKind = iota
	ParamBool
	ParamInt
	ParamFloat
	ParamString
)

// Param is one bound value of a logged statement.
// Numbers keep their literal text so re-expansion prints exactly what was logged.
type Param struct {
	Kind ParamKind
	Bool bool
	Text string
}

func NullParam() Param { return Param{Kind: ParamNull} }
func BoolParam(b bool) Param { return Param{Kind: ParamBool, Bool: b} }
func IntParam(i int64) Param { return Param{Kind: ParamInt, Text: strconv.FormatInt(i, 10)} }
func FloatParam(f float64) Param { return Param{Kind: ParamFloat, Text: strconv.FormatFloat(f, 'f', -1, 64)} }
func StringParam(s string) Param { return Param{Kind: ParamString, Text: s} }
func numberParam(text string) Param { return Param{Kind: numberKind(text), Text: text} }

// MarshalJSON encodes the parameter as the matching JSON scalar.
func (p Param) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case ParamNull:
		return []byte("null"), nil
	case ParamBool:
		return json.Marshal(p.Bool)
	case ParamInt:
		if i, err := strconv.ParseInt(p.Text, 10, 64); err == nil {
			return json.Marshal(i)
		}
	case ParamFloat:
		if f, err := strconv.ParseFloat(p.Text, 64); err == nil {
			return json.Marshal(f)
		}
	}
	return json.Marshal(p.Text)
}

var (
	lineBreakRegex  = regexp.MustCompile(`\r\n|\n|\r`)
	legacyItemRegex = regexp.MustCompile(`^\s*(\d+)\s*=>\s*(.+?)\s*,?\s*$`)
	integerRegex    = regexp.MustCompile(`^[+-]?\d+$`)
	floatRegex      = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

// ParseParams decodes the sqlparams column into an ordered parameter list.
//
// Two encodings are accepted:
//   - JSON arrays or objects; values are taken in document order.
//   - legacy dumps such as "array (\n  0 => 3,\n  1 => 'abc',\n)".
//
// Anything else yields an empty list.
func ParseParams(raw string) []Param {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if raw[0] == '{' || raw[0] == '[' {
		if params, ok := parseJSONParams(raw); ok {
			return params
		}
	}

	if !strings.Contains(strings.ToLower(raw), "array") {
		return nil
	}

	items := make(map[int]Param)
	for _, line := range lineBreakRegex.Split(raw, -1) {
		line = strings.TrimSpace(line)
		if line == "" || line == "array (" || line == "array(" || line == ")" {
			continue
		}
		m := legacyItemRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		items[idx] = parseScalar(m[2])
	}

	keys := make([]int, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	params := make([]Param, 0, len(keys))
	for _, k := range keys {
		params = append(params, items[k])
	}
	return params
}

// parseJSONParams walks a JSON array or object keeping document order,
// which a map decode would lose.
func parseJSONParams(raw string) ([]Param, bool) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '[' && delim != '{') {
		return nil, false
	}

	params := []Param{}
	for dec.More() {
		if delim == '{' {
			if _, err := dec.Token(); err != nil {
				return nil, false
			}
		}
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, false
		}
		params = append(params, paramFromJSON(v))
	}
	if _, err := dec.Token(); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return params, true
}

func paramFromJSON(v interface{}) Param {
	switch t := v.(type) {
	case nil:
		return NullParam()
	case bool:
		return BoolParam(t)
	case json.Number:
		return numberParam(t.String())
	case string:
		return StringParam(t)
	default:
		// Nested arrays/objects have no SQL literal form; show them as JSON text.
		b, err := json.Marshal(t)
		if err != nil {
			return StringParam("")
		}
		return StringParam(string(b))
	}
}

// parseScalar decodes one value of a legacy dump.
func parseScalar(raw string) Param {
	raw = strings.TrimSpace(raw)

	switch {
	case strings.EqualFold(raw, "NULL"):
		return NullParam()
	case strings.EqualFold(raw, "true"):
		return BoolParam(true)
	case strings.EqualFold(raw, "false"):
		return BoolParam(false)
	}

	if len(raw) >= 2 {
		q := raw[0]
		if (q == '\'' || q == '"') && raw[len(raw)-1] == q {
			inner := raw[1 : len(raw)-1]
			inner = strings.ReplaceAll(inner, `\`+string(q), string(q))
			inner = strings.ReplaceAll(inner, `\\`, `\`)
			return StringParam(inner)
		}
	}

	if floatRegex.MatchString(raw) {
		return numberParam(raw)
	}
	return StringParam(raw)
}

func numberKind(text string) ParamKind {
	if integerRegex.MatchString(text) {
		return ParamInt
	}
	return ParamFloat
}

// ExpandSQL replaces every unquoted `?` with the literal of the next parameter.
// Placeholders inside '...' or "..." are copied through; a doubled '' inside a
// single-quoted run does not end it. When parameters run out the remaining
// placeholders are left as `?`.
//
// The result is for display only and must never be executed as-is.
func ExpandSQL(sql string, params []Param) string {
	if len(params) == 0 || !strings.Contains(sql, "?") {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) + len(params)*4)

	next := 0
	inSingle, inDouble := false, false

	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'' && !inDouble:
			if inSingle && i+1 < len(sql) && sql[i+1] == '\'' {
				b.WriteString("''")
				i++
				continue
			}
			inSingle = !inSingle
			b.WriteByte(c)
		case c == '"' && !inSingle:
			inDouble = !inDouble
			b.WriteByte(c)
		case c == '?' && !inSingle && !inDouble:
			if next < len(params) {
				b.WriteString(FormatParamForSQL(params[next]))
			} else {
				b.WriteByte('?')
			}
			next++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// FormatParamsBlock renders one "[i] = literal" line per parameter, or "-".
func FormatParamsBlock(params []Param) string {
	if len(params) == 0 {
		return "-"
	}
	lines := make([]string, len(params))
	for i, p := range params {
		lines[i] = "[" + strconv.Itoa(i) + "] = " + FormatParamForSQL(p)
	}
	return strings.Join(lines, "\n")
}

// FormatParamForSQL renders a parameter as a SQL literal for display.
func FormatParamForSQL(p Param) string {
	switch p.Kind {
	case ParamNull:
		return "NULL"
	case ParamBool:
		if p.Bool {
			return "1"
		}
		return "0"
	case ParamInt, ParamFloat:
		return p.Text
	default:
		return "'" + strings.ReplaceAll(p.Text, "'", "''") + "'"
	}
}
