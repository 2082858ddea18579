package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Alain-L/slowq/config"
)

const maxIndexColumns = 4

var (
	aliasRegex = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+` + tableRef + `(?:\s+(?:AS\s+)?([a-z0-9_]+))?`)

	joinEqualityRegex = regexp.MustCompile(`(?i)\b([a-z0-9_]+)\.([a-z0-9_]+)\s*=\s*([a-z0-9_]+)\.([a-z0-9_]+)`)
	comparisonRegex   = regexp.MustCompile(`(?i)\b([a-z0-9_]+)\.([a-z0-9_]+)\s*(=|>=|<=|<|>|IN|LIKE)\s*(\?|\()`)
	qualifiedColRegex = regexp.MustCompile(`(?i)\b([a-z0-9_]+)\.([a-z0-9_]+)`)
	nonIdentRegex     = regexp.MustCompile(`(?i)[^a-z0-9_]+`)
)

// notAliases are words that can follow a table reference without being an alias.
var notAliases = map[string]bool{
	"where": true, "on": true, "join": true, "inner": true, "left": true,
	"right": true, "full": true, "cross": true, "outer": true, "natural": true,
	"straight_join": true, "order": true, "group": true, "limit": true,
	"having": true, "union": true, "set": true, "using": true, "window": true,
	"offset": true, "for": true, "lateral": true, "values": true, "select": true,
	"and": true, "or": true, "except": true, "intersect": true,
	"returning": true, "with": true,
}

// Advisor proposes indexes for a logged statement and filters out the ones
// the live catalog already covers.
type Advisor struct {
	Indexes IndexLister
	Logger  *zap.Logger
}

// NewAdvisor returns an Advisor reading existing indexes from lister.
func NewAdvisor(lister IndexLister, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{Indexes: lister, Logger: logger}
}

// Suggest returns the uncovered index candidates for sql, in table order of
// first mention. Index lookups are cached for the duration of the call.
func (a *Advisor) Suggest(ctx context.Context, target config.Target, sql string) []Suggestion {
	if strings.TrimSpace(sql) == "" {
		return nil
	}

	tables, usage := ExtractUsage(sql, target.Prefix)
	cache := make(map[string][]ExistingIndex)

	var out []Suggestion
	seen := make(map[string]bool)
	for _, table := range tables {
		existing := a.existing(ctx, target, table, cache)
		for _, c := range usage[table].Candidates {
			if IsCoveredByExisting(c.Columns, existing) {
				continue
			}
			key := table + ":" + strings.Join(c.Columns, ",")
			if seen[key] {
				continue
			}
			seen[key] = true

			out = append(out, Suggestion{
				Table:   table,
				Columns: c.Columns,
				Reason:  c.Reason,
				Create: fmt.Sprintf("CREATE INDEX %s ON %s (%s);",
					SuggestionIndexName(table, c.Columns), target.Table(table), strings.Join(c.Columns, ", ")),
			})
		}
	}
	return out
}

func (a *Advisor) existing(ctx context.Context, target config.Target, table string, cache map[string][]ExistingIndex) []ExistingIndex {
	if idx, ok := cache[table]; ok {
		return idx
	}
	var idx []ExistingIndex
	if a.Indexes != nil {
		var err error
		idx, err = a.Indexes.Indexes(ctx, target, table)
		if err != nil {
			a.Logger.Debug("index lookup failed, treating table as unindexed",
				zap.String("table", table), zap.Error(err))
			idx = nil
		}
	}
	cache[table] = idx
	return idx
}

// ExtractUsage resolves aliases, classifies column usage per table and builds
// the raw index candidates. Tables are returned in order of first mention.
func ExtractUsage(sql, prefix string) ([]string, map[string]*ColumnUsage) {
	aliases := extractAliasMap(sql, prefix)
	usage := make(map[string]*ColumnUsage)
	var order []string

	tableFor := func(alias string) *ColumnUsage {
		table, ok := aliases[strings.ToLower(alias)]
		if !ok || table == "" {
			return nil
		}
		u, ok := usage[table]
		if !ok {
			u = &ColumnUsage{}
			usage[table] = u
			order = append(order, table)
		}
		return u
	}

	for _, m := range joinEqualityRegex.FindAllStringSubmatch(sql, -1) {
		if u := tableFor(m[1]); u != nil {
			u.Eq = addColumn(u.Eq, m[2])
		}
		if u := tableFor(m[3]); u != nil {
			u.Eq = addColumn(u.Eq, m[4])
		}
	}

	where := extractClause(sql, "WHERE", []string{"GROUP BY", "ORDER BY", "LIMIT", "HAVING"})
	for _, m := range comparisonRegex.FindAllStringSubmatch(where, -1) {
		u := tableFor(m[1])
		if u == nil {
			continue
		}
		switch strings.ToUpper(m[3]) {
		case "=", "IN":
			u.Eq = addColumn(u.Eq, m[2])
		default:
			u.Range = addColumn(u.Range, m[2])
		}
	}

	orderBy := extractClause(sql, "ORDER BY", []string{"LIMIT"})
	for _, part := range strings.Split(orderBy, ",") {
		if m := qualifiedColRegex.FindStringSubmatch(part); m != nil {
			if u := tableFor(m[1]); u != nil {
				u.Order = addColumn(u.Order, m[2])
			}
		}
	}

	groupBy := extractClause(sql, "GROUP BY", []string{"ORDER BY", "LIMIT", "HAVING"})
	for _, part := range strings.Split(groupBy, ",") {
		if m := qualifiedColRegex.FindStringSubmatch(part); m != nil {
			if u := tableFor(m[1]); u != nil {
				u.Group = addColumn(u.Group, m[2])
			}
		}
	}

	for _, table := range order {
		u := usage[table]
		u.Candidates = buildCandidates(u)
	}
	return order, usage
}

// extractAliasMap maps lower-cased aliases to unprefixed table names. A bare
// table name also resolves to itself unless an explicit alias claims it.
func extractAliasMap(sql, prefix string) map[string]string {
	aliases := make(map[string]string)
	for _, m := range aliasRegex.FindAllStringSubmatch(sql, -1) {
		raw := firstNonEmpty(m[1:4])
		table := NormalizeTableName(raw, prefix)
		if table == "" {
			continue
		}
		if alias := strings.ToLower(m[4]); alias != "" && !notAliases[alias] {
			aliases[alias] = table
		}
		self := strings.ToLower(strings.Trim(raw, "{}"))
		if _, ok := aliases[self]; !ok {
			aliases[self] = table
		}
	}
	return aliases
}

func addColumn(cols []string, col string) []string {
	col = strings.ToLower(col)
	if col == "id" {
		return cols
	}
	for _, c := range cols {
		if c == col {
			return cols
		}
	}
	return append(cols, col)
}

func buildCandidates(u *ColumnUsage) []IndexCandidate {
	var raw []IndexCandidate

	colsA := limitColumns(uniqueMerge(u.Eq, u.Range))
	if len(colsA) > 0 {
		raw = append(raw, IndexCandidate{
			Columns: colsA,
			Reason:  buildReason(u.Eq, u.Range, u.Order, "eq+range"),
		})
	}

	colsB := limitColumns(uniqueMerge(u.Eq, u.Order))
	if len(colsB) > 0 && !sameColumns(colsA, colsB) {
		raw = append(raw, IndexCandidate{
			Columns: colsB,
			Reason:  buildReason(u.Eq, nil, u.Order, "eq+order"),
		})
	}

	for _, c := range u.Eq {
		raw = append(raw, IndexCandidate{
			Columns: []string{c},
			Reason:  "Single-column equality/join key: " + c,
		})
	}

	// Duplicates keep their first position and the last reason.
	pos := make(map[string]int)
	var out []IndexCandidate
	for _, c := range raw {
		key := strings.Join(c.Columns, ",")
		if i, ok := pos[key]; ok {
			out[i] = c
			continue
		}
		pos[key] = len(out)
		out = append(out, c)
	}
	return out
}

func buildReason(eq, rng, order []string, kind string) string {
	var parts []string
	if len(eq) > 0 {
		parts = append(parts, "Equality/join keys: "+strings.Join(eq, ", "))
	}
	if len(rng) > 0 {
		parts = append(parts, "Range keys: "+strings.Join(rng, ", "))
	}
	if len(order) > 0 {
		parts = append(parts, "Order keys: "+strings.Join(order, ", "))
	}
	parts = append(parts, "Heuristic: "+kind)
	return strings.Join(parts, " | ")
}

func uniqueMerge(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, list := range [][]string{a, b} {
		for _, c := range list {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

func limitColumns(cols []string) []string {
	var out []string
	for _, c := range cols {
		if strings.TrimSpace(c) == "" {
			continue
		}
		out = append(out, c)
		if len(out) == maxIndexColumns {
			break
		}
	}
	return out
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsCoveredByExisting reports whether an existing index already serves the
// candidate: either the candidate is a leading prefix of the index, or it is a
// single column that leads an index.
func IsCoveredByExisting(cols []string, existing []ExistingIndex) bool {
	if len(cols) == 0 {
		return false
	}
	want := make([]string, len(cols))
	for i, c := range cols {
		want[i] = strings.ToLower(c)
	}

	for _, idx := range existing {
		if len(idx.Columns) == 0 {
			continue
		}
		have := make([]string, len(idx.Columns))
		for i, c := range idx.Columns {
			have[i] = strings.ToLower(c)
		}
		if len(want) == 1 && have[0] == want[0] {
			return true
		}
		if len(have) >= len(want) && sameColumns(have[:len(want)], want) {
			return true
		}
	}
	return false
}

// SuggestionIndexName builds the advisory name idx_lsq_<table>_<cols>, lower
// case, at most 60 bytes.
func SuggestionIndexName(table string, cols []string) string {
	name := "idx_lsq_" + table + "_" + strings.Join(cols, "_")
	name = strings.ToLower(nonIdentRegex.ReplaceAllString(name, "_"))
	if len(name) > 60 {
		name = name[:60]
	}
	return name
}
