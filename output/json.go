package output

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/Alain-L/slowq/parser"
	"github.com/Alain-L/slowq/store"
)

// ListJSON is the JSON form of one page of the grouped list.
type ListJSON struct {
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"perpage"`
	Rows    []ListRowJSON `json:"rows"`
}

// ListRowJSON is one grouped SQL text with its derived origin line.
type ListRowJSON struct {
	store.GroupedRow
	Origin string `json:"origin"`
}

// NewListJSON converts a page of grouped rows.
func NewListJSON(p ListPage) ListJSON {
	out := ListJSON{
		Total:   p.Total,
		Page:    p.Page,
		PerPage: p.PerPage,
		Rows:    make([]ListRowJSON, 0, len(p.Rows)),
	}
	for _, r := range p.Rows {
		out.Rows = append(out.Rows, ListRowJSON{GroupedRow: r, Origin: parser.OriginLine(r.Backtrace.String)})
	}
	return out
}

// ExportJSON writes v as indented JSON followed by a newline.
func ExportJSON(w io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	jsonData = append(jsonData, '\n')
	if _, err := w.Write(jsonData); err != nil {
		return errors.Wrap(err, "writing JSON")
	}
	return nil
}
