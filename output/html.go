package output

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/Alain-L/slowq/analysis"
)

//go:embed detail_template.html
var detailTemplate string

var detailHTML = template.Must(template.New("detail").Funcs(template.FuncMap{
	"join": strings.Join,
	// Segment offsets are rendered as CSS percentages.
	"percent": func(v float64) template.CSS {
		return template.CSS(fmt.Sprintf("%.4f%%", v))
	},
}).Parse(detailTemplate))

// ExportHTML writes the detail report as a standalone HTML page. Timeline
// segments are positioned by their offset in the day and sized by their
// execution time.
func ExportHTML(w io.Writer, d *analysis.Detail) error {
	if err := detailHTML.Execute(w, d); err != nil {
		return errors.Wrap(err, "rendering HTML report")
	}
	return nil
}
