package report

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Simplici0/unitecon/internal/snapshot"
)

// TextRenderer renders the report as aligned plain text.
type TextRenderer struct{}

func (TextRenderer) Render(s snapshot.Snapshot) ([]byte, error) {
	doc := Build(s)

	var buf bytes.Buffer
	fmt.Fprintln(&buf, doc.Title)
	fmt.Fprintln(&buf, doc.SavedAt)

	for _, section := range doc.Sections() {
		fmt.Fprintf(&buf, "\n%s:\n", section.Caption)

		tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		if len(section.Header) > 0 {
			fmt.Fprintln(tw, strings.Join(section.Header, "\t")+"\t")
		}
		for _, cells := range section.Rows {
			fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
		}
		if err := tw.Flush(); err != nil {
			return nil, fmt.Errorf("write %s: %w", section.Caption, err)
		}
	}

	return buf.Bytes(), nil
}
