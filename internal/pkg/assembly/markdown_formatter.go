package assembly

import (
	"bytes"
	"fmt"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(proposal *entity.Proposal) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", proposal.Title)
	fmt.Fprintf(&buf, "_Generated %s_\n\n", proposal.GeneratedAt.Format("2006-01-02 15:04 UTC"))

	for _, section := range proposal.Sections {
		fmt.Fprintf(&buf, "## %s\n\n%s\n\n", section.Title, section.Body)
	}
	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
