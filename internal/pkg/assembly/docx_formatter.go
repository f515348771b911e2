package assembly

import (
	"bytes"

	"github.com/unidoc/unioffice/document"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(proposal *entity.Proposal) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titleRun := titlePar.AddRun()
	titleRun.AddText(proposal.Title)

	doc.AddParagraph()

	for _, section := range proposal.Sections {
		headingPar := doc.AddParagraph()
		headingPar.SetStyle("Heading2")
		headingRun := headingPar.AddRun()
		headingRun.AddText(section.Title)

		bodyPar := doc.AddParagraph()
		bodyRun := bodyPar.AddRun()
		bodyRun.AddText(section.Body)

		doc.AddParagraph()
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
