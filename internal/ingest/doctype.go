package ingest

import (
	"strings"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

// DetectDocumentType classifies a document from its file name and title.
// Keyword order encodes precedence: an "RFP response contract" is an RFP.
func DetectDocumentType(fileName, title string) entity.DocumentType {
	haystack := strings.ToLower(fileName + " " + title)

	switch {
	case strings.Contains(haystack, "rfp") || strings.Contains(haystack, "request for proposal"):
		return entity.DocTypeRFP
	case strings.Contains(haystack, "contract") || strings.Contains(haystack, "agreement"):
		return entity.DocTypeContract
	case strings.Contains(haystack, "policy") || strings.Contains(haystack, "compliance"):
		return entity.DocTypePolicy
	case strings.Contains(haystack, "report") || strings.Contains(haystack, "analysis"):
		return entity.DocTypeReport
	case strings.Contains(haystack, "manual") || strings.Contains(haystack, "guide"):
		return entity.DocTypeManual
	default:
		return entity.DocTypeGeneric
	}
}
