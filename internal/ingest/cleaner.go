package ingest

import (
	"regexp"
	"strings"
)

// Text cleaning for parsed source pages. The regexes mirror the artifacts
// seen in real RFP PDFs: page footers, orphaned list markers, smart quotes
// and runaway punctuation.
var (
	rePageFooter      = regexp.MustCompile(`(?m)^\s*Page \d+\s*$`)
	reNumberLine      = regexp.MustCompile(`(?m)^\s*\d+\s*$`)
	reEllipsisRun     = regexp.MustCompile(`\.{3,}`)
	reDashRun         = regexp.MustCompile(`-{3,}`)
	reBulletMarker    = regexp.MustCompile(`(?m)^\s*[•·▪▫]\s*`)
	reListNumber      = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*`)
	reLoneChar        = regexp.MustCompile(`(?m)^\s*[A-Za-z]\s*$`)
	reSymbolLine      = regexp.MustCompile(`(?m)^\s*[^\w\s]{2,}\s*$`)
	reDoubleQuotes    = regexp.MustCompile("[“”„`]")
	reSingleQuotes    = regexp.MustCompile("[‘’]")
	reSpaceBeforePunc = regexp.MustCompile(`\s+([,.!?;:])`)
	reSpaceAfterPunc  = regexp.MustCompile(`([,.!?;:])\s+`)
	reWhitespaceRun   = regexp.MustCompile(`\s+`)
)

// CleanText normalizes whitespace, strips page-number and footer artifacts,
// normalizes bullet markers and quote characters, and collapses redundant
// punctuation.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	// Line-level artifacts first, while line structure is still intact.
	text = rePageFooter.ReplaceAllString(text, "")
	text = reNumberLine.ReplaceAllString(text, "")
	text = reLoneChar.ReplaceAllString(text, "")
	text = reSymbolLine.ReplaceAllString(text, "")
	text = reBulletMarker.ReplaceAllString(text, "- ")
	text = reListNumber.ReplaceAllString(text, "")

	text = reEllipsisRun.ReplaceAllString(text, "...")
	text = reDashRun.ReplaceAllString(text, "---")

	text = reDoubleQuotes.ReplaceAllString(text, `"`)
	text = reSingleQuotes.ReplaceAllString(text, "'")

	text = reSpaceBeforePunc.ReplaceAllString(text, "$1")
	text = reSpaceAfterPunc.ReplaceAllString(text, "$1 ")

	text = reWhitespaceRun.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
