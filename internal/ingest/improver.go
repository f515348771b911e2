package ingest

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reSentenceGap = regexp.MustCompile(`([.!?])([A-Z])`)
	reCommaGap    = regexp.MustCompile(`,(\S)`)
)

// ImproveText applies a conservative formatting pass to chunk text: restores
// missing spaces after sentence and comma boundaries, deduplicates stuttered
// words from PDF extraction, and capitalizes the opening letter. Returns the
// improved text and whether anything changed. If the pass would degrade the
// chunk it returns the input unchanged.
func ImproveText(text string) (string, bool) {
	original := text

	text = reSentenceGap.ReplaceAllString(text, "$1 $2")
	text = reCommaGap.ReplaceAllString(text, ", $1")
	text = dedupeStutter(text)
	text = strings.TrimSpace(text)

	if text != "" {
		runes := []rune(text)
		runes[0] = unicode.ToUpper(runes[0])
		text = string(runes)
	}

	if text == "" || !IsMeaningful(text) {
		return original, false
	}
	return text, text != original
}

// dedupeStutter removes immediately repeated words, a common artifact of
// column-based PDF text extraction. Case-insensitive; keeps the first
// occurrence.
func dedupeStutter(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return text
	}

	out := fields[:1]
	for _, f := range fields[1:] {
		if strings.EqualFold(f, out[len(out)-1]) {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}
