package ingest

import (
	"regexp"
	"strings"
)

const (
	minMeaningfulChars = 20
	minMeaningfulWords = 5
	minAlnumRatio      = 0.3
)

// Patterns that mark text as carrying real content: common function words,
// business terms, modal verbs, 4-digit years, currency amounts, acronyms.
var meaningfulPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:the|and|or|but|in|on|at|to|for|of|with|by)\b`),
	regexp.MustCompile(`(?i)\b(?:contract|agreement|proposal|requirement|service|project)\b`),
	regexp.MustCompile(`(?i)\b(?:shall|will|must|should|may|can|could|would)\b`),
	regexp.MustCompile(`\b\d{4}\b`),
	regexp.MustCompile(`\$\d+`),
	regexp.MustCompile(`\b[A-Z]{2,}\b`),
}

// Prefixes that mark a chunk as header/footer/boilerplate rather than body
// text.
var metadataPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:Page \d+|Confidential|Proprietary|Copyright|©|®|™)`),
	regexp.MustCompile(`(?i)^(?:Table of Contents|Index|References|Bibliography)`),
	regexp.MustCompile(`(?i)^(?:Appendix|Section|Chapter)\s+[A-Z\d]+`),
	regexp.MustCompile(`^\s*\d+\s*$`),
	regexp.MustCompile(`^\s*[A-Z\s]{10,}\s*$`),
	regexp.MustCompile(`^\s*[-=_]{3,}\s*$`),
}

var (
	reSentenceSplit = regexp.MustCompile(`[.!?]+`)
	reAlnum         = regexp.MustCompile(`[a-zA-Z0-9]`)
)

// IsMeaningful reports whether text carries enough content to be worth
// chunking, using the default thresholds. It is a pure function of its input.
func IsMeaningful(text string) bool {
	return meaningfulAt(text, minMeaningfulChars, minMeaningfulWords)
}

// meaningfulAt is IsMeaningful with explicit size thresholds; the chunking
// pipeline threads its configured values through here.
func meaningfulAt(text string, minChars, minWords int) bool {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minChars {
		return false
	}

	if len(strings.Fields(trimmed)) < minWords {
		return false
	}

	for _, pattern := range meaningfulPatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}

	// No pattern hit: require at least one sentence with three or more words.
	for _, sentence := range reSentenceSplit.Split(trimmed, -1) {
		if len(strings.Fields(sentence)) >= 3 {
			return true
		}
	}

	return false
}

// IsMetadataChunk reports whether a chunk looks like a header, footer or
// separator rather than body text.
func IsMetadataChunk(text string) bool {
	trimmed := strings.TrimSpace(text)

	for _, pattern := range metadataPatterns {
		if pattern.MatchString(trimmed) {
			return true
		}
	}

	total := len(trimmed)
	if total == 0 {
		return true
	}

	alnum := len(reAlnum.FindAllString(trimmed, -1))
	return float64(alnum)/float64(total) < minAlnumRatio
}

// QualityScore rates chunk text in [0,1] from word count, alphanumeric
// density and meaningful-pattern hits.
func QualityScore(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	words := float64(len(strings.Fields(trimmed)))
	wordScore := words / 50
	if wordScore > 1 {
		wordScore = 1
	}

	alnumRatio := float64(len(reAlnum.FindAllString(trimmed, -1))) / float64(len(trimmed))

	hits := 0.0
	for _, pattern := range meaningfulPatterns {
		if pattern.MatchString(trimmed) {
			hits++
		}
	}
	patternScore := hits / 3
	if patternScore > 1 {
		patternScore = 1
	}

	score := 0.3*wordScore + 0.4*alnumRatio + 0.3*patternScore
	if score > 1 {
		score = 1
	}
	return score
}
