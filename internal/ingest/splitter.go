package ingest

import "strings"

// defaultSeparators is the separator cascade tried in order: paragraph
// breaks first, then lines, sentence boundaries, clause boundaries, words,
// and finally a hard character cut.
var defaultSeparators = []string{"\n\n\n", "\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " ", ""}

// Fragment is a span of split text together with its start offset in the
// original input.
type Fragment struct {
	Text  string
	Start int
}

// Splitter cuts text into overlapping fragments of at most ChunkSize
// characters, preferring to break on the coarsest separator that fits.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	return &Splitter{ChunkSize: chunkSize, Overlap: overlap}
}

// Split returns the fragments of text in source order. Fragment boundaries
// follow the separator cascade; consecutive fragments share up to Overlap
// characters.
func (s *Splitter) Split(text string) []Fragment {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= s.ChunkSize {
		return []Fragment{{Text: text, Start: 0}}
	}
	return s.merge(s.atoms(text, 0, defaultSeparators))
}

// atoms recursively dices text into pieces no longer than ChunkSize, each
// carrying its absolute start offset.
func (s *Splitter) atoms(text string, start int, separators []string) []Fragment {
	if len(text) <= s.ChunkSize {
		return []Fragment{{Text: text, Start: start}}
	}
	if len(separators) == 0 {
		separators = []string{""}
	}

	sep := separators[0]
	rest := separators[1:]

	if sep == "" {
		// Last resort: hard cut at ChunkSize.
		var out []Fragment
		for i := 0; i < len(text); i += s.ChunkSize {
			end := i + s.ChunkSize
			if end > len(text) {
				end = len(text)
			}
			out = append(out, Fragment{Text: text[i:end], Start: start + i})
		}
		return out
	}

	if !strings.Contains(text, sep) {
		return s.atoms(text, start, rest)
	}

	var out []Fragment
	offset := start
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		if len(part) > s.ChunkSize {
			out = append(out, s.atoms(part, offset, rest)...)
		} else {
			out = append(out, Fragment{Text: part, Start: offset})
		}
		offset += len(part)
	}
	return out
}

// merge greedily packs atoms into fragments of at most ChunkSize characters,
// carrying a tail of at most Overlap characters into the next fragment.
func (s *Splitter) merge(atoms []Fragment) []Fragment {
	var (
		out     []Fragment
		current []Fragment
		curLen  int
		fresh   bool // current holds atoms not yet emitted
	)

	emit := func() {
		if len(current) == 0 || !fresh {
			return
		}
		var b strings.Builder
		for _, a := range current {
			b.WriteString(a.Text)
		}
		out = append(out, Fragment{Text: b.String(), Start: current[0].Start})

		// Retain a tail of whole atoms within the overlap window.
		var tail []Fragment
		tailLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			if tailLen+len(current[i].Text) > s.Overlap {
				break
			}
			tail = append([]Fragment{current[i]}, tail...)
			tailLen += len(current[i].Text)
		}
		current = tail
		curLen = tailLen
		fresh = false
	}

	for _, a := range atoms {
		if curLen+len(a.Text) > s.ChunkSize && curLen > 0 {
			emit()
		}
		current = append(current, a)
		curLen += len(a.Text)
		fresh = true
	}
	emit()

	return out
}
