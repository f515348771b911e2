package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitterShortInput(t *testing.T) {
	s := NewSplitter(1200, 300)

	frags := s.Split("A single paragraph well under the limit.")
	require.Len(t, frags, 1)
	assert.Equal(t, 0, frags[0].Start)

	assert.Empty(t, s.Split("   "))
}

func TestSplitterPrefersParagraphBreaks(t *testing.T) {
	para1 := strings.Repeat("alpha ", 15) // 90 chars
	para2 := strings.Repeat("bravo ", 15)
	text := para1 + "\n\n" + para2

	s := NewSplitter(100, 0)
	frags := s.Split(text)

	require.Len(t, frags, 2)
	assert.Contains(t, frags[0].Text, "alpha")
	assert.NotContains(t, frags[0].Text, "bravo")
	assert.Contains(t, frags[1].Text, "bravo")
}

func TestSplitterRespectsChunkSize(t *testing.T) {
	text := strings.Repeat("The vendor shall deliver reports. ", 120)

	s := NewSplitter(400, 100)
	frags := s.Split(text)

	require.Greater(t, len(frags), 1)
	for _, f := range frags {
		assert.LessOrEqual(t, len(f.Text), 400)
	}
}

func TestSplitterStartOffsets(t *testing.T) {
	text := strings.Repeat("Sentence one here. ", 60)

	s := NewSplitter(200, 50)
	frags := s.Split(text)
	require.Greater(t, len(frags), 1)

	for _, f := range frags {
		require.LessOrEqual(t, f.Start+len(f.Text), len(text))
		assert.Equal(t, f.Text, text[f.Start:f.Start+len(f.Text)],
			"fragment text must match the original at its start offset")
	}
}

func TestSplitterOverlap(t *testing.T) {
	text := strings.Repeat("one two three four five six. ", 40)

	s := NewSplitter(150, 60)
	frags := s.Split(text)
	require.Greater(t, len(frags), 1)

	for i := 1; i < len(frags); i++ {
		prevEnd := frags[i-1].Start + len(frags[i-1].Text)
		assert.Less(t, frags[i].Start, prevEnd, "consecutive fragments must overlap")
	}
}

func TestSplitterHardCutWithoutSeparators(t *testing.T) {
	text := strings.Repeat("x", 1000)

	s := NewSplitter(300, 0)
	frags := s.Split(text)

	require.Len(t, frags, 4)
	assert.Equal(t, 0, frags[0].Start)
	assert.Equal(t, 300, frags[1].Start)
	assert.Equal(t, 900, frags[3].Start)
	assert.Len(t, frags[3].Text, 100)
}

func TestSplitterPreservesOrder(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over lazy dogs today. ", 50)

	s := NewSplitter(250, 80)
	frags := s.Split(text)

	for i := 1; i < len(frags); i++ {
		assert.Greater(t, frags[i].Start, frags[i-1].Start)
	}
}
