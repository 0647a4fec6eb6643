package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/responsum/internal/models"
)

func TestNew_InvalidParams(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -10, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrConfig))
		})
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	chunks, err := c.Split("doc_1", []string{})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_ShortInput_SingleChunk(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	chunks, err := c.Split("doc_1", []string{"short text"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 10, chunks[0].End)
	assert.Equal(t, 1, chunks[0].Page)
}

func TestSplit_CoversFullText(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	chunks, err := c.Split("doc_1", []string{text})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	runes := []rune(text)
	covered := make([]bool, len(runes))
	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.End-ch.Start, 100)
		assert.Equal(t, string(runes[ch.Start:ch.End]), ch.Text)
		for i := ch.Start; i < ch.End; i++ {
			covered[i] = true
		}
	}
	for i, ok := range covered {
		require.True(t, ok, "rune %d not covered by any chunk", i)
	}
}

func TestSplit_ConsecutiveChunksOverlap(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	text := strings.Repeat("Lorem ipsum dolor sit amet consectetur. ", 50)
	chunks, err := c.Split("doc_1", []string{text})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		assert.Less(t, chunks[i].Start, chunks[i-1].End,
			"chunk %d must start inside chunk %d", i, i-1)
	}
}

func TestSplit_LargeOverlapIsPreserved(t *testing.T) {
	// Overlap bigger than the breakpoint window: a natural cut must not
	// shrink the configured overlap between consecutive chunks.
	c, err := New(20, 17)
	require.NoError(t, err)

	text := strings.Repeat("aa bb cc dd ee ff gg hh. ", 10)
	chunks, err := c.Split("doc_1", []string{text})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].End-17, chunks[i].Start,
			"chunk %d must overlap its predecessor by exactly 17 runes", i)
	}
}

func TestSplit_PrefersSentenceBoundary(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	// Sentence end falls inside the tail window of the first chunk.
	text := strings.Repeat("word ", 17) + "end. " + strings.Repeat("tail ", 30)
	chunks, err := c.Split("doc_1", []string{text})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	first := chunks[0].Text
	assert.True(t, strings.HasSuffix(strings.TrimRight(first, " "), "end."),
		"expected first chunk to cut at sentence boundary, got %q", first)
}

func TestSplit_DeterministicChunkIDs(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	text := strings.Repeat("alpha beta gamma delta. ", 30)
	first, err := c.Split("doc_x", []string{text})
	require.NoError(t, err)
	second, err := c.Split("doc_x", []string{text})
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestSplit_PageAttribution(t *testing.T) {
	c, err := New(50, 10)
	require.NoError(t, err)

	pages := []string{
		strings.Repeat("one ", 20),
		strings.Repeat("two ", 20),
		strings.Repeat("three ", 20),
	}
	chunks, err := c.Split("doc_1", pages)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 3, chunks[len(chunks)-1].Page)
	for i := 1; i < len(chunks); i++ {
		assert.GreaterOrEqual(t, chunks[i].Page, chunks[i-1].Page)
	}
}
