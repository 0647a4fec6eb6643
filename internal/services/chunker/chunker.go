// -----------------------------------------------------------------------
// Chunker Service - Split document text into overlapping chunks
// -----------------------------------------------------------------------

package chunker

import (
	"fmt"

	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/models"
)

// Chunker splits document text into fixed-size overlapping chunks.
// Sizes are measured in runes so multibyte text never splits mid-character.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker. Overlap must be non-negative and strictly less
// than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", models.ErrConfig, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must be non-negative, got %d", models.ErrConfig, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap (%d) must be less than chunk size (%d)", models.ErrConfig, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split concatenates the pages of a document and cuts the text into
// chunks of at most the configured size, consecutive chunks sharing the
// configured overlap. Cuts prefer a sentence or paragraph boundary inside
// the last fifth of the chunk; otherwise the cut is hard. The union of
// chunk spans covers the full text.
func (c *Chunker) Split(documentID string, pages []string) ([]models.Chunk, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", models.ErrConfig)
	}

	// Concatenate pages, remembering where each page starts so a chunk
	// can report the page its span begins on.
	var runes []rune
	pageStarts := make([]int, len(pages))
	for i, page := range pages {
		pageStarts[i] = len(runes)
		runes = append(runes, []rune(page)...)
		if i < len(pages)-1 {
			runes = append(runes, '\n')
		}
	}

	if len(runes) == 0 {
		return nil, nil
	}

	var chunks []models.Chunk
	start := 0
	ordinal := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = c.breakpoint(runes, start, end)
		}

		chunks = append(chunks, models.Chunk{
			ID:         common.NewChunkID(documentID, ordinal),
			DocumentID: documentID,
			Ordinal:    ordinal,
			Start:      start,
			End:        end,
			Page:       pageForOffset(pageStarts, start),
			Text:       string(runes[start:end]),
		})
		ordinal++

		if end == len(runes) {
			break
		}

		next := end - c.overlap
		if next <= start {
			// Unreachable while breakpoint floors at start+overlap; kept so
			// the loop can never stall.
			next = start + 1
		}
		start = next
	}

	return chunks, nil
}

// breakpoint searches the tail fifth of the chunk for a natural cut:
// paragraph break first, then sentence end, then any whitespace.
// Returns the hard limit when nothing suitable is found. The search never
// descends below start+overlap, so a natural cut cannot shrink the
// configured overlap between consecutive chunks.
func (c *Chunker) breakpoint(runes []rune, start, limit int) int {
	window := c.size / 5
	floor := limit - window
	if floor < start+c.overlap {
		floor = start + c.overlap
	}

	for i := limit; i > floor; i-- {
		if runes[i-1] == '\n' && i-2 >= start && runes[i-2] == '\n' {
			return i
		}
	}
	for i := limit; i > floor; i-- {
		prev := runes[i-1]
		if prev == '.' || prev == '!' || prev == '?' {
			if i == len(runes) || runes[i] == ' ' || runes[i] == '\n' {
				return i
			}
		}
	}
	for i := limit; i > floor; i-- {
		if runes[i-1] == ' ' || runes[i-1] == '\n' || runes[i-1] == '\t' {
			return i
		}
	}
	return limit
}

// pageForOffset returns the 1-based page containing the rune offset.
func pageForOffset(pageStarts []int, offset int) int {
	page := 1
	for i, s := range pageStarts {
		if offset >= s {
			page = i + 1
		} else {
			break
		}
	}
	return page
}

// Size returns the configured chunk size in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }
