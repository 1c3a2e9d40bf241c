package pdfdoc

import "fmt"

// Chunk is one planned page window.
type Chunk struct {
	ChunkNumber int `json:"chunk_number"`
	StartPage   int `json:"start_page"`
	EndPage     int `json:"end_page"`
	PageCount   int `json:"page_count"`

	// EstimatedChars sums the extracted text length of the chunk's pages.
	// Markers and separators added at extraction time are not counted.
	EstimatedChars int `json:"estimated_chars"`
}

// ChunkPlan is a complete reading plan covering every page of a document.
type ChunkPlan struct {
	TotalPages       int     `json:"total_pages"`
	TotalChunks      int     `json:"total_chunks"`
	MaxCharsPerChunk int     `json:"max_chars_per_chunk"`
	OverlapPages     int     `json:"overlap_pages"`
	Chunks           []Chunk `json:"chunks"`
}

// PlanChunks splits a document into sequential page windows sized by
// character budget. Each chunk greedily accumulates whole pages while the
// running text length stays within maxCharsPerChunk, always taking at least
// one page so a single oversized page still forms its own chunk.
// Consecutive chunks share overlapPages trailing pages for continuity; the
// next chunk's start is clamped to at least one page past the previous
// chunk's start, so planning always terminates and every page is covered.
func PlanChunks(doc Document, maxCharsPerChunk, overlapPages int) (*ChunkPlan, error) {
	if maxCharsPerChunk < 1 {
		return nil, fmt.Errorf("%w: max_chars_per_chunk must be >= 1, got %d", ErrInvalidParameter, maxCharsPerChunk)
	}
	if overlapPages < 0 {
		return nil, fmt.Errorf("%w: overlap_pages must be >= 0, got %d", ErrInvalidParameter, overlapPages)
	}

	plan := &ChunkPlan{
		TotalPages:       doc.PageCount(),
		MaxCharsPerChunk: maxCharsPerChunk,
		OverlapPages:     overlapPages,
		Chunks:           []Chunk{},
	}

	pageLen := func(pageNum int) (int, error) {
		text, err := doc.PageText(pageNum)
		if err != nil {
			return 0, fmt.Errorf("measuring page %d: %w", pageNum, err)
		}
		return len(text), nil
	}

	for current := 1; current <= plan.TotalPages; {
		chars, err := pageLen(current)
		if err != nil {
			return nil, err
		}

		end := current
		for end < plan.TotalPages {
			next, err := pageLen(end + 1)
			if err != nil {
				return nil, err
			}
			if chars+next > maxCharsPerChunk {
				break
			}
			chars += next
			end++
		}

		plan.Chunks = append(plan.Chunks, Chunk{
			ChunkNumber:    len(plan.Chunks) + 1,
			StartPage:      current,
			EndPage:        end,
			PageCount:      end - current + 1,
			EstimatedChars: chars,
		})

		if end == plan.TotalPages {
			break
		}

		// Overlap rewinds the next start, but never onto or before the
		// current start: forward progress of at least one page per chunk.
		next := end - overlapPages + 1
		if next <= current {
			next = current + 1
		}
		current = next
	}

	plan.TotalChunks = len(plan.Chunks)
	return plan, nil
}
