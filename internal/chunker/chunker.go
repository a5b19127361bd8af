package chunker

import (
	"fmt"

	"ragchat/internal/models"
	"ragchat/internal/ragerr"
)

const (
	DefaultChunkSize    = 500 // characters
	DefaultChunkOverlap = 50  // characters
)

// SplitText splits text into passages of at most size characters, with
// consecutive passages sharing exactly overlap characters. Offsets are rune
// offsets into text. Text shorter than size yields a single passage.
//
// Dropping the first overlap characters of every passage after the first and
// concatenating the rest reconstructs text exactly.
func SplitText(docID, text string, size, overlap int) ([]models.Passage, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ragerr.ErrInvalidConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be in [0, chunk size), got %d", ragerr.ErrInvalidConfig, overlap)
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []models.Passage{{
			DocumentID:  docID,
			Text:        text,
			Seq:         0,
			StartOffset: 0,
			EndOffset:   len(runes),
		}}, nil
	}

	stride := size - overlap
	var passages []models.Passage
	for start := 0; start < len(runes); start += stride {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		passages = append(passages, models.Passage{
			DocumentID:  docID,
			Text:        string(runes[start:end]),
			Seq:         len(passages),
			StartOffset: start,
			EndOffset:   end,
		})
		if end == len(runes) {
			break
		}
	}
	return passages, nil
}

// SplitDocument chunks every page of doc, assigning page numbers (1-based)
// and a document-wide passage sequence. Offsets are relative to the page.
func SplitDocument(doc models.Document, size, overlap int) ([]models.Passage, error) {
	var all []models.Passage
	for i, page := range doc.Pages {
		if page == "" {
			continue
		}
		passages, err := SplitText(doc.ID, page, size, overlap)
		if err != nil {
			return nil, err
		}
		for _, p := range passages {
			p.Page = i + 1
			p.Seq = len(all)
			p.ID = fmt.Sprintf("%s-p%d-c%d", doc.ID, p.Page, p.Seq)
			all = append(all, p)
		}
	}
	return all, nil
}
