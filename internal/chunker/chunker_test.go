package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/models"
	"ragchat/internal/ragerr"
)

func reconstruct(passages []models.Passage, overlap int) string {
	var sb strings.Builder
	for i, p := range passages {
		runes := []rune(p.Text)
		if i > 0 {
			runes = runes[overlap:]
		}
		sb.WriteString(string(runes))
	}
	return sb.String()
}

func TestSplitTextReconstructsInput(t *testing.T) {
	texts := []string{
		strings.Repeat("the quick brown fox jumps over the lazy dog. ", 40),
		"short text",
		strings.Repeat("日本語のテキストもちゃんと分割できるはずです。", 30),
		strings.Repeat("x", 1234),
	}
	for _, text := range texts {
		for _, tc := range []struct{ size, overlap int }{
			{100, 0}, {100, 20}, {500, 50}, {7, 3},
		} {
			passages, err := SplitText("doc", text, tc.size, tc.overlap)
			require.NoError(t, err)
			require.NotEmpty(t, passages)
			assert.Equal(t, text, reconstruct(passages, tc.overlap),
				"size=%d overlap=%d", tc.size, tc.overlap)
		}
	}
}

func TestSplitTextPassageLengthBound(t *testing.T) {
	text := strings.Repeat("abcdefghij", 100)
	passages, err := SplitText("doc", text, 64, 16)
	require.NoError(t, err)
	for _, p := range passages {
		assert.LessOrEqual(t, len([]rune(p.Text)), 64)
	}
}

func TestSplitTextShortInputYieldsOnePassage(t *testing.T) {
	passages, err := SplitText("doc", "tiny", 500, 50)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "tiny", passages[0].Text)
	assert.Equal(t, 0, passages[0].StartOffset)
	assert.Equal(t, 4, passages[0].EndOffset)
}

func TestSplitTextConsecutiveOverlap(t *testing.T) {
	text := strings.Repeat("0123456789", 20)
	passages, err := SplitText("doc", text, 50, 10)
	require.NoError(t, err)
	require.Greater(t, len(passages), 1)
	for i := 1; i < len(passages); i++ {
		prev := []rune(passages[i-1].Text)
		cur := []rune(passages[i].Text)
		assert.Equal(t, string(prev[len(prev)-10:]), string(cur[:10]))
	}
}

func TestSplitTextInvalidConfig(t *testing.T) {
	for _, tc := range []struct{ size, overlap int }{
		{0, 0}, {-1, 0}, {10, 10}, {10, 15}, {10, -1},
	} {
		_, err := SplitText("doc", "some text", tc.size, tc.overlap)
		assert.ErrorIs(t, err, ragerr.ErrInvalidConfig, "size=%d overlap=%d", tc.size, tc.overlap)
	}
}

func TestSplitDocumentAssignsPagesAndSeq(t *testing.T) {
	doc := models.Document{
		ID:    "d1",
		Pages: []string{"page one text", "", strings.Repeat("page three ", 60)},
	}
	passages, err := SplitDocument(doc, 100, 10)
	require.NoError(t, err)
	require.NotEmpty(t, passages)

	assert.Equal(t, 1, passages[0].Page)
	for i, p := range passages {
		assert.Equal(t, i, p.Seq)
		assert.Equal(t, "d1", p.DocumentID)
		assert.NotEmpty(t, p.ID)
		assert.NotEqual(t, 2, p.Page, "empty page must produce no passages")
	}
	last := passages[len(passages)-1]
	assert.Equal(t, 3, last.Page)
}
