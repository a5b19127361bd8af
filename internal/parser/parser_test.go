package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/ragerr"
)

func TestExtractText(t *testing.T) {
	doc, err := Extract("notes.txt", bytes.NewReader([]byte("hello world\nsecond line")), 23)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, "hello world\nsecond line", doc.Pages[0])
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "notes.txt", doc.Name)
}

func TestExtractMarkdownStripsStructure(t *testing.T) {
	src := []byte("# Title\n\nSome paragraph text.\n\n```go\nfunc main() {}\n```\n")
	doc, err := Extract("readme.md", bytes.NewReader(src), int64(len(src)))
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	assert.Contains(t, doc.Pages[0], "Title")
	assert.Contains(t, doc.Pages[0], "Some paragraph text.")
	assert.Contains(t, doc.Pages[0], "func main() {}")
	assert.NotContains(t, doc.Pages[0], "```")
	assert.NotContains(t, doc.Pages[0], "# Title")
}

func TestExtractUnsupportedFormat(t *testing.T) {
	_, err := Extract("image.png", bytes.NewReader([]byte{1, 2, 3}), 3)
	assert.ErrorIs(t, err, ragerr.ErrInvalidConfig)
}

func TestExtractEmptyDocument(t *testing.T) {
	_, err := Extract("empty.txt", bytes.NewReader([]byte("   \n\t ")), 6)
	assert.ErrorIs(t, err, ragerr.ErrInvalidConfig)
}

func TestExtractCorruptPDF(t *testing.T) {
	_, err := Extract("broken.pdf", bytes.NewReader([]byte("not a pdf at all")), 16)
	assert.ErrorIs(t, err, ragerr.ErrInvalidConfig)
}

func TestExtractFileMissing(t *testing.T) {
	_, err := ExtractFile("/does/not/exist.txt")
	assert.ErrorIs(t, err, ragerr.ErrInvalidConfig)
}
