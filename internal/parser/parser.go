package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"ragchat/internal/models"
	"ragchat/internal/ragerr"
)

// Extract pulls the plain text out of an uploaded file. The format is picked
// by file extension. PDF pages map to Document pages; spreadsheet sheets and
// DOCX/TXT/MD bodies map to a single page each.
func Extract(name string, r io.ReaderAt, size int64) (models.Document, error) {
	doc := models.Document{
		ID:   uuid.NewString(),
		Name: name,
	}

	var (
		pages []string
		err   error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".pdf":
		pages, err = extractPDF(r, size)
	case ".docx":
		pages, err = extractDOCX(r, size)
	case ".xlsx":
		pages, err = extractXLSX(r, size)
	case ".ods":
		pages, err = extractODS(r, size)
	case ".txt":
		pages, err = extractText(r, size)
	case ".md", ".markdown":
		pages, err = extractMarkdown(r, size)
	default:
		return models.Document{}, fmt.Errorf("%w: unsupported file format %q", ragerr.ErrInvalidConfig, ext)
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("%w: parse %s: %v", ragerr.ErrInvalidConfig, name, err)
	}

	doc.Pages = pages
	if strings.TrimSpace(doc.Text()) == "" {
		return models.Document{}, fmt.Errorf("%w: %s contains no extractable text", ragerr.ErrInvalidConfig, name)
	}
	return doc, nil
}

// ExtractFile is the path-based variant used by the CLI.
func ExtractFile(path string) (models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("%w: %v", ragerr.ErrInvalidConfig, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return models.Document{}, fmt.Errorf("%w: %v", ragerr.ErrInvalidConfig, err)
	}
	return Extract(filepath.Base(path), f, stat.Size())
}

func extractPDF(r io.ReaderAt, size int64) ([]string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractDOCX(r io.ReaderAt, size int64) ([]string, error) {
	d, err := docx.ReadDocxFromMemory(r, size)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	content := d.Editable().GetContent()
	var sb strings.Builder
	for _, para := range strings.Split(content, "\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		sb.WriteString(para)
		sb.WriteString("\n")
	}
	return []string{sb.String()}, nil
}

func extractXLSX(r io.ReaderAt, size int64) ([]string, error) {
	f, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, err
	}

	var pages []string
	for _, sheet := range f.Sheets {
		var text strings.Builder
		fmt.Fprintf(&text, "Sheet: %s\n", sheet.Name)
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		pages = append(pages, text.String())
	}
	return pages, nil
}

func extractODS(r io.ReaderAt, size int64) ([]string, error) {
	f, err := excelize.OpenReader(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []string
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		fmt.Fprintf(&text, "Sheet: %s\n", sheetName)
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		pages = append(pages, text.String())
	}
	return pages, nil
}

func extractText(r io.ReaderAt, size int64) ([]string, error) {
	data, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(data, bytes.ToValidUTF8(data, []byte("�"))) {
		return nil, fmt.Errorf("file is not valid UTF-8 text")
	}
	return []string{string(data)}, nil
}
