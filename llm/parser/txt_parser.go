package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// pageBreak separates pages in plain text exports
const pageBreak = "\f"

// TxtParser handles plain text files
type TxtParser struct{}

// NewTxtParser creates a new plain text parser
func NewTxtParser() *TxtParser {
	return &TxtParser{}
}

// Parse reads and parses plain text from the reader
func (p *TxtParser) Parse(ctx context.Context, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read text: %w", err)
	}

	return p.parse(string(data), ""), nil
}

// ParseFile reads and parses a plain text file
func (p *TxtParser) ParseFile(ctx context.Context, filePath string) (*Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc := p.parse(string(data), filePath)
	doc.Metadata["file_size"] = len(data)
	return doc, nil
}

func (p *TxtParser) parse(content, filePath string) *Document {
	pages := strings.Split(content, pageBreak)
	return &Document{
		Content: strings.Join(pages, "\n\n"),
		Pages:   pages,
		Title:   ExtractTitle(content, filePath),
		Metadata: map[string]interface{}{
			"line_count": len(splitLines(content)),
			"page_count": len(pages),
		},
	}
}

// FileType returns the file type this parser handles
func (p *TxtParser) FileType() FileType {
	return FileTypeTXT
}

// splitLines splits content into lines
func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
