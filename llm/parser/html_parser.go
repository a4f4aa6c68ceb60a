package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

var blankLines = regexp.MustCompile(`\n\s*\n\s*\n+`)

// HTMLParser handles HTML files. The body is converted to markdown so the
// model still sees headings and lists.
type HTMLParser struct {
	converter *md.Converter
}

// NewHTMLParser creates a new HTML parser
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{
		converter: md.NewConverter("", true, nil),
	}
}

// Parse reads and parses HTML from the reader
func (p *HTMLParser) Parse(ctx context.Context, r io.Reader) (*Document, error) {
	return p.parse(r, "")
}

// ParseFile reads and parses an HTML file
func (p *HTMLParser) ParseFile(ctx context.Context, filePath string) (*Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := p.parse(bytes.NewReader(data), filePath)
	if err != nil {
		return nil, err
	}
	doc.Metadata["file_size"] = len(data)
	return doc, nil
}

func (p *HTMLParser) parse(r io.Reader, filePath string) (*Document, error) {
	utf8Reader, err := charset.NewReader(r, "")
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	content := p.bodyMarkdown(doc)
	if title == "" {
		title = ExtractTitle(content, filePath)
	}

	return &Document{
		Content: content,
		Pages:   []string{content},
		Title:   title,
		Metadata: map[string]interface{}{
			"link_count": doc.Find("a").Length(),
		},
	}, nil
}

// bodyMarkdown converts the body to markdown, falling back to its plain text
func (p *HTMLParser) bodyMarkdown(doc *goquery.Document) string {
	body := doc.Find("body")
	if html, err := body.Html(); err == nil {
		if markdown, err := p.converter.ConvertString(html); err == nil {
			return cleanWhitespace(markdown)
		}
	}
	return cleanWhitespace(body.Text())
}

// cleanWhitespace collapses runs of blank lines and trims the result
func cleanWhitespace(content string) string {
	content = blankLines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// FileType returns the file type this parser handles
func (p *HTMLParser) FileType() FileType {
	return FileTypeHTML
}
