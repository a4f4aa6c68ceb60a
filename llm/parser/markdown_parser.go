package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterFence = "---"

// MarkdownParser handles markdown files. YAML front matter is moved into
// the document metadata and the body is kept as written.
type MarkdownParser struct{}

// NewMarkdownParser creates a new markdown parser
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

// Parse reads and parses markdown from the reader
func (p *MarkdownParser) Parse(ctx context.Context, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown: %w", err)
	}

	return p.parse(string(data), "")
}

// ParseFile reads and parses a markdown file
func (p *MarkdownParser) ParseFile(ctx context.Context, filePath string) (*Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return p.parse(string(data), filePath)
}

func (p *MarkdownParser) parse(content, filePath string) (*Document, error) {
	front, body := splitFrontMatter(content)

	metadata := make(map[string]interface{})
	if front != "" {
		if err := yaml.Unmarshal([]byte(front), &metadata); err != nil {
			return nil, fmt.Errorf("failed to parse front matter: %w", err)
		}
		if metadata == nil {
			metadata = make(map[string]interface{})
		}
	}

	body = strings.TrimSpace(body)
	title := ExtractTitle(body, filePath)
	if t, ok := metadata["title"].(string); ok && t != "" {
		title = t
	}

	metadata["file_size"] = len(content)
	metadata["has_frontmatter"] = front != ""
	if filePath != "" {
		metadata["file_name"] = filepath.Base(filePath)
	}

	return &Document{
		Content:  body,
		Pages:    []string{body},
		Title:    title,
		Metadata: metadata,
	}, nil
}

// splitFrontMatter separates a leading "---" delimited YAML block from the body
func splitFrontMatter(content string) (front, body string) {
	lines := strings.Split(content, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontMatterFence {
		return "", content
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterFence {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return "", content
}

// FileType returns the file type this parser handles
func (p *MarkdownParser) FileType() FileType {
	return FileTypeMD
}
