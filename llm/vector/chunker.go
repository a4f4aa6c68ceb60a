package vector

import (
	"fmt"
	"strings"

	"pdf-analyzer/llm"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// ChunkConfig configures how page text is split into chunks
type ChunkConfig struct {
	ChunkSize        int  // Maximum chunk size in characters
	ChunkOverlap     int  // Overlap between consecutive chunks
	SplitByParagraph bool // Whether to prefer paragraph boundaries
}

// normalize gives an unset size the 1000/200 defaults and fixes values that
// would stall the window loop
func (c ChunkConfig) normalize() ChunkConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
		if c.ChunkOverlap == 0 {
			c.ChunkOverlap = defaultChunkOverlap
		}
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 0
	}
	if c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = c.ChunkSize / 5
	}
	return c
}

// ChunkPages splits every page on its own; chunks never span two pages
func ChunkPages(pages []llm.Page, config ChunkConfig) []llm.Chunk {
	var chunks []llm.Chunk
	for _, page := range pages {
		for i, text := range ChunkText(page.Text, config) {
			chunks = append(chunks, llm.Chunk{
				ID:         fmt.Sprintf("%s#%d#%d", page.SourceFile, page.PageIndex, i),
				Text:       text,
				SourceFile: page.SourceFile,
				PageIndex:  page.PageIndex,
				ChunkIndex: i,
			})
		}
	}
	return chunks
}

// ChunkText splits text into windows of at most ChunkSize characters.
// The same text and config always produce the same chunks.
func ChunkText(text string, config ChunkConfig) []string {
	config = config.normalize()

	if strings.TrimSpace(text) == "" {
		return nil
	}

	if config.SplitByParagraph {
		return splitByParagraph(text, config)
	}
	return forceSplit(text, config.ChunkSize, config.ChunkOverlap)
}

// splitByParagraph packs whole paragraphs into chunks, carrying a tail of
// the previous chunk as overlap. Oversized results are force split.
func splitByParagraph(content string, config ChunkConfig) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		text := strings.TrimSpace(current.String())
		if text != "" {
			chunks = append(chunks, text)
		}
		current.Reset()
	}

	for _, paragraph := range strings.Split(content, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if current.Len() > 0 && runeLen(current.String())+runeLen(paragraph) > config.ChunkSize {
			prev := strings.TrimSpace(current.String())
			flush()
			if overlap := getTailOverlap(prev, config.ChunkOverlap); overlap != "" {
				current.WriteString(overlap)
				current.WriteString("\n\n")
			}
		}

		current.WriteString(paragraph)
		current.WriteString("\n\n")
	}
	flush()

	return handleLargeChunks(chunks, config)
}

// getTailOverlap gets the last size characters of text, trying to start at a word boundary
func getTailOverlap(text string, size int) string {
	runes := []rune(text)
	if size <= 0 || len(runes) == 0 {
		return ""
	}
	if size >= len(runes) {
		return text
	}

	tail := string(runes[len(runes)-size:])
	if firstSpace := strings.Index(tail, " "); firstSpace > 0 {
		return tail[firstSpace+1:]
	}
	return tail
}

// handleLargeChunks splits chunks that are still too large
func handleLargeChunks(chunks []string, config ChunkConfig) []string {
	var result []string
	for _, chunk := range chunks {
		if runeLen(chunk) <= config.ChunkSize {
			result = append(result, chunk)
			continue
		}
		result = append(result, forceSplit(chunk, config.ChunkSize, config.ChunkOverlap)...)
	}
	return result
}

// forceSplit splits text into fixed-size rune windows with overlap
func forceSplit(text string, size, overlap int) []string {
	var chunks []string

	runes := []rune(text)
	start := 0

	for start < len(runes) {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}

		start = end - overlap
	}

	return chunks
}

func runeLen(s string) int {
	return len([]rune(s))
}
