package llm

// Page is the text of one page of a loaded document
type Page struct {
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
	FilePath   string `json:"file_path"`
	PageIndex  int    `json:"page_index"`
}

// Chunk is a fixed-size window over a single page, used for embedding
type Chunk struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
	PageIndex  int    `json:"page_index"`
	ChunkIndex int    `json:"chunk_index"`
}

// SearchResult represents a search result with relevance score
type SearchResult struct {
	Chunk Chunk
	Score float32
}
