package vector

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"pdf-analyzer/llm"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Default index configuration
	defaultEFConstruction = 200
	defaultM              = 16

	// Field names in Redis hash
	fieldText       = "text"
	fieldVector     = "vector"
	fieldSource     = "source_file"
	fieldPageIndex  = "page_index"
	fieldChunkIndex = "chunk_index"
	fieldScore      = "score"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	PoolSize       int
	IndexPrefix    string
	EFConstruction int
	M              int
}

// DefaultRedisConfig returns default Redis configuration
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:           "localhost:6379",
		PoolSize:       10,
		IndexPrefix:    "pdf-analyzer",
		EFConstruction: defaultEFConstruction,
		M:              defaultM,
	}
}

// RedisIndex implements Index using Redis with RediSearch vector search.
// Every instance uses its own index name and key prefix, and Close drops
// both, so nothing outlives the run.
type RedisIndex struct {
	client         *redis.Client
	indexName      string
	keyPrefix      string
	dim            int
	indexCreated   bool
	efConstruction int
	m              int
}

var _ Index = (*RedisIndex)(nil)

// NewRedisIndex connects to Redis and prepares a run-scoped index
func NewRedisIndex(ctx context.Context, cfg RedisConfig) (*RedisIndex, error) {
	if cfg.IndexPrefix == "" {
		cfg.IndexPrefix = DefaultRedisConfig().IndexPrefix
	}
	if cfg.EFConstruction <= 0 {
		cfg.EFConstruction = defaultEFConstruction
	}
	if cfg.M <= 0 {
		cfg.M = defaultM
	}

	// RESP2 keeps FT.SEARCH replies as flat arrays
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
		Protocol: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	runID := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return &RedisIndex{
		client:         client,
		indexName:      fmt.Sprintf("%s-%s", cfg.IndexPrefix, runID),
		keyPrefix:      fmt.Sprintf("%s:%s:", cfg.IndexPrefix, runID),
		efConstruction: cfg.EFConstruction,
		m:              cfg.M,
	}, nil
}

// ensureIndex creates the HNSW vector index once the dimension is known
func (s *RedisIndex) ensureIndex(ctx context.Context, dim int) error {
	if s.indexCreated {
		if dim != s.dim {
			return fmt.Errorf("vector dimension %d does not match index dimension %d", dim, s.dim)
		}
		return nil
	}

	// FT.CREATE <name> ON HASH PREFIX 1 <prefix>
	//   SCHEMA vector VECTOR HNSW 10 TYPE FLOAT32 DIM <dim> DISTANCE_METRIC COSINE EF_CONSTRUCTION 200 M 16
	//          text TEXT source_file TAG page_index NUMERIC chunk_index NUMERIC
	_, err := s.client.Do(ctx, "FT.CREATE", s.indexName,
		"ON", "HASH",
		"PREFIX", "1", s.keyPrefix,
		"SCHEMA",
		fieldVector, "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(dim),
		"DISTANCE_METRIC", "COSINE",
		"EF_CONSTRUCTION", strconv.Itoa(s.efConstruction),
		"M", strconv.Itoa(s.m),
		fieldText, "TEXT",
		fieldSource, "TAG",
		fieldPageIndex, "NUMERIC",
		fieldChunkIndex, "NUMERIC",
	).Result()
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	s.dim = dim
	s.indexCreated = true
	return nil
}

// Add inserts chunks with their vectors in a single pipeline
func (s *RedisIndex) Add(ctx context.Context, chunks []llm.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk and vector counts differ: %d != %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	if err := s.ensureIndex(ctx, len(vectors[0])); err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	for i, chunk := range chunks {
		if len(vectors[i]) != s.dim {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(vectors[i]), s.dim)
		}
		pipe.HSet(ctx, s.keyPrefix+chunk.ID,
			fieldText, chunk.Text,
			fieldVector, encodeVector(vectors[i]),
			fieldSource, chunk.SourceFile,
			fieldPageIndex, chunk.PageIndex,
			fieldChunkIndex, chunk.ChunkIndex,
		)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	return nil
}

// Search performs a KNN query against the run index
func (s *RedisIndex) Search(ctx context.Context, query []float32, topK int) ([]llm.SearchResult, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if !s.indexCreated {
		return []llm.SearchResult{}, nil
	}
	topK = clampTopK(topK)

	// FT.SEARCH <name> "*=>[KNN k @vector $query_vector AS score]"
	//   PARAMS 2 query_vector <bytes> SORTBY score LIMIT 0 k DIALECT 2
	queryStr := fmt.Sprintf("*=>[KNN %d @%s $query_vector AS %s]", topK, fieldVector, fieldScore)
	result, err := s.client.Do(ctx, "FT.SEARCH", s.indexName, queryStr,
		"PARAMS", "2", "query_vector", encodeVector(query),
		"RETURN", "5", fieldText, fieldSource, fieldPageIndex, fieldChunkIndex, fieldScore,
		"SORTBY", fieldScore,
		"LIMIT", "0", strconv.Itoa(topK),
		"DIALECT", "2",
	).Result()
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	return parseSearchResults(result, s.keyPrefix)
}

// Count returns the number of documents in the run index
func (s *RedisIndex) Count(ctx context.Context) (int64, error) {
	if !s.indexCreated {
		return 0, nil
	}

	result, err := s.client.Do(ctx, "FT.SEARCH", s.indexName, "*", "LIMIT", "0", "0").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	values, ok := result.([]interface{})
	if !ok || len(values) == 0 {
		return 0, fmt.Errorf("unexpected result format")
	}
	count, ok := values[0].(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected count type %T", values[0])
	}
	return count, nil
}

// Close drops the index together with its hashes and closes the connection
func (s *RedisIndex) Close() error {
	if s.client == nil {
		return nil
	}

	var dropErr error
	if s.indexCreated {
		dropErr = s.client.Do(context.Background(), "FT.DROPINDEX", s.indexName, "DD").Err()
		s.indexCreated = false
	}

	if err := s.client.Close(); err != nil {
		return err
	}
	s.client = nil
	if dropErr != nil {
		return fmt.Errorf("failed to drop index: %w", dropErr)
	}
	return nil
}

// parseSearchResults parses an FT.SEARCH reply: [count, key, [field, value, ...], ...]
func parseSearchResults(result interface{}, keyPrefix string) ([]llm.SearchResult, error) {
	values, ok := result.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected result format")
	}

	results := []llm.SearchResult{}
	for i := 1; i+1 < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			continue
		}
		fields, ok := values[i+1].([]interface{})
		if !ok {
			continue
		}

		res := llm.SearchResult{Chunk: llm.Chunk{ID: strings.TrimPrefix(key, keyPrefix)}}
		for j := 0; j+1 < len(fields); j += 2 {
			name, _ := fields[j].(string)
			value, _ := fields[j+1].(string)

			switch name {
			case fieldText:
				res.Chunk.Text = value
			case fieldSource:
				res.Chunk.SourceFile = value
			case fieldPageIndex:
				res.Chunk.PageIndex, _ = strconv.Atoi(value)
			case fieldChunkIndex:
				res.Chunk.ChunkIndex, _ = strconv.Atoi(value)
			case fieldScore:
				// COSINE distance, 0 is identical
				if d, err := strconv.ParseFloat(value, 32); err == nil {
					res.Score = 1 - float32(d)
				}
			}
		}
		results = append(results, res)
	}

	return results, nil
}

// encodeVector encodes a vector as little-endian FLOAT32 bytes
func encodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector decodes little-endian FLOAT32 bytes
func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid vector length %d", len(data))
	}
	vector := make([]float32, len(data)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vector, nil
}
