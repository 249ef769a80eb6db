package ingest

import (
	"github.com/tiktoken-go/tokenizer"
)

// TokenChunker splits text into overlapping token windows (cl100k_base).
// Both enrichment workers use it: the embedder for chunk granularity, the
// summarizer to stay under the oracle's input limit.
type TokenChunker struct {
	codec tokenizer.Codec
}

func NewTokenChunker() (*TokenChunker, error) {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, err
	}
	return &TokenChunker{codec: codec}, nil
}

// Split windows the text into chunks of at most maxTokens, consecutive
// chunks sharing overlap tokens.
func (c *TokenChunker) Split(text string, maxTokens, overlap int) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return nil, err
	}
	if len(ids) <= maxTokens {
		return []string{text}, nil
	}

	step := maxTokens - overlap
	if step <= 0 {
		step = maxTokens
	}

	var chunks []string
	for start := 0; start < len(ids); start += step {
		end := start + maxTokens
		if end > len(ids) {
			end = len(ids)
		}
		chunk, err := c.codec.Decode(ids[start:end])
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
		if end == len(ids) {
			break
		}
	}
	return chunks, nil
}

func (c *TokenChunker) CountTokens(text string) (int, error) {
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
