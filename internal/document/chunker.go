package document

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer converts text to and from the token ids of the embedding
// provider's vocabulary. Chunk sizing is driven by token count, not character
// count, because tokens are what the model context limits are measured in.
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// CL100KTokenizer wraps the cl100k_base encoding used by OpenAI embedding models.
type CL100KTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewCL100KTokenizer loads the cl100k_base vocabulary.
func NewCL100KTokenizer() (*CL100KTokenizer, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("loading cl100k_base encoding: %w", err)
	}
	return &CL100KTokenizer{enc: enc}, nil
}

func (t *CL100KTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *CL100KTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// Chunker splits text into token windows of chunkSize tokens with a fixed
// overlap between consecutive windows.
type Chunker struct {
	tok       Tokenizer
	chunkSize int
	overlap   int
}

// NewChunker creates a Chunker. overlap must be strictly smaller than
// chunkSize; otherwise the sliding window would never advance.
func NewChunker(tok Tokenizer, chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must be non-negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap (%d) must be smaller than chunk size (%d)", overlap, chunkSize)
	}
	return &Chunker{tok: tok, chunkSize: chunkSize, overlap: overlap}, nil
}

// Split divides text into chunks of at most chunkSize tokens. Text that fits
// in a single window is returned unchanged as one chunk.
func (c *Chunker) Split(text string) []string {
	tokens := c.tok.Encode(text)

	if len(tokens) <= c.chunkSize {
		return []string{text}
	}

	var chunks []string
	step := c.chunkSize - c.overlap
	for start := 0; start < len(tokens); start += step {
		end := start + c.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, c.tok.Decode(tokens[start:end]))
	}
	return chunks
}

// ChunkPages chunks each page independently (no chunk spans a page boundary)
// while the chunk index continues monotonically across the whole document.
func (c *Chunker) ChunkPages(pages []Page) []ChunkText {
	var chunks []ChunkText
	index := 0
	for _, page := range pages {
		for _, text := range c.Split(page.Text) {
			chunks = append(chunks, ChunkText{
				Index: index,
				Page:  page.Number,
				Text:  text,
			})
			index++
		}
	}
	return chunks
}
