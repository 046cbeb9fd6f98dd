package internal

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	SplitterRecursive = "recursive"
	SplitterWindow    = "window"

	UnitChars  = "chars"
	UnitTokens = "tokens"

	TokenEncoding = "cl100k_base"
)

type Splitter interface {
	Split(text string) ([]string, error)
}

// NewSplitter builds the splitter named by cfg.
func NewSplitter(cfg ChunkingConfig) (Splitter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var codec TokenCodec = runeCodec{}
	if cfg.Unit == UnitTokens {
		enc, err := tiktoken.GetEncoding(TokenEncoding)
		if err != nil {
			return nil, fmt.Errorf("load %s encoding: %w", TokenEncoding, err)
		}
		codec = tiktokenCodec{enc: enc}
	}

	switch cfg.Splitter {
	case SplitterWindow:
		return &WindowSplitter{Size: cfg.Size, Overlap: cfg.Overlap, Codec: codec}, nil
	default:
		return NewRecursiveSplitter(cfg.Size, cfg.Overlap, codec.Len), nil
	}
}

// RecursiveSplitter splits on paragraph, line, then word boundaries.
type RecursiveSplitter struct {
	splitter textsplitter.RecursiveCharacter
}

func NewRecursiveSplitter(size, overlap int, lenFunc func(string) int) *RecursiveSplitter {
	opts := []textsplitter.Option{
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
	}
	if lenFunc != nil {
		opts = append(opts, textsplitter.WithLenFunc(lenFunc))
	}
	return &RecursiveSplitter{splitter: textsplitter.NewRecursiveCharacter(opts...)}
}

func (s *RecursiveSplitter) Split(text string) ([]string, error) {
	parts, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("recursive split: %w", err)
	}
	return parts, nil
}

// TokenCodec turns text into length units and back.
type TokenCodec interface {
	Len(text string) int
	Encode(text string) []int
	Decode(units []int) string
}

type runeCodec struct{}

func (runeCodec) Len(text string) int { return utf8.RuneCountInString(text) }

func (runeCodec) Encode(text string) []int {
	out := make([]int, 0, len(text))
	for _, r := range text {
		out = append(out, int(r))
	}
	return out
}

func (runeCodec) Decode(units []int) string {
	rs := make([]rune, len(units))
	for i, u := range units {
		rs[i] = rune(u)
	}
	return string(rs)
}

type tiktokenCodec struct {
	enc *tiktoken.Tiktoken
}

func (c tiktokenCodec) Len(text string) int       { return len(c.Encode(text)) }
func (c tiktokenCodec) Encode(text string) []int  { return c.enc.Encode(text, nil, nil) }
func (c tiktokenCodec) Decode(units []int) string { return c.enc.Decode(units) }

// WindowSplitter cuts text into fixed windows of Size units where each window
// starts Size-Overlap units after the previous one. The last window ends at
// the end of the text.
type WindowSplitter struct {
	Size    int
	Overlap int
	Codec   TokenCodec
}

func (s *WindowSplitter) Split(text string) ([]string, error) {
	if s.Size <= 0 || s.Overlap < 0 || s.Overlap >= s.Size {
		return nil, fmt.Errorf("%w: size %d overlap %d", ErrInvalidChunking, s.Size, s.Overlap)
	}
	codec := s.Codec
	if codec == nil {
		codec = runeCodec{}
	}

	units := codec.Encode(text)
	if len(units) == 0 {
		return nil, nil
	}

	step := s.Size - s.Overlap
	var out []string
	for start := 0; ; start += step {
		end := min(start+s.Size, len(units))
		out = append(out, codec.Decode(units[start:end]))
		if end == len(units) {
			break
		}
	}
	return out, nil
}

// ChunkDocuments splits every document, keeping document and chunk order.
func ChunkDocuments(docs []Document, s Splitter) ([]Chunk, error) {
	var chunks []Chunk
	for _, doc := range docs {
		parts, err := s.Split(doc.Text)
		if err != nil {
			return nil, fmt.Errorf("split %s page %d: %w", doc.Source, doc.Page, err)
		}
		for i, part := range parts {
			chunks = append(chunks, NewChunk(doc, i, part))
		}
	}
	return chunks, nil
}
