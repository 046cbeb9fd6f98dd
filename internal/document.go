package internal

import (
	"fmt"
	"path/filepath"
)

// Document is the text of one PDF page.
type Document struct {
	Source string
	Page   int
	Text   string
}

type Chunk struct {
	ID     string
	Source string
	Page   int
	Index  int // position within its document
	Text   string
}

func NewChunk(doc Document, index int, text string) Chunk {
	return Chunk{
		ID:     fmt.Sprintf("%s#p%d#c%d", filepath.Base(doc.Source), doc.Page, index),
		Source: doc.Source,
		Page:   doc.Page,
		Index:  index,
		Text:   text,
	}
}

type ScoredChunk struct {
	Chunk Chunk
	Score float32 // higher is more similar
}
