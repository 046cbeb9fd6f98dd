package v1

import (
	"time"

	"github.com/4thel00z/bookrag/internal"
)

type (
	// Embedder turns texts into vectors of one fixed dimension.
	Embedder = internal.Embedder
	// Provider completes a system plus user prompt.
	Provider = internal.Provider
	Prompt   = internal.Prompt
)

// Passage is a retrieved chunk of a PDF page.
type Passage struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Page   int     `json:"page"`
	Score  float32 `json:"score"`
	Text   string  `json:"text"`
}

// Answer is the model's reply together with the passages it was given.
type Answer struct {
	Question string    `json:"question"`
	Text     string    `json:"answer"`
	Passages []Passage `json:"context"`
}

// IndexStats describes the corpus built from the document directory.
type IndexStats struct {
	Pages     int           `json:"pages"`
	Chunks    int           `json:"chunks"`
	Dimension int           `json:"dimension"`
	Elapsed   time.Duration `json:"elapsed"`
}

func toPassages(results []internal.SearchResultOutput) []Passage {
	out := make([]Passage, len(results))
	for i, r := range results {
		out[i] = Passage{ID: r.ID, Source: r.Source, Page: r.Page, Score: r.Score, Text: r.Text}
	}
	return out
}
