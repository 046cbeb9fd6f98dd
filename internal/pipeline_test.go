package internal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/4thel00z/bookrag/internal/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dir string) *Config {
	cfg := DefaultConfig()
	cfg.Documents.Dir = dir
	cfg.Index.Backend = IndexFlat
	cfg.Credentials.OpenAI = "sk-test"
	cfg.Requests.MaxRetries = 0
	cfg.Requests.Timeout = 0
	return cfg
}

func booksDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Books")
	pdftest.Write(t, filepath.Join(dir, "geography.pdf"),
		"The capital of France is Paris. Paris lies on the Seine.",
		"Berlin hosts many museums.")
	pdftest.Write(t, filepath.Join(dir, "biology.pdf"),
		"Photosynthesis converts light into chemical energy in plants.")
	return dir
}

func newTestPipeline(t *testing.T, cfg *Config) (*Pipeline, *wordEmbedder, *contextProvider) {
	t.Helper()
	embedder := &wordEmbedder{}
	provider := &contextProvider{}
	p, err := NewPipeline(cfg, Deps{Embedder: embedder, Provider: provider})
	require.NoError(t, err)
	return p, embedder, provider
}

func TestPipelineAnswersFromDocuments(t *testing.T) {
	p, _, provider := newTestPipeline(t, testConfig(booksDir(t)))

	out, err := NewAskUseCase(p).Execute(context.Background(), AskInput{Question: "What is the capital of France?"})
	require.NoError(t, err)

	assert.Equal(t, "The capital of France is Paris.", out.Answer)
	assert.Contains(t, provider.Last().System, "Paris")
	assert.Equal(t, "What is the capital of France?", provider.Last().User)

	require.NotEmpty(t, out.Context)
	assert.Contains(t, out.Context[0].Text, "France")
	assert.Equal(t, "geography.pdf#p1#c0", out.Context[0].ID)
}

func TestPipelineUnknownQuestion(t *testing.T) {
	cfg := testConfig(booksDir(t))
	cfg.Retrieval.K = 1
	p, _, _ := newTestPipeline(t, cfg)

	out, err := NewAskUseCase(p).Execute(context.Background(), AskInput{Question: "Who wrote Hamlet?"})
	require.NoError(t, err)
	assert.Equal(t, "I don't know.", out.Answer)
	assert.Len(t, out.Context, 1)
}

func TestPipelineWithAnnoyBackend(t *testing.T) {
	cfg := testConfig(booksDir(t))
	cfg.Index.Backend = IndexAnnoy
	p, _, _ := newTestPipeline(t, cfg)

	out, err := NewAskUseCase(p).Execute(context.Background(), AskInput{Question: "capital of France"})
	require.NoError(t, err)
	assert.Equal(t, "The capital of France is Paris.", out.Answer)
}

func TestPipelineEmptyDirectory(t *testing.T) {
	p, _, provider := newTestPipeline(t, testConfig(t.TempDir()))

	idx, err := NewIndexUseCase(p).Execute(context.Background(), IndexInput{})
	require.NoError(t, err)
	assert.Zero(t, idx.Chunks)

	_, err = NewAskUseCase(p).Execute(context.Background(), AskInput{Question: "anything?"})
	assert.ErrorIs(t, err, ErrEmptyIndex)

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageRetrieve, se.Stage)
	assert.Empty(t, provider.prompts, "the model is never called without context")
}

func TestPipelineMissingDirectory(t *testing.T) {
	p, embedder, _ := newTestPipeline(t, testConfig(filepath.Join(t.TempDir(), "Books")))

	_, err := NewAskUseCase(p).Execute(context.Background(), AskInput{Question: "anything?"})
	assert.ErrorIs(t, err, ErrNoDirectory)
	assert.Equal(t, ExitInput, ExitCode(err))
	assert.Zero(t, embedder.Calls())

	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageLoad, se.Stage)
}

func TestPipelineEmbeddingFailureStopsBeforeAnswer(t *testing.T) {
	cfg := testConfig(booksDir(t))
	embedder := &wordEmbedder{err: ErrInvalidCredential}
	provider := &contextProvider{}
	p, err := NewPipeline(cfg, Deps{Embedder: embedder, Provider: provider})
	require.NoError(t, err)

	_, err = NewAskUseCase(p).Execute(context.Background(), AskInput{Question: "capital of France?"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.Equal(t, ExitService, ExitCode(err))
	assert.Empty(t, provider.prompts)
}

func TestPipelineRejectsEmptyQuestion(t *testing.T) {
	p, embedder, _ := newTestPipeline(t, testConfig(booksDir(t)))

	_, err := NewAskUseCase(p).Execute(context.Background(), AskInput{Question: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Equal(t, ExitInput, ExitCode(err))
	assert.Zero(t, embedder.Calls())
}

func TestIndexUseCaseReportsStats(t *testing.T) {
	dir := booksDir(t)
	p, _, _ := newTestPipeline(t, testConfig(dir))

	out, err := NewIndexUseCase(p).Execute(context.Background(), IndexInput{})
	require.NoError(t, err)

	assert.Equal(t, dir, out.Dir)
	assert.Equal(t, 3, out.Documents)
	assert.Equal(t, 3, out.Chunks)
	assert.Equal(t, fakeDim, out.Dimension)
}

func TestSearchUseCaseSkipsModel(t *testing.T) {
	p, _, provider := newTestPipeline(t, testConfig(booksDir(t)))

	out, err := NewSearchUseCase(p).Execute(context.Background(), SearchInput{Query: "photosynthesis plants", Limit: 2})
	require.NoError(t, err)

	require.Len(t, out.Results, 2)
	assert.Equal(t, "biology.pdf#p1#c0", out.Results[0].ID)
	assert.GreaterOrEqual(t, out.Results[0].Score, out.Results[1].Score)
	assert.Empty(t, provider.prompts)
}

func TestPipelineWithoutProviderCannotAnswer(t *testing.T) {
	p, err := NewPipeline(testConfig(booksDir(t)), Deps{Embedder: &wordEmbedder{}})
	require.NoError(t, err)

	_, err = NewAskUseCase(p).Execute(context.Background(), AskInput{Question: "capital of France?"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewPipelineRejectsBadChunking(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Chunking.Overlap = cfg.Chunking.Size

	_, err := NewPipeline(cfg, Deps{Embedder: &wordEmbedder{}})
	assert.ErrorIs(t, err, ErrInvalidChunking)
}
