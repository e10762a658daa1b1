package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/itish2003/lawgic/logger"
	"github.com/itish2003/lawgic/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu    sync.Mutex
	saved []AnalysisInput
	err   error
}

func (f *fakeRepo) SaveAnalysis(_ context.Context, in AnalysisInput) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, in)
	return uint(len(f.saved)), nil
}

type fakeTranscriber struct {
	text string
	err  error
	lang string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _, _, lang string) (string, error) {
	f.lang = lang
	return f.text, f.err
}

type fakeIndex struct {
	records []VectorRecord
	err     error
}

func (f *fakeIndex) Add(_ context.Context, records []VectorRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, records...)
	return nil
}
func (f *fakeIndex) DeleteBySource(context.Context, string) error { return nil }
func (f *fakeIndex) Count(context.Context) (int, error)           { return len(f.records), nil }

func bytesUpload(name, contentType string, body []byte) *Upload {
	return &Upload{
		Filename:    name,
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		},
	}
}

func newTestAnalysisService(t *testing.T, repo DocumentRepository, tr Transcriber, idx VectorIndex) *AnalysisService {
	t.Helper()
	log := logger.Nop()
	return NewAnalysisService(AnalysisDeps{
		Log:         log,
		Extractor:   NewTextExtractor(log, t.TempDir()),
		Transcriber: tr,
		Dispatcher:  NewDispatcher(log, nil, nil, newTestClassifier()),
		Embeddings:  NewEmbeddingService(log, nil, 8),
		Store:       repo,
		Index:       idx,
		ChunkLimit:  3,
	})
}

func TestCombineInputsOrder(t *testing.T) {
	tr := &fakeTranscriber{text: " spoken words "}
	s := newTestAnalysisService(t, nil, tr, nil)

	text, inputs := s.CombineInputs(context.Background(), AnalysisRequest{
		Text:     "  typed text ",
		File:     bytesUpload("contract.txt", "text/plain", []byte("\nfile text\n")),
		Voice:    bytesUpload("memo.wav", "audio/wav", []byte("RIFF")),
		Language: "HI",
	})

	assert.Equal(t, "typed text file text spoken words", text)
	assert.Equal(t, []string{"text", "file", "voice"}, inputs)
	assert.Equal(t, "hi", tr.lang)
}

func TestCombineInputsPlaceholders(t *testing.T) {
	s := newTestAnalysisService(t, nil, &fakeTranscriber{err: errors.New("no credentials")}, nil)

	text, _ := s.CombineInputs(context.Background(), AnalysisRequest{
		File:  bytesUpload("scan.png", "image/png", []byte{1, 2}),
		Voice: bytesUpload("memo.ogg", "audio/ogg", []byte{3}),
	})
	assert.Equal(t, "Uploaded file: scan.png [Voice input: memo.ogg]", text)

	s = newTestAnalysisService(t, nil, nil, nil)
	text, inputs := s.CombineInputs(context.Background(), AnalysisRequest{
		Voice: &Upload{Filename: "x.wav", Open: func() (io.ReadCloser, error) { return nil, errors.New("gone") }},
	})
	assert.Equal(t, "[Voice input: x.wav]", text)
	assert.Equal(t, []string{"voice"}, inputs)
}

func TestAnalyzePersists(t *testing.T) {
	repo := &fakeRepo{}
	idx := &fakeIndex{}
	s := newTestAnalysisService(t, repo, nil, idx)

	resp := s.Analyze(context.Background(), AnalysisRequest{
		Task: TaskAnalysis,
		File: bytesUpload("contract.txt", "text/plain", []byte("This agreement requires binding arbitration.")),
	})

	assert.Equal(t, "This agreement requires binding arbitration.", resp.InputText)
	assert.Equal(t, models.StoredDocumentID(1), resp.DocumentID)
	got, ok := resp.Prediction.(*models.ContractFindings)
	require.True(t, ok)
	assert.Equal(t, models.RiskMedium, got.OverallRisk)

	require.Len(t, repo.saved, 1)
	saved := repo.saved[0]
	assert.Equal(t, "contract.txt", saved.Filename)
	assert.Equal(t, "en", saved.Metadata["language"])
	assert.Equal(t, models.SourceHeuristic, saved.Metadata["source"])
	assert.Len(t, saved.Embedding, 8)
	require.Len(t, saved.Chunks, 1)
	assert.Equal(t, saved.Embedding, saved.Chunks[0].Embedding)

	require.Len(t, idx.records, 1)
	assert.Equal(t, "document:1", idx.records[0].Source)
	assert.Equal(t, uint(1), idx.records[0].DocumentID)
}

func TestAnalyzeSentinelOnStoreFailure(t *testing.T) {
	tests := []struct {
		name string
		repo DocumentRepository
	}{
		{"no store", nil},
		{"save fails", &fakeRepo{err: errors.New("database is locked")}},
		{"nil store handle", (*DocumentStore)(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := &fakeIndex{}
			s := newTestAnalysisService(t, tt.repo, nil, idx)

			resp := s.Analyze(context.Background(), AnalysisRequest{Task: TaskResearch, Text: "bail conditions"})

			assert.False(t, resp.DocumentID.Stored)
			assert.Equal(t, models.DocumentIDSentinel, resp.DocumentID.String())
			assert.IsType(t, &models.ResearchSummary{}, resp.Prediction)
			assert.Empty(t, idx.records)
		})
	}
}

func TestAnalyzeEmptyInputStillAnswers(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestAnalysisService(t, repo, nil, nil)

	resp := s.Analyze(context.Background(), AnalysisRequest{Task: TaskResearch, Language: "hi"})

	require.IsType(t, &models.ErrorResult{}, resp.Prediction)
	assert.Equal(t, "", resp.InputText)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, models.FilenameResearchInput, repo.saved[0].Filename)
	assert.Empty(t, repo.saved[0].Chunks)
}

func TestChunkingCapsAndEmbeds(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestAnalysisService(t, repo, nil, nil)

	para := strings.Repeat("The tenant shall pay rent on time. ", 40)
	text := strings.Join([]string{para, para, para, para, para}, "\n\n")
	s.Analyze(context.Background(), AnalysisRequest{Text: text})

	require.Len(t, repo.saved, 1)
	chunks := repo.saved[0].Chunks
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), chunkSize)
		assert.Equal(t, FallbackEmbedding(c.Text, 8), c.Embedding)
	}
}

func TestAnalyzeMirrorFailureIsIgnored(t *testing.T) {
	repo := &fakeRepo{}
	s := newTestAnalysisService(t, repo, nil, &fakeIndex{err: errors.New("chroma down")})

	resp := s.Analyze(context.Background(), AnalysisRequest{Text: "my landlord"})

	assert.True(t, resp.DocumentID.Stored)
}

func TestPredict(t *testing.T) {
	s := newTestAnalysisService(t, nil, nil, nil)
	got, ok := s.Predict(context.Background(), "I was arrested without a warrant").(*models.LegalGuidance)
	require.True(t, ok)
	assert.Equal(t, "Criminal", got.Category)
}

func TestAnalyzeLiveEmbeddingCallsBoundedByChunkLimit(t *testing.T) {
	log := logger.Nop()
	backend := &stubEmbedder{vec: make([]float32, 8)}
	s := NewAnalysisService(AnalysisDeps{
		Log:        log,
		Extractor:  NewTextExtractor(log, t.TempDir()),
		Dispatcher: NewDispatcher(log, nil, nil, newTestClassifier()),
		Embeddings: NewEmbeddingService(log, backend, 8),
		Store:      &fakeRepo{},
		ChunkLimit: 3,
	})

	para := strings.Repeat("The employer shall pay wages monthly. ", 40)
	s.Analyze(context.Background(), AnalysisRequest{Text: strings.Join([]string{para, para, para, para, para}, "\n\n")})
	assert.Equal(t, 1+3, backend.calls)

	backend.calls = 0
	s.Analyze(context.Background(), AnalysisRequest{Text: "short note about rent"})
	assert.Equal(t, 1, backend.calls)
}
