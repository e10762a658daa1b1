package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/itish2003/lawgic/logger"
	"github.com/itish2003/lawgic/models"
	"github.com/tmc/langchaingo/textsplitter"
	"golang.org/x/sync/errgroup"
)

const (
	chunkSize    = 1000
	chunkOverlap = 100
	// voice clips larger than this are not sent to the transcriber.
	maxVoiceBytes = 10 << 20
)

// Upload is an uploaded file that has not been read yet.
type Upload struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// AnalysisRequest is one call to the analyze or research endpoint.
type AnalysisRequest struct {
	Task     Task
	Text     string
	File     *Upload
	Voice    *Upload
	Language string
	UserID   *uint
}

// DocumentRepository is the persistence the orchestrator needs.
type DocumentRepository interface {
	SaveAnalysis(ctx context.Context, in AnalysisInput) (uint, error)
}

// AnalysisDeps are the process-wide handles the orchestrator uses. Store,
// Transcriber and Index are optional.
type AnalysisDeps struct {
	Log         *logger.Logger
	Extractor   *TextExtractor
	Transcriber Transcriber
	Dispatcher  *Dispatcher
	Embeddings  *EmbeddingService
	Store       DocumentRepository
	Index       VectorIndex
	ChunkLimit  int
}

// AnalysisService runs a request end to end: combine inputs, dispatch,
// embed, persist and mirror.
type AnalysisService struct {
	log         *logger.Logger
	extractor   *TextExtractor
	transcriber Transcriber
	dispatcher  *Dispatcher
	embeddings  *EmbeddingService
	store       DocumentRepository
	index       VectorIndex
	chunkLimit  int
	splitter    textsplitter.RecursiveCharacter
}

func NewAnalysisService(deps AnalysisDeps) *AnalysisService {
	limit := deps.ChunkLimit
	if limit <= 0 {
		limit = 8
	}
	return &AnalysisService{
		log:         deps.Log.With("service", "AnalysisService"),
		extractor:   deps.Extractor,
		transcriber: deps.Transcriber,
		dispatcher:  deps.Dispatcher,
		embeddings:  deps.Embeddings,
		store:       deps.Store,
		index:       deps.Index,
		chunkLimit:  limit,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// Analyze handles /api/analyze and /api/research.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) *models.AnalysisResponse {
	lang := normalizeLanguage(req.Language)
	task := req.Task
	if task == "" {
		task = TaskAnalysis
	}

	combined, inputs := s.CombineInputs(ctx, req)
	result := s.dispatcher.Dispatch(ctx, task, combined, lang)
	embedding := s.embeddings.Embed(ctx, combined)

	filename := models.FilenameAnalyzeInput
	if task == TaskResearch {
		filename = models.FilenameResearchInput
	}
	if req.File != nil && req.File.Filename != "" {
		filename = filepath.Base(req.File.Filename)
	}

	docID := models.DocumentID{}
	if s.store != nil {
		in := AnalysisInput{
			UserID:   req.UserID,
			Filename: filename,
			Content:  combined,
			Metadata: map[string]interface{}{
				"task":     string(task),
				"language": lang,
				"source":   ResultSource(result),
				"inputs":   inputs,
			},
			Embedding: embedding,
			Task:      task,
			Result:    result,
			Chunks:    s.chunk(ctx, combined, embedding),
		}
		id, err := s.store.SaveAnalysis(ctx, in)
		if err != nil {
			s.log.Warn("database save failed, answering in demo mode", "error", err)
		} else {
			docID = models.StoredDocumentID(id)
			s.mirror(ctx, id, in.Chunks)
		}
	}

	s.log.Info("analysis complete",
		"task", task,
		"language", lang,
		"source", ResultSource(result),
		"kind", result.Kind(),
		"document_id", docID.String(),
	)
	return &models.AnalysisResponse{
		InputText:  combined,
		Prediction: result,
		DocumentID: docID,
	}
}

// Predict runs the analysis chain on text without persisting anything.
func (s *AnalysisService) Predict(ctx context.Context, text string) models.Result {
	return s.dispatcher.Dispatch(ctx, TaskAnalysis, text, "en")
}

// CombineInputs joins text, file text and voice text in that order. File
// extraction and transcription run concurrently. It also returns the names
// of the inputs that were present.
func (s *AnalysisService) CombineInputs(ctx context.Context, req AnalysisRequest) (string, []string) {
	var fileText, voiceText string
	inputs := []string{}
	if strings.TrimSpace(req.Text) != "" {
		inputs = append(inputs, "text")
	}
	if req.File != nil {
		inputs = append(inputs, "file")
	}
	if req.Voice != nil {
		inputs = append(inputs, "voice")
	}

	var g errgroup.Group
	if req.File != nil {
		g.Go(func() error {
			fileText = s.readFile(ctx, req.File)
			return nil
		})
	}
	if req.Voice != nil {
		g.Go(func() error {
			voiceText = s.readVoice(ctx, req.Voice, req.Language)
			return nil
		})
	}
	_ = g.Wait()

	parts := make([]string, 0, 3)
	for _, p := range []string{req.Text, fileText, voiceText} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " "), inputs
}

func (s *AnalysisService) readFile(ctx context.Context, up *Upload) string {
	name := filepath.Base(up.Filename)
	rc, err := up.Open()
	if err != nil {
		s.log.Warn("could not open uploaded file", "filename", name, "error", err)
		return UploadPlaceholder(name)
	}
	defer rc.Close()
	return s.extractor.ExtractUpload(ctx, rc, name)
}

func (s *AnalysisService) readVoice(ctx context.Context, up *Upload, lang string) string {
	name := filepath.Base(up.Filename)
	if s.transcriber == nil {
		return VoicePlaceholder(name)
	}
	rc, err := up.Open()
	if err != nil {
		s.log.Warn("could not open voice upload", "filename", name, "error", err)
		return VoicePlaceholder(name)
	}
	defer rc.Close()

	audio, err := io.ReadAll(io.LimitReader(rc, maxVoiceBytes+1))
	if err != nil || len(audio) > maxVoiceBytes {
		s.log.Warn("voice upload unreadable or too large", "filename", name, "error", err)
		return VoicePlaceholder(name)
	}
	text, err := s.transcriber.Transcribe(ctx, audio, name, up.ContentType, normalizeLanguage(lang))
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn("voice transcription unavailable", "filename", name, "error", err)
		return VoicePlaceholder(name)
	}
	return text
}

// chunk splits text for per-chunk vectors. A single chunk reuses the
// document embedding.
func (s *AnalysisService) chunk(ctx context.Context, text string, docEmbedding []float32) []ChunkInput {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pieces, err := s.splitter.SplitText(text)
	if err != nil || len(pieces) == 0 {
		if err != nil {
			s.log.Warn("could not split document", "error", err)
		}
		return []ChunkInput{{Text: text, Embedding: docEmbedding}}
	}
	if len(pieces) == 1 {
		return []ChunkInput{{Text: pieces[0], Embedding: docEmbedding}}
	}
	if len(pieces) > s.chunkLimit {
		pieces = pieces[:s.chunkLimit]
	}
	out := make([]ChunkInput, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, ChunkInput{Text: p, Embedding: s.embeddings.Embed(ctx, p)})
	}
	return out
}

// mirror copies a stored document's chunks to the vector index. Failures are
// logged only.
func (s *AnalysisService) mirror(ctx context.Context, docID uint, chunks []ChunkInput) {
	if s.index == nil || len(chunks) == 0 {
		return
	}
	source := fmt.Sprintf("document:%d", docID)
	records := make([]VectorRecord, 0, len(chunks))
	for i, c := range chunks {
		records = append(records, VectorRecord{
			ID:         fmt.Sprintf("%s-chunk%d", uuid.New().String(), i),
			Text:       c.Text,
			Embedding:  c.Embedding,
			Kind:       VectorKindDocument,
			Source:     source,
			ChunkNum:   i,
			DocumentID: docID,
		})
	}
	if err := s.index.Add(ctx, records); err != nil {
		s.log.Warn("vector mirror failed", "document_id", docID, "error", err)
	}
}

func normalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return "en"
	}
	return lang
}
