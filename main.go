package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/genai"

	"github.com/itish2003/lawgic/config"
	"github.com/itish2003/lawgic/controller"
	"github.com/itish2003/lawgic/logger"
	"github.com/itish2003/lawgic/middleware"
	"github.com/itish2003/lawgic/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := services.SetPDFLicense(cfg.UnidocLicenseKey); err != nil {
		log.Warn("failed to set PDF license key", "error", err)
	}

	// Create Gemini client. Without a key the dispatcher skips the LLM stage.
	var geminiClient *genai.Client
	if cfg.Gemini.APIKey != "" {
		geminiClient, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Warn("failed to create Gemini client, continuing without it", "error", err)
			geminiClient = nil
		} else {
			log.Info("connected to Google Gemini", "model", cfg.Gemini.Model)
		}
	}

	embeddings := services.NewEmbeddingService(log, newEmbedder(cfg, geminiClient, log), cfg.Embedding.Dim)
	log.Info("embedding backend ready", "backend", embeddings.Backend(), "dim", embeddings.Dim())

	classifier := services.NewClassifier(services.DefaultTables(),
		services.WithCategoryOrder(cfg.Model.CategoryPriority))

	localModel, err := services.LoadLocalModel(cfg.Model.Path)
	if err != nil {
		log.Warn("local model not loaded", "path", cfg.Model.Path, "error", err)
		localModel = nil
	} else if localModel != nil {
		log.Info("local model loaded", "path", cfg.Model.Path, "version", localModel.Version)
	}

	var generator services.Generator
	if cfg.LLMEnabled() && geminiClient != nil {
		generator = services.NewGeminiGenerator(geminiClient, cfg.Gemini.Model)
	}
	dispatcher := services.NewDispatcher(log, localModel, generator, classifier)
	log.Info("dispatcher ready", "stages", dispatcher.StageNames())

	// The store is optional: without it every response carries the demo id.
	var repo services.DocumentRepository
	store, err := services.OpenDocumentStore(ctx, cfg.Database.URL, log)
	if err != nil {
		log.Warn("database unavailable, running in demo mode", "error", err)
		store = nil
	} else {
		repo = store
		defer store.Close()
	}

	var index services.VectorIndex
	if cfg.Chroma.URL != "" {
		chroma, err := services.NewChromaIndex(ctx, cfg.Chroma.URL, cfg.Chroma.Collection, log)
		if err != nil {
			log.Warn("vector index unavailable", "url", cfg.Chroma.URL, "error", err)
		} else {
			index = chroma
			defer chroma.Close()
		}
	}

	var transcriber services.Transcriber
	if cfg.Speech.Enabled {
		speech, err := services.NewSpeechTranscriber(ctx, log)
		if err != nil {
			log.Warn("speech transcription unavailable", "error", err)
		} else {
			transcriber = speech
			defer speech.Close()
		}
	}

	if cfg.Corpus.DocumentsDir != "" && store == nil {
		log.Warn("corpus indexing needs a database, skipping", "dir", cfg.Corpus.DocumentsDir)
	}
	if cfg.Corpus.DocumentsDir != "" && store != nil {
		indexer := services.NewFileIndexingService(log, store, embeddings, index)
		go func() {
			if err := indexer.ScanAndIndexDirectory(ctx, cfg.Corpus.DocumentsDir); err != nil {
				log.Error("initial corpus scan failed", "error", err)
			}
			indexer.WatchDirectory(ctx, cfg.Corpus.DocumentsDir)
		}()
	}

	analysis := services.NewAnalysisService(services.AnalysisDeps{
		Log:         log,
		Extractor:   services.NewTextExtractor(log, cfg.TempDir),
		Transcriber: transcriber,
		Dispatcher:  dispatcher,
		Embeddings:  embeddings,
		Store:       repo,
		Index:       index,
		ChunkLimit:  cfg.Database.ChunkLimit,
	})

	health := controller.HealthChecks{
		Index:      index,
		LocalModel: localModel != nil,
		LLM:        generator != nil,
	}
	if store != nil {
		health.Store = store
	}
	analysisController := controller.NewAnalysisController(analysis, health)

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		middleware.CORS(),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Recovery(log),
	)
	controller.RegisterRoutes(router, analysisController)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("LawGic backend starting", "addr", "http://localhost:"+cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
}

// newEmbedder picks the live embedding backend. A nil result makes every
// embedding use the deterministic fallback.
func newEmbedder(cfg *config.Config, geminiClient *genai.Client, log *logger.Logger) services.Embedder {
	switch cfg.Embedding.Backend {
	case "gemini":
		if geminiClient == nil {
			log.Warn("gemini embeddings requested without a client, using fallback vectors")
			return nil
		}
		return services.NewGeminiEmbedder(geminiClient, cfg.Gemini.EmbeddingModel)
	case "ollama":
		return services.NewOllamaEmbedder(&http.Client{Timeout: 30 * time.Second},
			cfg.Embedding.OllamaURL, cfg.Embedding.OllamaModel)
	default:
		return nil
	}
}
