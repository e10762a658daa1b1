package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/itish2003/lawgic/logger"
	"github.com/itish2003/lawgic/models"
	"github.com/pgvector/pgvector-go"
	"github.com/tmc/langchaingo/textsplitter"
)

// ReferenceStore is the persistence the corpus indexer needs.
type ReferenceStore interface {
	ReferenceHashes(ctx context.Context) (map[string]string, error)
	ReplaceReferenceFile(ctx context.Context, file *models.ReferenceFile) error
	DeleteReferenceFile(ctx context.Context, path string) error
}

// FileIndexingService keeps the reference corpus tables in sync with a
// directory of statutes, judgments and templates.
type FileIndexingService struct {
	log        *logger.Logger
	store      ReferenceStore
	embeddings *EmbeddingService
	index      VectorIndex
	splitter   textsplitter.RecursiveCharacter
}

// NewFileIndexingService creates a new indexing service. index may be nil.
func NewFileIndexingService(log *logger.Logger, store ReferenceStore, embeddings *EmbeddingService, index VectorIndex) *FileIndexingService {
	return &FileIndexingService{
		log:        log.With("service", "FileIndexingService"),
		store:      store,
		embeddings: embeddings,
		index:      index,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}
}

// WatchDirectory re-indexes files as they change until ctx is cancelled.
func (s *FileIndexingService) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.log.Error("failed to create file watcher", "error", err)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(dirPath); err != nil {
		s.log.Error("failed to add path to watcher", "dir", dirPath, "error", err)
		return
	}
	s.log.Info("watching corpus directory", "dir", dirPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(ctx, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", "error", err)
		case <-ctx.Done():
			s.log.Info("context cancelled, shutting down watcher")
			return
		}
	}
}

func (s *FileIndexingService) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !IsSupportedDocument(event.Name) {
		return
	}
	s.log.Debug("watcher event", "event", event.String())

	switch {
	// Editors often save by create+rename, so Create and Write are handled alike.
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		hash, err := calculateFileHash(event.Name)
		if err != nil {
			s.log.Warn("could not hash file", "path", event.Name, "error", err)
			return
		}
		if err := s.IndexFile(ctx, event.Name, hash); err != nil {
			s.log.Error("failed to index file", "path", event.Name, "error", err)
		}
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if err := s.RemoveFile(ctx, event.Name); err != nil {
			s.log.Error("failed to remove file from index", "path", event.Name, "error", err)
		}
	}
}

// ScanAndIndexDirectory indexes new and changed files under dirPath and drops
// files that no longer exist.
func (s *FileIndexingService) ScanAndIndexDirectory(ctx context.Context, dirPath string) error {
	s.log.Info("starting corpus scan", "dir", dirPath)

	indexed, err := s.store.ReferenceHashes(ctx)
	if err != nil {
		return fmt.Errorf("could not get current index state: %w", err)
	}

	localFiles := make(map[string]bool)
	var added, skipped int
	err = filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !IsSupportedDocument(path) {
			return nil
		}
		localFiles[path] = true

		hash, err := calculateFileHash(path)
		if err != nil {
			s.log.Warn("could not hash file", "path", path, "error", err)
			return nil
		}
		if indexed[path] == hash {
			skipped++
			return nil
		}
		if err := s.IndexFile(ctx, path, hash); err != nil {
			s.log.Error("failed to index file", "path", path, "error", err)
			return nil
		}
		added++
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", dirPath, err)
	}

	var removed int
	for path := range indexed {
		if localFiles[path] {
			continue
		}
		if err := s.RemoveFile(ctx, path); err != nil {
			s.log.Error("failed to remove file from index", "path", path, "error", err)
			continue
		}
		removed++
	}
	s.log.Info("corpus scan finished", "indexed", added, "unchanged", skipped, "removed", removed)
	return nil
}

// IndexFile extracts, chunks and embeds one file and replaces its stored
// version.
func (s *FileIndexingService) IndexFile(ctx context.Context, path, hash string) error {
	content, err := ExtractTextFromFile(path)
	if err != nil {
		return err
	}
	pieces, err := s.splitter.SplitText(content)
	if err != nil {
		return err
	}

	file := &models.ReferenceFile{
		Path:   path,
		Hash:   hash,
		Title:  referenceTitle(path),
		Chunks: make([]models.ReferenceChunk, 0, len(pieces)),
	}
	records := make([]VectorRecord, 0, len(pieces))
	for i, piece := range pieces {
		vec := s.embeddings.Embed(ctx, piece)
		file.Chunks = append(file.Chunks, models.ReferenceChunk{
			ChunkIndex: i,
			Text:       piece,
			Embedding:  pgvector.NewVector(vec),
		})
		records = append(records, VectorRecord{
			ID:        fmt.Sprintf("%s-chunk%d", uuid.New().String(), i),
			Text:      piece,
			Embedding: vec,
			Kind:      VectorKindReference,
			Source:    path,
			Hash:      hash,
			ChunkNum:  i,
		})
	}

	if err := s.store.ReplaceReferenceFile(ctx, file); err != nil {
		return err
	}
	s.log.Info("indexed reference file", "path", path, "chunks", len(pieces))

	if s.index != nil {
		if err := s.index.DeleteBySource(ctx, path); err != nil {
			s.log.Warn("could not clear old vectors", "path", path, "error", err)
		}
		if err := s.index.Add(ctx, records); err != nil {
			s.log.Warn("vector mirror failed", "path", path, "error", err)
		}
	}
	return nil
}

// RemoveFile drops a file from the corpus tables and the vector mirror.
func (s *FileIndexingService) RemoveFile(ctx context.Context, path string) error {
	if err := s.store.DeleteReferenceFile(ctx, path); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.DeleteBySource(ctx, path); err != nil {
			s.log.Warn("could not delete vectors", "path", path, "error", err)
		}
	}
	s.log.Info("removed reference file", "path", path)
	return nil
}

func referenceTitle(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".docx") {
		if t := docxTitle(path); t != "" {
			return t
		}
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ReplaceAll(name, "-", " ")
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
