package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/itish2003/lawgic/logger"
	"github.com/itish2003/lawgic/models"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// ErrStoreUnavailable is returned by a nil store.
var ErrStoreUnavailable = errors.New("document store unavailable")

// DocumentStore persists analysis requests and the reference corpus.
type DocumentStore struct {
	db      *gorm.DB
	log     *logger.Logger
	dialect string
}

// ChunkInput is one chunk of a document and its vector.
type ChunkInput struct {
	Text      string
	Embedding []float32
}

// AnalysisInput is everything written for a single request.
type AnalysisInput struct {
	UserID    *uint
	Filename  string
	Content   string
	Metadata  map[string]interface{}
	Embedding []float32
	Task      Task
	Result    models.Result
	Chunks    []ChunkInput
}

// ParseDatabaseURL splits a DATABASE_URL into a gorm dialect and driver DSN.
// sqlite://relative.db and sqlite:///abs/path.db select SQLite, postgres://
// and postgresql:// select Postgres.
func ParseDatabaseURL(url string) (dialect, dsn string, err error) {
	url = strings.TrimSpace(url)
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return "", "", errors.New("sqlite url has no path")
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return DialectSQLite, path + sep + "_foreign_keys=on", nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, url, nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme: %q", url)
	}
}

// OpenDocumentStore connects and migrates. Any error leaves the caller
// without a store, which the orchestrator treats as demo mode.
func OpenDocumentStore(ctx context.Context, url string, logg *logger.Logger) (*DocumentStore, error) {
	serviceLog := logg.With("service", "DocumentStore")

	dialect, dsn, err := ParseDatabaseURL(url)
	if err != nil {
		return nil, err
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dialect, err)
	}

	s := &DocumentStore{db: db, log: serviceLog, dialect: dialect}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	serviceLog.Info("document store ready", "dialect", dialect)
	return s, nil
}

// Migrate creates or updates every table.
func (s *DocumentStore) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if s.dialect == DialectPostgres {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
			return fmt.Errorf("failed to enable pgvector extension: %w", err)
		}
	}
	if err := db.AutoMigrate(
		&models.Document{},
		&models.DocumentChunk{},
		&models.AnalysisRecord{},
		&models.ReferenceFile{},
		&models.ReferenceChunk{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Ping reports whether the database answers.
func (s *DocumentStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrStoreUnavailable
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *DocumentStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveAnalysis writes the document, its analysis and its chunks in one
// transaction and returns the new document id.
func (s *DocumentStore) SaveAnalysis(ctx context.Context, in AnalysisInput) (uint, error) {
	if s == nil || s.db == nil {
		return 0, ErrStoreUnavailable
	}

	embedding, err := json.Marshal(in.Embedding)
	if err != nil {
		return 0, fmt.Errorf("encode embedding: %w", err)
	}
	result, err := json.Marshal(in.Result)
	if err != nil {
		return 0, fmt.Errorf("encode result: %w", err)
	}
	meta := datatypes.JSONMap{}
	for k, v := range in.Metadata {
		meta[k] = v
	}

	doc := models.Document{
		UserID:    in.UserID,
		Filename:  in.Filename,
		Content:   in.Content,
		Metadata:  meta,
		Embedding: datatypes.JSON(embedding),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doc).Error; err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		rec := models.AnalysisRecord{
			DocumentID: doc.ID,
			Task:       string(in.Task),
			Source:     ResultSource(in.Result),
			Result:     datatypes.JSON(result),
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert analysis: %w", err)
		}
		if len(in.Chunks) == 0 {
			return nil
		}
		chunks := make([]models.DocumentChunk, 0, len(in.Chunks))
		for i, c := range in.Chunks {
			chunks = append(chunks, models.DocumentChunk{
				DocumentID: doc.ID,
				ChunkIndex: i,
				Text:       c.Text,
				Embedding:  pgvector.NewVector(c.Embedding),
			})
		}
		if err := tx.Create(&chunks).Error; err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return doc.ID, nil
}

// GetDocument loads a document with its chunks and analyses.
func (s *DocumentStore) GetDocument(ctx context.Context, id uint) (*models.Document, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreUnavailable
	}
	var doc models.Document
	err := s.db.WithContext(ctx).
		Preload("Chunks", func(db *gorm.DB) *gorm.DB { return db.Order("chunk_index") }).
		Preload("Analyses").
		First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReferenceHashes maps every indexed corpus path to its content hash.
func (s *DocumentStore) ReferenceHashes(ctx context.Context) (map[string]string, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreUnavailable
	}
	var files []models.ReferenceFile
	if err := s.db.WithContext(ctx).Select("path", "hash").Find(&files).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Path] = f.Hash
	}
	return out, nil
}

// ReplaceReferenceFile removes any previous version of file.Path and stores
// file together with its chunks.
func (s *DocumentStore) ReplaceReferenceFile(ctx context.Context, file *models.ReferenceFile) error {
	if s == nil || s.db == nil {
		return ErrStoreUnavailable
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteReferenceFile(tx, file.Path); err != nil {
			return err
		}
		if err := tx.Create(file).Error; err != nil {
			return fmt.Errorf("insert reference file: %w", err)
		}
		return nil
	})
}

// DeleteReferenceFile drops a corpus file and its chunks. Unknown paths are
// not an error.
func (s *DocumentStore) DeleteReferenceFile(ctx context.Context, path string) error {
	if s == nil || s.db == nil {
		return ErrStoreUnavailable
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteReferenceFile(tx, path)
	})
}

// countReferenceChunks returns the number of stored corpus chunks.
func (s *DocumentStore) countReferenceChunks(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrStoreUnavailable
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.ReferenceChunk{}).Count(&n).Error
	return n, err
}

func deleteReferenceFile(tx *gorm.DB, path string) error {
	var existing models.ReferenceFile
	err := tx.Where("path = ?", path).Limit(1).Find(&existing).Error
	if err != nil {
		return fmt.Errorf("find reference file: %w", err)
	}
	if existing.ID == 0 {
		return nil
	}
	if err := tx.Where("reference_file_id = ?", existing.ID).Delete(&models.ReferenceChunk{}).Error; err != nil {
		return fmt.Errorf("delete reference chunks: %w", err)
	}
	if err := tx.Delete(&existing).Error; err != nil {
		return fmt.Errorf("delete reference file: %w", err)
	}
	return nil
}
