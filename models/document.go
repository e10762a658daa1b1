package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Filename sentinels for records created without an uploaded file.
const (
	FilenameAnalyzeInput  = "input_text_or_voice"
	FilenameResearchInput = "research_input"
)

// Document is one persisted analysis request. Rows are inserted once and
// never updated.
type Document struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    *uint             `gorm:"index" json:"user_id,omitempty"`
	Filename  string            `gorm:"not null" json:"filename"`
	Content   string            `gorm:"type:text;not null;default:''" json:"content"`
	Metadata  datatypes.JSONMap `gorm:"column:metadata" json:"metadata"`
	Embedding datatypes.JSON    `gorm:"column:embedding" json:"embedding"`
	CreatedAt time.Time         `gorm:"autoCreateTime" json:"created_at"`

	Chunks   []DocumentChunk  `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID" json:"chunks,omitempty"`
	Analyses []AnalysisRecord `gorm:"constraint:OnDelete:CASCADE;foreignKey:DocumentID" json:"analyses,omitempty"`
}

func (Document) TableName() string { return "documents" }

// DocumentChunk holds a slice of a document's content with its own vector.
type DocumentChunk struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	DocumentID uint            `gorm:"not null;index" json:"document_id"`
	ChunkIndex int             `gorm:"column:chunk_index;not null" json:"chunk_index"`
	Text       string          `gorm:"type:text;not null" json:"text"`
	Embedding  pgvector.Vector `gorm:"type:vector" json:"-"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (DocumentChunk) TableName() string { return "document_chunks" }

// AnalysisRecord stores the typed dispatcher result for a document.
type AnalysisRecord struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	DocumentID uint           `gorm:"not null;index" json:"document_id"`
	Task       string         `gorm:"not null;index" json:"task"`
	Source     string         `gorm:"index" json:"source"`
	Result     datatypes.JSON `gorm:"not null" json:"result"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (AnalysisRecord) TableName() string { return "analysis_results" }

// ReferenceFile is a file from the reference corpus directory.
type ReferenceFile struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Path      string           `gorm:"uniqueIndex;not null" json:"path"`
	Hash      string           `gorm:"not null" json:"hash"`
	Title     string           `json:"title"`
	IndexedAt time.Time        `gorm:"autoCreateTime" json:"indexed_at"`
	Chunks    []ReferenceChunk `gorm:"constraint:OnDelete:CASCADE;foreignKey:ReferenceFileID" json:"chunks,omitempty"`
}

func (ReferenceFile) TableName() string { return "reference_files" }

type ReferenceChunk struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	ReferenceFileID uint            `gorm:"not null;index" json:"reference_file_id"`
	ChunkIndex      int             `gorm:"column:chunk_index;not null" json:"chunk_index"`
	Text            string          `gorm:"type:text;not null" json:"text"`
	Embedding       pgvector.Vector `gorm:"type:vector" json:"-"`
}

func (ReferenceChunk) TableName() string { return "reference_chunks" }
