package services

import (
	"context"
	"fmt"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/itish2003/lawgic/logger"
)

// Record kinds stored in the vector mirror.
const (
	VectorKindDocument  = "document"
	VectorKindReference = "reference"
)

// VectorRecord is one chunk mirrored into the vector index.
type VectorRecord struct {
	ID         string
	Text       string
	Embedding  []float32
	Kind       string
	Source     string
	Hash       string
	ChunkNum   int
	DocumentID uint
}

// VectorIndex mirrors stored chunks into an external vector database. It
// is write-only; nothing in the service queries it.
type VectorIndex interface {
	Add(ctx context.Context, records []VectorRecord) error
	DeleteBySource(ctx context.Context, source string) error
	Count(ctx context.Context) (int, error)
}

// ChromaIndex is a VectorIndex backed by a Chroma collection.
type ChromaIndex struct {
	client     chromago.Client
	collection chromago.Collection
	log        *logger.Logger
}

// NewChromaIndex connects to Chroma at baseURL and gets or creates the
// named collection.
func NewChromaIndex(ctx context.Context, baseURL, collectionName string, log *logger.Logger) (*ChromaIndex, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}
	collection, err := getOrCreateCollection(ctx, client, collectionName)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to get or create collection %q: %w", collectionName, err)
	}
	return &ChromaIndex{client: client, collection: collection, log: log.With("service", "ChromaIndex")}, nil
}

func getOrCreateCollection(ctx context.Context, client chromago.Client, name string) (chromago.Collection, error) {
	return client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "LawGic legal document chunks"),
				chromago.NewStringAttribute("created_by", "lawgic"),
			),
		),
	)
}

func (c *ChromaIndex) Add(ctx context.Context, records []VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]chromago.DocumentID, 0, len(records))
	texts := make([]string, 0, len(records))
	embs := make([]embeddings.Embedding, 0, len(records))
	metas := make([]chromago.DocumentMetadata, 0, len(records))
	for _, r := range records {
		ids = append(ids, chromago.DocumentID(r.ID))
		texts = append(texts, r.Text)
		embs = append(embs, embeddings.NewEmbeddingFromFloat32(r.Embedding))
		metas = append(metas, chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("kind", r.Kind),
			chromago.NewStringAttribute("source_file", r.Source),
			chromago.NewStringAttribute("file_hash", r.Hash),
			chromago.NewIntAttribute("chunk_num", int64(r.ChunkNum)),
			chromago.NewIntAttribute("document_id", int64(r.DocumentID)),
		))
	}
	err := c.collection.Add(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
		chromago.WithMetadatas(metas...),
	)
	if err != nil {
		return fmt.Errorf("failed to add %d records to chromadb: %w", len(records), err)
	}
	return nil
}

// DeleteBySource removes every record whose source_file equals source.
func (c *ChromaIndex) DeleteBySource(ctx context.Context, source string) error {
	where := chromago.EqString("source_file", source)
	return c.collection.Delete(ctx, chromago.WithWhereDelete(where))
}

func (c *ChromaIndex) Count(ctx context.Context) (int, error) {
	count, err := c.collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

func (c *ChromaIndex) Close() error {
	if err := c.client.Close(); err != nil {
		c.log.Warn("failed to close chroma client", "error", err)
		return err
	}
	return nil
}
