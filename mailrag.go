package mailrag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/siherrmann/mailrag/core/pipeline"
	"github.com/siherrmann/mailrag/core/report"
	"github.com/siherrmann/mailrag/core/retrieval"
	"github.com/siherrmann/mailrag/database"
	"github.com/siherrmann/mailrag/database/memory"
	"github.com/siherrmann/mailrag/helper"
	"github.com/siherrmann/mailrag/model"
	loadSql "github.com/siherrmann/mailrag/sql"
)

// Store is the chunk store behind MailRAG, either PostgreSQL or in-process.
type Store interface {
	database.EmailsDBHandlerFunctions
	retrieval.ChunkSearcher
}

// postgresStore joins both handlers into one Store.
type postgresStore struct {
	*database.EmailsDBHandler
	*database.ChunksDBHandler
}

// MailRAG ingests email bodies and answers receiver queries with a report
type MailRAG struct {
	DB       *helper.Database          // nil for the in-memory store
	Emails   *database.EmailsDBHandler // nil for the in-memory store
	Chunks   *database.ChunksDBHandler // nil for the in-memory store
	Store    Store
	Pipeline *pipeline.Pipeline
	Engine   *retrieval.Engine
	// QueryConfig is used by Query, a zero Mode picks vector search
	// when the pipeline has an embedder and exact lookup otherwise.
	QueryConfig model.QueryConfig

	dimension int
	// writes serializes ingestion and clearing
	writes sync.Mutex
	log    *slog.Logger
}

func defaultLogger() *slog.Logger {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	return slog.New(helper.NewPrettyHandler(os.Stdout, opts))
}

func newMailRAG(store Store, embeddingDim int, logger *slog.Logger) *MailRAG {
	m := &MailRAG{
		Store:       store,
		QueryConfig: model.QueryConfig{TopK: model.DefaultQueryConfig().TopK},
		dimension:   embeddingDim,
		log:         logger,
	}
	m.SetPipeline(pipeline.NewPipeline(pipeline.SentenceChunker(pipeline.DefaultMaxChunkChars), nil))
	return m
}

// NewMailRAG creates a MailRAG backed by PostgreSQL with pgvector.
// Chunk embeddings are stored with embeddingDim dimensions.
func NewMailRAG(config *helper.DatabaseConfiguration, embeddingDim int) (*MailRAG, error) {
	return NewMailRAGWithLogger(config, embeddingDim, defaultLogger())
}

// NewMailRAGWithLogger is NewMailRAG logging to logger from the first connection on.
func NewMailRAGWithLogger(config *helper.DatabaseConfiguration, embeddingDim int, logger *slog.Logger) (*MailRAG, error) {
	db, err := helper.NewDatabase("mailrag", config, logger)
	if err != nil {
		return nil, helper.NewError("connect database", err)
	}

	err = loadSql.Init(db.Instance)
	if err != nil {
		_ = db.Close()
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Emails first, chunks reference them
	emails, err := database.NewEmailsDBHandler(db, false)
	if err != nil {
		_ = db.Close()
		return nil, helper.NewError("create emails handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		_ = db.Close()
		return nil, helper.NewError("create chunks handler", err)
	}

	m := newMailRAG(&postgresStore{emails, chunks}, embeddingDim, logger)
	m.DB = db
	m.Emails = emails
	m.Chunks = chunks
	return m, nil
}

// NewInMemoryMailRAG creates a MailRAG that keeps everything in process memory.
// Nothing survives a restart.
func NewInMemoryMailRAG(embeddingDim int) *MailRAG {
	return newMailRAG(memory.NewStore(embeddingDim), embeddingDim, defaultLogger())
}

// SetLogger replaces the logger.
func (m *MailRAG) SetLogger(logger *slog.Logger) {
	m.log = logger
}

// Close closes the database connection
func (m *MailRAG) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// SetPipeline sets the chunking and embedding pipeline.
// A pipeline without Dimension gets the store's embedding dimension.
func (m *MailRAG) SetPipeline(p *pipeline.Pipeline) {
	if p.Dimension == 0 {
		p.Dimension = m.dimension
	}
	m.Pipeline = p
	m.Engine = retrieval.NewEngine(m.Store, p)
}

// UseDefaultPipeline sets up sentence chunking with 200 character chunks and
// the all-MiniLM-L6-v2 embedder (384 dimensions) with a 30 second timeout.
// The first call downloads the model, loading it takes a few seconds.
func (m *MailRAG) UseDefaultPipeline() error {
	if m.dimension != pipeline.DefaultEmbeddingDim {
		return helper.NewError("default pipeline", fmt.Errorf("store uses %d dimensions, default embedder produces %d", m.dimension, pipeline.DefaultEmbeddingDim))
	}

	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	m.SetPipeline(pipeline.NewPipeline(
		pipeline.SentenceChunker(pipeline.DefaultMaxChunkChars),
		pipeline.TimeoutEmbedder(embedder, pipeline.DefaultEmbedTimeout),
	))
	return nil
}

// Ingest chunks text, embeds the chunks when an embedder is set and stores
// them as one email of receiver.
func (m *MailRAG) Ingest(ctx context.Context, receiver string, text string) (*model.IngestResult, error) {
	return m.IngestEmail(ctx, &model.Email{Receiver: receiver, Content: text})
}

// IngestEmail stores email like Ingest and keeps its metadata.
// Embedding happens before anything is written, a failure leaves the store unchanged.
func (m *MailRAG) IngestEmail(ctx context.Context, email *model.Email) (*model.IngestResult, error) {
	if strings.TrimSpace(email.Receiver) == "" {
		return nil, helper.NewError("ingest", fmt.Errorf("%w: receiver name is required", model.ErrInvalidInput))
	}
	if strings.TrimSpace(email.Content) == "" {
		return nil, helper.NewError("ingest", fmt.Errorf("%w: email content is required", model.ErrInvalidInput))
	}

	chunks, err := m.Pipeline.Process(ctx, email.Content, email.Receiver)
	if err != nil {
		return nil, helper.NewError("process email", err)
	}
	email.Chunks = chunks

	m.writes.Lock()
	defer m.writes.Unlock()

	err = m.Store.InsertEmail(ctx, email)
	if err != nil {
		return nil, helper.NewError("insert email", err)
	}

	// The email is stored at this point, a failed count only drops the total.
	total, err := m.Store.CountEmails(ctx)
	if err != nil {
		m.log.Warn("Failed to count emails after ingest", slog.Int64("email_id", email.ID), slog.String("error", err.Error()))
		total = 0
	}

	m.log.Info("Ingested email", slog.String("receiver", email.Receiver), slog.Int64("email_id", email.ID), slog.Int("num_chunks", len(chunks)))

	return &model.IngestResult{
		ChunkCount:  len(chunks),
		EmailID:     email.ID,
		TotalEmails: total,
	}, nil
}

// Query renders the report for receiver using QueryConfig.
// A receiver without emails gives the "No emails found" report, not an error.
func (m *MailRAG) Query(ctx context.Context, receiver string) (string, error) {
	config := m.QueryConfig
	if config.Mode == "" {
		config.Mode = model.QueryModeExact
		if m.Pipeline.HasEmbedder() {
			config.Mode = model.QueryModeVector
		}
	}
	return m.QueryWithConfig(ctx, receiver, &config)
}

// QueryWithConfig renders the report for receiver with an explicit mode and limit.
func (m *MailRAG) QueryWithConfig(ctx context.Context, receiver string, config *model.QueryConfig) (string, error) {
	switch config.Mode {
	case model.QueryModeExact:
		return m.QueryExact(ctx, receiver)
	case model.QueryModeVector:
		return m.QueryVector(ctx, receiver, config.TopK)
	default:
		return "", helper.NewError("query", fmt.Errorf("%w: unknown query mode %q", model.ErrInvalidInput, config.Mode))
	}
}

// QueryExact renders all emails stored for receiver in insertion order.
func (m *MailRAG) QueryExact(ctx context.Context, receiver string) (string, error) {
	emails, err := m.FindByReceiver(ctx, receiver)
	if err != nil {
		return "", err
	}

	m.log.Info("Queried emails", slog.String("receiver", receiver), slog.String("mode", string(model.QueryModeExact)), slog.Int("results", len(emails)))

	return report.RenderEmails(receiver, emails), nil
}

// QueryVector searches the topK nearest chunks for the receiver name, keeps
// only exact receiver matches and renders them in original order.
func (m *MailRAG) QueryVector(ctx context.Context, receiver string, topK int) (string, error) {
	if err := validateReceiver(receiver); err != nil {
		return "", helper.NewError("vector query", err)
	}
	if topK <= 0 {
		topK = model.DefaultQueryConfig().TopK
	}

	groups, err := m.Engine.VectorRetrieve(ctx, receiver, &model.QueryConfig{Mode: model.QueryModeVector, TopK: topK})
	if err != nil {
		return "", helper.NewError("vector query", err)
	}

	m.log.Info("Queried emails", slog.String("receiver", receiver), slog.String("mode", string(model.QueryModeVector)), slog.Int("results", len(groups)))

	return report.RenderGroups(receiver, groups), nil
}

// Search returns the raw similarity hits for the receiver name without
// receiver filtering.
func (m *MailRAG) Search(ctx context.Context, receiver string, limit int) ([]*model.SearchHit, error) {
	if err := validateReceiver(receiver); err != nil {
		return nil, helper.NewError("search", err)
	}
	return m.Engine.Search(ctx, receiver, limit)
}

// FindByReceiver returns the emails of receiver in insertion order.
func (m *MailRAG) FindByReceiver(ctx context.Context, receiver string) ([]*model.Email, error) {
	if err := validateReceiver(receiver); err != nil {
		return nil, helper.NewError("find by receiver", err)
	}

	emails, err := m.Store.SelectEmailsByReceiver(ctx, receiver)
	if err != nil {
		return nil, helper.NewError("select emails by receiver", err)
	}
	return emails, nil
}

// ListAll returns every stored email in insertion order.
func (m *MailRAG) ListAll(ctx context.Context) ([]*model.Email, error) {
	emails, err := m.Store.SelectAllEmails(ctx)
	if err != nil {
		return nil, helper.NewError("select all emails", err)
	}
	return emails, nil
}

// ClearAll removes all emails and chunks. Ids start again at 1.
func (m *MailRAG) ClearAll(ctx context.Context) error {
	m.writes.Lock()
	defer m.writes.Unlock()

	err := m.Store.DeleteAllEmails(ctx)
	if err != nil {
		return helper.NewError("delete all emails", err)
	}

	m.log.Info("Cleared all emails")
	return nil
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat.
// Only available with PostgreSQL.
func (m *MailRAG) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	if m.Chunks == nil {
		return helper.NewError("change index type", fmt.Errorf("vector index is only available with the postgres store"))
	}
	return m.Chunks.ChangeIndexType(ctx, indexType, params)
}

func validateReceiver(receiver string) error {
	if strings.TrimSpace(receiver) == "" {
		return fmt.Errorf("%w: receiver name is required", model.ErrInvalidInput)
	}
	return nil
}
