// Package bootstrap wires the concrete adapters behind every port and
// assembles the use cases shared by cmd/api and cmd/worker.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/arabic-rag-core/internal/config"
	"github.com/kirillkom/arabic-rag-core/internal/core/domain"
	"github.com/kirillkom/arabic-rag-core/internal/core/ports"
	"github.com/kirillkom/arabic-rag-core/internal/core/usecase"
	"github.com/kirillkom/arabic-rag-core/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/arabic-rag-core/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/arabic-rag-core/internal/infrastructure/llm/openaicompat"
	"github.com/kirillkom/arabic-rag-core/internal/infrastructure/llm/openrouter"
	"github.com/kirillkom/arabic-rag-core/internal/infrastructure/queue/nats"
	"github.com/kirillkom/arabic-rag-core/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/arabic-rag-core/internal/infrastructure/rerank"
	"github.com/kirillkom/arabic-rag-core/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/arabic-rag-core/internal/infrastructure/vector/qdrant"
	"github.com/kirillkom/arabic-rag-core/internal/ingest"
	"github.com/kirillkom/arabic-rag-core/internal/ingest/extract/docx"
	"github.com/kirillkom/arabic-rag-core/internal/ingest/extract/html"
	"github.com/kirillkom/arabic-rag-core/internal/ingest/extract/image"
	"github.com/kirillkom/arabic-rag-core/internal/ingest/extract/markdown"
	"github.com/kirillkom/arabic-rag-core/internal/ingest/extract/pdf"
	"github.com/kirillkom/arabic-rag-core/internal/ingest/extract/xlsx"
	"github.com/kirillkom/arabic-rag-core/internal/rag/chunk"
	"github.com/kirillkom/arabic-rag-core/internal/rag/router"
)

// App is the fully-wired composition root shared by both processes.
// cmd/api uses IngestUC/IngestTextsUC/QueryUC/HistoryUC/ReaderUC/
// CollectionInfoUC; cmd/worker uses ProcessUC and Queue.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue ports.MessageQueue
	Repo  ports.DocumentRepository

	IngestUC         ports.DocumentIngestor
	IngestTextsUC    ports.IngestTextsService
	ProcessUC        ports.DocumentProcessor
	QueryUC          ports.QueryService
	HistoryUC        ports.HistoryService
	ReaderUC         ports.DocumentReader
	CollectionInfoUC ports.CollectionInfoService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, cfg.EmbeddingDim)
	embedder := ollama.NewEmbedder(ollamaClient)

	generator, err := selectGenerator(cfg, ollamaClient)
	if err != nil {
		return nil, fmt.Errorf("select generator backend: %w", err)
	}
	visionGenerator, err := selectVisionGenerator(cfg, ollamaClient)
	if err != nil {
		return nil, fmt.Errorf("select vision generator backend: %w", err)
	}

	vectorDB := qdrant.New(cfg.QdrantURL)
	if err := vectorDB.EnsureCollection(ctx, cfg.DocumentsCollection, cfg.EmbeddingDim); err != nil {
		return nil, fmt.Errorf("ensure documents collection: %w", err)
	}
	memory := qdrant.NewConversationMemory(vectorDB, cfg.MemoryCollection, cfg.EmbeddingDim)
	lexical := qdrant.NewLexicalSearcher(vectorDB)

	reranker := selectReranker(cfg)

	sentenceChunker := chunk.NewSentenceChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	structureChunker := chunk.NewStructureChunker(cfg.ChunkSize, cfg.ChunkOverlap)

	frontend := ingest.NewFrontend(
		pdf.NewExtractor(),
		html.NewExtractor(),
		markdown.NewExtractor(),
		docx.NewExtractor(),
		xlsx.NewExtractor(),
		image.NewExtractor(visionGenerator, domain.ImageModeAuto),
		plaintext.NewExtractor(),
	)

	retrieval := usecase.NewRetrievalEngine(
		embedder, vectorDB, reranker, cfg.DocumentsCollection,
		cfg.RetrievalMode, cfg.FusionRRFK, lexical,
	)

	rtr := router.New(cfg.RouterSimpleMaxTokens)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue, cfg.MaxFileSizeBytes, cfg.DedupEnabled, cfg.DedupGlobal)
	ingestTextsUC := usecase.NewIngestTextsUseCase(sentenceChunker, embedder, vectorDB, cfg.DocumentsCollection)
	processUC := usecase.NewProcessDocumentUseCase(repo, storage, frontend, structureChunker, embedder, vectorDB, cfg.DocumentsCollection)
	queryUC := usecase.NewQueryUseCase(rtr, memory, retrieval, generator, cfg.MaxHistory, cfg.RetrievalTopK, cfg.RerankerTopN, logger)
	historyUC := usecase.NewHistoryUseCase(memory)
	readerUC := usecase.NewDocumentReaderUseCase(repo)
	collectionInfoUC := usecase.NewCollectionInfoUseCase(vectorDB, cfg.EmbeddingDim, "cosine")

	return &App{
		Config: cfg,
		Logger: logger,

		Queue: queue,
		Repo:  repo,

		IngestUC:         ingestUC,
		IngestTextsUC:    ingestTextsUC,
		ProcessUC:        processUC,
		QueryUC:          queryUC,
		HistoryUC:        historyUC,
		ReaderUC:         readerUC,
		CollectionInfoUC: collectionInfoUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// selectGenerator picks the answer-generation backend named by
// cfg.GeneratorBackend.
func selectGenerator(cfg config.Config, ollamaClient *ollama.Client) (ports.AnswerGenerator, error) {
	switch cfg.GeneratorBackend {
	case "", "ollama":
		return ollama.NewGenerator(ollamaClient), nil
	case "openrouter":
		return openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel), nil
	case "openai-compatible":
		return openaicompat.New(cfg.OpenAICompatBaseURL, cfg.OpenAICompatAPIKey, cfg.OpenAICompatModel), nil
	default:
		return nil, fmt.Errorf("unknown generator backend %q", cfg.GeneratorBackend)
	}
}

// selectVisionGenerator picks the AnalyzeImage-capable backend used by
// the image extraction leaf, independent of the text generator backend
// so a cheap local model can answer text while a hosted multimodal
// model handles images, or vice versa.
func selectVisionGenerator(cfg config.Config, ollamaClient *ollama.Client) (ports.VisionGenerator, error) {
	switch cfg.VisionGeneratorBackend {
	case "ollama":
		return ollama.NewVisionGenerator(ollamaClient), nil
	case "", "openrouter":
		return openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel), nil
	case "openai-compatible":
		return openaicompat.New(cfg.OpenAICompatBaseURL, cfg.OpenAICompatAPIKey, cfg.OpenAICompatModel), nil
	default:
		return nil, fmt.Errorf("unknown vision generator backend %q", cfg.VisionGeneratorBackend)
	}
}

// selectReranker picks between the HTTP cross-encoder backend and the
// local heuristic fallback depending on whether a reranker service URL
// is configured for this deployment.
func selectReranker(cfg config.Config) ports.Reranker {
	if cfg.RerankerURL == "" {
		return rerank.NewHeuristic()
	}
	return rerank.NewHTTPClient(cfg.RerankerURL)
}
