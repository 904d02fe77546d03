package rag

import (
	"context"

	"guru-api/internal/config"
	"guru-api/internal/db"
	"guru-api/internal/models"
)

// LLM is the hosted model collaborator.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Store is the document/illustration lookup side of the pipeline.
type Store interface {
	SearchDocuments(ctx context.Context, keyword, subject, medium string, limit int) ([]db.Document, error)
	FindFigure(ctx context.Context, figureID, subject, medium string) (*db.Figure, error)
}

type RAG struct {
	store Store
	llm   LLM
	cfg   *config.RAGConfig
}

func NewRAG(store Store, llm LLM, cfg *config.RAGConfig) *RAG {
	return &RAG{store: store, llm: llm, cfg: cfg}
}

// Answer runs the full pipeline for one authorized chat request:
// normalization, retrieval, grounded generation, figure resolution.
// It never fails; every degradation produces a usable result.
func (r *RAG) Answer(ctx context.Context, req models.ChatRequest) models.ChatResult {
	normalized := r.Normalize(ctx, req.Question, req.Subject, req.Medium)
	contextItems := r.Retrieve(ctx, normalized.Keywords, req.Subject, req.Medium)
	answer, generated := r.Generate(ctx, contextItems, normalized.Question, req.Subject, req.Medium)

	result := models.ChatResult{
		Interpreted: normalized.Question,
		Answer:      answer,
		Generated:   generated,
	}
	if generated {
		result.Image = r.ResolveFigure(ctx, contextItems, normalized.Question, answer, req.Subject, req.Medium)
	}
	return result
}
