package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"guru-api/internal/models"
)

// Normalize rewrites an informal question into canonical script and extracts
// search keywords via one model call. It never fails: on any call or parse
// error the raw question doubles as both the normalized question and the
// sole keyword.
func (r *RAG) Normalize(ctx context.Context, question, subject, medium string) models.NormalizedQuery {
	fallback := models.NormalizedQuery{Question: question, Keywords: []string{question}}

	prompt := fmt.Sprintf(models.NormalizePromptTemplate, medium, question, subject)
	raw, err := r.llm.Generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("normalization call failed, using raw question")
		return fallback
	}

	var decoded struct {
		InterpretedQuestion string   `json:"interpreted_question"`
		Keywords            []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &decoded); err != nil {
		log.Warn().Err(err).Msg("normalization output unparsable, using raw question")
		return fallback
	}
	if decoded.InterpretedQuestion == "" {
		decoded.InterpretedQuestion = question
	}
	if len(decoded.Keywords) == 0 {
		decoded.Keywords = []string{question}
	}
	return models.NormalizedQuery{Question: decoded.InterpretedQuestion, Keywords: decoded.Keywords}
}

// models wrap JSON in markdown fences more often than not
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
