package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"guru-api/internal/llm"
	"guru-api/internal/models"
	"guru-api/internal/retry"
)

// Generate produces the tutoring answer from retrieved context. The second
// return value reports whether the model actually answered; fallback
// messages (no context, upstream failure) return false so no credit is
// charged for them. Rate-limited calls are retried with increasing delay;
// any other model error aborts to the busy message.
func (r *RAG) Generate(ctx context.Context, contextItems []string, question, subject, medium string) (string, bool) {
	if len(contextItems) == 0 {
		return models.NoInformationMessage, false
	}

	prompt := fmt.Sprintf(models.AnswerPromptTemplate,
		subject, medium,
		strings.Join(contextItems, models.ContextSeparator),
		question, medium)

	var answer string
	err := retry.Do(ctx,
		retry.Incremental(time.Duration(r.cfg.GenerateRetryDelay)),
		uint64(r.cfg.GenerateRetries),
		llm.IsRateLimit,
		func() error {
			out, err := r.llm.Generate(ctx, prompt)
			if err != nil {
				return err
			}
			answer = out
			return nil
		})
	if err != nil {
		log.Error().Err(err).Msg("answer generation failed")
		return models.SystemBusyMessage, false
	}
	if strings.TrimSpace(answer) == "" {
		return models.SystemBusyMessage, false
	}
	return answer, true
}
