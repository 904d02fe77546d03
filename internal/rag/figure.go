package rag

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"guru-api/internal/db"
	"guru-api/internal/models"
	"guru-api/internal/retry"
)

var figureIDPattern = regexp.MustCompile(models.FigureIDRegex)

// ResolveFigure locates the illustration referenced by the answer. The
// answer text is authoritative when it contains a <digits>.<digits> id;
// otherwise one extra model call over a bounded context prefix may name one.
// Store lookups retry on transient failure; every miss resolves to nil.
func (r *RAG) ResolveFigure(ctx context.Context, contextItems []string, question, answer, subject, medium string) *models.ImageInfo {
	figureID := figureIDPattern.FindString(answer)
	if figureID == "" && len(contextItems) > 0 {
		figureID = r.askForFigureID(ctx, contextItems, question, answer)
	}
	if figureID == "" {
		return nil
	}

	var fig *db.Figure
	err := retry.Do(ctx,
		retry.Fixed(time.Duration(r.cfg.FigureRetryDelay)),
		uint64(r.cfg.FigureRetries),
		nil,
		func() error {
			found, err := r.store.FindFigure(ctx, figureID, subject, medium)
			if err != nil {
				return err
			}
			fig = found
			return nil
		})
	if err != nil {
		log.Warn().Err(err).Str("figure_id", figureID).Msg("figure lookup failed")
		return nil
	}
	if fig == nil {
		return nil
	}
	return &models.ImageInfo{
		ImageURL:    fig.ImageURL,
		Description: fig.Description,
		PageNumber:  fig.PageNumber,
	}
}

func (r *RAG) askForFigureID(ctx context.Context, contextItems []string, question, answer string) string {
	prefix := contextItems
	if len(prefix) > r.cfg.FigureContextCap {
		prefix = prefix[:r.cfg.FigureContextCap]
	}
	prompt := fmt.Sprintf(models.FigurePromptTemplate,
		strings.Join(prefix, models.ContextSeparator), question, answer)
	out, err := r.llm.Generate(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("figure id fallback call failed")
		return ""
	}
	return figureIDPattern.FindString(out)
}
