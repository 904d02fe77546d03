package rag

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Retrieve searches the document store once per keyword and merges the hits
// in first-seen order, dropping exact duplicates. An empty result is a valid
// terminal state, not an error; store failures degrade to "no results" for
// the affected keyword.
func (r *RAG) Retrieve(ctx context.Context, keywords []string, subject, medium string) []string {
	var hits []string
	seen := make(map[string]struct{})
	for _, kw := range keywords {
		docs, err := r.store.SearchDocuments(ctx, kw, subject, medium, r.cfg.SearchLimit)
		if err != nil {
			log.Warn().Err(err).Str("keyword", kw).Msg("document search failed")
			continue
		}
		for _, doc := range docs {
			if _, ok := seen[doc.Content]; ok {
				continue
			}
			seen[doc.Content] = struct{}{}
			hits = append(hits, doc.Content)
		}
	}
	return hits
}
