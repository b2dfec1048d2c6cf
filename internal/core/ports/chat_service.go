package ports

import (
	"context"

	"github.com/pawmart/support-system/internal/core/domain"
)

// ChatService answers a user question through the tiered knowledge-base
// match, escalating to the LLM when no tier produces a hit.
type ChatService interface {
	Ask(ctx context.Context, question string) (*domain.ChatAnswer, error)
}

// FAQRepository persists the knowledge base. The persisted set is the source
// of truth; in-memory match indexes are rebuilt from List after every write.
type FAQRepository interface {
	List(ctx context.Context) ([]domain.FAQEntry, error)
	// Insert appends a new entry. The caller assigns the sequential ID.
	Insert(ctx context.Context, entry domain.FAQEntry) error
	Count(ctx context.Context) (int64, error)
}

// LLMProvider produces an answer for a prompt. Implementations own
// provider-specific timeouts and model fallback; an error here means the
// whole provider chain is exhausted.
type LLMProvider interface {
	Generate(ctx context.Context, question, knowledgeContext string) (string, error)
}
