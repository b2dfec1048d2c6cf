package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pawmart/support-system/internal/core/domain"
	"github.com/pawmart/support-system/internal/core/ports"
)

// FallbackAnswer is returned when the whole LLM provider chain fails. The
// pipeline never propagates a provider error to the caller.
const FallbackAnswer = "Sorry, I don't have an answer for that question yet. Please try rephrasing it or contact our support team."

// promptContextEntries caps how much of the knowledge base is stuffed into
// the LLM prompt as grounding.
const promptContextEntries = 10

// KnowledgeAppender is the interface the chat pipeline uses to persist newly
// generated Q/A pairs. The production implementation is a single-worker
// queue so knowledge writes stay serialized.
type KnowledgeAppender interface {
	Enqueue(question, answer string)
}

// ChatService runs the match-then-generate pipeline: exact, fuzzy and
// keyword tiers over the knowledge base, then the LLM. Generated answers to
// relevant questions are offered back to the knowledge base for future
// matches.
type ChatService struct {
	kb       *KnowledgeBase
	llm      ports.LLMProvider
	appender KnowledgeAppender
	logger   zerolog.Logger
}

func NewChatService(kb *KnowledgeBase, llm ports.LLMProvider, appender KnowledgeAppender, logger zerolog.Logger) *ChatService {
	return &ChatService{kb: kb, llm: llm, appender: appender, logger: logger}
}

// Ask answers a question, tagging the result with the tier that produced it.
func (s *ChatService) Ask(ctx context.Context, question string) (*domain.ChatAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &domain.ValidationError{Field: "question", Reason: "must not be empty"}
	}

	if answer, ok := s.kb.Match(question); ok {
		s.logger.Debug().
			Str("type", string(answer.Type)).
			Str("matched", answer.Source).
			Msg("knowledge base hit")
		return answer, nil
	}

	return s.generate(ctx, question), nil
}

// generate escalates to the LLM. Provider failure degrades to the static
// fallback text; it never fails the request.
func (s *ChatService) generate(ctx context.Context, question string) *domain.ChatAnswer {
	text, err := s.llm.Generate(ctx, question, s.kb.PromptContext(promptContextEntries))
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.Warn().Err(err).Str("question", question).Msg("llm generation failed, using fallback answer")
		return &domain.ChatAnswer{
			Answer: FallbackAnswer,
			Source: "fallback",
			Type:   domain.MatchLLM,
		}
	}

	answer := strings.TrimSpace(text)

	// Only relevant questions make it into the knowledge base; chit-chat
	// must never pollute it. The appender serializes the write and the
	// duplicate check happens at insert time.
	if IsRelevantQuestion(question) {
		s.appender.Enqueue(question, answer)
	} else {
		s.logger.Debug().Str("question", question).Msg("question not relevant, skipping knowledge insert")
	}

	return &domain.ChatAnswer{
		Answer: answer,
		Source: "llm",
		Type:   domain.MatchLLM,
	}
}
