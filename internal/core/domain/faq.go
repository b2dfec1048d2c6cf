package domain

import (
	"fmt"
	"strings"
)

// MatchType tags which tier of the answer pipeline produced a chat answer.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchFuzzy   MatchType = "fuzzy"
	MatchKeyword MatchType = "keyword"
	MatchLLM     MatchType = "llm"
)

// FAQEntry is a stored question/answer pair. Question text is unique across
// the set under NormalizeQuestion.
type FAQEntry struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ChatAnswer is the tagged result of the match-then-generate pipeline.
// Source carries the matched FAQ question for knowledge-base hits, or the
// model identifier for generated answers.
type ChatAnswer struct {
	Answer string    `json:"answer"`
	Source string    `json:"source"`
	Type   MatchType `json:"type"`
}

// NormalizeQuestion is the canonical key for FAQ uniqueness and exact
// matching: trimmed and case-folded.
func NormalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// FAQID formats the sequential entry identifier, e.g. FAQ007.
func FAQID(n int) string {
	return fmt.Sprintf("FAQ%03d", n)
}
