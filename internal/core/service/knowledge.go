package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"

	"github.com/pawmart/support-system/internal/core/domain"
	"github.com/pawmart/support-system/internal/core/ports"
)

const (
	// fuzzyThreshold is the minimum weighted similarity for a fuzzy hit.
	// Deliberately strict: a wrong match is worse than no match.
	fuzzyThreshold = 0.72
	// questionWeight biases fuzzy similarity toward the question field.
	questionWeight = 0.8

	// Keyword-tier scoring.
	exactTokenScore    = 3.0
	consecutiveBonus   = 1.0
	substringScore     = 1.0
	verbatimQueryBonus = 4.0
	// keywordFloorPerWord sets the acceptance floor proportional to the
	// query word count, so a single weak token cannot carry a match.
	keywordFloorPerWord = 1.5

	minTokenLen = 3
)

// KnowledgeBase owns the in-memory match index over the persisted FAQ set.
// The repository is the source of truth; the index is a derived snapshot,
// rebuilt on every write and published with an atomic swap so readers never
// observe a half-built index. Writes are serialized by a single mutex.
type KnowledgeBase struct {
	repo   ports.FAQRepository
	logger zerolog.Logger

	writeMu  sync.Mutex
	snapshot atomic.Pointer[kbSnapshot]
}

type kbSnapshot struct {
	entries []kbEntry
}

// kbEntry caches the normalized and tokenized forms used by the match tiers.
type kbEntry struct {
	faq        domain.FAQEntry
	normalized string // trimmed, case-folded question
	answerNorm string
	text       string // normalized question + answer, for containment checks
	tokens     []string
}

func NewKnowledgeBase(repo ports.FAQRepository, logger zerolog.Logger) *KnowledgeBase {
	kb := &KnowledgeBase{repo: repo, logger: logger}
	kb.snapshot.Store(&kbSnapshot{})
	return kb
}

// Load rebuilds the index from the repository.
func (kb *KnowledgeBase) Load(ctx context.Context) error {
	entries, err := kb.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load knowledge base: %w", err)
	}
	kb.snapshot.Store(buildSnapshot(entries))
	kb.logger.Info().Int("entries", len(entries)).Msg("knowledge base loaded")
	return nil
}

// Size reports the number of indexed entries.
func (kb *KnowledgeBase) Size() int {
	return len(kb.snapshot.Load().entries)
}

// Add appends a new FAQ entry unless an entry with the same normalized
// question already exists. Inserting the same pair twice leaves exactly one
// stored entry. Writes are serialized and the index is swapped before Add
// returns, so subsequent reads observe the new entry.
func (kb *KnowledgeBase) Add(ctx context.Context, question, answer string) error {
	question = strings.TrimSpace(question)
	if question == "" || strings.TrimSpace(answer) == "" {
		return &domain.ValidationError{Field: "question/answer", Reason: "must not be empty"}
	}

	kb.writeMu.Lock()
	defer kb.writeMu.Unlock()

	snap := kb.snapshot.Load()
	key := domain.NormalizeQuestion(question)
	for _, e := range snap.entries {
		if e.normalized == key {
			return nil
		}
	}

	entry := domain.FAQEntry{
		ID:       domain.FAQID(len(snap.entries) + 1),
		Question: question,
		Answer:   answer,
	}
	if err := kb.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("add knowledge entry: %w", err)
	}

	entries := make([]domain.FAQEntry, 0, len(snap.entries)+1)
	for _, e := range snap.entries {
		entries = append(entries, e.faq)
	}
	entries = append(entries, entry)
	kb.snapshot.Store(buildSnapshot(entries))

	kb.logger.Info().Str("faq_id", entry.ID).Str("question", entry.Question).Msg("knowledge entry added")
	return nil
}

// PromptContext renders up to limit entries as grounding text for the LLM
// prompt.
func (kb *KnowledgeBase) PromptContext(limit int) string {
	snap := kb.snapshot.Load()
	var b strings.Builder
	for i := range snap.entries {
		if i >= limit {
			break
		}
		fmt.Fprintf(&b, "Q: %s A: %s\n", snap.entries[i].faq.Question, snap.entries[i].faq.Answer)
	}
	return strings.TrimSpace(b.String())
}

// Match runs the tiered search: exact, then fuzzy, then keyword overlap.
// First tier to produce a hit wins.
func (kb *KnowledgeBase) Match(question string) (*domain.ChatAnswer, bool) {
	snap := kb.snapshot.Load()
	if len(snap.entries) == 0 {
		return nil, false
	}

	query := domain.NormalizeQuestion(question)
	if query == "" {
		return nil, false
	}

	if hit := matchExact(snap, query); hit != nil {
		return hit, true
	}
	if hit := matchFuzzy(snap, query); hit != nil {
		return hit, true
	}
	if hit := matchKeyword(snap, query); hit != nil {
		return hit, true
	}
	return nil, false
}

func matchExact(snap *kbSnapshot, query string) *domain.ChatAnswer {
	for _, e := range snap.entries {
		if e.normalized == query {
			return &domain.ChatAnswer{
				Answer: e.faq.Answer,
				Source: e.faq.Question,
				Type:   domain.MatchExact,
			}
		}
	}
	return nil
}

// matchFuzzy scores normalized Levenshtein similarity over question and
// answer, weighted toward the question.
func matchFuzzy(snap *kbSnapshot, query string) *domain.ChatAnswer {
	var best *kbEntry
	bestScore := 0.0
	for i := range snap.entries {
		e := &snap.entries[i]
		score := questionWeight*similarity(query, e.normalized) +
			(1-questionWeight)*similarity(query, e.answerNorm)
		if score > bestScore {
			bestScore = score
			best = e
		}
	}
	if best == nil || bestScore < fuzzyThreshold {
		return nil
	}
	return &domain.ChatAnswer{
		Answer: best.faq.Answer,
		Source: best.faq.Question,
		Type:   domain.MatchFuzzy,
	}
}

// matchKeyword scores token overlap between the query and each candidate's
// question+answer text. Exact token hits score high, with a bonus for
// consecutive-position runs; substring containment scores low; a verbatim
// occurrence of the whole query adds a flat bonus. The total is normalized
// by a mild length factor and must clear a floor proportional to the query
// word count.
func matchKeyword(snap *kbSnapshot, query string) *domain.ChatAnswer {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	var best *kbEntry
	bestScore := 0.0
	for i := range snap.entries {
		e := &snap.entries[i]
		score := keywordScore(queryTokens, query, e)
		if score > bestScore {
			bestScore = score
			best = e
		}
	}

	floor := keywordFloorPerWord * float64(len(queryTokens))
	if best == nil || bestScore < floor {
		return nil
	}
	return &domain.ChatAnswer{
		Answer: best.faq.Answer,
		Source: best.faq.Question,
		Type:   domain.MatchKeyword,
	}
}

func keywordScore(queryTokens []string, query string, e *kbEntry) float64 {
	score := 0.0
	lastPos := -2
	for _, qt := range queryTokens {
		pos := tokenIndex(e.tokens, qt)
		switch {
		case pos >= 0:
			score += exactTokenScore
			if pos == lastPos+1 {
				score += consecutiveBonus
			}
			lastPos = pos
		case containsToken(e.tokens, qt):
			score += substringScore
			lastPos = -2
		default:
			lastPos = -2
		}
	}

	if strings.Contains(e.text, query) {
		score += verbatimQueryBonus
	}

	// Mild length normalization keeps verbose entries from accumulating
	// incidental token hits.
	return score / (1.0 + float64(len(e.tokens))/50.0)
}

func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	return 1.0 - float64(dist)/float64(longest)
}

// tokenize lowercases, splits on non-alphanumeric runes and drops tokens
// shorter than minTokenLen.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func tokenIndex(tokens []string, tok string) int {
	for i, t := range tokens {
		if t == tok {
			return i
		}
	}
	return -1
}

// containsToken reports a partial hit: either string contains the other.
func containsToken(tokens []string, tok string) bool {
	for _, t := range tokens {
		if strings.Contains(t, tok) || strings.Contains(tok, t) {
			return true
		}
	}
	return false
}

func buildSnapshot(entries []domain.FAQEntry) *kbSnapshot {
	snap := &kbSnapshot{entries: make([]kbEntry, 0, len(entries))}
	for _, faq := range entries {
		normalized := domain.NormalizeQuestion(faq.Question)
		answerNorm := domain.NormalizeQuestion(faq.Answer)
		text := normalized + " " + answerNorm
		snap.entries = append(snap.entries, kbEntry{
			faq:        faq,
			normalized: normalized,
			answerNorm: answerNorm,
			text:       text,
			tokens:     tokenize(text),
		})
	}
	return snap
}
