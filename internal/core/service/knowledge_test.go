package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pawmart/support-system/internal/core/domain"
)

type stubFAQRepo struct {
	entries   []domain.FAQEntry
	insertErr error
}

func (r *stubFAQRepo) List(_ context.Context) ([]domain.FAQEntry, error) {
	out := make([]domain.FAQEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *stubFAQRepo) Insert(_ context.Context, entry domain.FAQEntry) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *stubFAQRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.entries)), nil
}

func newTestKnowledgeBase(t *testing.T, entries ...domain.FAQEntry) (*KnowledgeBase, *stubFAQRepo) {
	t.Helper()
	repo := &stubFAQRepo{entries: entries}
	kb := NewKnowledgeBase(repo, zerolog.Nop())
	if err := kb.Load(context.Background()); err != nil {
		t.Fatalf("load knowledge base: %v", err)
	}
	return kb, repo
}

func dogFAQ() domain.FAQEntry {
	return domain.FAQEntry{ID: "FAQ001", Question: "What is a dog?", Answer: "A dog is a pet."}
}

func TestKnowledgeBase_ExactMatchIgnoresCase(t *testing.T) {
	kb, _ := newTestKnowledgeBase(t, dogFAQ())

	answer, ok := kb.Match("  WHAT IS A DOG?  ")
	if !ok {
		t.Fatalf("expected a match")
	}
	if answer.Type != domain.MatchExact {
		t.Fatalf("expected exact match, got %s", answer.Type)
	}
	if answer.Answer != "A dog is a pet." {
		t.Fatalf("unexpected answer: %q", answer.Answer)
	}
	if answer.Source != "What is a dog?" {
		t.Fatalf("unexpected source: %q", answer.Source)
	}
}

func TestKnowledgeBase_FuzzyMatchToleratesTypos(t *testing.T) {
	kb, _ := newTestKnowledgeBase(t, dogFAQ())

	answer, ok := kb.Match("What is a dogg?")
	if !ok {
		t.Fatalf("expected a fuzzy match")
	}
	if answer.Type != domain.MatchFuzzy {
		t.Fatalf("expected fuzzy match, got %s", answer.Type)
	}
	if answer.Answer != "A dog is a pet." {
		t.Fatalf("unexpected answer: %q", answer.Answer)
	}
}

func TestKnowledgeBase_KeywordMatch(t *testing.T) {
	kb, _ := newTestKnowledgeBase(t,
		dogFAQ(),
		domain.FAQEntry{ID: "FAQ002", Question: "Which collar sizes do you stock?", Answer: "Collars come in small, medium and large."},
	)

	answer, ok := kb.Match("collar sizes available")
	if !ok {
		t.Fatalf("expected a keyword match")
	}
	if answer.Type != domain.MatchKeyword {
		t.Fatalf("expected keyword match, got %s", answer.Type)
	}
	if answer.Source != "Which collar sizes do you stock?" {
		t.Fatalf("matched wrong entry: %q", answer.Source)
	}
}

func TestKnowledgeBase_NoMatchForUnrelatedQuery(t *testing.T) {
	kb, _ := newTestKnowledgeBase(t, dogFAQ())

	if _, ok := kb.Match("ozymandias arthropod chimera monolith"); ok {
		t.Fatalf("expected no match for unrelated query")
	}
}

func TestKnowledgeBase_SingleWeakTokenDoesNotMatch(t *testing.T) {
	kb, _ := newTestKnowledgeBase(t, dogFAQ())

	// One incidental token among several must not clear the floor.
	if _, ok := kb.Match("renaissance cartography dog symposium proceedings"); ok {
		t.Fatalf("expected weak overlap to be rejected")
	}
}

func TestKnowledgeBase_EmptyBase(t *testing.T) {
	kb, _ := newTestKnowledgeBase(t)

	if _, ok := kb.Match("What is a dog?"); ok {
		t.Fatalf("expected no match on empty base")
	}
}

func TestKnowledgeBase_AddIsIdempotent(t *testing.T) {
	kb, repo := newTestKnowledgeBase(t)
	ctx := context.Background()

	if err := kb.Add(ctx, "What is a leash?", "A leash keeps your dog close."); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := kb.Add(ctx, "what is a leash?  ", "A different answer."); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	if len(repo.entries) != 1 {
		t.Fatalf("expected exactly one stored entry, got %d", len(repo.entries))
	}
	if kb.Size() != 1 {
		t.Fatalf("expected index size 1, got %d", kb.Size())
	}
}

func TestKnowledgeBase_AddIsVisibleToMatch(t *testing.T) {
	kb, _ := newTestKnowledgeBase(t)
	ctx := context.Background()

	if err := kb.Add(ctx, "Do you ship harnesses?", "Yes, harnesses ship worldwide."); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	answer, ok := kb.Match("do you ship harnesses?")
	if !ok || answer.Type != domain.MatchExact {
		t.Fatalf("expected exact match on freshly added entry, ok=%v answer=%+v", ok, answer)
	}
}

func TestKnowledgeBase_AddAssignsSequentialIDs(t *testing.T) {
	kb, repo := newTestKnowledgeBase(t, dogFAQ())
	ctx := context.Background()

	if err := kb.Add(ctx, "Do you sell cat beds?", "Yes, several models."); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if got := repo.entries[len(repo.entries)-1].ID; got != "FAQ002" {
		t.Fatalf("expected FAQ002, got %s", got)
	}
}

func TestKnowledgeBase_AddRejectsEmpty(t *testing.T) {
	kb, _ := newTestKnowledgeBase(t)

	var ve *domain.ValidationError
	if err := kb.Add(context.Background(), "   ", "answer"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
