package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pawmart/support-system/internal/core/domain"
)

const faqCollection = "faqs"

// FAQRepository implements ports.FAQRepository on MongoDB. The stored
// question_key (normalized question) carries a unique index, so duplicate
// inserts lose the race at the storage layer.
type FAQRepository struct {
	coll *mongo.Collection
}

func NewFAQRepository(db *mongo.Database) *FAQRepository {
	return &FAQRepository{coll: db.Collection(faqCollection)}
}

type faqDoc struct {
	FAQID       string `bson:"faq_id"`
	Question    string `bson:"question"`
	QuestionKey string `bson:"question_key"`
	Answer      string `bson:"answer"`
}

func (r *FAQRepository) List(ctx context.Context) ([]domain.FAQEntry, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "faq_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []domain.FAQEntry
	for cursor.Next(ctx) {
		var doc faqDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode faq: %w", err)
		}
		entries = append(entries, domain.FAQEntry{ID: doc.FAQID, Question: doc.Question, Answer: doc.Answer})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list faqs: %w", err)
	}
	return entries, nil
}

func (r *FAQRepository) Insert(ctx context.Context, entry domain.FAQEntry) error {
	doc := faqDoc{
		FAQID:       entry.ID,
		Question:    entry.Question,
		QuestionKey: domain.NormalizeQuestion(entry.Question),
		Answer:      entry.Answer,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Already present: inserts are idempotent by question key.
			return nil
		}
		return fmt.Errorf("insert faq: %w", err)
	}
	return nil
}

func (r *FAQRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count faqs: %w", err)
	}
	return n, nil
}
