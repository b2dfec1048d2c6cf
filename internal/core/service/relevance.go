package service

import "strings"

// relevantKeywords is the pet/product vocabulary: a question containing any
// of these is worth keeping in the knowledge base.
var relevantKeywords = []string{
	"pet", "dog", "cat", "puppy", "kitten", "animal",
	"collar", "leash", "harness", "toy", "accessory", "bed",
	"bowl", "feeder", "food", "treat", "snack", "bone",
	"carrier", "crate", "scratcher", "clothes", "brush",
	"flea", "vet", "grooming", "wash", "clean", "bath",
	"order", "ship", "delivery", "store", "shop", "buy",
	"purchase", "sale", "stock", "offer", "discount", "price",
	"return", "warranty", "brand", "size", "material", "safe",
	"durable", "reflective", "nylon", "leather", "machine washable",
	"personalized", "custom",
}

// greetings are courtesy phrases: a question that is only a greeting is
// chit-chat, not knowledge.
var greetings = []string{
	"hello", "hi", "hey", "greetings",
	"good morning", "good afternoon", "good evening",
	"thanks", "thank you", "bye", "goodbye",
}

// IsRelevantQuestion reports whether a question belongs in the knowledge
// base. Product/pet vocabulary wins; greetings and short generic strings are
// rejected; everything else defaults to not relevant, so chit-chat never
// pollutes the FAQ set. The empty string is never relevant.
func IsRelevantQuestion(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return false
	}
	for _, k := range relevantKeywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	// Pure courtesy phrases are chit-chat, as is anything else without
	// store vocabulary.
	for _, g := range greetings {
		if strings.Contains(q, g) {
			return false
		}
	}
	return false
}
