package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/pawmart/support-system/internal/api"
	"github.com/pawmart/support-system/internal/api/handler"
	"github.com/pawmart/support-system/internal/core/domain"
	"github.com/pawmart/support-system/internal/core/service"
	"github.com/pawmart/support-system/internal/infrastructure/config"
	mongodb "github.com/pawmart/support-system/internal/infrastructure/db/mongo"
	redisdb "github.com/pawmart/support-system/internal/infrastructure/db/redis"
	"github.com/pawmart/support-system/internal/infrastructure/llm"
	"github.com/pawmart/support-system/internal/infrastructure/queue"
	"github.com/pawmart/support-system/pkg/logger"
)

const (
	shutdownTimeout      = 10 * time.Second
	tokenCleanupInterval = time.Hour
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	// --- Services ---
	credRepo := mongodb.NewCredentialRepository(db)
	faqRepo := mongodb.NewFAQRepository(db)
	resetStore := redisdb.NewResetCodeStore(rdb)

	tokens := service.NewTokenService(
		cfg.Auth.AccessTokenSecret, cfg.Auth.RefreshTokenSecret,
		cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL,
	)
	authService := service.NewAuthService(credRepo, resetStore, tokens, cfg.Auth.BcryptCost, log)

	kb := service.NewKnowledgeBase(faqRepo, log)

	if cfg.IsDevelopment() {
		seedDevelopmentData(ctx, log, authService, kb, faqRepo)
	}

	if err := kb.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("knowledge base load failed")
	}
	log.Info().Int("entries", kb.Size()).Msg("knowledge base loaded")

	writer := queue.NewKnowledgeWriter(kb, log)
	writer.Start(ctx)

	llmProvider := llm.NewOpenAIProvider(llm.Config{
		APIKey:        cfg.OpenAI.APIKey,
		Model:         cfg.OpenAI.Model,
		FallbackModel: cfg.OpenAI.FallbackModel,
		Timeout:       cfg.OpenAI.Timeout,
	}, log)

	chatService := service.NewChatService(kb, llmProvider, writer, log)

	go cleanupExpiredTokens(ctx, log, credRepo)

	// --- HTTP ---
	e := api.NewRouter(api.RouterDeps{
		Auth:     authService,
		Chat:     chatService,
		Verifier: tokens,
		Health:   handler.NewHealthHandler(db, rdb),
		DevMode:  cfg.IsDevelopment(),
		Logger:   log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// The writer drains buffered knowledge entries before exiting.
	writer.Wait()
	log.Info().Msg("stopped")
}

// cleanupExpiredTokens periodically deletes refresh tokens past their
// expires_at. Lookups already filter expired rows; this keeps the
// collection from growing without bound.
func cleanupExpiredTokens(ctx context.Context, log zerolog.Logger, repo *mongodb.CredentialRepository) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.RemoveExpiredRefreshTokens(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("expired token cleanup failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("removed", n).Msg("expired refresh tokens cleaned up")
			}
		}
	}
}

// seedDevelopmentData creates test accounts and a starter FAQ set when the
// database is empty. Development only.
func seedDevelopmentData(ctx context.Context, log zerolog.Logger, auth *service.AuthService, kb *service.KnowledgeBase, faqs *mongodb.FAQRepository) {
	testUsers := []struct{ username, password string }{
		{"user1", "Password123"},
		{"user2", "Password456"},
		{"testuser", "Testpass789"},
	}
	for _, u := range testUsers {
		if _, err := auth.Register(ctx, u.username, "", u.password); err != nil {
			if !errors.Is(err, domain.ErrUserExists) {
				log.Warn().Err(err).Str("username", u.username).Msg("test user seed failed")
			}
			continue
		}
		log.Info().Str("username", u.username).Msg("test user created")
	}

	n, err := faqs.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("faq count failed, skipping seed")
		return
	}
	if n > 0 {
		return
	}

	starter := []domain.FAQEntry{
		{Question: "What materials are your collars made of?", Answer: "Our collars come in nylon, leather and biothane, all sourced from certified suppliers."},
		{Question: "Do you ship internationally?", Answer: "Yes, we ship worldwide. International orders typically arrive within 7 to 14 business days."},
		{Question: "How do I measure my dog for a harness?", Answer: "Measure around the widest part of the chest, just behind the front legs, and add two fingers of slack."},
		{Question: "What is your return policy?", Answer: "Unused items can be returned within 30 days for a full refund."},
		{Question: "Can I customize a collar with my pet's name?", Answer: "Yes, engraved and embroidered name customization is available on most collar models."},
	}
	for i, entry := range starter {
		entry.ID = domain.FAQID(i + 1)
		if err := faqs.Insert(ctx, entry); err != nil {
			log.Warn().Err(err).Str("faq_id", entry.ID).Msg("faq seed failed")
		}
	}
	log.Info().Int("count", len(starter)).Msg("starter faqs seeded")
}
