package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"pulse-backend/internal/audit"
	"pulse-backend/internal/config"
	"pulse-backend/internal/database"
	"pulse-backend/internal/handlers"
	"pulse-backend/internal/lifecycle"
	customMiddleware "pulse-backend/internal/middleware"
	"pulse-backend/internal/notify"
	"pulse-backend/internal/screening"
	"pulse-backend/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	// Structured audit trail
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("❌ Failed to initialize audit logger: %v", err)
	}
	auditLog := audit.NewLogger(zapLogger)
	defer auditLog.Sync()

	// Pick the feedback store: MongoDB when configured, in-memory otherwise
	var feedbackStore store.Store
	if cfg.MongoURI != "" {
		db, err := database.Connect(cfg.MongoURI, cfg.DBName)
		if err != nil {
			log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
		}
		mongoStore := store.NewMongoStore(db)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			log.Printf("⚠️  Warning: failed to create feedback indexes: %v", err)
		}
		cancel()

		feedbackStore = mongoStore
	} else {
		log.Println("ℹ️  MONGODB_URI not set, using in-memory feedback store")
		feedbackStore = store.NewMemoryStore()
	}

	// Notification channel: email when Resend is configured, log-only otherwise
	var notifier notify.Notifier
	if cfg.ResendAPIKey != "" && cfg.ModerationInbox != "" {
		notifier = notify.NewEmailNotifier(cfg.ResendAPIKey, cfg.FromEmail, cfg.ModerationInbox)
	} else {
		log.Println("ℹ️  RESEND_API_KEY not set, notifications are log-only")
		notifier = notify.NewLogNotifier()
	}
	dispatcher := notify.NewDispatcher(notifier, cfg.NotifyBuffer)
	defer dispatcher.Close()

	screener := screening.NewScreener(cfg.BlockedTerms)
	engine := lifecycle.NewEngine(feedbackStore, screener, dispatcher, auditLog)

	feedbackHandler := handlers.NewFeedbackHandler(engine)
	moderationHandler := handlers.NewModerationHandler(engine)

	// Setup chi router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"pulse-backend"}`))
	})

	// Protected routes (JWT required)
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.JWTAuth(cfg.JWTSecret, auditLog))

		r.Post("/feedback", feedbackHandler.SubmitFeedback)
		r.Get("/moderate/feedbacks", moderationHandler.ListFeedbacks)
		r.Post("/moderate/feedbacks/{id}/status", moderationHandler.UpdateFeedbackStatus)
	})

	// Start server
	log.Printf("🚀 Pulse backend starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
