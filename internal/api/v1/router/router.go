package router

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"skillpath/internal/ai"
	"skillpath/internal/api/v1/handler"
	"skillpath/internal/config"
	"skillpath/internal/content"
	"skillpath/internal/mailer"
	"skillpath/internal/metrics"
	"skillpath/internal/middleware"
	"skillpath/internal/pgmq"
	"skillpath/internal/pubsub"
	"skillpath/internal/repository"
	"skillpath/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New wires the API. The returned cleanup closes the database pool and the
// Pub/Sub client.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, func(), error) {
	logger.Info().Str("environment", cfg.Environment).Msg("App environment loaded")

	// 1. Open DB pool
	pool, err := OpenPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	cleanups := []func(){pool.Close}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// 2. Initialize validator and metrics
	validate := handler.NewValidator()
	m := metrics.New()

	// 3. Initialize Pub/Sub events (optional)
	var events *pubsub.EventEmitter
	if cfg.PubSubEventsTopic != "" {
		publisher, err := pubsub.NewPublisher(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, func() { _ = publisher.Close() })
		events = pubsub.NewEventEmitter(publisher, cfg.PubSubEventsTopic, logger)
	} else {
		logger.Warn().Msg("PUBSUB_EVENTS_TOPIC not set, domain events are disabled")
	}

	// 4. Initialize the generative model
	var gen ai.Generator = ai.Disabled{}
	gemini, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, time.Duration(cfg.AIRequestTimeoutSec)*time.Second, m)
	switch {
	case err == nil:
		gen = gemini
	case errors.Is(err, ai.ErrNotConfigured):
		logger.Warn().Msg("GEMINI_API_KEY not set, AI features will fail")
	default:
		cleanup()
		return nil, nil, err
	}

	// 5. Initialize content sources, each behind its own breaker
	httpClient := &http.Client{Timeout: time.Duration(cfg.ContentRequestTimeoutSec) * time.Second}
	breaker := content.DefaultBreakerSettings()
	merger := content.NewMerger([]content.Source{
		content.WithBreaker(content.NewDevTo(cfg.DevToBaseURL, httpClient), breaker, logger),
		content.WithBreaker(content.NewMedium(cfg.RSS2JSONBaseURL, cfg.MediumFeedBaseURL, httpClient), breaker, logger),
	}, logger, m)

	// 6. Initialize repositories & services & handlers
	userRepo := repository.NewUserRepo(pool)
	usageRepo := repository.NewUsageRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)
	bookmarkRepo := repository.NewBookmarkRepo(pool)
	generatedRepo := repository.NewGeneratedRoadmapRepo(pool)
	suggestionRepo := repository.NewSuggestionRepo(pool)
	careerRepo := repository.NewCareerRepo(pool)
	roadmapRepo := repository.NewRoadmapRepo(pool)

	mailQueue := mailer.NewQueue(pgmq.New(pool), cfg.EmailQueueName)
	tokens := service.TokenSettings{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.RefreshSecret(),
		AccessTTL:     time.Duration(cfg.AccessTokenTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(cfg.RefreshTokenTTLHr) * time.Hour,
	}

	userSvc := service.NewUserService(userRepo, service.NewGoogleVerifier(cfg.GoogleClientID), mailQueue, tokens, cfg.ClientURL, logger)
	usageSvc := service.NewUsageService(userRepo, usageRepo, logger)
	progressSvc := service.NewProgressService(userRepo, progressRepo, events, logger)
	bookmarkSvc := service.NewBookmarkService(userRepo, bookmarkRepo, logger)
	contentSvc := service.NewContentService(merger)
	catalogSvc := service.NewCatalogService(roadmapRepo, logger)
	roadmapSvc := service.NewRoadmapService(userRepo, usageRepo, generatedRepo, gen, events, m, logger)
	suggestionSvc := service.NewSuggestionService(userRepo, usageRepo, suggestionRepo, gen, m, logger)
	careerSvc := service.NewCareerService(userRepo, usageRepo, careerRepo, gen, events, m, logger)
	mentorSvc := service.NewMentorService(service.MentorDeps{
		Users:       userRepo,
		Usage:       usageRepo,
		Progress:    progressRepo,
		Bookmarks:   bookmarkRepo,
		Generated:   generatedRepo,
		Careers:     careerRepo,
		Suggestions: suggestionRepo,
	}, gen, m, logger)

	handlers := []interface {
		RegisterRoutes(*http.ServeMux, func(http.Handler) http.Handler)
	}{
		handler.NewAuthHandler(userSvc, validate, logger, cfg.IsDevelopment()),
		handler.NewProgressHandler(progressSvc, bookmarkSvc, validate, logger),
		handler.NewContentHandler(contentSvc, catalogSvc, logger),
		handler.NewRoadmapHandler(roadmapSvc, usageSvc, validate, logger),
		handler.NewSuggestionHandler(suggestionSvc, usageSvc, validate, logger),
		handler.NewCareerHandler(careerSvc, usageSvc, validate, logger),
		handler.NewMentorHandler(mentorSvc, usageSvc, validate, logger),
	}

	// 7. Initialize middleware
	authMiddleware := middleware.AuthMiddleware(cfg.JWTSecret, logger)

	// 8. Create ServeMux router
	apiV1Mux := http.NewServeMux()
	for _, h := range handlers {
		h.RegisterRoutes(apiV1Mux, authMiddleware)
	}

	mux := http.NewServeMux()
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Redirect /api/* to /v1/* for backward compatibility
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/")
		http.Redirect(w, r, withQuery("/v1/"+rest, r), http.StatusPermanentRedirect)
	})

	// 9. Apply CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return middleware.LoggerMiddleware(logger, m)(c.Handler(mux)), cleanup, nil
}

// OpenPool connects to Postgres. In development SSL is disabled unless the
// DSN says otherwise; elsewhere the simple protocol is used so a transaction
// pooler like pgbouncer does not trip over prepared statements.
func OpenPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := cfg.DBConnectionString
	if cfg.IsDevelopment() && !strings.Contains(dsn, "sslmode") {
		dsn = appendParam(dsn, "sslmode=disable")
	}
	if !cfg.IsDevelopment() && !strings.Contains(dsn, "default_query_exec_mode") {
		dsn = appendParam(dsn, "default_query_exec_mode=simple_protocol")
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = 25
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// appendParam adds a key=value setting to either a URL or a keyword/value DSN.
func appendParam(dsn, param string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if strings.Contains(dsn, "?") {
			return dsn + "&" + param
		}
		return dsn + "?" + param
	}
	return dsn + " " + param
}

func allowedOrigins(cfg *config.Config) []string {
	if cfg.IsDevelopment() {
		return []string{cfg.FrontendURL, "http://localhost:3000", "http://localhost:5173"}
	}
	return []string{cfg.FrontendURL}
}

func withQuery(path string, r *http.Request) string {
	if r.URL.RawQuery == "" {
		return path
	}
	return path + "?" + r.URL.RawQuery
}
