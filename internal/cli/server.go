package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"course-quiz-service/internal/app"
	"course-quiz-service/internal/config"
	"course-quiz-service/internal/domain"
	"course-quiz-service/internal/infra/memory"
	aiprovider "course-quiz-service/internal/infra/openai"
	pgstore "course-quiz-service/internal/infra/postgres"
	rediscache "course-quiz-service/internal/infra/redis"
	transport "course-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz generation server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	lockTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Minute)
	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)

	var quizStore app.QuizStore = memory.NewQuizStore()
	var attemptStore app.AttemptStore = memory.NewAttemptStore()
	var courses app.CourseRepository
	var assets app.AssetRepository
	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		quizStore = pgstore.NewQuizStore(db)
		attemptStore = pgstore.NewAttemptStore(db)

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		catalog := pgstore.NewCourseCatalog(pool)
		courses, assets = catalog, catalog
	} else {
		catalog := memory.NewCourseCatalog(sampleCourses(), sampleAssets())
		courses, assets = catalog, catalog
	}

	quizzes := app.NewQuizService(quizStore)

	var locks app.Locker = memory.NewKeyedLock()
	var keys app.AnswerKeyRepository
	if redisClient != nil {
		locks = rediscache.NewGenerationLock(redisClient, lockTTL)
		cache := rediscache.NewAnswerKeyCache(redisClient, quizzes, cacheTTL)
		quizzes.NotifyAnswerKeyChanges(cache)
		keys = cache
	} else {
		cache := memory.NewAnswerKeyCache(quizzes, cacheTTL)
		quizzes.NotifyAnswerKeyChanges(cache)
		keys = cache
	}

	var provider app.Provider = memory.NewPlaceholderProvider()
	if cfg.Provider.APIKey != "" {
		provider = aiprovider.New(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Provider.Model)
	}

	generator := app.NewGenerator(app.NewContentAggregator(courses, assets), quizzes, provider, locks)
	generator.ConfigureDefaults(cfg.Generation.NumQuestions, cfg.Generation.Difficulty)
	assessment := app.NewAssessmentService(keys, attemptStore)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewHandler(generator, quizzes, assessment).Register(mux)
	mux.HandleFunc("GET /ws/generation", transport.NewFeedHandler(generator).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting course quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCourses provides a minimal catalog for running without Postgres.
func sampleCourses() []domain.Course {
	return []domain.Course{
		{
			ID:    "course-1",
			Title: "Introduction to Networking",
			Modules: []domain.Module{
				{ID: "mod-1", Code: "net-101", Title: "The Link Layer", AssetIDs: []string{"asset-1"}},
				{ID: "mod-2", Code: "net-102", Title: "The Network Layer", AssetIDs: []string{"asset-2"}},
			},
		},
	}
}

func sampleAssets() []domain.Asset {
	return []domain.Asset{
		{ID: "asset-1", Title: "Link Layer Notes", Content: "Frames, MAC addresses and switches."},
		{ID: "asset-2", Title: "Network Layer Notes", Content: "IP addressing, routing and forwarding."},
	}
}
