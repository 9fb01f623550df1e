package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"xyen-quiz-service/internal/app"
	"xyen-quiz-service/internal/config"
	"xyen-quiz-service/internal/extract"
	"xyen-quiz-service/internal/genai"
	"xyen-quiz-service/internal/infra/memory"
	pgstore "xyen-quiz-service/internal/infra/postgres"
	redisinfra "xyen-quiz-service/internal/infra/redis"
	transport "xyen-quiz-service/internal/transport/http"
	"xyen-quiz-service/internal/worker"
)

const defaultExtractorURL = "https://xyen-pdf-service.onrender.com/api/v1/extract"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz pipeline server",
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

	var store app.QuizStore = memory.NewQuizStore()
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pgstore.NewQuizStore(pool)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	extractorURL := cfg.Extractor.URL
	if extractorURL == "" {
		extractorURL = defaultExtractorURL
	}
	extractor := extract.NewClient(extractorURL, nil)

	apiKey := cfg.AI.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	generator := genai.NewClient(genai.Config{
		APIKey:  apiKey,
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
	})

	secret := cfg.Callback.Secret
	if secret == "" {
		secret = os.Getenv("CALLBACK_SECRET")
	}

	hub := app.NewStatusHub()

	var dispatcher app.Dispatcher
	var inline *worker.Inline
	if cfg.Worker.Mode == "remote" {
		dispatcher = worker.NewRemote(cfg.Worker.ServiceURL, cfg.Worker.APIKey, cfg.Worker.CallbackURL, nil)
	} else {
		inline = worker.NewInline(extractor, generator, config.TTLDuration(cfg.Worker.Timeout, 10*time.Minute))
		dispatcher = inline
	}

	service := app.NewPipelineService(store, dispatcher, hub, secret)
	if inline != nil {
		inline.BindRecorder(service)
	}

	var quizReader transport.QuizReader = store
	if redisClient != nil {
		ttl := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		quizReader = redisinfra.NewResultCache(redisClient, store, ttl)
	}

	auth := transport.NewStaticTokenAuthenticator(cfg.Auth.Tokens)
	handler := transport.NewHandler(service, quizReader, auth)
	wsHandler := transport.NewWSHandler(service, hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("GET /ws/status", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz pipeline service on :%s", finalPort)
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
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if inline != nil {
		inline.Wait()
	}
	return nil
}
