package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"Chorus/internal/api/middleware"
	"Chorus/internal/api/routes"
	"Chorus/internal/auth"
	"Chorus/internal/core/posts"
	"Chorus/internal/core/users"
	"Chorus/internal/db/itemdb"
	"Chorus/internal/itemstore"
	"Chorus/internal/itemstore/dynamo"
	"Chorus/internal/itemstore/memory"
	"Chorus/internal/itemstore/postgres"
)

const (
	storeRetries = 2
	storeBackoff = 50 * time.Millisecond
)

func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ttl := 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatal("Invalid TOKEN_TTL:", err)
		}
		ttl = parsed
	}

	store, err := openStore()
	if err != nil {
		log.Fatal("Failed to open item store:", err)
	}
	store = itemstore.WithRetry(store, storeRetries, storeBackoff)

	tokens := auth.NewTokens([]byte(secret), ttl)
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	postService := posts.NewService(itemdb.NewPostRepository(store), nil)
	userService := users.NewService(itemdb.NewUserRepository(store), tokens, nil)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// Rate limiting: 100 requests per minute per IP
	rateLimiter := middleware.NewRateLimiter(100, 1*time.Minute)
	r.Use(rateLimiter.Middleware)

	routes.RegisterUserRoutes(r, userService, authMiddleware)
	routes.RegisterPostRoutes(r, postService, authMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("Chorus starting on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}

// openStore selects the item store backend from STORAGE_BACKEND:
// dynamo (default), postgres, or memory for local development.
func openStore() (itemstore.Store, error) {
	backend := os.Getenv("STORAGE_BACKEND")
	if backend == "" {
		backend = "dynamo"
	}

	switch backend {
	case "memory":
		log.Println("Using in-memory item store; data will not survive a restart")
		return memory.New(), nil

	case "dynamo":
		table := os.Getenv("CHORUS_TABLE")
		if table == "" {
			table = "chorus-items"
		}
		cfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		var opts []func(*dynamodb.Options)
		if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
			// Local DynamoDB for development
			opts = append(opts, func(o *dynamodb.Options) {
				o.BaseEndpoint = aws.String(endpoint)
			})
		}
		log.Printf("Using DynamoDB item store, table %s", table)
		return dynamo.New(dynamodb.NewFromConfig(cfg, opts...), table), nil

	case "postgres":
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set for the postgres backend")
		}
		db, err := sql.Open("postgres", dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, fmt.Errorf("failed to set goose dialect: %w", err)
		}
		if err := goose.Up(db, "internal/itemstore/postgres/migrations"); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Println("Using PostgreSQL item store")
		return postgres.New(db), nil

	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", backend)
	}
}
