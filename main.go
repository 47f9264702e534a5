package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/chepyr/task-collab-api/internal/auth"
	"github.com/chepyr/task-collab-api/internal/config"
	"github.com/chepyr/task-collab-api/internal/db"
	"github.com/chepyr/task-collab-api/internal/handlers"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Error loading .env file: %v", err)
		}
	} else {
		log.Println(".env file not found, relying on environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dbConn := initDB(cfg)
	defer func() {
		if err := dbConn.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		}
	}()

	handler := initHandlers(cfg, dbConn)
	initRoutes(handler)

	server := &http.Server{Addr: ":" + cfg.ServerPort}
	startServer(server, cfg)
}

func initDB(cfg *config.Config) *sql.DB {
	dbConn, err := db.Connect("postgres", cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return dbConn
}

func initHandlers(cfg *config.Config, dbConn *sql.DB) *handlers.Handler {
	accountRepo := db.NewAccountRepository(dbConn)
	taskRepo := db.NewTaskRepository(dbConn)

	tokens := auth.NewTokenManager(auth.TokenConfig{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		Issuer:     "task-collab-api",
	})

	var limiter handlers.LoginLimiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		limiter = handlers.NewRedisRateLimiter(client, cfg.LoginRateLimit, cfg.LoginRateWindow)
	} else {
		limiter = handlers.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	}

	return &handlers.Handler{
		AccountRepo:   accountRepo,
		TaskRepo:      taskRepo,
		Authenticator: auth.NewAuthenticator(accountRepo, tokens),
		Tokens:        tokens,
		RateLimiter:   limiter,
		Hub:           handlers.NewEventHub(),
	}
}

func initRoutes(handler *handlers.Handler) {
	http.HandleFunc("/accounts/register", handler.Register)
	http.HandleFunc("/accounts/login", handler.Login)
	http.HandleFunc("/accounts/token/refresh", handler.RefreshToken)
	http.HandleFunc("/tasks", handler.AuthMiddleware(handler.HandleTasks))
	http.HandleFunc("/tasks/", handler.AuthMiddleware(handler.HandleTaskByID))
	http.HandleFunc("/ws", handler.AuthMiddleware(handler.HandleWebSocket))
	// health stays outside the auth gate
	http.HandleFunc("/healthz", handler.HandleHealth)
}

func startServer(server *http.Server, cfg *config.Config) {
	log.Printf("Starting server on :%s", cfg.ServerPort)

	server.Handler = handlers.CORS(cfg.AllowedOrigins, http.DefaultServeMux)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
