package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adityar/secrets-wall/internal/auth"
	"github.com/adityar/secrets-wall/internal/config"
	"github.com/adityar/secrets-wall/internal/middleware"
	"github.com/adityar/secrets-wall/internal/secrets"
	"github.com/adityar/secrets-wall/internal/store"
	"github.com/adityar/secrets-wall/internal/web"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is required")
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	users := store.NewUserStore(mongoClient.Database(cfg.MongoDB))
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("mongo indexes: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb, cfg.SessionSecret)

	// ── Templates ────────────────────────────────────────────
	render, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("templates: %v", err)
	}

	// ── Services ─────────────────────────────────────────────
	creds := auth.NewCredentialService(users, auth.BcryptHasher{})
	google := auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL, users)

	// ── Handlers ─────────────────────────────────────────────
	authHandler := auth.NewHandler(creds, google, sessions, render)
	secretsHandler := secrets.NewHandler(users, render)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:" + cfg.Port},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.LoadUser(sessions, users))

	r.Get("/", secretsHandler.Home)
	r.Get("/login", authHandler.LoginForm)
	r.Post("/login", authHandler.Login)
	r.Get("/register", authHandler.RegisterForm)
	r.Post("/register", authHandler.Register)
	r.Get("/auth/google", authHandler.GoogleBegin)
	r.Get("/auth/google/secrets", authHandler.GoogleCallback)
	r.Get("/logout", authHandler.Logout)
	r.Get("/secrets", secretsHandler.All)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/yourSecrets", secretsHandler.Mine)
		r.Get("/submit", secretsHandler.SubmitForm)
		r.Post("/submit", secretsHandler.Submit)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server started at port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
