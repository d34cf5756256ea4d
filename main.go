// Package main is the entry point of the petfm backend.
//
// Everything is wired here: config, database, repositories, the
// WebSocket hub, services, handlers, middleware, routes, then the HTTP
// server with graceful shutdown. No globals, each layer is constructed
// and handed to the next.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/petfm/server/config"
	"github.com/petfm/server/database"
	"github.com/petfm/server/handlers"
	"github.com/petfm/server/middleware"
	"github.com/petfm/server/pkg/ratelimit"
	"github.com/petfm/server/repository"
	"github.com/petfm/server/services"
	"github.com/petfm/server/storage"
	"github.com/petfm/server/ws"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] petfm server starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	db, err := database.New(cfg.Database.Path, database.EmbeddedMigrations)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	store, err := storage.NewS3Store(context.Background(), storage.S3Config{
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		Bucket:       cfg.Storage.Bucket,
		Region:       cfg.Storage.Region,
		BaseEndpoint: cfg.Storage.BaseEndpoint,
	})
	if err != nil {
		log.Fatalf("[main] failed to initialize object storage: %v", err)
	}

	// Repository layer
	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	refreshTokenRepo := repository.NewSQLiteRefreshTokenRepo(db.Conn)
	artistRepo := repository.NewSQLiteArtistRepo(db.Conn)
	albumRepo := repository.NewSQLiteAlbumRepo(db.Conn)
	coverRepo := repository.NewSQLiteCoverRepo(db.Conn)
	regionRepo := repository.NewSQLiteRegionRepo(db.Conn)

	// WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Service layer
	authService := services.NewAuthService(
		db.Conn,
		userRepo,
		refreshTokenRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTTL,
		cfg.JWT.RefreshTTL,
	)
	coverService := services.NewCoverService(coverRepo, albumRepo, store, hub)
	albumService := services.NewAlbumService(albumRepo, artistRepo, regionRepo, coverService, hub)
	artistService := services.NewArtistService(artistRepo, albumService, hub)
	regionService := services.NewRegionService(regionRepo)

	// Region sync runs until the root context is canceled on shutdown.
	syncCtx, cancelSync := context.WithCancel(context.Background())
	defer cancelSync()
	if cfg.Sync.UpstreamURL != "" {
		syncService := services.NewRegionSyncService(regionRepo, hub, cfg.Sync.UpstreamURL, cfg.Sync.Interval)
		go syncService.Run(syncCtx)
	} else {
		log.Println("[main] REGION_SYNC_URL not set, region sync disabled")
	}

	// Handler layer
	authHandler := handlers.NewAuthHandler(authService)
	artistHandler := handlers.NewArtistHandler(artistService)
	albumHandler := handlers.NewAlbumHandler(albumService)
	coverHandler := handlers.NewCoverHandler(coverService)
	regionHandler := handlers.NewRegionHandler(regionService)
	wsHandler := ws.NewHandler(hub, authService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(authService, userRepo)

	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	defer limiter.Stop()
	limitMessage := fmt.Sprintf("%d requests per minute max", cfg.RateLimit.MaxRequests)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(limiter, limitMessage)

	// protected wraps a resource handler in auth + rate limit. Auth runs
	// first so the limiter keys on the authenticated username.
	protected := func(handler http.HandlerFunc) http.Handler {
		return authMiddleware.Require(rateLimitMiddleware.Limit(http.HandlerFunc(handler)))
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"petfm"}`)
	})

	// Auth, public. Session endpoints stay outside the rate limiter, a
	// throttled user must still be able to refresh and log out.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	mux.Handle("GET /api/users/me", protected(authHandler.Me))

	// Artists
	mux.Handle("GET /api/artists", protected(artistHandler.List))
	mux.Handle("POST /api/artists", protected(artistHandler.Create))
	mux.Handle("GET /api/artists/{id}", protected(artistHandler.Get))
	mux.Handle("PUT /api/artists/{id}", protected(artistHandler.Update))
	mux.Handle("DELETE /api/artists/{id}", protected(artistHandler.Delete))

	// Albums
	mux.Handle("GET /api/albums", protected(albumHandler.List))
	mux.Handle("POST /api/albums", protected(albumHandler.Create))
	mux.Handle("GET /api/albums/{id}", protected(albumHandler.Get))
	mux.Handle("PATCH /api/albums/{id}", protected(albumHandler.Update))
	mux.Handle("DELETE /api/albums/{id}", protected(albumHandler.Delete))

	// Covers
	mux.Handle("GET /api/albums/{id}/covers", protected(coverHandler.List))
	mux.Handle("POST /api/albums/{id}/covers", protected(coverHandler.Upload))
	mux.Handle("GET /api/covers/{id}/url", protected(coverHandler.GetURL))
	mux.Handle("GET /api/covers/{id}/download", protected(coverHandler.Download))
	mux.Handle("DELETE /api/covers/{id}", protected(coverHandler.Delete))

	// Regions, read-only
	mux.Handle("GET /api/regions", protected(regionHandler.List))
	mux.Handle("GET /api/regions/{id}", protected(regionHandler.Get))

	// WebSocket authenticates itself via the token query parameter.
	mux.HandleFunc("GET /ws", wsHandler.HandleConnection)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Stop the sync loop and WebSocket connections first, then drain the
	// HTTP server.
	cancelSync()
	hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
