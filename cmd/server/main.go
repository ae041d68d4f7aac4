package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizarena/internal/cache"
	"quizarena/internal/config"
	"quizarena/internal/game"
	"quizarena/internal/repository"
	"quizarena/internal/service"
	"quizarena/internal/transport/rest"
	"quizarena/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database("quizarena")

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// WebSocket hub delivers all game events
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	roundRepo := repository.NewRoundRepo(db)
	leaderboard := cache.NewLeaderboardCache(rdb)

	authSvc := service.NewAuthService(cfg.JWTSecret)
	archiveSvc := service.NewArchiveService(roundRepo, leaderboard)

	store := game.NewStore(wsHub, game.WithRoundDuration(cfg.RoundDuration))
	store.SetArchiver(archiveSvc)

	wsHandler := ws.NewHandler(wsHub, store, authSvc)

	container := &rest.Container{
		AuthService:    authSvc,
		ArchiveService: archiveSvc,
		Store:          store,
		Leaderboard:    leaderboard,
		WSHandler:      wsHandler,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/guest")
		log.Println("  GET  /v1/sessions/{id}")
		log.Println("  GET  /v1/sessions/{id}/rounds")
		log.Println("  GET  /v1/leaderboard")
		log.Println("  WS   /v1/ws")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
