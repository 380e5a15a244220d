package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlanDeLonga/chatroom/internal/api"
	"github.com/AlanDeLonga/chatroom/internal/config"
	"github.com/AlanDeLonga/chatroom/internal/history"
	"github.com/AlanDeLonga/chatroom/internal/roster"
	"github.com/AlanDeLonga/chatroom/internal/session"
	"github.com/AlanDeLonga/chatroom/internal/ws"
)

func main() {
	cfgFile := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var store history.Store
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = history.NewRedisStore(redisClient, history.DefaultKey, cfg.HistorySize)
	} else {
		store = history.NewMemoryStore(cfg.HistorySize)
	}

	hub := ws.NewHub()
	go hub.Run()

	manager := session.NewManager(roster.New(), store, hub, cfg.ReplayCount)

	janitorInterval, err := time.ParseDuration(cfg.JanitorInterval)
	if err != nil {
		log.Fatalf("Invalid janitor_interval %q: %v", cfg.JanitorInterval, err)
	}
	janitor := history.NewJanitor(store, janitorInterval)
	janitor.Start()

	apiHandler := api.New(hub, manager, store)

	// WebSocket endpoint
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, manager, cfg.MessageRate, cfg.MessageBurst, w, r)
	})

	http.HandleFunc("/message", apiHandler.MessageHandler)
	http.HandleFunc("/health", apiHandler.HealthHandler)
	http.HandleFunc("/api/stats", apiHandler.StatsHandler)
	http.HandleFunc("/api/participants", apiHandler.ParticipantsHandler)

	// Apply CORS middleware
	handler := corsMiddleware(http.DefaultServeMux)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		janitor.Stop()
		if redisClient != nil {
			redisClient.Close()
		}
		os.Exit(0)
	}()

	if cfg.RedisAddr != "" {
		log.Printf("Message log: redis at %s", cfg.RedisAddr)
	} else {
		log.Println("Message log: in-memory (set CHATROOM_REDIS_ADDR for persistence)")
	}

	log.Printf("Chatroom server starting on %s", cfg.ListenAddr)
	log.Println("Endpoints:")
	log.Println("  - WebSocket:    /ws")
	log.Println("  - Message:      POST /message")
	log.Println("  - Health:       GET /health")
	log.Println("  - Stats:        GET /api/stats")
	log.Println("  - Participants: GET /api/participants")

	if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
