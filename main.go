package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flare_server/config"
	"flare_server/routes"
	"flare_server/services"
	"flare_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	clock := services.NewRealClock()

	// Persistence sink: best effort, the in-memory copies stay authoritative.
	log.Println("Initializing DynamoDB client...")
	dynamoService := &services.DynamoService{Client: services.InitializeDynamoDBClient(cfg.AWSRegion)}
	sink := services.NewDynamoSnapshotSink(dynamoService, cfg.SnapshotTable, clock)
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	sessionService := services.NewSessionService(cfg.JWTSecret)
	blockService := services.NewBlockService(clock, sink)
	matchService := services.NewMatchService(clock, blockService, sink)
	chatService := services.NewChatService(clock, blockService, matchService, sink,
		cfg.ChatRetention, cfg.ChatRateCap, cfg.MaxTextLen, cfg.BannedTerms)

	// Connection gateway
	gateway := socket.NewServer(sessionService, clock, cfg.FrameBudgetBytes, cfg.HeartbeatTimeout)

	presenceService := services.NewPresenceService(clock, rand.Float64,
		cfg.PresenceRadiusM, cfg.PresenceExpiry, gateway, sink)

	// Initialize the router
	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Flare")
	}).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "healthy",
			"online": gateway.Online(),
		})
	}).Methods("GET")

	r.HandleFunc("/ws", gateway.HandleWS)

	// Register routes
	routes.RegisterChatRoutes(r, chatService, sessionService, gateway)
	routes.RegisterPresenceRoutes(r, presenceService, sessionService)
	routes.RegisterMatchRoutes(r, matchService, sessionService, gateway)
	routes.RegisterBlockRoutes(r, blockService, sessionService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: corsHandler}

	go func() {
		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Gateway first so every socket drains, then the listener.
	log.Println("Shutting down...")
	gateway.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	log.Println("Shutdown complete.")
}
