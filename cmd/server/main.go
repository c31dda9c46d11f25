package main

import (
	"log"
	"net/http"
	"os"

	"photobooth-server/internal/collage"
	"photobooth-server/internal/config"
	"photobooth-server/internal/relay"
	"photobooth-server/internal/server"
	"photobooth-server/internal/session"
	"photobooth-server/internal/storage"
)

func main() {
	configPath := os.Getenv("PHOTOBOOTH_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := storage.InitDB(cfg.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	store, err := storage.NewFileStore(cfg.Storage.Root)
	if err != nil {
		log.Fatalf("Failed to initialize file store: %v", err)
	}

	// The remote mirror is optional; without an endpoint the local
	// store is the only tier.
	var remote storage.RemoteStore
	if cfg.Remote.Endpoint != "" {
		minioStore, err := storage.NewMinioStore(cfg.Remote.Endpoint, cfg.Remote.AccessKey,
			cfg.Remote.SecretKey, cfg.Remote.Bucket, cfg.Remote.UseSSL)
		if err != nil {
			log.Printf("Warning: remote store unavailable: %v", err)
		} else {
			remote = minioStore
			log.Printf("Remote mirror enabled: %s/%s", cfg.Remote.Endpoint, cfg.Remote.Bucket)
		}
	}

	var planner collage.Planner
	switch cfg.Collage.Strategy {
	case "scatter":
		planner = collage.NewScatterPlanner(0)
	default:
		planner = collage.GridPlanner{}
	}

	resolver := session.NewResolver(cfg.SessionTimeout(), cfg.Session.UTCOffsetHours)
	comp := collage.NewCompositor(store, remote, planner, cfg.Collage.Quality)
	sweeper := collage.NewSweeper(store, comp)

	hub := relay.NewHub()
	go hub.Run()

	// Backfill missing collages once storage and network have settled
	sweeper.RunAfter(cfg.BackfillDelay())

	srv := server.New(cfg, db, store, resolver, comp, sweeper, hub)
	mux := http.NewServeMux()
	srv.Routes(mux)

	log.Printf("Photo booth server starting on %s (storage root %s, %s layout)",
		cfg.Server.Addr, store.Root(), cfg.Collage.Strategy)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, mux))
}
