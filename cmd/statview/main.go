package main

import (
	"log"

	"github.com/joho/godotenv"

	"statview/internal"
	"statview/internal/config"
	"statview/ui"
)

func main() {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := internal.NewDefaultLogger()
	server := ui.NewServer(cfg, logger)

	log.Printf("Starting statview on http://localhost:%s", cfg.Server.Port)
	log.Fatal(server.Run())
}
