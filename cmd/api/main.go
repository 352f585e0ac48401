package main

import (
	"log"
	"net/http"

	"deckforge/internal/api"
	"deckforge/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	h := api.NewServer(cfg)
	log.Printf("deckforge api listening on %s candidates=%q max_slides=%d batch_size=%d", cfg.APIAddr, cfg.Candidates, cfg.MaxSlides, cfg.BatchSize)
	if err := http.ListenAndServe(cfg.APIAddr, h.Routes()); err != nil {
		log.Fatal(err)
	}
}
