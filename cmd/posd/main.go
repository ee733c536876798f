package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/lutong-pos/terminal/internal/backend"
	"github.com/lutong-pos/terminal/internal/cart"
	"github.com/lutong-pos/terminal/internal/config"
	"github.com/lutong-pos/terminal/internal/kitchen"
	"github.com/lutong-pos/terminal/internal/orders"
	"github.com/lutong-pos/terminal/internal/router"
	"github.com/lutong-pos/terminal/internal/storage"
	"github.com/lutong-pos/terminal/internal/ws"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()
	cfg := config.Load()

	store, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	api := backend.New(cfg.BackendURL)

	cartStore := cart.New(store)
	if err := cartStore.Hydrate(); err != nil {
		log.Printf("WARN: cart state reset: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	mgr := orders.New(api, cartStore, hub)

	tracker := kitchen.New(store, mgr)
	if err := tracker.Hydrate(); err != nil {
		log.Printf("WARN: cooking marks reset: %v", err)
	}

	r := router.New(api, cartStore, mgr, tracker, hub)

	log.Printf("Starting POS terminal on :%s (backend %s)", cfg.Port, cfg.BackendURL)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
