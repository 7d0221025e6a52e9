package main

import (
	"log"
	"net/http"

	"github.com/garantiplus/brain-controller/internal/config"
	"github.com/garantiplus/brain-controller/internal/engine"
	"github.com/garantiplus/brain-controller/internal/fallback"
	"github.com/garantiplus/brain-controller/internal/percept"
	"github.com/garantiplus/brain-controller/internal/server"
	"github.com/garantiplus/brain-controller/internal/session"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Durable memory
	ledger, err := session.OpenLedger(cfg.DBPath)
	if err != nil {
		log.Fatalf("open ledger at %s: %v", cfg.DBPath, err)
	}
	defer ledger.Close()

	store := session.NewStore(session.Options{
		CacheDir:        cfg.CacheDir,
		TTL:             cfg.SessionTTL(),
		SummaryMaxChars: cfg.SummaryMaxChars,
		Ledger:          ledger,
	})
	defer store.Close()

	// Perception service is optional; without it the keyword extractor
	// carries every turn.
	var perceiver percept.Extractor
	if cfg.PerceptionAddr != "" {
		client, err := percept.NewClient(cfg.PerceptionAddr)
		if err != nil {
			log.Fatalf("connect perception service at %s: %v", cfg.PerceptionAddr, err)
		}
		defer client.Close()
		perceiver = client
		log.Printf("[BRAIN] perception service: %s", cfg.PerceptionAddr)
	} else {
		log.Println("[BRAIN] no perception service configured, using keyword extraction")
	}

	eng := engine.New(perceiver, store, fallback.New())

	log.Printf("[BRAIN] listening on %s (db=%s cache=%s ttl=%s)",
		cfg.Addr(), cfg.DBPath, cfg.CacheDir, cfg.SessionTTL())
	if err := http.ListenAndServe(cfg.Addr(), server.NewRouter(eng)); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// #endregion main
