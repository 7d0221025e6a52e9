package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/garantiplus/brain-controller/internal/config"
	"github.com/garantiplus/brain-controller/internal/engine"
	"github.com/garantiplus/brain-controller/internal/fallback"
	"github.com/garantiplus/brain-controller/internal/percept"
	"github.com/garantiplus/brain-controller/internal/session"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	userID := envOr("BRAIN_USER_ID", "console-user")

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

	var perceiver percept.Extractor
	if cfg.PerceptionAddr != "" {
		client, err := percept.NewClient(cfg.PerceptionAddr)
		if err != nil {
			log.Fatalf("connect perception service at %s: %v", cfg.PerceptionAddr, err)
		}
		defer client.Close()
		perceiver = client
	}

	eng := engine.New(perceiver, store, fallback.New())

	fmt.Println("BRAIN console ready.")
	fmt.Printf("  DB: %s | User: %s\n", cfg.DBPath, userID)
	fmt.Println("Type a message (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		if message == "quit" || message == "exit" {
			break
		}

		action, st := eng.Decide(context.Background(), userID, message)

		fmt.Printf("\n%s\n\n", action.MessageToCustomer)
		fmt.Printf("[turn-%d] action=%s intent=%s phase=%s waiting=%s\n",
			st.ConversationTurn, action.ActionType, st.CurrentIntent, st.Phase, st.WaitingFor)

		if action.NotificationData != nil {
			payload, _ := json.MarshalIndent(action.NotificationData, "", "  ")
			fmt.Printf("lead notification:\n%s\n", payload)
		}
	}
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
