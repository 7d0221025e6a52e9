// Package server is the webhook transport adapter: a thin chi router that
// feeds incoming messages to the engine and writes the chosen action back
// as JSON. Pure I/O; all decisions happen in the engine.
package server

// #region imports
import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/garantiplus/brain-controller/internal/engine"
)

// #endregion

// #region payloads

// MessageInput is the webhook contract with the upstream messaging
// platform: who said what.
type MessageInput struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type errorBody struct {
	Error string `json:"error"`
}

// #endregion

// #region router

// NewRouter wires the HTTP surface around an engine.
func NewRouter(eng *engine.Engine) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", handleRoot)
	r.Get("/health", handleHealth)
	r.Post("/webhook", handleWebhook(eng))

	return r
}

// #endregion

// #region handlers

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Hello from BRAIN!"})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "BRAIN is alive and ready."})
}

func handleWebhook(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input MessageInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
			return
		}
		if input.UserID == "" || input.Message == "" {
			respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "user_id and message are required"})
			return
		}

		action, _ := eng.Decide(r.Context(), input.UserID, input.Message)
		respondJSON(w, http.StatusOK, action)
	}
}

// #endregion

// #region respond

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[HTTP] write response: %v", err)
	}
}

// #endregion
