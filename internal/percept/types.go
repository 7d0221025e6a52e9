package percept

import "context"

// #region percept

// Percept is the structured perception output for one user message.
// Entity keys are raw here; the orchestrator canonicalizes them before they
// touch session state.
type Percept struct {
	Intent   string            `json:"intent"`
	Entities map[string]string `json:"entities"`
	Flags    map[string]bool   `json:"flags"`
}

// #endregion

// #region extractor

// Extractor produces a Percept from a raw user message. The LLM-backed
// implementation lives in the external NLP service behind Client; the
// keyword Extractor is the local degraded mode.
type Extractor interface {
	Extract(ctx context.Context, sessionID, message string) (Percept, error)
}

// #endregion
