// Package fallback is the placeholder for the learned policy: a heuristic
// responder invoked only when the rule evaluator declines to act. It keeps
// the conversation moving and counts its own use, since frequent fallback
// hits signal a gap in rule coverage.
package fallback

// #region imports
import (
	"log"
	"strings"
	"sync"

	"github.com/garantiplus/brain-controller/internal/policy"
	"github.com/garantiplus/brain-controller/internal/session"
)

// #endregion

// #region categories

type category string

const (
	categoryUnclearIntent category = "unclear_intent"
	categoryTechSupport   category = "technical_support"
	categoryGeneralHelp   category = "general_help"
)

// technicalKeywords mark a conversation that needs specialist escalation.
var technicalKeywords = []string{"problema", "error", "falla", "no funciona"}

// responses holds per-category template variants. Selection rotates by call
// count so repeated fallbacks do not repeat the same wording.
var responses = map[category][]string{
	categoryGeneralHelp: {
		"Entiendo que necesitas ayuda. ¿Podrías ser más específico sobre lo que necesitas?",
		"Estoy aquí para ayudarte con la renovación de tu garantía. ¿Qué información necesitas?",
		"¿Puedes contarme más detalles sobre lo que buscas? Así podré ayudarte mejor.",
	},
	categoryUnclearIntent: {
		"No estoy seguro de entender exactamente qué necesitas. ¿Quieres renovar tu garantía o tienes otra consulta?",
		"¿Podrías reformular tu pregunta? Quiero asegurarme de darte la información correcta.",
		"Hay varias formas en que puedo ayudarte. ¿Buscas renovar, obtener información de precios, o algo más?",
	},
	categoryTechSupport: {
		"Para asistencia técnica especializada, te recomiendo contactar a nuestro equipo al 800 garanti (4272684).",
		"Parece que necesitas ayuda técnica. Nuestros especialistas pueden ayudarte mejor al 4432441212.",
	},
}

// #endregion

// #region module

// Module is the heuristic fallback policy.
type Module struct {
	mu    sync.Mutex
	calls int
}

// New returns a ready fallback module.
func New() *Module {
	return &Module{}
}

// #endregion

// #region predict

// PredictAction categorizes the unhandled state and returns a response
// action. It never returns nil: the fallback is the end of the line.
func (m *Module) PredictAction(st session.State) *policy.Action {
	m.mu.Lock()
	m.calls++
	n := m.calls
	m.mu.Unlock()

	summary := strings.ToLower(st.ConversationSummary)

	cat := categoryGeneralHelp
	switch {
	case st.CurrentIntent == "" || st.CurrentIntent == policy.IntentUnknown:
		cat = categoryUnclearIntent
	case containsAny(summary, technicalKeywords):
		cat = categoryTechSupport
	}

	variants := responses[cat]
	msg := variants[(n-1)%len(variants)]

	log.Printf("[FALLBACK] call=%d category=%s intent=%q", n, cat, st.CurrentIntent)

	return &policy.Action{
		ActionType:        "fallback_response",
		MessageToCustomer: msg,
	}
}

// #endregion

// #region stats

// Calls returns how many times the fallback has been used.
func (m *Module) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ResetStats clears the usage counter.
func (m *Module) ResetStats() {
	m.mu.Lock()
	m.calls = 0
	m.mu.Unlock()
}

// #endregion

// #region helpers

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// #endregion
