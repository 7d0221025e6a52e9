package policy

// #region imports
import (
	"log"

	"github.com/garantiplus/brain-controller/internal/session"
)

// #endregion

// #region evaluate

// Evaluate runs the ordered decision table over a session state and returns
// the chosen action (nil = defer to the learned-policy fallback) together
// with the updated state. The input is cloned first, so Evaluate is pure
// over its argument: the same state always yields the same action and the
// same resulting state, and the caller decides whether to commit it.
func Evaluate(st session.State) (*Action, session.State) {
	out := st.Clone()

	for _, r := range rules {
		if !r.when(&out) {
			continue
		}
		act := r.fire(&out)
		if act == nil {
			log.Printf("[POLICY] rule=%s matched but deferred (phase=%s intent=%s)",
				r.name, out.Phase, out.CurrentIntent)
			return nil, out
		}
		out.LastActionType = act.ActionType
		if act.MessageToCustomer != "" {
			out.LastPrompt = act.MessageToCustomer
		}
		log.Printf("[POLICY] rule=%s action=%s (phase=%s)", r.name, act.ActionType, out.Phase)
		return act, out
	}

	log.Printf("[POLICY] no rule matched (phase=%s intent=%s); deferring", out.Phase, out.CurrentIntent)
	return nil, out
}

// #endregion
