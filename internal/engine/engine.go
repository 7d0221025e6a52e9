package engine

// #region imports
import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/garantiplus/brain-controller/internal/canonical"
	"github.com/garantiplus/brain-controller/internal/fallback"
	"github.com/garantiplus/brain-controller/internal/percept"
	"github.com/garantiplus/brain-controller/internal/policy"
	"github.com/garantiplus/brain-controller/internal/session"
)

// #endregion

// #region engine-struct

// Engine is the per-turn orchestrator: perceive, recall, merge, decide,
// remember. It is stateless across turns; all conversation state lives in
// the session store.
type Engine struct {
	perceiver percept.Extractor
	degraded  percept.Extractor
	store     *session.Store
	learned   *fallback.Module

	perceiveTimeout time.Duration
}

// New wires an engine. perceiver may be nil, in which case every turn uses
// the local keyword extractor.
func New(perceiver percept.Extractor, store *session.Store, learned *fallback.Module) *Engine {
	return &Engine{
		perceiver:       perceiver,
		degraded:        percept.KeywordExtractor{},
		store:           store,
		learned:         learned,
		perceiveTimeout: 10 * time.Second,
	}
}

// #endregion

// #region decide

// Decide processes one user turn end to end and returns the chosen action
// together with the state as persisted. The action is never nil: when the
// rule evaluator defers, the learned-policy fallback answers.
func (e *Engine) Decide(ctx context.Context, userID, message string) (*policy.Action, session.State) {
	turnID := uuid.New().String()[:8]

	pct := e.perceive(ctx, userID, message)
	st := e.store.Load(userID)
	mergePercept(&st, pct)

	act, updated := policy.Evaluate(st)
	if act == nil {
		act = e.learned.PredictAction(updated)
	}

	var ta *session.TurnAction
	if act != nil {
		ta = &session.TurnAction{ActionType: act.ActionType, Message: act.MessageToCustomer}
	}
	saved := e.store.Save(userID, updated, message, ta)

	log.Printf("[ENGINE] turn=%s user=%s intent=%s action=%s (phase=%s turn#%d)",
		turnID, userID, saved.CurrentIntent, act.ActionType, saved.Phase, saved.ConversationTurn)

	return act, saved
}

// #endregion

// #region perceive

// perceive calls the remote NLP service and degrades to the keyword
// extractor on any failure, so a turn never dies on perception.
func (e *Engine) perceive(ctx context.Context, userID, message string) percept.Percept {
	if e.perceiver != nil {
		cctx, cancel := context.WithTimeout(ctx, e.perceiveTimeout)
		p, err := e.perceiver.Extract(cctx, userID, message)
		cancel()
		if err == nil {
			return p
		}
		log.Printf("[ENGINE] perception for %s failed: %v (using keyword extractor)", userID, err)
	}
	p, _ := e.degraded.Extract(ctx, userID, message)
	return p
}

// #endregion

// #region merge

// mergePercept folds one turn's percept into the loaded state: the intent
// overwrites, entities accumulate last-write-wins under canonical keys, and
// benign percept flags may latch their state counterpart (never clear it).
func mergePercept(st *session.State, p percept.Percept) {
	st.ConversationTurn++
	st.CurrentIntent = p.Intent

	if st.Entities == nil {
		st.Entities = map[string]string{}
	}
	for k, v := range canonical.Entities(p.Entities) {
		st.Entities[k] = v
	}

	for name, val := range p.Flags {
		if !val {
			continue
		}
		switch name {
		case "servicesUpToDate":
			st.Flags.ServicesUpToDate = true
		case "vehicleInfoAcknowledged":
			st.Flags.VehicleInfoAcknowledged = true
		}
	}
}

// #endregion
