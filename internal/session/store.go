package session

// #region imports
import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/garantiplus/brain-controller/internal/canonical"
)

// #endregion

// #region turn-action

// TurnAction is the slice of a chosen action the store needs for
// persistence: the transcript line and the audit row.
type TurnAction struct {
	ActionType string
	Message    string
}

// #endregion

// #region defaults

const (
	DefaultTTL             = 1800 * time.Second
	DefaultSummaryMaxChars = 2000
)

// #endregion

// #region store-struct

// Store owns the SessionState lifecycle. Reads and writes go to the fast
// expiring cache (badger) first; a process-local map absorbs cache
// failures, and the SQLite ledger records each turn best-effort. No path
// through Load or Save is fatal to the turn.
type Store struct {
	cache      *badger.DB // nil when the cache is unavailable
	ttl        time.Duration
	summaryMax int
	ledger     *Ledger // nil when the durable store is unavailable

	mu    sync.Mutex
	local map[string]State // node-local, non-durable fallback
}

// Options configures a Store.
type Options struct {
	CacheDir        string // badger directory; empty disables the cache
	InMemoryCache   bool   // badger in-memory mode, used in tests
	TTL             time.Duration
	SummaryMaxChars int
	Ledger          *Ledger
}

// #endregion

// #region constructor

// NewStore opens the fast cache and wires the ledger. A cache that fails to
// open is logged and the store runs degraded on the process-local map.
func NewStore(opts Options) *Store {
	s := &Store{
		ttl:        opts.TTL,
		summaryMax: opts.SummaryMaxChars,
		ledger:     opts.Ledger,
		local:      map[string]State{},
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.summaryMax <= 0 {
		s.summaryMax = DefaultSummaryMaxChars
	}

	var bopts badger.Options
	switch {
	case opts.InMemoryCache:
		bopts = badger.DefaultOptions("").WithInMemory(true)
	case opts.CacheDir != "":
		bopts = badger.DefaultOptions(opts.CacheDir)
	default:
		log.Printf("[MEM] no session cache configured; running on process-local map only")
		return s
	}
	bopts = bopts.WithLogger(nil)

	db, err := badger.Open(bopts)
	if err != nil {
		log.Printf("[MEM] session cache unavailable: %v (degrading to process-local map)", err)
		return s
	}
	s.cache = db
	return s
}

// #endregion

// #region close

// Close releases the cache. The ledger is owned by the caller.
func (s *Store) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

// #endregion

// #region load

// Load returns the current state for a session. Cache hit refreshes the
// inactivity TTL; cache miss or error falls back to the process-local map;
// nothing found anywhere yields a fresh default state. Never fails.
func (s *Store) Load(sessionID string) State {
	if s.cache != nil {
		data, err := s.cacheGet(sessionID)
		switch {
		case err != nil:
			log.Printf("[MEM] cache read for %s failed: %v (falling back)", sessionID, err)
		case data != nil:
			st, derr := decodeWire(data, sessionID)
			if derr != nil {
				log.Printf("[MEM] malformed cached state for %s: %v (treating as not found)", sessionID, derr)
				break
			}
			// Sliding window: every access restarts the full TTL.
			if perr := s.cachePut(sessionID, st); perr != nil {
				log.Printf("[MEM] ttl refresh for %s failed: %v", sessionID, perr)
			}
			return st
		}
	}

	s.mu.Lock()
	st, ok := s.local[sessionID]
	s.mu.Unlock()
	if ok {
		return st.Clone()
	}

	return NewState(sessionID)
}

// #endregion

// #region save

// Save canonicalizes and persists the state for one completed turn and
// returns the state exactly as persisted. Derived flags are recomputed from
// entities unconditionally, so a partial update by the evaluator can never
// leave them stale. Cache failure degrades to the process-local map; ledger
// failure is logged and the turn still completes.
func (s *Store) Save(sessionID string, st State, userMessage string, act *TurnAction) State {
	st.SessionID = sessionID
	st.Entities = canonical.Entities(st.Entities)
	recomputeDerivedFlags(&st)
	appendSummary(&st, userMessage, act, s.summaryMax)
	if st.Status != StatusActiveSession {
		st.Status = StatusActiveSession
	}

	cached := false
	if s.cache != nil {
		if err := s.cachePut(sessionID, st); err != nil {
			log.Printf("[MEM] cache write for %s failed: %v (degrading to process-local map)", sessionID, err)
		} else {
			cached = true
		}
	}
	if !cached {
		s.mu.Lock()
		s.local[sessionID] = st.Clone()
		s.mu.Unlock()
	}

	if s.ledger != nil {
		if err := s.ledger.RecordTurn(sessionID, st, userMessage, act); err != nil {
			log.Printf("[MEM] durable log for %s failed: %v (turn continues)", sessionID, err)
		}
	}

	return st
}

// #endregion

// #region cache-io

func cacheKey(sessionID string) []byte {
	return []byte("session:" + sessionID)
}

// cacheGet returns (nil, nil) when the key is absent.
func (s *Store) cacheGet(sessionID string) ([]byte, error) {
	var data []byte
	err := s.cache.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(sessionID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Store) cachePut(sessionID string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return s.cache.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(cacheKey(sessionID), data).WithTTL(s.ttl)
		return txn.SetEntry(e)
	})
}

// #endregion

// #region derived-flags

// recomputeDerivedFlags re-derives the entity-backed flags. Runs even when
// the evaluator already set them.
func recomputeDerivedFlags(st *State) {
	st.Flags.PolicyNumberProvided = st.HasEntity(canonical.KeyPolicyNumber)
	st.Flags.ContactInfoProvided = st.HasEntity(canonical.KeyEmail) ||
		st.HasEntity(canonical.KeyPhoneNumber)
	st.Flags.VehicleDetailsProvided = st.HasEntity(canonical.KeyVehicleMake) &&
		st.HasEntity(canonical.KeyVehicleModel) &&
		st.HasEntity(canonical.KeyVehicleYear)
}

// #endregion

// #region summary

// appendSummary extends the handoff transcript and trims it to the trailing
// maxChars characters (oldest turns drop first).
func appendSummary(st *State, userMessage string, act *TurnAction, maxChars int) {
	st.ConversationSummary += "User: " + userMessage + " | "
	if act != nil && act.Message != "" {
		st.ConversationSummary += "Agent: " + act.Message + " | "
	}
	if runes := []rune(st.ConversationSummary); len(runes) > maxChars {
		st.ConversationSummary = string(runes[len(runes)-maxChars:])
	}
}

// #endregion

// #region wire-decode

// wireState mirrors State with loosely typed entities and flags so payloads
// written by older iterations (string "true", numeric years) still load.
type wireState struct {
	SessionID           string         `json:"sessionId"`
	Entities            map[string]any `json:"entities"`
	Flags               map[string]any `json:"flags"`
	Phase               string         `json:"phase"`
	LastActionType      string         `json:"lastActionType"`
	LastPrompt          string         `json:"lastPrompt"`
	WaitingFor          string         `json:"waitingFor"`
	ConversationTurn    int            `json:"conversationTurn"`
	CurrentIntent       string         `json:"currentIntent"`
	ConversationSummary string         `json:"conversationSummary"`
	Status              string         `json:"status"`
	Extra               map[string]any `json:"extra"`
}

// decodeWire parses a stored payload, canonicalizing entity keys and
// coercing every flag to a real boolean.
func decodeWire(data []byte, sessionID string) (State, error) {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return State{}, fmt.Errorf("unmarshal state: %w", err)
	}

	entities := make(map[string]string, len(w.Entities))
	for k, v := range w.Entities {
		entities[k] = stringifyEntity(v)
	}

	st := State{
		SessionID:           sessionID,
		Entities:            canonical.Entities(entities),
		Flags:               coerceFlags(w.Flags),
		Phase:               Phase(w.Phase),
		LastActionType:      w.LastActionType,
		LastPrompt:          w.LastPrompt,
		WaitingFor:          w.WaitingFor,
		ConversationTurn:    w.ConversationTurn,
		CurrentIntent:       w.CurrentIntent,
		ConversationSummary: w.ConversationSummary,
		Status:              Status(w.Status),
		Extra:               w.Extra,
	}
	if st.Phase == "" {
		st.Phase = PhaseInitial
	}
	if st.Status == "" {
		st.Status = StatusNewSession
	}
	return st, nil
}

func coerceFlags(m map[string]any) Flags {
	return Flags{
		PolicyNumberProvided:    canonical.Bool(m["policyNumberProvided"]),
		VehicleDetailsProvided:  canonical.Bool(m["vehicleDetailsProvided"]),
		ContactInfoProvided:     canonical.Bool(m["contactInfoProvided"]),
		PricingProvided:         canonical.Bool(m["pricingProvided"]),
		PricingConfirmed:        canonical.Bool(m["pricingConfirmed"]),
		PlanSelected:            canonical.Bool(m["planSelected"]),
		VehicleInfoAcknowledged: canonical.Bool(m["vehicleInfoAcknowledged"]),
		ServicesUpToDate:        canonical.Bool(m["servicesUpToDate"]),
		ExpiryCaptured:          canonical.Bool(m["expiryCaptured"]),
		RenovationLeadNotified:  canonical.Bool(m["renovationLeadNotified"]),
		LeadGenerationComplete:  canonical.Bool(m["leadGenerationComplete"]),
		ConversationEnded:       canonical.Bool(m["conversationEnded"]),
	}
}

func stringifyEntity(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// #endregion
