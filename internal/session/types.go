package session

// #region phase

// Phase is the coarse conversation stage. Phases only advance forward along
// the defined transition set; a Greeting reset is the single backward edge.
type Phase string

const (
	PhaseInitial               Phase = "initial"
	PhaseDataCollection        Phase = "data_collection"
	PhaseExpiredVerification   Phase = "expired_verification"
	PhaseExpiredDataCollection Phase = "expired_data_collection"
	PhasePricingDiscussion     Phase = "pricing_discussion"
	PhasePostPricingCollection Phase = "post_pricing_collection"
	PhaseCompleted             Phase = "completed"
	PhaseEnded                 Phase = "ended"
)

// IsCollection reports whether the phase is an in-progress data-collection
// stage. Clarifications re-issue the last prompt inside these phases, and
// FAQ/pricing answers are suppressed so the sequence is not derailed.
func (p Phase) IsCollection() bool {
	switch p {
	case PhaseDataCollection, PhaseExpiredVerification,
		PhaseExpiredDataCollection, PhasePostPricingCollection:
		return true
	}
	return false
}

// #endregion

// #region status

// Status tracks whether the session has been saved at least once.
type Status string

const (
	StatusNewSession    Status = "new_session"
	StatusActiveSession Status = "active_session"
)

// #endregion

// #region flags

// Flags are the derived, idempotent business predicates. All of them are
// real booleans after any store or evaluate cycle; loosely typed stored
// forms are coerced at the wire boundary.
type Flags struct {
	PolicyNumberProvided    bool `json:"policyNumberProvided"`
	VehicleDetailsProvided  bool `json:"vehicleDetailsProvided"`
	ContactInfoProvided     bool `json:"contactInfoProvided"`
	PricingProvided         bool `json:"pricingProvided"`
	PricingConfirmed        bool `json:"pricingConfirmed"`
	PlanSelected            bool `json:"planSelected"`
	VehicleInfoAcknowledged bool `json:"vehicleInfoAcknowledged"`
	ServicesUpToDate        bool `json:"servicesUpToDate"`
	ExpiryCaptured          bool `json:"expiryCaptured"`
	RenovationLeadNotified  bool `json:"renovationLeadNotified"`
	LeadGenerationComplete  bool `json:"leadGenerationComplete"`
	ConversationEnded       bool `json:"conversationEnded"`
}

// #endregion

// #region state

// State is the per-session conversation record. Owned by the Store; mutated
// only through the evaluator's returned copy.
type State struct {
	SessionID           string            `json:"sessionId"`
	Entities            map[string]string `json:"entities"`
	Flags               Flags             `json:"flags"`
	Phase               Phase             `json:"phase"`
	LastActionType      string            `json:"lastActionType"`
	LastPrompt          string            `json:"lastPrompt"`
	WaitingFor          string            `json:"waitingFor,omitempty"`
	ConversationTurn    int               `json:"conversationTurn"`
	CurrentIntent       string            `json:"currentIntent"`
	ConversationSummary string            `json:"conversationSummary"`
	Status              Status            `json:"status"`

	// Extra carries unrecognized fields from older payloads so a newer
	// writer never silently drops them.
	Extra map[string]any `json:"extra,omitempty"`
}

// NewState returns the blank-slate record for a first-contact session.
func NewState(sessionID string) State {
	return State{
		SessionID: sessionID,
		Entities:  map[string]string{},
		Phase:     PhaseInitial,
		Status:    StatusNewSession,
	}
}

// #endregion

// #region clone

// Clone returns a deep copy. The evaluator clones before mutating so a
// decision can be inspected without committing its side effects.
func (s State) Clone() State {
	out := s
	out.Entities = make(map[string]string, len(s.Entities))
	for k, v := range s.Entities {
		out.Entities[k] = v
	}
	if s.Extra != nil {
		out.Extra = make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// #endregion

// #region entity-access

// Entity returns the value for a canonical key, or "" when absent.
func (s State) Entity(key string) string {
	if s.Entities == nil {
		return ""
	}
	return s.Entities[key]
}

// HasEntity reports whether a canonical key holds a non-empty value.
func (s State) HasEntity(key string) bool {
	return s.Entity(key) != ""
}

// #endregion

// #region greeting-reset

// ResetForGreeting starts a fresh collection cycle: entities, transient
// flags, phase and prompt bookkeeping are cleared while the transcript is
// preserved. The lead-notification latch survives the reset so a human
// agent is never notified twice for one session.
func (s *State) ResetForGreeting() {
	notified := s.Flags.RenovationLeadNotified
	complete := s.Flags.LeadGenerationComplete
	s.Entities = map[string]string{}
	s.Flags = Flags{
		RenovationLeadNotified: notified,
		LeadGenerationComplete: complete,
	}
	s.Phase = PhaseInitial
	s.LastActionType = ""
	s.LastPrompt = ""
	s.WaitingFor = ""
}

// #endregion
