package policy

// #region imports
import (
	"strings"

	"github.com/garantiplus/brain-controller/internal/canonical"
	"github.com/garantiplus/brain-controller/internal/session"
)

// #endregion

// #region rule-type

// rule is one entry of the ordered decision table. Rules are evaluated in
// order; the first whose predicate holds fires and evaluation stops. A
// fired rule may still return a nil action, which means "defer to the
// learned-policy fallback".
type rule struct {
	name string
	when func(st *session.State) bool
	fire func(st *session.State) *Action
}

// #endregion

// #region rule-table

// rules is the full decision table. Order is load-bearing: the terminal
// short-circuits come first, the lead-ready check runs before any
// intent-specific rule so a hot lead is never missed, clarification outranks
// the flow rules so a confused customer gets the pending question back
// instead of a new one, and the expired-policy flow outranks every pricing
// rule.
var rules = []rule{
	{name: "ended_short_circuit", when: whenEnded, fire: fireEnded},
	{name: "completed_short_circuit", when: whenCompleted, fire: fireCompleted},
	{name: "lead_ready", when: whenLeadReady, fire: fireNotifyLead},
	{name: "meta_intent", when: whenMetaIntent, fire: fireMetaIntent},
	{name: "clarification", when: whenClarification, fire: fireClarification},
	{name: "expired_policy_flow", when: whenExpiredFlow, fire: fireExpiredFlow},
	{name: "pricing_confirmation", when: whenPricingConfirmation, fire: firePricingConfirmation},
	{name: "standard_collection", when: whenCollecting, fire: fireCollection},
	{name: "faq", when: whenFAQ, fire: fireFAQ},
	{name: "unknown_heuristic", when: whenUnknown, fire: fireUnknownHeuristic},
}

// #endregion

// #region terminal-rules

func whenEnded(st *session.State) bool {
	return st.Phase == session.PhaseEnded
}

// fireEnded keeps an ended conversation closed: only a courtesy close-out
// gets one final acknowledgment.
func fireEnded(st *session.State) *Action {
	switch st.CurrentIntent {
	case IntentThankYou, IntentBye:
		return &Action{ActionType: ActionClosing, MessageToCustomer: msgEndedAck}
	}
	return nil
}

func whenCompleted(st *session.State) bool {
	return st.Phase == session.PhaseCompleted
}

func fireCompleted(st *session.State) *Action {
	switch st.CurrentIntent {
	case IntentThankYou, IntentBye:
		st.Phase = session.PhaseEnded
		st.Flags.ConversationEnded = true
		return &Action{ActionType: ActionClosing, MessageToCustomer: msgClosing}
	case IntentGreeting:
		// A greeting after handoff starts a fresh cycle; the lead latch
		// survives the reset.
		st.ResetForGreeting()
		return &Action{ActionType: ActionGreeting, MessageToCustomer: msgGreeting}
	}
	// Lead already handed off; anything else defers to the fallback.
	return nil
}

// #endregion

// #region lead-ready

// whenLeadReady holds when policy number plus at least one contact handle
// are known and the human team has not been notified. Runs before the
// intent rules so the lead fires regardless of how the turn was classified.
func whenLeadReady(st *session.State) bool {
	if st.Flags.RenovationLeadNotified {
		return false
	}
	if !st.HasEntity(canonical.KeyPolicyNumber) {
		return false
	}
	return st.HasEntity(canonical.KeyCustomerName) ||
		st.HasEntity(canonical.KeyEmail) ||
		st.HasEntity(canonical.KeyPhoneNumber)
}

func fireNotifyLead(st *session.State) *Action {
	st.Flags.RenovationLeadNotified = true
	st.Flags.LeadGenerationComplete = true
	st.Phase = session.PhaseCompleted
	st.WaitingFor = ""

	auto := strings.TrimSpace(strings.Join([]string{
		st.Entity(canonical.KeyVehicleMake),
		st.Entity(canonical.KeyVehicleModel),
		st.Entity(canonical.KeyVehicleYear),
	}, " "))

	return &Action{
		ActionType:        ActionNotifyLead,
		MessageToCustomer: msgLeadNotified,
		NotificationData: &NotificationData{
			CustomerName:        st.Entity(canonical.KeyCustomerName),
			PolicyNumber:        st.Entity(canonical.KeyPolicyNumber),
			Email:               st.Entity(canonical.KeyEmail),
			PhoneWhatsapp:       st.Entity(canonical.KeyPhoneNumber),
			VIN:                 st.Entity(canonical.KeyVIN),
			Auto:                auto,
			Interest:            "renovacion_garantia",
			ConversationSummary: st.ConversationSummary,
			LeadQuality:         leadQuality(st),
		},
	}
}

// leadQuality grades the handoff: hot when the vehicle profile is complete
// and a direct contact handle exists, warm otherwise.
func leadQuality(st *session.State) string {
	contact := st.HasEntity(canonical.KeyEmail) || st.HasEntity(canonical.KeyPhoneNumber)
	vehicle := st.HasEntity(canonical.KeyVehicleMake) &&
		st.HasEntity(canonical.KeyVehicleModel) &&
		st.HasEntity(canonical.KeyVehicleYear)
	if contact && vehicle {
		return "hot"
	}
	return "warm"
}

// #endregion

// #region meta-intents

func whenMetaIntent(st *session.State) bool {
	switch st.CurrentIntent {
	case IntentGreeting, IntentBye, IntentThankYou, IntentDisagreement, IntentCancelRenovation:
		return true
	}
	return false
}

func fireMetaIntent(st *session.State) *Action {
	switch st.CurrentIntent {
	case IntentGreeting:
		// The only backward edge of the phase machine: new cycle, transcript kept.
		st.ResetForGreeting()
		return &Action{ActionType: ActionGreeting, MessageToCustomer: msgGreeting}
	case IntentBye:
		st.Flags.ConversationEnded = true
		st.Phase = session.PhaseEnded
		return &Action{ActionType: ActionClosing, MessageToCustomer: msgBye}
	case IntentThankYou:
		return &Action{ActionType: ActionClosing, MessageToCustomer: msgClosing}
	case IntentDisagreement:
		st.Flags.ConversationEnded = true
		st.Phase = session.PhaseEnded
		return &Action{ActionType: ActionCancelAck, MessageToCustomer: msgDisagreeAck}
	case IntentCancelRenovation:
		st.Flags.ConversationEnded = true
		st.Phase = session.PhaseEnded
		return &Action{ActionType: ActionCancelAck, MessageToCustomer: msgCancelAck}
	}
	return nil
}

// #endregion

// #region expired-flow

// whenExpiredFlow holds while expiry verification is incomplete, entered by
// phase or by an expired-policy mention. Takes precedence over the pricing
// rules by table order.
func whenExpiredFlow(st *session.State) bool {
	inFlow := st.Phase == session.PhaseExpiredVerification ||
		st.Phase == session.PhaseExpiredDataCollection ||
		st.CurrentIntent == IntentExpiredPolicy
	if !inFlow {
		return false
	}
	return !(st.Flags.ExpiryCaptured && st.Flags.ServicesUpToDate)
}

func fireExpiredFlow(st *session.State) *Action {
	if !st.Flags.ExpiryCaptured {
		if st.HasEntity(canonical.KeyExpiryDays) || st.HasEntity(canonical.KeyRenovationDate) {
			st.Flags.ExpiryCaptured = true
		} else if st.LastActionType != ActionAskExpiryDate {
			st.Phase = session.PhaseExpiredVerification
			st.WaitingFor = WaitExpiryDate
			return &Action{
				ActionType:           ActionAskExpiryDate,
				MessageToCustomer:    msgAskExpiryDate,
				InformationRequested: WaitExpiryDate,
			}
		} else {
			// Already asked once and no expiry arrived; defer instead of looping.
			return nil
		}
	}

	if !st.Flags.ServicesUpToDate {
		if st.WaitingFor == WaitServicesStatus && st.CurrentIntent == IntentConfirmation {
			st.Flags.ServicesUpToDate = true
		} else if st.LastActionType != ActionAskServicesStatus {
			st.Phase = session.PhaseExpiredDataCollection
			st.WaitingFor = WaitServicesStatus
			return &Action{
				ActionType:           ActionAskServicesStatus,
				MessageToCustomer:    msgAskServicesStatus,
				InformationRequested: WaitServicesStatus,
			}
		} else {
			return nil
		}
	}

	// Both gates satisfied this turn: hand over to the standard sequence.
	st.Phase = session.PhaseDataCollection
	st.WaitingFor = ""
	return nextCollectionAsk(st)
}

// #endregion

// #region pricing-flow

// whenPricingConfirmation holds when a plan selection or explicit
// confirmation arrives during the pricing discussion. Other intents in that
// phase fall through to clarification and FAQ rules.
func whenPricingConfirmation(st *session.State) bool {
	if st.Phase != session.PhasePricingDiscussion || st.Flags.PricingConfirmed {
		return false
	}
	return st.HasEntity(canonical.KeyPlanSelection) ||
		st.CurrentIntent == IntentConfirmation ||
		st.CurrentIntent == IntentPlanSelection
}

func firePricingConfirmation(st *session.State) *Action {
	st.Flags.PricingConfirmed = true
	st.Flags.PlanSelected = true
	st.Phase = session.PhasePostPricingCollection
	st.WaitingFor = WaitContactInfo
	return &Action{
		ActionType:           ActionRequestContactInfo,
		MessageToCustomer:    msgPlanConfirmed,
		InformationRequested: WaitContactInfo,
	}
}

// #endregion

// #region standard-collection

func whenCollecting(st *session.State) bool {
	// pricing_discussion only ever advances to post_pricing_collection;
	// restating the renewal wish there re-prompts the plan (faq rule)
	// instead of pulling the session back into data collection.
	if st.Phase == session.PhasePricingDiscussion {
		return false
	}
	if st.CurrentIntent == IntentRenovatePolicy {
		return true
	}
	return st.Phase == session.PhaseDataCollection ||
		st.Phase == session.PhasePostPricingCollection
}

func fireCollection(st *session.State) *Action {
	return nextCollectionAsk(st)
}

// nextCollectionAsk emits the first unanswered question of the standard
// sequence: policy number, then vehicle, then contact. Every ask is paired
// with the entity that silences it, so no question repeats once answered.
// Only the initial phase is promoted; a later phase is never demoted back
// to data collection. With all three satisfied the lead-ready rule has
// already fired, so the nil tail is a defer, not a dead end.
func nextCollectionAsk(st *session.State) *Action {
	if st.Phase == session.PhaseInitial {
		st.Phase = session.PhaseDataCollection
	}

	if !st.HasEntity(canonical.KeyPolicyNumber) {
		st.WaitingFor = WaitPolicyNumber
		return &Action{
			ActionType:           ActionAskPolicyNumber,
			MessageToCustomer:    msgAskPolicyNumber,
			InformationRequested: WaitPolicyNumber,
		}
	}

	if !st.HasEntity(canonical.KeyVehicleMake) ||
		!st.HasEntity(canonical.KeyVehicleModel) ||
		!st.HasEntity(canonical.KeyVehicleYear) {
		st.WaitingFor = WaitVehicleInfo
		return &Action{
			ActionType:           ActionAskVehicleInfo,
			MessageToCustomer:    msgAskVehicleInfo,
			InformationRequested: WaitVehicleInfo,
		}
	}

	if !st.HasEntity(canonical.KeyEmail) && !st.HasEntity(canonical.KeyPhoneNumber) {
		st.WaitingFor = WaitContactInfo
		return &Action{
			ActionType:           ActionRequestContactInfo,
			MessageToCustomer:    msgRequestContact,
			InformationRequested: WaitContactInfo,
		}
	}

	return nil
}

// #endregion

// #region clarification

func whenClarification(st *session.State) bool {
	return st.CurrentIntent == IntentConfusion || st.CurrentIntent == IntentClarification
}

// fireClarification re-issues the pending question verbatim when a
// collection sequence is in progress, instead of restarting the flow.
func fireClarification(st *session.State) *Action {
	if st.Phase.IsCollection() && st.LastPrompt != "" {
		return &Action{
			ActionType:           st.LastActionType,
			MessageToCustomer:    st.LastPrompt,
			InformationRequested: st.WaitingFor,
		}
	}
	return &Action{ActionType: ActionProductExplanation, MessageToCustomer: msgProductExplanation}
}

// #endregion

// #region faq

// whenFAQ gates informational answers on being outside any data-collection
// phase so an in-progress sequence is never derailed.
func whenFAQ(st *session.State) bool {
	if st.Phase.IsCollection() {
		return false
	}
	switch st.CurrentIntent {
	case IntentGetQuote, IntentPaymentFAQ, IntentClaimsFAQ, IntentQueryPolicyDetails, IntentRequestSupport:
		return true
	case IntentRenovatePolicy:
		// Reachable only from pricing_discussion: earlier phases take the
		// standard-collection rule, later ones the short-circuits.
		return st.Phase == session.PhasePricingDiscussion
	}
	return false
}

func fireFAQ(st *session.State) *Action {
	switch st.CurrentIntent {
	case IntentGetQuote, IntentRenovatePolicy:
		if !st.Flags.PricingProvided {
			// Pricing is delivered once per session.
			st.Flags.PricingProvided = true
			st.Phase = session.PhasePricingDiscussion
			st.WaitingFor = WaitPlanSelection
			return &Action{
				ActionType:           ActionProvidePricingInfo,
				MessageToCustomer:    msgPricingInfo,
				InformationRequested: WaitPlanSelection,
			}
		}
		st.WaitingFor = WaitPlanSelection
		return &Action{
			ActionType:           ActionPromptPlanSelection,
			MessageToCustomer:    msgPromptPlan,
			InformationRequested: WaitPlanSelection,
		}
	case IntentPaymentFAQ:
		return &Action{ActionType: ActionFAQPayment, MessageToCustomer: msgFAQPayment}
	case IntentClaimsFAQ:
		return &Action{ActionType: ActionFAQClaims, MessageToCustomer: msgFAQClaims}
	case IntentQueryPolicyDetails:
		return &Action{ActionType: ActionProductExplanation, MessageToCustomer: msgProductExplanation}
	case IntentRequestSupport:
		return &Action{ActionType: ActionFAQSupport, MessageToCustomer: msgFAQSupport}
	}
	return nil
}

// #endregion

// #region unknown-heuristic

func whenUnknown(st *session.State) bool {
	switch st.CurrentIntent {
	case IntentUnknown, "":
		return true
	}
	return false
}

// fireUnknownHeuristic routes on entities when classification failed: a
// clear next collection step wins over a generic clarification. During the
// pricing discussion the open question is the plan choice, so it is
// re-prompted rather than regressing into data collection.
func fireUnknownHeuristic(st *session.State) *Action {
	if st.Phase == session.PhasePricingDiscussion {
		st.WaitingFor = WaitPlanSelection
		return &Action{
			ActionType:           ActionPromptPlanSelection,
			MessageToCustomer:    msgPromptPlan,
			InformationRequested: WaitPlanSelection,
		}
	}

	vehicleComplete := st.HasEntity(canonical.KeyVehicleMake) &&
		st.HasEntity(canonical.KeyVehicleModel) &&
		st.HasEntity(canonical.KeyVehicleYear)

	if st.HasEntity(canonical.KeyPolicyNumber) && !vehicleComplete {
		return nextCollectionAsk(st)
	}
	if vehicleComplete && !st.HasEntity(canonical.KeyEmail) && !st.HasEntity(canonical.KeyPhoneNumber) {
		return nextCollectionAsk(st)
	}
	return &Action{ActionType: ActionClarify, MessageToCustomer: msgClarify}
}

// #endregion
