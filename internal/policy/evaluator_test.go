package policy

import (
	"reflect"
	"testing"

	"github.com/garantiplus/brain-controller/internal/canonical"
	"github.com/garantiplus/brain-controller/internal/session"
)

func makeState(intent string, entities map[string]string) session.State {
	st := session.NewState("test-session")
	st.CurrentIntent = intent
	for k, v := range entities {
		st.Entities[k] = v
	}
	return st
}

// #region happy-path

func TestHappyPathRenovation(t *testing.T) {
	// Turn 1: renovation intent, no data yet.
	st := makeState(IntentRenovatePolicy, nil)
	act, st := Evaluate(st)
	if act == nil || act.ActionType != ActionAskPolicyNumber {
		t.Fatalf("turn 1: expected %s, got %+v", ActionAskPolicyNumber, act)
	}
	if st.Phase != session.PhaseDataCollection {
		t.Fatalf("turn 1: expected data_collection phase, got %s", st.Phase)
	}
	if st.WaitingFor != WaitPolicyNumber {
		t.Fatalf("turn 1: expected waiting for policy_number, got %s", st.WaitingFor)
	}

	// Turn 2: policy number arrives.
	st.CurrentIntent = IntentUnknown
	st.Entities[canonical.KeyPolicyNumber] = "GPC123456"
	act, st = Evaluate(st)
	if act == nil || act.ActionType != ActionAskVehicleInfo {
		t.Fatalf("turn 2: expected %s, got %+v", ActionAskVehicleInfo, act)
	}

	// Turn 3: vehicle details arrive.
	st.Entities[canonical.KeyVehicleMake] = "Honda"
	st.Entities[canonical.KeyVehicleModel] = "Civic"
	st.Entities[canonical.KeyVehicleYear] = "2021"
	act, st = Evaluate(st)
	if act == nil || act.ActionType != ActionRequestContactInfo {
		t.Fatalf("turn 3: expected %s, got %+v", ActionRequestContactInfo, act)
	}

	// Turn 4: contact info arrives, lead fires.
	st.Entities[canonical.KeyEmail] = "cliente@example.com"
	act, st = Evaluate(st)
	if act == nil || act.ActionType != ActionNotifyLead {
		t.Fatalf("turn 4: expected %s, got %+v", ActionNotifyLead, act)
	}
	if act.NotificationData == nil {
		t.Fatal("turn 4: expected notification data")
	}
	if act.NotificationData.Auto != "Honda Civic 2021" {
		t.Fatalf("turn 4: wrong auto field: %q", act.NotificationData.Auto)
	}
	if act.NotificationData.LeadQuality != "hot" {
		t.Fatalf("turn 4: expected hot lead, got %s", act.NotificationData.LeadQuality)
	}
	if st.Phase != session.PhaseCompleted {
		t.Fatalf("turn 4: expected completed phase, got %s", st.Phase)
	}
	if !st.Flags.RenovationLeadNotified || !st.Flags.LeadGenerationComplete {
		t.Fatal("turn 4: lead latches not set")
	}
}

func TestLeadFiresRegardlessOfIntent(t *testing.T) {
	st := makeState(IntentUnknown, map[string]string{
		canonical.KeyPolicyNumber: "GPC123456",
		canonical.KeyPhoneNumber:  "4431234567",
	})
	act, _ := Evaluate(st)
	if act == nil || act.ActionType != ActionNotifyLead {
		t.Fatalf("expected lead notification, got %+v", act)
	}
	if act.NotificationData.LeadQuality != "warm" {
		t.Fatalf("expected warm lead without vehicle data, got %s", act.NotificationData.LeadQuality)
	}
}

func TestLeadNeverFiresTwice(t *testing.T) {
	st := makeState(IntentUnknown, map[string]string{
		canonical.KeyPolicyNumber: "GPC123456",
		canonical.KeyEmail:        "cliente@example.com",
	})
	act, st := Evaluate(st)
	if act == nil || act.ActionType != ActionNotifyLead {
		t.Fatalf("first pass: expected lead notification, got %+v", act)
	}

	// Same complete state again: completed short-circuit defers instead.
	act2, _ := Evaluate(st)
	if act2 != nil && act2.ActionType == ActionNotifyLead {
		t.Fatal("lead notification fired twice")
	}
}

// #endregion

// #region determinism

func TestEvaluateIsDeterministic(t *testing.T) {
	st := makeState(IntentRenovatePolicy, map[string]string{
		canonical.KeyPolicyNumber: "GPC123456",
	})

	act1, out1 := Evaluate(st)
	act2, out2 := Evaluate(st)

	if !reflect.DeepEqual(act1, act2) {
		t.Fatalf("actions differ: %+v vs %+v", act1, act2)
	}
	if !reflect.DeepEqual(out1, out2) {
		t.Fatalf("states differ: %+v vs %+v", out1, out2)
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	st := makeState(IntentRenovatePolicy, nil)
	before := st.Clone()

	Evaluate(st)

	if !reflect.DeepEqual(st, before) {
		t.Fatalf("input state mutated: %+v vs %+v", st, before)
	}
}

// #endregion

// #region greeting-reset

func TestGreetingResetsCycleButKeepsLeadLatch(t *testing.T) {
	st := makeState(IntentUnknown, map[string]string{
		canonical.KeyPolicyNumber: "GPC123456",
		canonical.KeyEmail:        "cliente@example.com",
	})
	_, st = Evaluate(st)
	if !st.Flags.RenovationLeadNotified {
		t.Fatal("setup: lead latch not set")
	}
	st.ConversationSummary = "User: quiero renovar | Agent: listo | "

	// A greeting straight from the completed phase starts a new cycle.
	st.CurrentIntent = IntentGreeting
	act, st := Evaluate(st)
	if act == nil || act.ActionType != ActionGreeting {
		t.Fatalf("expected greeting action, got %+v", act)
	}
	if len(st.Entities) != 0 {
		t.Fatalf("expected entities cleared, got %v", st.Entities)
	}
	if st.Phase != session.PhaseInitial {
		t.Fatalf("expected initial phase, got %s", st.Phase)
	}
	if !st.Flags.RenovationLeadNotified || !st.Flags.LeadGenerationComplete {
		t.Fatal("lead latch must survive the greeting reset")
	}
	if st.Flags.PolicyNumberProvided {
		t.Fatal("transient flags must clear on greeting reset")
	}
	if st.ConversationSummary != "User: quiero renovar | Agent: listo | " {
		t.Fatalf("transcript must survive the greeting reset, got %q", st.ConversationSummary)
	}
}

// #endregion

// #region terminal-phases

func TestEndedPhaseStaysClosed(t *testing.T) {
	st := makeState(IntentRenovatePolicy, nil)
	st.Phase = session.PhaseEnded

	act, out := Evaluate(st)
	if act != nil {
		t.Fatalf("ended session answered a business intent: %+v", act)
	}
	if out.Phase != session.PhaseEnded {
		t.Fatalf("phase left ended: %s", out.Phase)
	}
}

func TestEndedPhaseAcknowledgesCourtesy(t *testing.T) {
	st := makeState(IntentThankYou, nil)
	st.Phase = session.PhaseEnded

	act, _ := Evaluate(st)
	if act == nil || act.ActionType != ActionClosing {
		t.Fatalf("expected closing ack, got %+v", act)
	}
}

func TestByeEndsConversation(t *testing.T) {
	st := makeState(IntentBye, nil)
	act, out := Evaluate(st)
	if act == nil || act.ActionType != ActionClosing {
		t.Fatalf("expected closing, got %+v", act)
	}
	if out.Phase != session.PhaseEnded || !out.Flags.ConversationEnded {
		t.Fatalf("bye did not end the conversation: phase=%s ended=%v", out.Phase, out.Flags.ConversationEnded)
	}
}

func TestCancelEndsConversation(t *testing.T) {
	st := makeState(IntentCancelRenovation, nil)
	st.Phase = session.PhaseDataCollection
	st.Entities[canonical.KeyPolicyNumber] = "GPC123456"

	act, out := Evaluate(st)
	if act == nil || act.ActionType != ActionCancelAck {
		t.Fatalf("expected cancel ack, got %+v", act)
	}
	if out.Phase != session.PhaseEnded {
		t.Fatalf("expected ended phase, got %s", out.Phase)
	}
}

// #endregion

// #region expired-flow

func TestExpiredFlowFullSequence(t *testing.T) {
	// Turn 1: customer mentions the policy expired.
	st := makeState(IntentExpiredPolicy, nil)
	act, st := Evaluate(st)
	if act == nil || act.ActionType != ActionAskExpiryDate {
		t.Fatalf("turn 1: expected %s, got %+v", ActionAskExpiryDate, act)
	}
	if st.Phase != session.PhaseExpiredVerification {
		t.Fatalf("turn 1: expected expired_verification, got %s", st.Phase)
	}

	// Turn 2: expiry answer arrives.
	st.CurrentIntent = IntentUnknown
	st.Entities[canonical.KeyExpiryDays] = "15"
	act, st = Evaluate(st)
	if act == nil || act.ActionType != ActionAskServicesStatus {
		t.Fatalf("turn 2: expected %s, got %+v", ActionAskServicesStatus, act)
	}
	if !st.Flags.ExpiryCaptured {
		t.Fatal("turn 2: expiry not captured")
	}
	if st.Phase != session.PhaseExpiredDataCollection {
		t.Fatalf("turn 2: expected expired_data_collection, got %s", st.Phase)
	}

	// Turn 3: services confirmed, flow hands over to standard collection.
	st.CurrentIntent = IntentConfirmation
	act, st = Evaluate(st)
	if act == nil || act.ActionType != ActionAskPolicyNumber {
		t.Fatalf("turn 3: expected %s, got %+v", ActionAskPolicyNumber, act)
	}
	if !st.Flags.ServicesUpToDate {
		t.Fatal("turn 3: services flag not latched")
	}
	if st.Phase != session.PhaseDataCollection {
		t.Fatalf("turn 3: expected data_collection, got %s", st.Phase)
	}
}

func TestExpiredFlowDoesNotLoopOnUnansweredAsk(t *testing.T) {
	st := makeState(IntentExpiredPolicy, nil)
	_, st = Evaluate(st)

	// Customer replies with something useless; the ask must not repeat.
	st.CurrentIntent = IntentExpiredPolicy
	act, _ := Evaluate(st)
	if act != nil && act.ActionType == ActionAskExpiryDate {
		t.Fatal("expiry ask repeated back to back")
	}
}

func TestExpiredFlowOutranksPricing(t *testing.T) {
	st := makeState(IntentGetQuote, nil)
	st.Phase = session.PhaseExpiredVerification

	act, _ := Evaluate(st)
	if act == nil || act.ActionType == ActionProvidePricingInfo {
		t.Fatalf("pricing answered during expiry verification: %+v", act)
	}
}

// #endregion

// #region pricing-flow

func TestPricingFlow(t *testing.T) {
	// Quote request outside collection delivers pricing once.
	st := makeState(IntentGetQuote, nil)
	act, st := Evaluate(st)
	if act == nil || act.ActionType != ActionProvidePricingInfo {
		t.Fatalf("expected pricing info, got %+v", act)
	}
	if st.Phase != session.PhasePricingDiscussion || !st.Flags.PricingProvided {
		t.Fatalf("pricing state wrong: phase=%s provided=%v", st.Phase, st.Flags.PricingProvided)
	}

	// Plan selection confirms and moves to post-pricing collection.
	st.CurrentIntent = IntentPlanSelection
	st.Entities[canonical.KeyPlanSelection] = "12"
	act, st = Evaluate(st)
	if act == nil || act.ActionType != ActionRequestContactInfo {
		t.Fatalf("expected contact request, got %+v", act)
	}
	if st.Phase != session.PhasePostPricingCollection {
		t.Fatalf("expected post_pricing_collection, got %s", st.Phase)
	}
	if !st.Flags.PricingConfirmed || !st.Flags.PlanSelected {
		t.Fatal("pricing latches not set")
	}

	// Contact arrives; policy number is still missing so collection resumes.
	st.CurrentIntent = IntentUnknown
	st.Entities[canonical.KeyPhoneNumber] = "4431234567"
	act, _ = Evaluate(st)
	if act == nil || act.ActionType != ActionAskPolicyNumber {
		t.Fatalf("expected policy number ask, got %+v", act)
	}
}

func TestRepeatedQuotePromptsPlanSelection(t *testing.T) {
	st := makeState(IntentGetQuote, nil)
	_, st = Evaluate(st)

	st.CurrentIntent = IntentGetQuote
	act, _ := Evaluate(st)
	if act == nil || act.ActionType != ActionPromptPlanSelection {
		t.Fatalf("expected plan prompt on second quote, got %+v", act)
	}
}

func TestRenewalDuringPricingDoesNotRegressPhase(t *testing.T) {
	st := makeState(IntentRenovatePolicy, nil)
	st.Phase = session.PhasePricingDiscussion
	st.Flags.PricingProvided = true

	act, out := Evaluate(st)
	if out.Phase != session.PhasePricingDiscussion {
		t.Fatalf("phase moved backward: pricing_discussion -> %s", out.Phase)
	}
	if act == nil || act.ActionType != ActionPromptPlanSelection {
		t.Fatalf("expected plan prompt, got %+v", act)
	}
}

func TestUnknownDuringPricingDoesNotRegressPhase(t *testing.T) {
	st := makeState(IntentUnknown, map[string]string{
		canonical.KeyPolicyNumber: "GPC123456",
	})
	st.Phase = session.PhasePricingDiscussion
	st.Flags.PricingProvided = true
	st.Flags.RenovationLeadNotified = true

	act, out := Evaluate(st)
	if out.Phase != session.PhasePricingDiscussion {
		t.Fatalf("phase moved backward: pricing_discussion -> %s", out.Phase)
	}
	if act == nil || act.ActionType == ActionAskPolicyNumber || act.ActionType == ActionAskVehicleInfo {
		t.Fatalf("collection ask issued during pricing: %+v", act)
	}
}

func TestPricingSuppressedDuringCollection(t *testing.T) {
	st := makeState(IntentGetQuote, nil)
	st.Phase = session.PhaseDataCollection

	act, _ := Evaluate(st)
	if act != nil && act.ActionType == ActionProvidePricingInfo {
		t.Fatal("pricing delivered mid-collection")
	}
	// Collection continues instead.
	if act == nil || act.ActionType != ActionAskPolicyNumber {
		t.Fatalf("expected collection to continue, got %+v", act)
	}
}

// #endregion

// #region clarification

func TestClarificationReissuesPendingQuestion(t *testing.T) {
	st := makeState(IntentRenovatePolicy, nil)
	act, st := Evaluate(st)
	if act == nil {
		t.Fatal("setup: no ask issued")
	}

	st.CurrentIntent = IntentConfusion
	clarify, out := Evaluate(st)
	if clarify == nil {
		t.Fatal("no clarification issued")
	}
	if clarify.ActionType != act.ActionType || clarify.MessageToCustomer != act.MessageToCustomer {
		t.Fatalf("clarification did not re-issue the pending ask: %+v", clarify)
	}
	if out.WaitingFor != st.WaitingFor {
		t.Fatalf("waiting_for changed on clarification: %s", out.WaitingFor)
	}
}

func TestClarificationOutsideCollectionExplainsProduct(t *testing.T) {
	st := makeState(IntentConfusion, nil)
	act, _ := Evaluate(st)
	if act == nil || act.ActionType != ActionProductExplanation {
		t.Fatalf("expected product explanation, got %+v", act)
	}
}

// #endregion

// #region unknown-heuristic

func TestUnknownWithPartialDataResumesCollection(t *testing.T) {
	st := makeState(IntentUnknown, map[string]string{
		canonical.KeyPolicyNumber: "GPC123456",
	})
	st.Flags.RenovationLeadNotified = true // keep lead_ready out of the way

	act, _ := Evaluate(st)
	if act == nil || act.ActionType != ActionAskVehicleInfo {
		t.Fatalf("expected vehicle ask, got %+v", act)
	}
}

func TestUnknownWithNothingClarifies(t *testing.T) {
	st := makeState(IntentUnknown, nil)
	act, _ := Evaluate(st)
	if act == nil || act.ActionType != ActionClarify {
		t.Fatalf("expected clarify, got %+v", act)
	}
}

// #endregion

// #region faq

func TestFAQAnswers(t *testing.T) {
	tests := []struct {
		intent string
		action string
	}{
		{IntentPaymentFAQ, ActionFAQPayment},
		{IntentClaimsFAQ, ActionFAQClaims},
		{IntentQueryPolicyDetails, ActionProductExplanation},
		{IntentRequestSupport, ActionFAQSupport},
	}
	for _, tt := range tests {
		st := makeState(tt.intent, nil)
		act, out := Evaluate(st)
		if act == nil || act.ActionType != tt.action {
			t.Errorf("intent %s: expected %s, got %+v", tt.intent, tt.action, act)
			continue
		}
		if out.Phase != session.PhaseInitial {
			t.Errorf("intent %s: FAQ answer changed phase to %s", tt.intent, out.Phase)
		}
	}
}

// #endregion

// #region last-prompt

func TestEvaluateRecordsLastPrompt(t *testing.T) {
	st := makeState(IntentRenovatePolicy, nil)
	act, out := Evaluate(st)
	if out.LastActionType != act.ActionType {
		t.Fatalf("lastActionType not recorded: %s", out.LastActionType)
	}
	if out.LastPrompt != act.MessageToCustomer {
		t.Fatalf("lastPrompt not recorded: %s", out.LastPrompt)
	}
}

// #endregion
