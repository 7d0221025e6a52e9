package policy

// #region intents

// Intents produced by perception. The evaluator treats anything outside
// this set as unknown.
const (
	IntentRenovatePolicy     = "RenovatePolicy"
	IntentGetQuote           = "GetQuote"
	IntentQueryPolicyDetails = "QueryPolicyDetails"
	IntentCancelRenovation   = "CancelRenovation"
	IntentGreeting           = "Greeting"
	IntentRequestSupport     = "RequestSupport"
	IntentBye                = "Bye"
	IntentThankYou           = "ThankYou"
	IntentDisagreement       = "Disagreement"
	IntentConfusion          = "Confusion"
	IntentClarification      = "AskForClarification"
	IntentExpiredPolicy      = "ExpiredPolicy"
	IntentConfirmation       = "Confirmation"
	IntentPlanSelection      = "PlanSelection"
	IntentPaymentFAQ         = "PaymentFAQ"
	IntentClaimsFAQ          = "ClaimsFAQ"
	IntentUnknown            = "Unknown"
)

// #endregion

// #region action-types

// Action types consumed by the transport/CRM side.
const (
	ActionNotifyLead          = "notify_human_renovation_lead"
	ActionAskPolicyNumber     = "ask_for_policy_number"
	ActionAskVehicleInfo      = "ask_for_vehicle_info"
	ActionRequestContactInfo  = "request_contact_info"
	ActionProvidePricingInfo  = "provide_pricing_info"
	ActionPromptPlanSelection = "prompt_plan_selection"
	ActionAskExpiryDate       = "ask_expiry_date"
	ActionAskServicesStatus   = "ask_services_status"
	ActionGreeting            = "greeting_response"
	ActionClosing             = "closing_message"
	ActionCancelAck           = "acknowledge_cancellation"
	ActionClarify             = "ask_for_clarification"
	ActionProductExplanation  = "product_explanation"
	ActionFAQPayment          = "faq_payment_info"
	ActionFAQClaims           = "faq_claims_info"
	ActionFAQSupport          = "faq_support_contact"
)

// #endregion

// #region action

// Action is the evaluator's output: what the transport layer should do
// next. Only NotifyLead carries notification data.
type Action struct {
	ActionType           string            `json:"actionType"`
	MessageToCustomer    string            `json:"messageToCustomer"`
	InformationRequested string            `json:"informationRequested,omitempty"`
	NotificationData     *NotificationData `json:"notificationData,omitempty"`
}

// NotificationData is the human-agent handoff payload built from every
// entity known at notification time.
type NotificationData struct {
	CustomerName        string `json:"customerName"`
	PolicyNumber        string `json:"policyNumber"`
	Email               string `json:"email"`
	PhoneWhatsapp       string `json:"phoneWhatsapp"`
	VIN                 string `json:"vin"`
	Auto                string `json:"auto"`
	Interest            string `json:"interest"`
	ConversationSummary string `json:"conversationSummary"`
	LeadQuality         string `json:"leadQuality"`
}

// #endregion

// #region waiting-for

// WaitingFor markers recorded when an ask is emitted.
const (
	WaitPolicyNumber   = "policy_number"
	WaitVehicleInfo    = "vehicle_info"
	WaitContactInfo    = "contact_info"
	WaitPlanSelection  = "plan_selection"
	WaitExpiryDate     = "expiry_date"
	WaitServicesStatus = "services_status"
)

// #endregion
