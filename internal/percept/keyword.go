package percept

// #region imports
import (
	"context"
	"regexp"
	"strings"
)

// #endregion

// #region keywords

var confusionKeywords = []string{
	"no entiendo", "no entendí", "no comprendo", "¿cómo?", "como dices",
	"what do you mean", "qué significa", "explícame", "no sé qué",
}

var cancelKeywords = []string{
	"cancelar", "cancela", "ya no quiero", "cancel",
}

var disagreementKeywords = []string{
	"no me interesa", "no quiero", "no gracias", "mejor no", "not interested",
}

var expiredKeywords = []string{
	"vencida", "venció", "vencido", "expirada", "expirado", "caducada",
	"caducó", "expired", "ya se venció",
}

var pricingKeywords = []string{
	"precio", "costo", "cuánto cuesta", "cuanto cuesta", "cotización",
	"cotizacion", "planes", "price", "quote", "how much",
}

var paymentKeywords = []string{
	"pago", "pagar", "tarjeta", "mensualidades", "transferencia", "payment",
}

var claimsKeywords = []string{
	"reclam", "siniestro", "hacer válida", "hacer valida", "claim",
}

var supportKeywords = []string{
	"soporte", "ayuda técnica", "ayuda tecnica", "asistencia técnica", "support",
}

var renovateKeywords = []string{
	"renovar", "renueva", "renovación", "renovacion", "renew",
	"póliza", "poliza", "policy", "garantía", "garantia", "insurance",
}

var confirmationKeywords = []string{
	"sí", "si,", "confirmo", "de acuerdo", "está bien", "esta bien",
	"claro", "perfecto", "me interesa", "yes", "ok",
}

var byeKeywords = []string{
	"adiós", "adios", "hasta luego", "nos vemos", "bye", "goodbye",
}

var thanksKeywords = []string{
	"gracias", "thank",
}

var greetingKeywords = []string{
	"hola", "buenos días", "buenos dias", "buenas tardes", "buenas noches",
	"hello", "hi",
}

// #endregion

// #region entity-patterns

var (
	policyNumberRe = regexp.MustCompile(`\b[A-Z]{3}\d{6}\b`)
	emailRe        = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe        = regexp.MustCompile(`\b(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	vinRe          = regexp.MustCompile(`\b[A-HJ-NPR-Z0-9]{17}\b`)
	yearRe         = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	planRe         = regexp.MustCompile(`\b(12|24|36|48)\s*meses\b`)
	planBareRe     = regexp.MustCompile(`^(12|24|36|48)$`)
	expiryDaysRe   = regexp.MustCompile(`hace\s+(\d+)\s+d[ií]as`)
	customerNameRe = regexp.MustCompile(`(?i)(?:me llamo|mi nombre es)\s+(\p{L}+(?:\s+\p{L}+)?)`)
)

var vehicleMakes = []string{
	"honda", "toyota", "ford", "vw", "volkswagen", "audi", "nissan",
	"chevrolet", "kia", "mazda", "seat",
}

var vehicleModels = []string{
	"civic", "camry", "corolla", "sentra", "jetta", "vento", "focus",
	"aveo", "rio", "ibiza", "versa", "tsuru",
}

// #endregion

// #region keyword-extractor

// KeywordExtractor is the degraded perception mode: keyword intent
// detection plus entity regexes, no model call. Used when the remote NLP
// service is unreachable so a turn never fails on perception.
type KeywordExtractor struct{}

// Extract never returns an error.
func (KeywordExtractor) Extract(_ context.Context, _ string, message string) (Percept, error) {
	lower := strings.ToLower(strings.TrimSpace(message))
	upper := strings.ToUpper(message)

	p := Percept{
		Intent:   classifyIntent(lower),
		Entities: extractEntities(message, lower, upper),
		Flags:    map[string]bool{},
	}
	if containsAny(lower, expiredKeywords) {
		p.Flags["policyExpired"] = true
	}
	return p, nil
}

// #endregion

// #region classify-intent

// classifyIntent walks the keyword tables most-specific first. A message
// carrying both a cancel phrase and a renovation phrase is a cancellation.
func classifyIntent(lower string) string {
	switch {
	case containsAny(lower, confusionKeywords):
		return "Confusion"
	case containsAny(lower, cancelKeywords):
		return "CancelRenovation"
	case containsAny(lower, disagreementKeywords):
		return "Disagreement"
	case containsAny(lower, expiredKeywords):
		return "ExpiredPolicy"
	case planRe.MatchString(lower) || planBareRe.MatchString(lower):
		return "PlanSelection"
	case containsAny(lower, pricingKeywords):
		return "GetQuote"
	case containsAny(lower, paymentKeywords):
		return "PaymentFAQ"
	case containsAny(lower, claimsKeywords):
		return "ClaimsFAQ"
	case containsAny(lower, supportKeywords):
		return "RequestSupport"
	case containsAny(lower, renovateKeywords):
		return "RenovatePolicy"
	case containsAny(lower, byeKeywords):
		return "Bye"
	case containsAny(lower, thanksKeywords):
		return "ThankYou"
	case isConfirmation(lower):
		return "Confirmation"
	case containsAny(lower, greetingKeywords):
		return "Greeting"
	default:
		return "Unknown"
	}
}

// isConfirmation requires a short message so an affirmative word buried in
// a long sentence does not read as an explicit yes.
func isConfirmation(lower string) bool {
	if len(strings.Fields(lower)) > 6 {
		return false
	}
	return containsAny(lower, confirmationKeywords)
}

// #endregion

// #region extract-entities

func extractEntities(message, lower, upper string) map[string]string {
	out := map[string]string{}

	if m := policyNumberRe.FindString(upper); m != "" {
		out["policy_number"] = m
	}
	if m := emailRe.FindString(message); m != "" {
		out["email"] = m
	}
	if m := vinRe.FindString(upper); m != "" {
		out["vin"] = m
	}
	// Phone after email so an address's digits are not misread.
	phoneSource := message
	if out["email"] != "" {
		phoneSource = strings.ReplaceAll(message, out["email"], " ")
	}
	if m := phoneRe.FindString(phoneSource); m != "" {
		out["phone_number"] = m
	}
	for _, mk := range vehicleMakes {
		if strings.Contains(lower, mk) {
			out["vehicle_make"] = capitalize(mk)
			break
		}
	}
	for _, model := range vehicleModels {
		if strings.Contains(lower, model) && !strings.EqualFold(out["vehicle_make"], model) {
			out["vehicle_model"] = capitalize(model)
			break
		}
	}
	if m := yearRe.FindString(message); m != "" {
		out["vehicle_year"] = m
	}
	if m := planRe.FindStringSubmatch(lower); m != nil {
		out["plan_selection"] = m[1]
	} else if m := planBareRe.FindStringSubmatch(lower); m != nil {
		out["plan_selection"] = m[1]
	}
	if m := expiryDaysRe.FindStringSubmatch(lower); m != nil {
		out["expiry_days"] = m[1]
	}
	if m := customerNameRe.FindStringSubmatch(message); m != nil {
		out["customer_name"] = m[1]
	}
	return out
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

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// #endregion
