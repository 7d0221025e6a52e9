package canonical

// #region imports
import (
	"sort"
	"strings"
)

// #endregion

// #region canonical-keys

// Canonical entity keys. Every entity key in a stored session uses exactly
// one of these (or an uppercased unknown key); lowercase and synonym forms
// are collapsed at this boundary and never reappear downstream.
const (
	KeyPolicyNumber   = "POLICY_NUMBER"
	KeyVehicleMake    = "VEHICLE_MAKE"
	KeyVehicleModel   = "VEHICLE_MODEL"
	KeyVehicleYear    = "VEHICLE_YEAR"
	KeyRenovationDate = "RENOVATION_DATE"
	KeyCustomerName   = "CUSTOMER_NAME"
	KeyEmail          = "EMAIL"
	KeyPhoneNumber    = "PHONE_NUMBER"
	KeyVIN            = "VIN"
	KeyCustomerID     = "CUSTOMER_ID"
	KeyPlanSelection  = "PLAN_SELECTION"
	KeyExpiryDays     = "EXPIRY_DAYS"
)

// #endregion

// #region synonyms

// synonyms maps known lowercase and alternate spellings to canonical keys.
// Uppercased canonical forms map to themselves via the ToUpper fallback.
var synonyms = map[string]string{
	"policy_number":   KeyPolicyNumber,
	"policy number":   KeyPolicyNumber,
	"policynumber":    KeyPolicyNumber,
	"vehicle_make":    KeyVehicleMake,
	"make":            KeyVehicleMake,
	"vehicle_model":   KeyVehicleModel,
	"model":           KeyVehicleModel,
	"vehicle_year":    KeyVehicleYear,
	"year":            KeyVehicleYear,
	"renovation_date": KeyRenovationDate,
	"customer_name":   KeyCustomerName,
	"name":            KeyCustomerName,
	"email":           KeyEmail,
	"correo":          KeyEmail,
	"phone_number":    KeyPhoneNumber,
	"phone":           KeyPhoneNumber,
	"telefono":        KeyPhoneNumber,
	"vin":             KeyVIN,
	"customer_id":     KeyCustomerID,
	"plan_selection":  KeyPlanSelection,
	"plan":            KeyPlanSelection,
	"expiry_days":     KeyExpiryDays,
}

// #endregion

// #region canonicalize-key

// Key returns the canonical form of a single entity key. Known synonyms map
// to the fixed canonical set; unknown keys are uppercased. Idempotent.
func Key(raw string) string {
	k := strings.TrimSpace(raw)
	if k == "" {
		return ""
	}
	if c, ok := synonyms[strings.ToLower(k)]; ok {
		return c
	}
	return strings.ToUpper(k)
}

// #endregion

// #region canonicalize-entities

// Entities returns a copy of the entity map with every key canonicalized.
// When a raw key and its canonical twin both appear, the canonical-cased
// entry wins so duplicate-but-differently-cased keys never coexist; among
// colliding non-canonical synonyms the lexicographically first raw key
// wins, so the result is the same for any iteration order of the input.
// Entities(Entities(e)) == Entities(e) for all e.
func Entities(raw map[string]string) map[string]string {
	if raw == nil {
		return map[string]string{}
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(raw))
	for _, k := range keys {
		v := raw[k]
		ck := Key(k)
		if ck == "" || v == "" {
			continue
		}
		// Prefer the value that arrived under the already-canonical casing.
		if _, exists := out[ck]; exists && k != ck {
			continue
		}
		out[ck] = v
	}
	return out
}

// #endregion

// #region coerce-bool

// truthyStrings are the accepted affirmative string forms, lowercase.
var truthyStrings = map[string]bool{
	"true": true,
	"1":    true,
	"yes":  true,
	"si":   true,
	"sí":   true,
}

// Bool coerces a loosely typed flag value to a real boolean.
// true, 1, "true", "1", "yes", "si", "sí" (case-insensitive) coerce to true;
// everything else, including nil, coerces to false.
func Bool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return truthyStrings[strings.ToLower(strings.TrimSpace(t))]
	case int:
		return t == 1
	case int64:
		return t == 1
	case float64:
		return t == 1
	case float32:
		return t == 1
	default:
		return false
	}
}

// #endregion
