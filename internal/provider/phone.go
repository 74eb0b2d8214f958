package provider

import "strings"

// DefaultCountryCode is the dialing code numbers are normalized to when
// no country code is present.
const DefaultCountryCode = "254"

// trunkPrefix is the national dialing prefix replaced by the country code
const trunkPrefix = "0"

// NormalizePhone converts a phone number to the single canonical wire
// format the gateway accepts: no whitespace, no leading '+', country code
// in place of the national trunk digit, country code prefixed when absent.
// Normalization is idempotent: normalizing an already-normalized number
// returns it unchanged.
func NormalizePhone(phone, countryCode string) string {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	p := strings.Join(strings.Fields(phone), "")
	p = strings.TrimPrefix(p, "+")

	if strings.HasPrefix(p, trunkPrefix) {
		return countryCode + p[len(trunkPrefix):]
	}
	if !strings.HasPrefix(p, countryCode) {
		return countryCode + p
	}
	return p
}

// UsablePhone reports whether a normalized phone number is worth
// dispatching. The bar is deliberately low: enough digits to be a real
// subscriber number, and nothing but digits.
func UsablePhone(normalized string) bool {
	if len(normalized) < 10 {
		return false
	}
	for _, r := range normalized {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
