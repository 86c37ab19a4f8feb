package channel

import "github.com/nyaruka/phonenumbers"

// defaultRegion is assumed for numbers stored without a country code.
const defaultRegion = "US"

// E164 normalizes a raw phone string to E.164. A number that cannot be
// parsed is returned unchanged so the transport can still attempt (and
// report) the delivery.
func E164(raw string) string {
	if raw == "" {
		return raw
	}
	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
