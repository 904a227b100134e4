package customers

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// DefaultRegion is used to parse numbers written without a country code.
const DefaultRegion = "NG"

// NormalizeMobile returns the E.164 form of raw when it is a valid number.
func NormalizeMobile(raw, region string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if region == "" {
		region = DefaultRegion
	}
	num, err := libphonenumber.Parse(raw, region)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return "", false
	}
	return libphonenumber.Format(num, libphonenumber.E164), true
}

// regionFor maps the handful of desk countries to phone regions.
func regionFor(country string) string {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "ghana":
		return "GH"
	default:
		return DefaultRegion
	}
}

// mobileCandidates lists the stored forms a supplied number may match.
func mobileCandidates(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	out := []string{raw}
	if e164, ok := NormalizeMobile(raw, DefaultRegion); ok && e164 != raw {
		out = append(out, e164)
	}
	return out
}
