package types

import (
	"strings"
	"time"

	ierr "github.com/flexprice/feeledger/internal/errors"
)

// timezoneAliases maps abbreviations accepted in billing.timezone to IANA names
var timezoneAliases = map[string]string{
	"UTC":  "UTC",
	"GMT":  "Europe/London",
	"IST":  "Asia/Kolkata",
	"EAT":  "Africa/Nairobi",
	"WAT":  "Africa/Lagos",
	"CAT":  "Africa/Harare",
	"CET":  "Europe/Berlin",
	"EST":  "America/New_York",
	"PST":  "America/Los_Angeles",
	"JST":  "Asia/Tokyo",
	"AEST": "Australia/Sydney",
}

// LoadLocation resolves an IANA name or a known abbreviation. An empty name
// is UTC.
func LoadLocation(timezone string) (*time.Location, error) {
	name := strings.TrimSpace(timezone)
	if name == "" {
		return time.UTC, nil
	}
	if alias, ok := timezoneAliases[strings.ToUpper(name)]; ok {
		name = alias
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Unknown timezone %q", timezone).
			WithReportableDetails(map[string]any{
				"timezone": timezone,
			}).
			Mark(ierr.ErrValidation)
	}
	return loc, nil
}
