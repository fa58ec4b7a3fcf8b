package billing

import (
	"strings"

	"go.uber.org/zap"
)

// Cadence is how often a client is billed. OTHER is kept distinct from
// MONTHLY even though both resolve to a one-month width, so callers can tell
// an explicit monthly contract from the fallback.
type Cadence string

const (
	CadenceMonthly    Cadence = "MONTHLY"
	CadenceQuarterly  Cadence = "QUARTERLY"
	CadenceSemiAnnual Cadence = "SEMI_ANNUAL"
	CadenceAnnual     Cadence = "ANNUAL"
	CadenceOther      Cadence = "OTHER"
)

// ParseCadence normalizes free-form billing terms into a Cadence.
// Unrecognized values map to OTHER.
func ParseCadence(s string) Cadence {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "MONTHLY":
		return CadenceMonthly
	case "QUARTERLY":
		return CadenceQuarterly
	case "SEMI_ANNUAL", "SEMIANNUAL":
		return CadenceSemiAnnual
	case "ANNUAL", "YEARLY":
		return CadenceAnnual
	default:
		return CadenceOther
	}
}

// Months returns the period width in months and whether the cadence maps to
// a width directly. OTHER and unknown values return false.
func (c Cadence) Months() (int, bool) {
	switch c {
	case CadenceMonthly:
		return 1, true
	case CadenceQuarterly:
		return 3, true
	case CadenceSemiAnnual:
		return 6, true
	case CadenceAnnual:
		return 12, true
	default:
		return 0, false
	}
}

// MonthsOrDefault resolves the period width, falling back to monthly for
// OTHER and unrecognized cadences. The fallback is intentional billing
// policy, and it is logged so the default branch stays visible.
func (c Cadence) MonthsOrDefault(log *zap.Logger) int {
	if months, ok := c.Months(); ok {
		return months
	}
	if log != nil {
		log.Warn("unrecognized billing cadence, defaulting to monthly",
			zap.String("cadence", string(c)),
		)
	}
	return 1
}
