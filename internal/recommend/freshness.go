package recommend

import (
	"time"

	"RoboAdvisor/internal/model"
)

// FreshnessStatus describes how recently a fund row was refreshed.
type FreshnessStatus string

const (
	FreshnessRecent   FreshnessStatus = "recent"
	FreshnessModerate FreshnessStatus = "moderate"
	FreshnessStale    FreshnessStatus = "stale"
	FreshnessUnknown  FreshnessStatus = "unknown"
)

// Freshness buckets the age of lastUpdated: under a week is recent, under four
// weeks moderate, otherwise stale. A zero date is unknown.
func Freshness(lastUpdated, now time.Time) (FreshnessStatus, int) {
	if lastUpdated.IsZero() {
		return FreshnessUnknown, 0
	}
	days := int(now.Sub(lastUpdated).Hours() / 24)
	switch {
	case days < 7:
		return FreshnessRecent, days
	case days < 28:
		return FreshnessModerate, days
	default:
		return FreshnessStale, days
	}
}

// StaleFunds returns the funds whose data is at least four weeks old.
func StaleFunds(funds []model.Fund, now time.Time) []model.Fund {
	var out []model.Fund
	for _, f := range funds {
		if s, _ := Freshness(f.LastUpdated, now); s == FreshnessStale {
			out = append(out, f)
		}
	}
	return out
}
