package util

import (
	"sync"
	"time"
)

var (
	etOnce sync.Once
	etLoc  *time.Location
)

func eastern() *time.Location {
	etOnce.Do(func() {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			// Fixed offset fallback for zoneinfo-less environments; DST
			// drift is acceptable for a display badge.
			loc = time.FixedZone("ET", -5*60*60)
		}
		etLoc = loc
	})
	return etLoc
}

// IsMarketOpen reports whether US equities trade at time t: Monday through
// Friday, 9:30-16:00 ET. Exchange holidays are not modelled.
func IsMarketOpen(t time.Time) bool {
	et := t.In(eastern())
	switch et.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minutes := et.Hour()*60 + et.Minute()
	return minutes >= 9*60+30 && minutes <= 16*60
}
