package availability

import (
	"errors"
	"time"
)

var errEmptyZoneName = errors.New("timezone name must not be empty")

// ResolveTimezone computes the timezone rule in effect for the named IANA
// zone at ref.
//
// Repeated calls with the same name and instant return the same rule.
func ResolveTimezone(name string, ref time.Time) (TimezoneRule, error) {
	// time.LoadLocation maps "" to UTC
	if name == "" {
		return TimezoneRule{}, newTimezoneResolutionError(name, errEmptyZoneName)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return TimezoneRule{}, newTimezoneResolutionError(name, err)
	}

	local := ref.In(loc)
	_, total := local.Zone()
	standard := standardOffsetSeconds(loc, local.Year())

	// tzdata models some zones (Europe/Dublin, Africa/Casablanca) with a
	// negative save, so the DST flag of the zone is not used directly
	rule := TimezoneRule{
		UTCOffsetMinutes:     total / 60,
		DaylightSavingActive: total > standard,
	}
	if rule.DaylightSavingActive {
		rule.StandardOffsetMinutes = (total - standard) / 60
	}

	return rule, nil
}

// standardOffsetSeconds returns the zone's standard offset for the given
// year: the smaller of the midwinter and midsummer offsets, which covers
// both hemispheres.
func standardOffsetSeconds(loc *time.Location, year int) int {
	_, january := time.Date(year, time.January, 1, 12, 0, 0, 0, loc).Zone()
	_, july := time.Date(year, time.July, 1, 12, 0, 0, 0, loc).Zone()
	return min(january, july)
}
