package config

import "time"

// ChinaLocation returns the Asia/Shanghai location, falling back to a
// fixed UTC+8 zone if the tz database is unavailable.
func ChinaLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// ChinaNow returns the current time in China Standard Time
func ChinaNow() time.Time {
	return time.Now().In(ChinaLocation())
}

// IsTradingDay reports whether t falls on a weekday. This is a Mon-Fri
// heuristic with no holiday calendar; use --force to run regardless.
func IsTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
