package utils

import (
	"time"
	_ "time/tzdata"
)

// Chile time location, used when rendering dates for people.
var appLoc = func() *time.Location {
	if loc, err := time.LoadLocation("America/Santiago"); err == nil {
		return loc
	}
	return time.FixedZone("CLT", -4*3600)
}()

// FromUnixSeconds converts epoch seconds to local time; t<=0 yields the zero time.
func FromUnixSeconds(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).In(appLoc)
}

func FormatDisplay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(appLoc).Format("02-01-2006 15:04")
}
