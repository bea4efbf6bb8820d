package timezone

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Location is where the course site is, its dates are in this zone.
var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Shanghai")
	if err != nil {
		panic(err)
	}
}

func Now() time.Time {
	return time.Now().In(Location)
}

var siteLayouts = []string{time.DateOnly, "2006-01-02 15:04", time.DateTime}

// ParseSiteDate reads a date as the site prints it, either a bare day or a
// day with minutes.
func ParseSiteDate(s string) (time.Time, error) {
	for _, layout := range siteLayouts {
		t, err := time.ParseInLocation(layout, s, Location)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized site date %q", s)
}

// DaysUntil counts calendar days in Location from now to the day of t,
// negative once the day has passed.
func DaysUntil(now, t time.Time) int {
	y, m, d := now.In(Location).Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, Location)
	y, m, d = t.In(Location).Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, Location)
	return int(to.Sub(from).Hours() / 24)
}
