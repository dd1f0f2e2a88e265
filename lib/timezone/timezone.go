package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Chicago")
	if err != nil {
		panic(err)
	}
}

// force the timezone to Memphis local time because the portal renders
// hearing dates in Central time while our servers sometimes end up in
// other regions, which disturbs date math based on
// <time.Time>.Year()/Month()/Day()
func Now() time.Time {
	return time.Now().In(Location)
}
