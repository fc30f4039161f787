package conflict

import "time"

// Session is half of a stable's local day.
type Session int

const (
	Morning Session = iota
	Afternoon
)

func (s Session) String() string {
	if s == Afternoon {
		return "PM"
	}
	return "AM"
}

// SessionBounds returns the session containing t in loc as [from, to):
// AM is [00:00, 12:00) and PM is [12:00, next midnight).
func SessionBounds(t time.Time, loc *time.Location) (Session, time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	noon := time.Date(y, m, d, 12, 0, 0, 0, loc)

	if local.Before(noon) {
		return Morning, midnight, noon
	}
	return Afternoon, noon, time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}
