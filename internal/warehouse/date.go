package warehouse

import "time"

// DateKey returns the YYYYMMDD integer key for t.
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// Quarter returns the calendar quarter of t, 1–4.
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// ISOWeekday returns the ISO 8601 weekday index of t: 1 for Monday through 7
// for Sunday.
func ISOWeekday(t time.Time) int {
	return (int(t.Weekday())+6)%7 + 1
}

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	return ISOWeekday(t) >= 6
}
