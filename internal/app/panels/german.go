package panels

import (
	"strconv"
	"time"
)

var weekdays = [...]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"}

var months = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// Weekday returns the German name of t's weekday.
func Weekday(t time.Time) string { return weekdays[t.Weekday()] }

// WeekdayShort returns the two-letter German abbreviation, e.g. "Mo".
func WeekdayShort(t time.Time) string { return string([]rune(Weekday(t))[:2]) }

// Month returns the German name of t's month.
func Month(t time.Time) string { return months[t.Month()-1] }

// LongDate formats t as "19. Oktober 2026".
func LongDate(t time.Time) string {
	return strconv.Itoa(t.Day()) + ". " + Month(t) + " " + strconv.Itoa(t.Year())
}

// DayDate formats t as "Montag, 19. Oktober".
func DayDate(t time.Time) string {
	return Weekday(t) + ", " + strconv.Itoa(t.Day()) + ". " + Month(t)
}
