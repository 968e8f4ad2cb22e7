// Package features produces the optional calendar content layered on top of
// the prayer schedule: Hijri dates, voluntary-fast reminders, sacred-month
// markers and adhkar labels.
package features

import (
	"fmt"
	"time"
)

// HijriDate is an approximate Hijri calendar date.
type HijriDate struct {
	Year  int
	Month int
	Day   int
}

// hijriEpoch anchors the conversion: 1 Muharram 1445 AH fell on
// 19 July 2023 CE.
var hijriEpoch = time.Date(2023, time.July, 19, 0, 0, 0, 0, time.UTC)

// hijriMonthLengths is the simplified alternating 30/29 month scheme used
// by the approximate conversion.
var hijriMonthLengths = [12]int{30, 29, 30, 29, 30, 29, 30, 29, 30, 29, 30, 29}

var hijriMonthNames = [12]string{
	"Muharram",
	"Safar",
	"Rabi al-Awwal",
	"Rabi al-Thani",
	"Jumada al-Awwal",
	"Jumada al-Thani",
	"Rajab",
	"Sha'ban",
	"Ramadan",
	"Shawwal",
	"Dhul Qadah",
	"Dhul Hijjah",
}

// sacredMonths are Muharram, Rajab, Dhul Qadah and Dhul Hijjah.
var sacredMonths = map[int]string{
	1:  "Muharram",
	7:  "Rajab",
	11: "Dhul Qadah",
	12: "Dhul Hijjah",
}

// HijriFromGregorian converts a Gregorian date to its approximate Hijri
// equivalent using a fixed 354-day year and alternating 30/29 months. The
// result can drift a day or two from observed calendars; it is meant for
// display, not for religious rulings.
func HijriFromGregorian(t time.Time) HijriDate {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	daysDiff := int(day.Sub(hijriEpoch).Hours() / 24)

	year := 1445 + floorDiv(daysDiff, 354)
	remaining := mod(daysDiff, 354)

	month := 1
	hijriDay := 1
	for _, length := range hijriMonthLengths {
		if remaining >= length {
			remaining -= length
			month++
		} else {
			hijriDay += remaining
			break
		}
	}

	return HijriDate{Year: year, Month: month, Day: hijriDay}
}

// String renders the date as "13 Ramadan 1446".
func (h HijriDate) String() string {
	name := ""
	if h.Month >= 1 && h.Month <= 12 {
		name = hijriMonthNames[h.Month-1]
	}
	return fmt.Sprintf("%d %s %d", h.Day, name, h.Year)
}

// SacredMonth returns the sacred month name, if the date falls in one.
func (h HijriDate) SacredMonth() (string, bool) {
	name, ok := sacredMonths[h.Month]
	return name, ok
}

// WhiteDay reports whether the date is one of Ayyam al-Bid (13th-15th).
func (h HijriDate) WhiteDay() bool {
	return h.Day >= 13 && h.Day <= 15
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
