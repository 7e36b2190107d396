// Package timenorm turns the date representations found in call exports
// (spreadsheet serials, day-first strings, native times) into time.Time
// values on the local calendar, and derives the day/hour/slot keys used
// by filtering and aggregation.
package timenorm

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"
)

// SlotsPerDay is the number of half-hour slots in a day.
const SlotsPerDay = 48

// excelize applies the 1900 leap-year correction below this serial;
// the exports use the plain 1899-12-30 epoch throughout.
const leapBugSerial = 61

var dayFirst = regexp.MustCompile(`(?i)^(\d{1,2})/(\d{1,2})/(\d{4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\s*(AM|PM))?)?`)

// Normalize converts v to a time in loc. The bool is false when v is nil,
// empty or not recognisable as a date; callers must then leave the record
// out of any time-based analysis.
func Normalize(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case float64:
		return FromSerial(x, loc)
	case float32:
		return FromSerial(float64(x), loc)
	case int:
		return FromSerial(float64(x), loc)
	case int64:
		return FromSerial(float64(x), loc)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return FromSerial(f, loc)
	case string:
		return ParseString(x, loc)
	}
	return time.Time{}, false
}

// FromSerial converts a spreadsheet serial day count. The integer part is
// the day offset from 1899-12-30 and the fraction is the local time of day;
// no time zone conversion is applied to the fraction.
func FromSerial(serial float64, loc *time.Location) (time.Time, bool) {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial < 0 {
		return time.Time{}, false
	}
	days := math.Floor(serial)
	secs := int(math.Round((serial - days) * 86400))

	var y int
	var m time.Month
	var d int
	if days >= leapBugSerial {
		base, err := excelize.ExcelDateToTime(days, false)
		if err != nil {
			return time.Time{}, false
		}
		y, m, d = base.Date()
	} else {
		y, m, d = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(days)).Date()
	}
	// time.Date normalises secs == 86400 onto the next day.
	return time.Date(y, m, d, secs/3600, (secs%3600)/60, secs%60, 0, loc), true
}

// ParseString handles "D/M/YYYY [H:MM[:SS] [AM|PM]]" (day first) and falls
// back to generic date parsing for anything else. Without an AM/PM suffix
// the hour is taken as a 24-hour value.
func ParseString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if m := dayFirst.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		hour := atoiOr(m[4])
		minute := atoiOr(m[5])
		second := atoiOr(m[6])
		switch strings.ToUpper(m[7]) {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}
		return time.Date(year, time.Month(month), day, hour, minute, second, 0, loc), true
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func atoiOr(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// DayOfWeek returns 0 (Sunday) through 6 (Saturday).
func DayOfWeek(t time.Time) (int, bool) {
	if t.IsZero() {
		return 0, false
	}
	return int(t.Weekday()), true
}

func Hour(t time.Time) (int, bool) {
	if t.IsZero() {
		return 0, false
	}
	return t.Hour(), true
}

// Slot returns the half-hour slot index, hour*2 plus one from minute 30.
func Slot(t time.Time) (int, bool) {
	if t.IsZero() {
		return 0, false
	}
	s := t.Hour() * 2
	if t.Minute() >= 30 {
		s++
	}
	return s, true
}

// SlotLabel renders a slot index as HH:MM.
func SlotLabel(slot int) string {
	h := slot / 2
	m := (slot % 2) * 30
	return pad2(h) + ":" + pad2(m)
}

// MinuteOfDay returns minutes since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// DateKey formats the local calendar date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// StartOfDay returns local midnight of t's calendar date.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar date.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// StartOfWeek returns Monday 00:00 of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return StartOfDay(t).AddDate(0, 0, -offset)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
