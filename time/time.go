// Package time converts between SMPP's several wire time representations
// and Go's time.Time.
package time

import (
	"errors"
	"fmt"
	"time"
)

// Layout defines SMPP time layout in string representation.
// It can be Relative, Absolute, Simple.
type Layout int

const (
	// SimpleSeconds layout in seconds YYMMDDhhmmss.
	SimpleSeconds Layout = iota
	// SimpleMinutes layout in minutes YYMMDDhhmm.
	SimpleMinutes
	// Absolute layout YYMMDDhhmmsstnn[+-].
	Absolute
	// Relative layout YYMMDDhhmmss000[R].
	Relative
)

const (
	simpleSecondsLayout = "060102150405"
	simpleMinutesLayout = "0601021504"
	absoluteDateLayout  = "20060102150405"
)

// twoDigits reads a two-ASCII-digit field, as used by the relative layout's
// hand-rolled year/month/day/hour/minute/second fields.
func twoDigits(b []byte) int {
	return int((b[0]-'0')*10 + (b[1] - '0'))
}

// Parse converts bytestring representation of time from SMPP format
// to standard time.Time. Relative layouts will be added to the current
// time and returned as time.Time.
func Parse(in []byte) (time.Time, error) {
	switch len(in) {
	case 0, 1:
		return time.Time{}, nil
	case 12:
		return time.Parse(simpleSecondsLayout, string(in))
	case 14:
		return time.Parse(absoluteDateLayout, string(in))
	case 10:
		return time.Parse(simpleMinutesLayout, string(in))
	case 16:
		return parseLongForm(in)
	default:
		return time.Time{}, fmt.Errorf("smpp/time: invalid layout length %s", in)
	}
}

// parseLongForm handles the 16-byte relative and absolute layouts, which
// share a prefix and differ only in their trailing indicator byte.
func parseLongForm(in []byte) (time.Time, error) {
	switch indicator := in[len(in)-1]; indicator {
	case 'R':
		y, mo, d := twoDigits(in[0:2]), twoDigits(in[2:4]), twoDigits(in[4:6])
		h, mi, s := twoDigits(in[6:8]), twoDigits(in[8:10]), twoDigits(in[10:12])
		return time.Now().
			AddDate(y, mo, d).
			Add(time.Duration(h)*time.Hour +
				time.Duration(mi)*time.Minute +
				time.Duration(s)*time.Second), nil
	case '-', '+':
		tenths := int(in[12] - '0')
		quarterHours := twoDigits(in[13:15])
		offset := quarterHours * 15 * 60
		if indicator == '-' {
			offset = -offset
		}
		loc := time.UTC
		if offset != 0 {
			loc = time.FixedZone("smpp", offset)
		}
		t, err := time.ParseInLocation(simpleSecondsLayout, string(in[:len(in)-4]), loc)
		if err != nil {
			return time.Time{}, err
		}
		return t.Add(time.Duration(tenths) * 100 * time.Millisecond), nil
	default:
		return time.Time{}, fmt.Errorf("smpp/time: invalid layout length %s", in)
	}
}

// Format converts time.Time into string representation defined by smpp
// predefined layout.
func Format(layout Layout, t time.Time) (string, error) {
	switch layout {
	case SimpleSeconds:
		return t.Format(simpleSecondsLayout), nil
	case SimpleMinutes:
		return t.Format(simpleMinutesLayout), nil
	case Relative:
		y, mo, d, h, mi, s := diff(t, time.Now())
		return fmt.Sprintf("%02d%02d%02d%02d%02d%02d000R", y, mo, d, h, mi, s), nil
	case Absolute:
		sign := "+"
		_, z := t.Zone()
		offset := z / 900
		if offset < 0 {
			sign = "-"
			offset = -offset
		}
		return fmt.Sprintf("%s%d%02d%s", t.Format(simpleSecondsLayout), t.Nanosecond()/100000000, offset, sign), nil
	default:
		return "", errors.New("smpp/time: invalid format layout")
	}
}

// diff reports the calendar difference between a and b, normalized so every
// component is non-negative. Go's time package only supports diffing down
// to a duration; SMPP's relative layout needs years/months/days spelled out
// separately, borrowed from
// https://stackoverflow.com/questions/36530251/golang-time-since-with-months-and-years
func diff(a, b time.Time) (year, month, day, hour, min, sec int) {
	if a.Location() != b.Location() {
		b = b.In(a.Location())
	}
	if a.After(b) {
		a, b = b, a
	}
	y1, M1, d1 := a.Date()
	y2, M2, d2 := b.Date()

	h1, m1, s1 := a.Clock()
	h2, m2, s2 := b.Clock()

	year = y2 - y1
	month = int(M2 - M1)
	day = d2 - d1
	hour = h2 - h1
	min = m2 - m1
	sec = s2 - s1

	if sec < 0 {
		sec += 60
		min--
	}
	if min < 0 {
		min += 60
		hour--
	}
	if hour < 0 {
		hour += 24
		day--
	}
	if day < 0 {
		lastOfPrevMonth := time.Date(y1, M1, 32, 0, 0, 0, 0, time.UTC)
		day += 32 - lastOfPrevMonth.Day()
		month--
	}
	if month < 0 {
		month += 12
		year--
	}

	return
}
