package models

import (
	"strconv"
	"strings"
	"time"
)

// TZChoices are the display offsets the UI layer offers. The engine only
// ever stores the offset string on the card.
var TZChoices = []struct {
	Name   string
	Offset string
}{
	{"UTC-5", "-05:00"}, {"UTC-4", "-04:00"}, {"UTC-3", "-03:00"},
	{"UTC-2", "-02:00"}, {"UTC-1", "-01:00"}, {"UTC", "00:00"},
	{"UTC+1", "+01:00"}, {"UTC+2", "+02:00"}, {"UTC+3", "+03:00"},
	{"UTC+4", "+04:00"}, {"UTC+5", "+05:00"}, {"UTC+6", "+06:00"},
	{"UTC+7", "+07:00"}, {"UTC+8", "+08:00"}, {"UTC+9", "+09:00"},
	{"UTC+10", "+10:00"},
}

// ApplyTZOffset shifts a UTC instant by an "+HH:MM"/"-HH:MM"/"00:00" offset.
// A malformed offset is treated as UTC.
func ApplyTZOffset(t time.Time, offset string) time.Time {
	sign := 1
	if strings.HasPrefix(offset, "-") {
		sign = -1
	}
	raw := strings.TrimLeft(offset, "+-")
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return t
	}
	hh, err1 := strconv.Atoi(parts[0])
	mm, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return t
	}
	d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
	if sign < 0 {
		d = -d
	}
	return t.Add(d)
}
