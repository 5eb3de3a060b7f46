package fatimg

import (
	"time"
)

// Time is a decoded FAT time stamp.
type Time struct {
	Hour   int
	Minute int
	Second int
}

// Date is a decoded FAT date stamp.
type Date struct {
	Day   int
	Month int
	Year  int
}

// DecodeTime splits a FAT time stamp into its fields:
//
//	Bits 0–4: 2-second count, valid value range 0–29 inclusive (0 – 58 seconds).
//	Bits 5–10: Minutes, valid value range 0–59 inclusive.
//	Bits 11–15: Hours, valid value range 0–23 inclusive.
//
// Out of range values are returned as stored.
func DecodeTime(bits uint16) Time {
	return Time{
		Hour:   int(bits>>11) & 0x1F,
		Minute: int(bits>>5) & 0x3F,
		Second: int(bits&0x1F) * 2,
	}
}

// DecodeDate splits a FAT date stamp into its fields:
//
//	Bits 0–4: Day of month, valid value range 1-31 inclusive.
//	Bits 5–8: Month of year, 1 = January, valid value range 1–12 inclusive.
//	Bits 9–15: Count of years from 1980, valid value range 0–127 inclusive (1980–2107).
func DecodeDate(bits uint16) Date {
	return Date{
		Day:   int(bits & 0x1F),
		Month: int(bits>>5) & 0x0F,
		Year:  1980 + int(bits>>9)&0x7F,
	}
}

// ParseDate converts a FAT date stamp into a time.Time at 00:00:00 UTC.
//
// Day and month 0 are invalid in FAT, in that case time.Time{} is returned so
// that time.Time.IsZero() can be used.
// A month bigger than 12 is normalized by time.Date into the following year.
func ParseDate(bits uint16) time.Time {
	d := DecodeDate(bits)
	if d.Day == 0 || d.Month == 0 {
		return time.Time{}
	}

	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// ParseTime converts a FAT time stamp into a time.Time on January 1, year 1.
// That way a stamp of 00:00:00 is time.Time.IsZero().
// Values overflowing the day are clamped to 23:59:59.
func ParseTime(bits uint16) time.Time {
	t := DecodeTime(bits)
	result := time.Date(1, 1, 1, t.Hour, t.Minute, t.Second, 0, time.UTC)

	if result.Day() > 1 {
		return time.Date(1, 1, 1, 23, 59, 59, 0, time.UTC)
	}

	return result
}

// parseDateTime combines both stamps, returns time.Time{} for an invalid date.
func parseDateTime(date, clock uint16) time.Time {
	d := ParseDate(date)
	if d.IsZero() {
		return time.Time{}
	}

	t := ParseTime(clock)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
