package model

import (
	"time"

	"github.com/passlocker/core/internal/tlv"
)

// nowTimestamp returns the current local time packed into the model's
// timestamp representation, used wherever spec.md calls for "now"
// (merge's last_accessed bump, backup_entry's last_modified).
func nowTimestamp() tlv.Timestamp {
	t := time.Now()
	return tlv.Timestamp{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// compareTimestamp orders two packed timestamps chronologically: <0 if a
// is earlier, 0 if equal, >0 if a is later.
func compareTimestamp(a, b tlv.Timestamp) int {
	switch {
	case a.Year != b.Year:
		return a.Year - b.Year
	case a.Month != b.Month:
		return a.Month - b.Month
	case a.Day != b.Day:
		return a.Day - b.Day
	case a.Hour != b.Hour:
		return a.Hour - b.Hour
	case a.Minute != b.Minute:
		return a.Minute - b.Minute
	default:
		return a.Second - b.Second
	}
}
