package normalize

import (
	"strings"
	"time"
)

// Date layouts of the two statement kinds.
const (
	BankDateLayout  = "02/01/2006" // DD/MM/YYYY
	HotelDateLayout = "02/01/06"   // DD/MM/YY
)

const timeLayout = "15:04:05"

// Timestamp combines a printed date and time into one value. A time without
// seconds gets ":00". ok is false when either part does not match the layout.
func Timestamp(date, clock, dateLayout string) (ts time.Time, ok bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if strings.Count(clock, ":") == 1 {
		clock += ":00"
	}
	ts, err := time.Parse(dateLayout+" "+timeLayout, date+" "+clock)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
