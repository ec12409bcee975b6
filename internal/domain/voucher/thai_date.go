package voucher

import (
	"fmt"
	"strconv"
	"time"
)

// buddhistEraOffset converts a Gregorian year to the Thai Buddhist year
const buddhistEraOffset = 543

var thaiMonths = [...]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

// ThaiMonthName returns the long Thai name of m
func ThaiMonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return thaiMonths[m-1]
}

// ThaiDate splits t into the day (two digits), the Thai month name and the
// Buddhist year, as printed on the date line.
func ThaiDate(t time.Time) (date, month, year string) {
	return fmt.Sprintf("%02d", t.Day()), ThaiMonthName(t.Month()), strconv.Itoa(t.Year() + buddhistEraOffset)
}
