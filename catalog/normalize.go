package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var reYearMonth = regexp.MustCompile(`(\d{4})(?:\s*[-/.年]\s*(\d{1,2}))?`)

// NormalizePubDate coerces the free-form publication date to YYYY-M-1.
// "2014-5", "2014年5月" and "2014/05/20" all become "2014-5-1"; a bare year
// becomes "2014-1-1". Values without a year are returned unchanged.
func NormalizePubDate(s string) string {
	m := reYearMonth.FindStringSubmatch(s)
	if m == nil {
		return strings.TrimSpace(s)
	}
	month := 1
	if m[2] != "" {
		if v, err := strconv.Atoi(m[2]); err == nil && v >= 1 && v <= 12 {
			month = v
		}
	}
	return fmt.Sprintf("%s-%d-1", m[1], month)
}

// HalveRating converts a 10-point rating to a 5-point one.
// Non-numeric input is returned unchanged.
func HalveRating(s string) string {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(v/2, 'f', -1, 64)
}
