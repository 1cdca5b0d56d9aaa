package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The sheet predates this program and holds operator-entered text, so
// cell values arrive in several legacy formats. These normalizers are
// total: anything unrecognized maps to the empty string rather than an
// error, because a bad cell must not take down a whole row read.

var (
	isoDatePattern   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	slashDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?$`)
	jpDatePattern    = regexp.MustCompile(`^(\d{1,2})月(\d{1,2})日`)
)

// normalizeDate converts a legacy date cell to YYYY-MM-DD. Accepted
// forms: YYYY-M-D, M/D, M/D/YY, M/D/YYYY and the handwritten
// 2月26日（木） style, where trailing text after the day is ignored.
// Two-digit years below 50 are 2000s, the rest 1900s; a missing year
// means the current year.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[1], pad2(m[2]), pad2(m[3]))
	}
	if m := slashDatePattern.FindStringSubmatch(s); m != nil {
		year := time.Now().Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				if year < 50 {
					year += 2000
				} else {
					year += 1900
				}
			}
		}
		return fmt.Sprintf("%d-%s-%s", year, pad2(m[1]), pad2(m[2]))
	}
	if m := jpDatePattern.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%d-%s-%s", time.Now().Year(), pad2(m[1]), pad2(m[2]))
	}
	return ""
}

// normalizeInt converts a legacy number cell to a base-10 integer
// string. Thousands separators are stripped and decimal noise is
// truncated. Non-numeric input yields the empty string.
func normalizeInt(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ""
	}
	return strconv.Itoa(int(f))
}

// affirmative holds the tokens a legacy flag cell may contain to mean
// "yes". Comparison is case-insensitive.
var affirmative = map[string]bool{
	"true": true, "1": true, "yes": true,
	"○": true, "〇": true, "はい": true, "出品済": true, "済": true,
}

// truthy reports whether a legacy flag cell is affirmative.
func truthy(s string) bool {
	return affirmative[strings.ToLower(strings.TrimSpace(s))]
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
