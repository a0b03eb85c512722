// Package duration converts compact duration tokens such as "1d2h3m" to
// milliseconds and renders millisecond counts back to readable prose.
//
// Calendar units are fixed-length approximations: a month is 30 days and a
// year is 12 months. Nothing here is calendar-accurate.
//
// Example:
//
//	ms, ok := duration.Parse("1d2h3m") // 93780000, true
//	duration.Format(ms, false)        // "1 day, 2 hours, 3 minutes"
//	duration.Format(ms, true)         // "**1** day, **2** hours, **3** minutes"
package duration

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	secsInMinute int64 = 60
	secsInHour         = secsInMinute * 60
	secsInDay          = secsInHour * 24
	secsInMonth        = secsInDay * 30
	secsInYear         = secsInMonth * 12

	// maxInstantMillis is the largest representable instant, in milliseconds
	// since the Unix epoch, accepted by Parse.
	maxInstantMillis int64 = 8_640_000_000_000_000
)

// LessThanASecond is what Format returns for durations under one second.
const LessThanASecond = "less than a second"

var (
	anyUnit = regexp.MustCompile(`(\d+)(d|h|m|s)`)
	numeral = regexp.MustCompile(`(\d+)`)

	units = []struct {
		re     *regexp.Regexp
		millis int64
	}{
		{regexp.MustCompile(`(?i)(\d+)d`), 86_400_000},
		{regexp.MustCompile(`(?i)(\d+)h`), 3_600_000},
		{regexp.MustCompile(`(?i)(\d+)m`), 60_000},
		{regexp.MustCompile(`(?i)(\d+)s`), 1_000},
	}

	// now is swapped in tests.
	now = time.Now
)

// Parse converts a duration token to milliseconds.
//
// The first occurrence of each unit (d, h, m, s) is accumulated. ok is false
// for empty text, for text without any recognizable unit suffix, and for
// durations that overflow or would land past the largest representable
// instant. Non-empty text shorter than two characters yields zero.
func Parse(text string) (millis int64, ok bool) {
	if text == "" {
		return 0, false
	}
	if utf8.RuneCountInString(text) < 2 {
		return 0, true
	}
	if !anyUnit.MatchString(text) {
		return 0, false
	}

	var total int64
	for _, unit := range units {
		match := unit.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		n, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return 0, false
		}
		if n > math.MaxInt64/unit.millis {
			return 0, false
		}
		part := n * unit.millis
		if total > math.MaxInt64-part {
			return 0, false
		}
		total += part
	}

	if total > maxInstantMillis-now().UnixMilli() {
		return 0, false
	}

	return total, true
}

// MustParse is like Parse but panics when text is not a valid duration.
// Use it only for static declarations.
func MustParse(text string) int64 {
	millis, ok := Parse(text)
	if !ok {
		panic(fmt.Sprintf("duration: invalid duration %q", text))
	}
	return millis
}

// Format renders a millisecond count as prose, largest unit first, omitting
// zero-valued units. When bold is set every numeral is wrapped in ** markers.
func Format(millis int64, bold bool) string {
	if millis < 1000 {
		return LessThanASecond
	}

	delta := millis / 1000
	years := delta / secsInYear
	delta -= years * secsInYear
	months := (delta / secsInMonth) % 12
	delta -= months * secsInMonth
	days := (delta / secsInDay) % 30
	delta -= days * secsInDay
	hours := (delta / secsInHour) % 24
	delta -= hours * secsInHour
	minutes := (delta / secsInMinute) % 60
	delta -= minutes * secsInMinute
	seconds := delta

	parts := make([]string, 0, 6)
	for _, u := range []struct {
		n    int64
		name string
	}{
		{years, "year"},
		{months, "month"},
		{days, "day"},
		{hours, "hour"},
		{minutes, "minute"},
		{seconds, "second"},
	} {
		if u.n <= 0 {
			continue
		}
		part := fmt.Sprintf("%d %s", u.n, u.name)
		if u.n > 1 {
			part += "s"
		}
		parts = append(parts, part)
	}

	output := strings.Join(parts, ", ")
	if bold {
		output = numeral.ReplaceAllString(output, "**$1**")
	}
	return output
}

// FormatDuration is Format for a time.Duration.
func FormatDuration(d time.Duration, bold bool) string {
	return Format(d.Milliseconds(), bold)
}
