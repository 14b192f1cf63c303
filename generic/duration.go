/*
duration.go - Duration text parsing and formatting

PURPOSE:
  Attendance data arrives with durations in several textual shapes: clock
  strings from SQL TIME columns ("01:30:15"), short clock strings ("30:15")
  and human-formatted strings produced by report renderers ("1h 30m 15s").
  Everything downstream (deviation totals, pay adjustments) works on integer
  seconds, so all shapes are normalized here.

ACCEPTED FORMS:
  ""  "0"  "00:00:00"     -> 0
  "H:M:S"                 -> H*3600 + M*60 + S
  "M:S"                   -> M*60 + S
  "1h 30m 15s", "90m"     -> sum of the recognized unit tokens

STRICTNESS:
  The colon form is strict: every part must be an integer, otherwise
  ErrInvalidFormat. The unit form is lenient: unknown text is ignored and a
  string with no recognized token parses to 0.

SEE ALSO:
  - attendance/report.go: renders report durations with FormatDuration
  - time.go: seconds-of-day helpers
*/
package generic

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	hoursToken   = regexp.MustCompile(`(\d+)\s*h`)
	minutesToken = regexp.MustCompile(`(\d+)\s*m`)
	secondsToken = regexp.MustCompile(`(\d+)\s*s`)
)

// ParseDuration converts a duration string to whole seconds.
func ParseDuration(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == "0" || text == "00:00:00" {
		return 0, nil
	}

	if strings.Contains(text, ":") {
		return parseClock(text)
	}

	var total int64
	for _, unit := range []struct {
		re     *regexp.Regexp
		factor int64
	}{
		{hoursToken, 3600},
		{minutesToken, 60},
		{secondsToken, 1},
	} {
		match := unit.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		n, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}
		total += n * unit.factor
	}
	return total, nil
}

func parseClock(text string) (int64, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}

	values := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, text)
		}
		values[i] = n
	}

	if len(values) == 3 {
		return values[0]*3600 + values[1]*60 + values[2], nil
	}
	return values[0]*60 + values[1], nil
}

// FormatDuration renders seconds as "1h 30m 15s", omitting zero parts.
// Zero and negative inputs render as "0s".
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}

// FormatClock renders seconds as HH:MM:SS. Negative inputs clamp to zero.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
