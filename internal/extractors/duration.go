package extractors

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HumanDuration renders an ISO-8601 "PT" duration as a phrase such as
// "1 hour 30 minutes". Minute ranges ("PT15-20M") are kept verbatim and a
// seconds segment overrides any hours or minutes in the same token. Input
// it cannot read is returned unchanged.
func HumanDuration(iso string) string {
	d, ok := strings.CutPrefix(iso, "PT")
	if !ok {
		return iso
	}

	var parts []string

	hPos := strings.IndexByte(d, 'H')
	if hPos >= 0 {
		hours, _ := strconv.ParseUint(d[:hPos], 10, 32)
		parts = append(parts, plural(hours, "hour"))
	}

	if mPos := strings.IndexByte(d, 'M'); mPos >= 0 && hPos < mPos {
		minutes := d[hPos+1 : mPos]
		if strings.Contains(minutes, "-") {
			parts = append(parts, minutes+" minutes")
		} else if m, err := strconv.ParseUint(minutes, 10, 32); err == nil {
			parts = append(parts, minutePhrase(m)...)
		}
	}

	if sPos := strings.IndexByte(d, 'S'); sPos >= 0 {
		start := strings.LastIndexAny(d[:sPos], "HM") + 1
		if seconds, err := strconv.ParseFloat(d[start:sPos], 64); err == nil && seconds >= 0 && !math.IsInf(seconds, 1) {
			total := uint64(math.Round(seconds / 60))
			parts = nil
			if h := total / 60; h > 0 {
				parts = append(parts, plural(h, "hour"))
			}
			if m := total % 60; m > 0 {
				parts = append(parts, plural(m, "minute"))
			}
		}
	}

	if len(parts) == 0 {
		return iso
	}
	return strings.Join(parts, " ")
}

// minutePhrase re-expresses 60 minutes or more as hours and minutes.
func minutePhrase(m uint64) []string {
	if m < 60 {
		return []string{plural(m, "minute")}
	}
	out := []string{plural(m/60, "hour")}
	if rest := m % 60; rest > 0 {
		out = append(out, plural(rest, "minute"))
	}
	return out
}

func plural(n uint64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
