package youtube

import (
	"strconv"
	"strings"
)

// ParseISODuration converts an ISO-8601 duration (e.g. "PT4M13S") to whole
// seconds. A missing or empty duration parses to 0 with ok=false rather than
// an error; livestream placeholders legitimately carry no duration, so the
// caller decides whether the occurrence is worth logging.
func ParseISODuration(s string) (seconds int, ok bool) {
	if s == "" {
		return 0, false
	}

	rest, found := strings.CutPrefix(s, "P")
	if !found {
		return 0, false
	}

	datePart := rest
	timePart := ""
	if idx := strings.Index(rest, "T"); idx >= 0 {
		datePart, timePart = rest[:idx], rest[idx+1:]
	}

	total := 0

	read := func(part string, units map[byte]int) bool {
		num := ""
		for i := 0; i < len(part); i++ {
			ch := part[i]
			if ch >= '0' && ch <= '9' {
				num += string(ch)
				continue
			}
			mult, known := units[ch]
			if !known || num == "" {
				return false
			}
			n, err := strconv.Atoi(num)
			if err != nil {
				return false
			}
			total += n * mult
			num = ""
		}
		return num == ""
	}

	if !read(datePart, map[byte]int{'W': 7 * 86400, 'D': 86400}) {
		return 0, false
	}
	if !read(timePart, map[byte]int{'H': 3600, 'M': 60, 'S': 1}) {
		return 0, false
	}

	return total, true
}
