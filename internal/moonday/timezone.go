package moonday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ResolveLocation accepts an IANA zone name ("Asia/Seoul"), "UTC"/"Z", or a
// fixed offset ("+09:00", "-0530", "UTC+9", "GMT-05:30"). Empty means UTC.
func ResolveLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	switch strings.ToUpper(name) {
	case "", "UTC", "Z", "GMT":
		return time.UTC, nil
	}

	if loc, ok := parseOffset(name); ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, configError("timezone", name, "unknown zone", err)
	}
	return loc, nil
}

func parseOffset(s string) (*time.Location, bool) {
	upper := strings.ToUpper(s)
	for _, p := range []string{"UTC", "GMT"} {
		if strings.HasPrefix(upper, p) {
			s = s[len(p):]
			break
		}
	}
	if s == "" || (s[0] != '+' && s[0] != '-') {
		return nil, false
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	body := s[1:]

	var hh, mm string
	switch {
	case strings.Contains(body, ":"):
		hh, mm, _ = strings.Cut(body, ":")
	case len(body) == 4:
		hh, mm = body[:2], body[2:]
	default:
		hh, mm = body, "0"
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 14 {
		return nil, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return nil, false
	}

	offset := sign * (h*3600 + m*60)
	name := fmt.Sprintf("UTC%+03d:%02d", sign*h, m)
	if sign < 0 && h == 0 {
		name = fmt.Sprintf("UTC-00:%02d", m)
	}
	return time.FixedZone(name, offset), true
}
