package importer

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// numericFields are the layout elements parseLenient understands, longest
// first so "2006" wins over any shorter element.
var numericFields = []string{"2006", "01", "02", "15", "04", "05"}

// parseDate parses value with layout, ignoring trailing whitespace. When the
// strict parse fails and the layout is purely numeric, the value is read
// leniently: only a prefix has to match the layout, and out-of-range fields
// roll over, so "2016-02-30" is 1 March 2016.
func parseDate(layout, value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimRightFunc(value, unicode.IsSpace)
	t, err := time.ParseInLocation(layout, value, loc)
	if err == nil {
		return t, nil
	}
	if t, ok := parseLenient(layout, value, loc); ok {
		return t, nil
	}
	return time.Time{}, err
}

func parseLenient(layout, value string, loc *time.Location) (time.Time, bool) {
	if !numericLayout(layout) {
		return time.Time{}, false
	}
	parts := map[string]int{"2006": 1970, "01": 1, "02": 1}
	for layout != "" {
		field := numericPrefix(layout)
		if field == "" {
			if value == "" || value[0] != layout[0] {
				return time.Time{}, false
			}
			layout, value = layout[1:], value[1:]
			continue
		}
		layout = layout[len(field):]

		// Adjacent numeric fields are split by width, otherwise take every digit.
		width := len(value)
		if numericPrefix(layout) != "" {
			width = len(field)
		}
		n := 0
		for n < width && n < len(value) && value[n] >= '0' && value[n] <= '9' {
			n++
		}
		if n == 0 {
			return time.Time{}, false
		}
		v, err := strconv.Atoi(value[:n])
		if err != nil {
			return time.Time{}, false
		}
		parts[field] = v
		value = value[n:]
	}
	return time.Date(parts["2006"], time.Month(parts["01"]), parts["02"],
		parts["15"], parts["04"], parts["05"], 0, loc), true
}

func numericPrefix(layout string) string {
	for _, f := range numericFields {
		if strings.HasPrefix(layout, f) {
			return f
		}
	}
	return ""
}

// numericLayout reports whether layout holds only numeric fields and
// punctuation.
func numericLayout(layout string) bool {
	for layout != "" {
		if f := numericPrefix(layout); f != "" {
			layout = layout[len(f):]
			continue
		}
		r := rune(layout[0])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		layout = layout[1:]
	}
	return true
}
