package intent

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

// ISODate is the date layout used everywhere entries are keyed.
const ISODate = "2006-01-02"

var (
	quoteRe = regexp.MustCompile("[\"'`]")
	spaceRe = regexp.MustCompile(`\s+`)

	// Leading noise phrases anchored at the start, plus trailing duration
	// suffixes. Applied in order, once each.
	noiseRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:add|create|start|begin|make|track|build)\s+`),
		regexp.MustCompile(`(?i)^(?:a|an|the)\s+`),
		regexp.MustCompile(`(?i)^(?:habit|routine)\s+`),
		regexp.MustCompile(`(?i)^(?:called|named|for|to)\s+`),
		regexp.MustCompile(`(?i)^(?:my|this|that)\s+`),
		regexp.MustCompile(`(?i)\s+(?:habit|routine|daily|every day)$`),
	}

	stopWords = map[string]struct{}{
		"the": {}, "a": {}, "an": {}, "my": {}, "this": {}, "that": {},
		"for": {}, "to": {}, "of": {}, "with": {}, "called": {}, "named": {},
	}
)

// NormalizeName cleans a captured habit name into canonical title-cased
// form. Idempotent: NormalizeName(NormalizeName(s)) == NormalizeName(s).
func NormalizeName(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return ""
	}
	cleaned = quoteRe.ReplaceAllString(cleaned, "")
	cleaned = spaceRe.ReplaceAllString(cleaned, " ")

	// Strip to a fixed point: removing one noise word can expose another
	// ("start begin running").
	for {
		prev := cleaned
		for _, re := range noiseRes {
			cleaned = re.ReplaceAllString(cleaned, "")
		}
		if cleaned == prev {
			break
		}
	}

	words := strings.Fields(cleaned)
	kept := words[:0]
	for _, w := range words {
		if _, noise := stopWords[strings.ToLower(w)]; !noise {
			kept = append(kept, w)
		}
	}
	return titleCase(strings.Join(kept, " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var (
	monthDayRe = regexp.MustCompile(`(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})`)
	dayMonthRe = regexp.MustCompile(`(\d{1,2})\s+(january|february|march|april|may|june|july|august|september|october|november|december)`)
)

// ParseRelativeDate resolves a spoken date phrase against now. Explicit
// month/day forms resolve within now's year only. Unparseable input returns
// nil; completion callers treat a nil date as today.
func ParseRelativeDate(raw string, now time.Time) *time.Time {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}

	day := func(d time.Time) *time.Time {
		t := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
		return &t
	}

	switch {
	case strings.Contains(s, "yesterday"):
		return day(now.AddDate(0, 0, -1))
	case strings.Contains(s, "today"):
		return day(now)
	case strings.Contains(s, "tomorrow"):
		return day(now.AddDate(0, 0, 1))
	case strings.Contains(s, "last week"):
		return day(now.AddDate(0, 0, -7))
	case strings.Contains(s, "next week"):
		return day(now.AddDate(0, 0, 7))
	}

	var monthName, dayStr string
	if m := monthDayRe.FindStringSubmatch(s); m != nil {
		monthName, dayStr = m[1], m[2]
	} else if m := dayMonthRe.FindStringSubmatch(s); m != nil {
		dayStr, monthName = m[1], m[2]
	} else {
		return nil
	}

	d := 0
	for _, c := range dayStr {
		d = d*10 + int(c-'0')
	}
	month := months[monthName]
	t := time.Date(now.Year(), month, d, 0, 0, 0, 0, now.Location())
	if t.Month() != month || t.Day() != d {
		// day out of range for the month, e.g. "february 31"
		return nil
	}
	return &t
}
