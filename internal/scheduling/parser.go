package scheduling

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fitversal/coach-scheduler/internal/models"
)

// ParsedSchedule is the best-effort structure extracted from free text.
// Missing fields are expected output, not an error: HasTime and HasDate tell
// the caller what was actually found.
type ParsedSchedule struct {
	Time       string            `json:"time,omitempty"`
	Dates      []string          `json:"dates,omitempty"`
	Recurrence models.Recurrence `json:"recurrence,omitempty"`
	HasTime    bool              `json:"has_time"`
	HasDate    bool              `json:"has_date"`
}

var timePattern = regexp.MustCompile(`(?i)(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)

var dateKeywords = []string{
	"today", "tomorrow",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

var weeklyKeywords = []string{"every", "weekly", "all"}
var onceKeywords = []string{"only", "just", "one time", "single"}

// ParseSchedulingText extracts a wall-clock time, date keywords, and a
// recurrence hint from free text. A bare number is not treated as a time, the
// first plausible time wins, and every date keyword found is collected.
func ParseSchedulingText(input string) ParsedSchedule {
	parsed := ParsedSchedule{}
	lowered := strings.ToLower(input)

	if clock, ok := extractTime(input); ok {
		parsed.Time = clock
		parsed.HasTime = true
	}

	for _, keyword := range dateKeywords {
		if strings.Contains(lowered, keyword) {
			parsed.Dates = append(parsed.Dates, keyword)
		}
	}
	parsed.HasDate = len(parsed.Dates) > 0

	parsed.Recurrence = extractRecurrence(lowered)
	return parsed
}

func extractTime(input string) (string, bool) {
	for _, match := range timePattern.FindAllStringSubmatch(input, -1) {
		minutesPart, meridiem := match[2], strings.ToLower(match[3])
		if minutesPart == "" && meridiem == "" {
			// A bare number ("4 weeks") is not a time.
			continue
		}

		hour, err := strconv.Atoi(match[1])
		if err != nil || hour > 23 {
			return "", false
		}
		minute := 0
		if minutesPart != "" {
			minute, err = strconv.Atoi(minutesPart)
			if err != nil || minute > 59 {
				return "", false
			}
		}

		switch meridiem {
		case "pm":
			if hour < 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		}
		if hour > 23 {
			return "", false
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), true
	}
	return "", false
}

func extractRecurrence(lowered string) models.Recurrence {
	for _, keyword := range weeklyKeywords {
		if strings.Contains(lowered, keyword) {
			return models.RecurrenceWeekly
		}
	}
	for _, keyword := range onceKeywords {
		if strings.Contains(lowered, keyword) {
			return models.RecurrenceOnce
		}
	}
	return ""
}
