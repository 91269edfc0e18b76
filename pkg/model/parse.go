package model

import (
	"strings"

	"github.com/samber/lo"
)

// DayNames is the fixed calendar order used for output sorting. Day
// comparison elsewhere is plain string equality.
var DayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// IsSharedFlag interprets the optional Shared column ("yes" marks a year-3
// course offered jointly to multiple departments).
func IsSharedFlag(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "yes")
}

// SplitQualifiedCourses parses the comma-separated qualified-course list.
func SplitQualifiedCourses(value string) []string {
	parts := strings.Split(value, ",")
	trimmed := lo.Map(parts, func(s string, _ int) string { return strings.TrimSpace(s) })
	return lo.Filter(trimmed, func(s string, _ int) bool { return s != "" })
}

// ParseUnavailableDay extracts a day name from an availability-exception
// string of the form "Not on Monday". Returns empty when the string encodes
// no day rule.
func ParseUnavailableDay(value string) string {
	if !strings.Contains(value, "Not on") {
		return ""
	}
	for _, day := range DayNames {
		if strings.Contains(value, day) {
			return day
		}
	}
	return ""
}
