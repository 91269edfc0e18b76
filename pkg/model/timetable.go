package model

import (
	"strconv"
	"strings"
)

// TimetableRow is one scheduled meeting of one section. The projector emits
// one row per section in a scheduled group.
type TimetableRow struct {
	CourseID    string `csv:"CourseID" json:"courseId"`
	CourseName  string `csv:"CourseName" json:"courseName"`
	CourseYear  int    `csv:"CourseYear" json:"courseYear"`
	SectionID   string `csv:"SectionID" json:"sectionId"`
	SessionType string `csv:"SessionType" json:"sessionType"`
	Day         string `csv:"Day" json:"day"`
	StartTime   string `csv:"StartTime" json:"startTime"`
	EndTime     string `csv:"EndTime" json:"endTime"`
	Room        string `csv:"Room" json:"room"`
	Instructor  string `csv:"Instructor" json:"instructor"`
}

// DayOrder returns the calendar position of a day name; unknown days sort
// last.
func DayOrder(day string) int {
	for i, name := range DayNames {
		if name == day {
			return i
		}
	}
	return len(DayNames)
}

// ClockMinutes parses a 12-hour clock string ("9:00 AM") into minutes since
// midnight for ordering. Unparsable strings sort last.
func ClockMinutes(clock string) int {
	const unparsable = 9999
	fields := strings.Fields(strings.TrimSpace(clock))
	if len(fields) != 2 {
		return unparsable
	}
	hhmm := strings.Split(fields[0], ":")
	if len(hhmm) != 2 {
		return unparsable
	}
	hours, err := strconv.Atoi(hhmm[0])
	if err != nil {
		return unparsable
	}
	minutes, err := strconv.Atoi(hhmm[1])
	if err != nil {
		return unparsable
	}
	switch strings.ToUpper(fields[1]) {
	case "PM":
		if hours != 12 {
			hours += 12
		}
	case "AM":
		if hours == 12 {
			hours = 0
		}
	default:
		return unparsable
	}
	return hours*60 + minutes
}
