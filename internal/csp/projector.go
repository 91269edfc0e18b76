package csp

import (
	"sort"

	"github.com/csitlab/timetabling/pkg/model"
)

// Project expands every assigned variable back into one timetable row per
// section in its group, carrying the display fields. Rows are sorted by
// calendar day, then start time, then course id, so re-projecting the same
// assignment yields identical output.
func Project(assignment Assignment, problem *Problem, dataset model.Dataset) []model.TimetableRow {
	rows := []model.TimetableRow{}
	for _, variable := range problem.Variables {
		value, ok := assignment[variable.ID]
		if !ok {
			continue
		}
		instructorName := value.InstructorID
		if instructor, found := dataset.InstructorByID(value.InstructorID); found && instructor.Name != "" {
			instructorName = instructor.Name
		}
		for _, section := range variable.Sections {
			rows = append(rows, model.TimetableRow{
				CourseID:    variable.CourseID,
				CourseName:  variable.CourseName,
				CourseYear:  variable.Year,
				SectionID:   section,
				SessionType: variable.Session.String(),
				Day:         value.Slot.Day,
				StartTime:   value.Slot.Start,
				EndTime:     value.Slot.End,
				Room:        value.RoomID,
				Instructor:  instructorName,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if d := model.DayOrder(rows[i].Day) - model.DayOrder(rows[j].Day); d != 0 {
			return d < 0
		}
		if t := model.ClockMinutes(rows[i].StartTime) - model.ClockMinutes(rows[j].StartTime); t != 0 {
			return t < 0
		}
		return rows[i].CourseID < rows[j].CourseID
	})
	return rows
}
