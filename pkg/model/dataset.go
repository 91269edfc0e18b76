package model

import (
	"fmt"

	"github.com/samber/lo"
)

// Dataset bundles the five entity tables consumed by the solver.
type Dataset struct {
	Courses     []Course
	Instructors []Instructor
	Rooms       []Room
	Timeslots   []Timeslot
	Sections    []Section
}

// DatasetError reports malformed input data. It is returned before any
// variable is built and is never retried.
type DatasetError struct {
	Table  string
	Reason string
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("invalid %v table: %v", e.Table, e.Reason)
}

// Validate checks the dataset for conditions that make a solve meaningless:
// empty required tables, courses without ids, years outside 1-4 and
// timeslot durations other than 45 or 90 minutes.
func (d Dataset) Validate() error {
	if len(d.Courses) == 0 {
		return &DatasetError{Table: "courses", Reason: "table is empty"}
	}
	if len(d.Instructors) == 0 {
		return &DatasetError{Table: "instructors", Reason: "table is empty"}
	}
	if len(d.Rooms) == 0 {
		return &DatasetError{Table: "rooms", Reason: "table is empty"}
	}
	if len(d.Timeslots) == 0 {
		return &DatasetError{Table: "timeslots", Reason: "table is empty"}
	}
	if len(d.Sections) == 0 {
		return &DatasetError{Table: "sections", Reason: "table is empty"}
	}

	for _, course := range d.Courses {
		if course.ID == "" {
			return &DatasetError{Table: "courses", Reason: "course without id"}
		}
		if course.Year < 1 || course.Year > 4 {
			return &DatasetError{Table: "courses", Reason: fmt.Sprintf("course %v has year %v outside 1-4", course.ID, course.Year)}
		}
	}

	duplicates := lo.FindDuplicatesBy(d.Courses, func(c Course) string { return c.ID })
	if len(duplicates) > 0 {
		return &DatasetError{Table: "courses", Reason: fmt.Sprintf("duplicate course id %v", duplicates[0].ID)}
	}

	for _, instructor := range d.Instructors {
		if instructor.ID == "" {
			return &DatasetError{Table: "instructors", Reason: "instructor without id"}
		}
	}
	for _, room := range d.Rooms {
		if room.ID == "" {
			return &DatasetError{Table: "rooms", Reason: "room without id"}
		}
	}
	for _, slot := range d.Timeslots {
		if slot.Day == "" || slot.Start == "" || slot.End == "" {
			return &DatasetError{Table: "timeslots", Reason: "timeslot without day or bounds"}
		}
		if slot.Duration != 45 && slot.Duration != 90 {
			return &DatasetError{Table: "timeslots", Reason: fmt.Sprintf("timeslot %v %v has duration %v, want 45 or 90", slot.Day, slot.Start, slot.Duration)}
		}
	}
	for _, section := range d.Sections {
		if section.ID == "" {
			return &DatasetError{Table: "sections", Reason: "section without id"}
		}
	}
	return nil
}

// CourseByID returns the course with the given id.
func (d Dataset) CourseByID(id string) (Course, bool) {
	return lo.Find(d.Courses, func(c Course) bool { return c.ID == id })
}

// InstructorByID returns the instructor with the given id.
func (d Dataset) InstructorByID(id string) (Instructor, bool) {
	return lo.Find(d.Instructors, func(i Instructor) bool { return i.ID == id })
}

// RoomByID returns the room with the given id.
func (d Dataset) RoomByID(id string) (Room, bool) {
	return lo.Find(d.Rooms, func(r Room) bool { return r.ID == id })
}
