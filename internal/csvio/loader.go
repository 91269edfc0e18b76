// Package csvio loads the five entity tables from CSV files and exports
// solved timetables back to CSV.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"

	"github.com/csitlab/timetabling/pkg/model"
)

// DatasetPaths names the five input files.
type DatasetPaths struct {
	Courses     string
	Instructors string
	Rooms       string
	Timeslots   string
	Sections    string
}

type courseCSV struct {
	CourseID   string `csv:"CourseID"`
	CourseName string `csv:"CourseName"`
	Year       int    `csv:"Year"`
	Type       string `csv:"Type"`
	Shared     string `csv:"Shared"`
}

type instructorCSV struct {
	InstructorID     string `csv:"InstructorID"`
	Name             string `csv:"Name"`
	Role             string `csv:"Role"`
	QualifiedCourses string `csv:"QualifiedCourses"`
	PreferredSlots   string `csv:"PreferredSlots"`
}

type roomCSV struct {
	RoomID   string `csv:"RoomID"`
	Type     string `csv:"Type"`
	Capacity int    `csv:"Capacity"`
}

type timeslotCSV struct {
	Day       string `csv:"Day"`
	StartTime string `csv:"StartTime"`
	EndTime   string `csv:"EndTime"`
	Duration  int    `csv:"Duration"`
}

type sectionCSV struct {
	SectionID string `csv:"SectionID"`
	Capacity  int    `csv:"Capacity"`
}

// LoadDataset reads and parses the five CSV files into an entity dataset.
// Missing files, unparsable rows or absent required columns fail fast with
// a DatasetError before any solving happens.
func LoadDataset(paths DatasetPaths, delim rune) (model.Dataset, error) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		return r
	})

	dataset := model.Dataset{}

	courses := []*courseCSV{}
	if err := unmarshalFile(paths.Courses, &courses); err != nil {
		return dataset, &model.DatasetError{Table: "courses", Reason: err.Error()}
	}
	if len(courses) > 0 && lo.EveryBy(courses, func(c *courseCSV) bool { return c.CourseID == "" }) {
		return dataset, &model.DatasetError{Table: "courses", Reason: "required column CourseID is missing or empty"}
	}
	if len(courses) > 0 && lo.EveryBy(courses, func(c *courseCSV) bool { return c.Type == "" }) {
		return dataset, &model.DatasetError{Table: "courses", Reason: "required column Type is missing or empty"}
	}
	for _, c := range courses {
		dataset.Courses = append(dataset.Courses, model.Course{
			ID:       c.CourseID,
			Name:     c.CourseName,
			Year:     c.Year,
			Sessions: model.ParseSessionTypes(c.Type),
			Shared:   c.Year == 3 && model.IsSharedFlag(c.Shared),
		})
	}

	instructors := []*instructorCSV{}
	if err := unmarshalFile(paths.Instructors, &instructors); err != nil {
		return dataset, &model.DatasetError{Table: "instructors", Reason: err.Error()}
	}
	for _, i := range instructors {
		// The name stands in as identifier when no id column is present.
		id := i.InstructorID
		if id == "" {
			id = i.Name
		}
		dataset.Instructors = append(dataset.Instructors, model.Instructor{
			ID:             id,
			Name:           i.Name,
			Role:           model.ParseRole(i.Role),
			Qualified:      model.SplitQualifiedCourses(i.QualifiedCourses),
			UnavailableDay: model.ParseUnavailableDay(i.PreferredSlots),
		})
	}

	rooms := []*roomCSV{}
	if err := unmarshalFile(paths.Rooms, &rooms); err != nil {
		return dataset, &model.DatasetError{Table: "rooms", Reason: err.Error()}
	}
	if len(rooms) > 0 && lo.EveryBy(rooms, func(r *roomCSV) bool { return r.RoomID == "" }) {
		return dataset, &model.DatasetError{Table: "rooms", Reason: "required column RoomID is missing or empty"}
	}
	for _, r := range rooms {
		dataset.Rooms = append(dataset.Rooms, model.Room{
			ID:       r.RoomID,
			Type:     model.ParseRoomType(r.Type),
			Capacity: r.Capacity,
		})
	}

	timeslots := []*timeslotCSV{}
	if err := unmarshalFile(paths.Timeslots, &timeslots); err != nil {
		return dataset, &model.DatasetError{Table: "timeslots", Reason: err.Error()}
	}
	for _, t := range timeslots {
		duration := t.Duration
		if duration == 0 {
			duration = 90
		}
		dataset.Timeslots = append(dataset.Timeslots, model.Timeslot{
			Day:      t.Day,
			Start:    t.StartTime,
			End:      t.EndTime,
			Duration: duration,
		})
	}

	sections := []*sectionCSV{}
	if err := unmarshalFile(paths.Sections, &sections); err != nil {
		return dataset, &model.DatasetError{Table: "sections", Reason: err.Error()}
	}
	if len(sections) > 0 && lo.EveryBy(sections, func(s *sectionCSV) bool { return s.SectionID == "" }) {
		return dataset, &model.DatasetError{Table: "sections", Reason: "required column SectionID is missing or empty"}
	}
	for _, s := range sections {
		dataset.Sections = append(dataset.Sections, model.Section{
			ID:       s.SectionID,
			Capacity: s.Capacity,
		})
	}

	return dataset, nil
}

func unmarshalFile(path string, out any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %v: %w", path, err)
	}
	defer file.Close()
	if err := gocsv.UnmarshalFile(file, out); err != nil {
		return fmt.Errorf("cannot parse %v: %w", path, err)
	}
	return nil
}
