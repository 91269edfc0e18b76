package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
)

// datasetJSON is the on-disk JSON shape of a dataset bundle. Fields mirror
// the CSV column names so the same data can travel either way.
type datasetJSON struct {
	Courses []struct {
		CourseID   string `mapstructure:"courseId"`
		CourseName string `mapstructure:"courseName"`
		Year       int    `mapstructure:"year"`
		Type       string `mapstructure:"type"`
		Shared     string `mapstructure:"shared"`
	} `mapstructure:"courses"`
	Instructors []struct {
		InstructorID     string `mapstructure:"instructorId"`
		Name             string `mapstructure:"name"`
		Role             string `mapstructure:"role"`
		QualifiedCourses string `mapstructure:"qualifiedCourses"`
		PreferredSlots   string `mapstructure:"preferredSlots"`
	} `mapstructure:"instructors"`
	Rooms []struct {
		RoomID   string `mapstructure:"roomId"`
		Type     string `mapstructure:"type"`
		Capacity int    `mapstructure:"capacity"`
	} `mapstructure:"rooms"`
	Timeslots []struct {
		Day       string `mapstructure:"day"`
		StartTime string `mapstructure:"startTime"`
		EndTime   string `mapstructure:"endTime"`
		Duration  int    `mapstructure:"duration"`
	} `mapstructure:"timeslots"`
	Sections []struct {
		SectionID string `mapstructure:"sectionId"`
		Capacity  int    `mapstructure:"capacity"`
	} `mapstructure:"sections"`
}

// DatasetFromJSON reads a dataset bundle from a JSON file.
func DatasetFromJSON(file string) (Dataset, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return Dataset{}, fmt.Errorf("cannot read dataset file: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return Dataset{}, fmt.Errorf("cannot parse dataset file: %w", err)
	}

	var decoded datasetJSON
	if err := mapstructure.Decode(raw, &decoded); err != nil {
		return Dataset{}, fmt.Errorf("cannot decode dataset: %w", err)
	}

	return decoded.toDataset(), nil
}

func (d datasetJSON) toDataset() Dataset {
	dataset := Dataset{}
	for _, c := range d.Courses {
		dataset.Courses = append(dataset.Courses, Course{
			ID:       c.CourseID,
			Name:     c.CourseName,
			Year:     c.Year,
			Sessions: ParseSessionTypes(c.Type),
			Shared:   IsSharedFlag(c.Shared),
		})
	}
	for _, i := range d.Instructors {
		id := i.InstructorID
		if id == "" {
			id = i.Name
		}
		dataset.Instructors = append(dataset.Instructors, Instructor{
			ID:             id,
			Name:           i.Name,
			Role:           ParseRole(i.Role),
			Qualified:      SplitQualifiedCourses(i.QualifiedCourses),
			UnavailableDay: ParseUnavailableDay(i.PreferredSlots),
		})
	}
	for _, r := range d.Rooms {
		dataset.Rooms = append(dataset.Rooms, Room{
			ID:       r.RoomID,
			Type:     ParseRoomType(r.Type),
			Capacity: r.Capacity,
		})
	}
	for _, t := range d.Timeslots {
		duration := t.Duration
		if duration == 0 {
			duration = 90
		}
		dataset.Timeslots = append(dataset.Timeslots, Timeslot{
			Day:      t.Day,
			Start:    t.StartTime,
			End:      t.EndTime,
			Duration: duration,
		})
	}
	for _, s := range d.Sections {
		dataset.Sections = append(dataset.Sections, Section{
			ID:       s.SectionID,
			Capacity: s.Capacity,
		})
	}
	return dataset
}
