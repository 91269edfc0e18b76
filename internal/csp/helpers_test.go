package csp

import (
	"fmt"

	"github.com/csitlab/timetabling/pkg/model"
)

// testDataset builds a small solvable dataset: configurable counts of
// year-1 sections, professors, assistants, rooms per type and 90-minute
// timeslots.
type datasetBuilder struct {
	dataset model.Dataset
}

func newDatasetBuilder() *datasetBuilder {
	return &datasetBuilder{}
}

func (b *datasetBuilder) course(id, name string, year int, descriptor string, shared bool) *datasetBuilder {
	b.dataset.Courses = append(b.dataset.Courses, model.Course{
		ID:       id,
		Name:     name,
		Year:     year,
		Sessions: model.ParseSessionTypes(descriptor),
		Shared:   shared,
	})
	return b
}

func (b *datasetBuilder) professor(id string, qualified ...string) *datasetBuilder {
	b.dataset.Instructors = append(b.dataset.Instructors, model.Instructor{
		ID: id, Name: id, Role: model.RoleProfessor, Qualified: qualified,
	})
	return b
}

func (b *datasetBuilder) assistant(id string, qualified ...string) *datasetBuilder {
	b.dataset.Instructors = append(b.dataset.Instructors, model.Instructor{
		ID: id, Name: id, Role: model.RoleAssistant, Qualified: qualified,
	})
	return b
}

func (b *datasetBuilder) room(id string, roomType model.RoomType) *datasetBuilder {
	b.dataset.Rooms = append(b.dataset.Rooms, model.Room{ID: id, Type: roomType, Capacity: 40})
	return b
}

func (b *datasetBuilder) slot(day, start, end string, duration int) *datasetBuilder {
	b.dataset.Timeslots = append(b.dataset.Timeslots, model.Timeslot{
		Day: day, Start: start, End: end, Duration: duration,
	})
	return b
}

func (b *datasetBuilder) sections(year int, count int) *datasetBuilder {
	for i := 1; i <= count; i++ {
		b.dataset.Sections = append(b.dataset.Sections, model.Section{
			ID: fmt.Sprintf("%v/%v", year, i), Capacity: 30,
		})
	}
	return b
}

func (b *datasetBuilder) deptSections(year int, dept string, count int) *datasetBuilder {
	for i := 1; i <= count; i++ {
		b.dataset.Sections = append(b.dataset.Sections, model.Section{
			ID: fmt.Sprintf("%v/%v/%v", year, dept, i), Capacity: 30,
		})
	}
	return b
}

func (b *datasetBuilder) build() model.Dataset {
	return b.dataset
}
