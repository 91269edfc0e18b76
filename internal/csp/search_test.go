package csp

import (
	"testing"
	"time"

	"github.com/onsi/gomega"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/csitlab/timetabling/pkg/model"
)

// solvableDataset has enough staff, rooms and slots for every group of its
// two courses.
func solvableDataset() model.Dataset {
	return newDatasetBuilder().
		course("CSC101", "Intro to CS", 1, "Lecture+TUT", false).
		course("MTH102", "Calculus", 1, "Lecture", false).
		professor("P1", "CSC101").
		professor("P2", "MTH102").
		assistant("A1", "CSC101").
		assistant("A2", "CSC101").
		room("R1", model.RoomLecture).
		room("R2", model.RoomLecture).
		room("T1", model.RoomTutorial).
		room("T2", model.RoomTutorial).
		slot("Monday", "9:00 AM", "10:30 AM", 90).
		slot("Monday", "11:00 AM", "12:30 PM", 90).
		slot("Tuesday", "9:00 AM", "10:30 AM", 90).
		slot("Tuesday", "11:00 AM", "12:30 PM", 90).
		slot("Wednesday", "9:00 AM", "10:30 AM", 90).
		slot("Wednesday", "11:00 AM", "12:30 PM", 90).
		sections(1, 4).
		build()
}

func solve(t *testing.T, dataset model.Dataset, opts Options) (Assignment, *Problem, Metrics) {
	t.Helper()
	problem := BuildProblem(dataset, opts)
	graph := BuildConstraintGraph(problem)
	assignment, metrics, err := Search(problem, graph, opts, zap.NewNop())
	assert.NoError(t, err)
	return assignment, problem, metrics
}

func TestSearchSolvesAndHoldsInvariants(t *testing.T) {
	g := gomega.NewWithT(t)
	dataset := solvableDataset()

	assignment, problem, metrics := solve(t, dataset, DefaultOptions())

	g.Expect(assignment).NotTo(gomega.BeNil())
	g.Expect(assignment).To(gomega.HaveLen(len(problem.Variables)))
	g.Expect(metrics.AssignedVariables).To(gomega.Equal(metrics.TotalVariables))

	// No double-booking: pairwise over assigned variables sharing a slot.
	ids := []string{}
	for id := range assignment {
		ids = append(ids, id)
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := assignment[ids[i]], assignment[ids[j]]
			if a.Slot.Key() != b.Slot.Key() {
				continue
			}
			g.Expect(a.InstructorID).NotTo(gomega.Equal(b.InstructorID))
			g.Expect(a.RoomID).NotTo(gomega.Equal(b.RoomID))

			va, _ := problem.VariableByID(ids[i])
			vb, _ := problem.VariableByID(ids[j])
			g.Expect(lo.Intersect(va.Sections, vb.Sections)).To(gomega.BeEmpty())
		}
	}

	// Role compatibility holds for every assigned variable.
	for id, value := range assignment {
		variable, _ := problem.VariableByID(id)
		instructor, found := dataset.InstructorByID(value.InstructorID)
		g.Expect(found).To(gomega.BeTrue())
		g.Expect(instructor.Role.Compatible(variable.Session)).To(gomega.BeTrue(), id)
	}
}

func TestSearchDeterminism(t *testing.T) {
	dataset := solvableDataset()

	first, _, _ := solve(t, dataset, DefaultOptions())
	second, _, _ := solve(t, dataset, DefaultOptions())

	assert.Equal(t, first, second)
}

func TestSearchFailureReturnsNoPartialAssignment(t *testing.T) {
	// Two lecture groups, one slot, one professor, one room: the second
	// group can never be placed.
	dataset := newDatasetBuilder().
		course("CSC101", "Intro", 1, "Lecture", false).
		professor("P1", "CSC101").
		room("R1", model.RoomLecture).
		slot("Monday", "9:00 AM", "10:30 AM", 90).
		sections(1, 8).
		build()

	assignment, _, metrics := solve(t, dataset, DefaultOptions())

	assert.Nil(t, assignment)
	assert.Positive(t, metrics.BacktrackCalls)
}

func TestSearchTimeout(t *testing.T) {
	dataset := solvableDataset()
	opts := DefaultOptions()
	opts.Timeout = time.Nanosecond

	problem := BuildProblem(dataset, opts)
	graph := BuildConstraintGraph(problem)
	assignment, _, err := Search(problem, graph, opts, zap.NewNop())

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Nil(t, assignment)
}

func TestSearchElectivePairCoordination(t *testing.T) {
	// Paired electives from different years: solvable only when both land
	// on the identical timeslot.
	dataset := newDatasetBuilder().
		course("CSC103", "Elective A", 1, "Lecture", false).
		course("MTH203", "Elective B", 2, "Lecture", false).
		professor("P1", "CSC103").
		professor("P2", "MTH203").
		room("R1", model.RoomLecture).
		room("R2", model.RoomLecture).
		slot("Monday", "9:00 AM", "10:30 AM", 90).
		slot("Tuesday", "9:00 AM", "10:30 AM", 90).
		sections(1, 3).
		build()
	dataset.Sections = append(dataset.Sections,
		model.Section{ID: "2/1", Capacity: 30},
		model.Section{ID: "2/2", Capacity: 30},
		model.Section{ID: "2/3", Capacity: 30},
	)

	opts := DefaultOptions()
	opts.ElectivePairsEnabled = true
	opts.ElectivePairs = [][2]string{{"CSC103", "MTH203"}}

	assignment, problem, _ := solve(t, dataset, opts)

	assert.NotNil(t, assignment)
	assert.Len(t, assignment, len(problem.Variables))

	keys := map[model.SlotKey]bool{}
	for _, value := range assignment {
		keys[value.Slot.Key()] = true
	}
	assert.Len(t, keys, 1, "paired electives must share one timeslot")
}

func TestSearchSharedLectureSlot(t *testing.T) {
	// Two lecture groups of one course must take the same timeslot when
	// the toggle is on.
	dataset := newDatasetBuilder().
		course("CSC101", "Intro", 1, "Lecture", false).
		professor("P1", "CSC101").
		professor("P2", "CSC101").
		room("R1", model.RoomLecture).
		room("R2", model.RoomLecture).
		slot("Monday", "9:00 AM", "10:30 AM", 90).
		slot("Tuesday", "9:00 AM", "10:30 AM", 90).
		sections(1, 8).
		build()

	opts := DefaultOptions()
	opts.SharedLectureSlot = true

	assignment, problem, _ := solve(t, dataset, opts)

	assert.NotNil(t, assignment)
	keys := map[model.SlotKey]bool{}
	for id, value := range assignment {
		variable, _ := problem.VariableByID(id)
		if variable.Session == model.Lecture && variable.CourseID == "CSC101" {
			keys[value.Slot.Key()] = true
		}
	}
	assert.Len(t, keys, 1)
}
