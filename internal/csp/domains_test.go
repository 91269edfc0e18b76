package csp

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/csitlab/timetabling/pkg/model"
)

func TestBuildProblemVariables(t *testing.T) {
	t.Run("one variable per course group and session type", func(t *testing.T) {
		// 8 sections: 2 lecture groups of 4 plus 8 tutorial singletons.
		dataset := newDatasetBuilder().
			course("CSC101", "Intro", 1, "Lecture+TUT", false).
			professor("P1", "CSC101").
			assistant("A1", "CSC101").
			room("R1", model.RoomLecture).
			room("T1", model.RoomTutorial).
			slot("Monday", "9:00 AM", "10:30 AM", 90).
			sections(1, 8).
			build()

		problem := BuildProblem(dataset, DefaultOptions())

		assert.Len(t, problem.Variables, 10)
		lectures := lo.CountBy(problem.Variables, func(v *Variable) bool { return v.Session == model.Lecture })
		tutorials := lo.CountBy(problem.Variables, func(v *Variable) bool { return v.Session == model.Tutorial })
		assert.Equal(t, 2, lectures)
		assert.Equal(t, 8, tutorials)
		assert.Equal(t, "CSC101::G0::Lecture", problem.Variables[0].ID)
	})

	t.Run("course with no eligible sections emits no variables", func(t *testing.T) {
		dataset := newDatasetBuilder().
			course("BIF401", "Genomics", 4, "Lecture", false).
			professor("P1", "BIF401").
			room("R1", model.RoomLecture).
			slot("Monday", "9:00 AM", "10:30 AM", 90).
			sections(1, 4).
			build()

		problem := BuildProblem(dataset, DefaultOptions())

		assert.Empty(t, problem.Variables)
	})
}

func TestDomainRelaxationTiers(t *testing.T) {
	base := func() *datasetBuilder {
		return newDatasetBuilder().
			course("CSC101", "Intro", 1, "Lecture", false).
			sections(1, 4).
			slot("Monday", "9:00 AM", "10:30 AM", 90)
	}

	t.Run("strict tier uses qualified instructors and matching rooms", func(t *testing.T) {
		dataset := base().
			professor("P1", "CSC101").
			professor("P2", "MTH101").
			room("R1", model.RoomLecture).
			room("L1", model.RoomLab).
			build()

		problem := BuildProblem(dataset, DefaultOptions())

		variable := problem.Variables[0]
		assert.Equal(t, TierStrict, variable.Tier)
		for _, value := range problem.Domains[variable.ID] {
			assert.Equal(t, "P1", value.InstructorID)
			assert.Equal(t, "R1", value.RoomID)
		}
	})

	t.Run("unqualified instructors admitted only when strict tier is empty", func(t *testing.T) {
		dataset := base().
			professor("P2", "MTH101").
			room("R1", model.RoomLecture).
			build()

		problem := BuildProblem(dataset, DefaultOptions())

		variable := problem.Variables[0]
		assert.Equal(t, TierUnqualified, variable.Tier)
		assert.NotEmpty(t, problem.Domains[variable.ID])
		assert.Positive(t, variable.Rejections[RejectUnqualified])
	})

	t.Run("room mismatch tier keeps qualification strict", func(t *testing.T) {
		dataset := base().
			professor("P1", "CSC101").
			room("L1", model.RoomLab).
			build()

		problem := BuildProblem(dataset, DefaultOptions())

		variable := problem.Variables[0]
		assert.Equal(t, TierRoomMismatch, variable.Tier)
		for _, value := range problem.Domains[variable.ID] {
			assert.Equal(t, "P1", value.InstructorID)
		}
	})

	t.Run("role compatibility never relaxes", func(t *testing.T) {
		// Only an assistant exists: a lecture can never be staffed.
		dataset := base().
			assistant("A1", "CSC101").
			room("R1", model.RoomLecture).
			build()

		problem := BuildProblem(dataset, DefaultOptions())

		variable := problem.Variables[0]
		assert.Equal(t, TierExhausted, variable.Tier)
		assert.Empty(t, problem.Domains[variable.ID])
		assert.Equal(t, []string{variable.ID}, problem.EmptyDomainVariables()[:1])
		assert.Positive(t, variable.Rejections[RejectRoleMismatch])
	})

	t.Run("force permissive starts at the permissive tier", func(t *testing.T) {
		dataset := base().
			professor("P1", "CSC101").
			professor("P2", "MTH101").
			room("R1", model.RoomLecture).
			room("L1", model.RoomLab).
			build()
		opts := DefaultOptions()
		opts.ForcePermissive = true

		problem := BuildProblem(dataset, opts)

		variable := problem.Variables[0]
		assert.Equal(t, TierPermissive, variable.Tier)
		instructors := lo.Uniq(lo.Map(problem.Domains[variable.ID], func(v Value, _ int) string { return v.InstructorID }))
		assert.ElementsMatch(t, []string{"P1", "P2"}, instructors)
	})
}

func TestDomainTimeslotSelection(t *testing.T) {
	t.Run("tutorials of full courses prefer 45-minute slots", func(t *testing.T) {
		dataset := newDatasetBuilder().
			course("CSC101", "Intro", 1, "Lecture+Lab+TUT", false).
			professor("P1", "CSC101").
			assistant("A1", "CSC101").
			room("R1", model.RoomLecture).
			room("L1", model.RoomLab).
			room("T1", model.RoomTutorial).
			slot("Monday", "9:00 AM", "10:30 AM", 90).
			slot("Monday", "11:00 AM", "11:45 AM", 45).
			sections(1, 2).
			build()

		problem := BuildProblem(dataset, DefaultOptions())

		for _, variable := range problem.Variables {
			want := 90
			if variable.Session == model.Tutorial {
				want = 45
			}
			for _, value := range problem.Domains[variable.ID] {
				assert.Equal(t, want, value.Slot.Duration, variable.ID)
			}
		}
	})

	t.Run("missing duration class falls back to the other", func(t *testing.T) {
		dataset := newDatasetBuilder().
			course("CSC101", "Intro", 1, "Lecture", false).
			professor("P1", "CSC101").
			room("R1", model.RoomLecture).
			slot("Monday", "11:00 AM", "11:45 AM", 45).
			sections(1, 2).
			build()

		problem := BuildProblem(dataset, DefaultOptions())

		assert.NotEmpty(t, problem.Domains[problem.Variables[0].ID])
	})
}

func TestDomainUnavailability(t *testing.T) {
	base := func(relax bool) *Problem {
		dataset := newDatasetBuilder().
			course("CSC101", "Intro", 1, "Lecture", false).
			room("R1", model.RoomLecture).
			slot("Monday", "9:00 AM", "10:30 AM", 90).
			sections(1, 2).
			build()
		dataset.Instructors = []model.Instructor{{
			ID: "P1", Name: "P1", Role: model.RoleProfessor,
			Qualified: []string{"MTH101"}, UnavailableDay: "Monday",
		}}
		opts := DefaultOptions()
		opts.RelaxUnavailability = relax
		return BuildProblem(dataset, opts)
	}

	t.Run("coupled policy ignores the rule once qualification relaxes", func(t *testing.T) {
		problem := base(true)
		variable := problem.Variables[0]
		assert.Equal(t, TierUnqualified, variable.Tier)
		assert.NotEmpty(t, problem.Domains[variable.ID])
	})

	t.Run("hard policy keeps the rule at every tier", func(t *testing.T) {
		problem := base(false)
		variable := problem.Variables[0]
		assert.Equal(t, TierExhausted, variable.Tier)
		assert.Empty(t, problem.Domains[variable.ID])
		assert.Positive(t, variable.Rejections[RejectInstructorUnavailable])
	})
}
