package csp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/csitlab/timetabling/pkg/model"
)

func TestGeneratorPermissiveRetry(t *testing.T) {
	// One qualified professor, one lecture room, two slots, but four
	// lecture groups: strict domains pin every group to the same
	// (instructor, room) pool, so strict search fails; relaxing
	// qualification and room type opens a second professor and a lab room.
	dataset := newDatasetBuilder().
		course("CSC101", "Intro", 1, "Lecture", false).
		professor("P1", "CSC101").
		professor("P2", "MTH101").
		room("R1", model.RoomLecture).
		room("L1", model.RoomLab).
		slot("Monday", "9:00 AM", "10:30 AM", 90).
		slot("Tuesday", "9:00 AM", "10:30 AM", 90).
		sections(1, 16).
		build()

	t.Run("strict search alone fails", func(t *testing.T) {
		opts := DefaultOptions()
		opts.PermissiveRetry = false

		result, err := NewGenerator(opts, zap.NewNop()).Generate(dataset)

		assert.ErrorIs(t, err, ErrNoSolution)
		assert.NotNil(t, result)
		assert.Nil(t, result.Assignment)
	})

	t.Run("permissive retry succeeds", func(t *testing.T) {
		result, err := NewGenerator(DefaultOptions(), zap.NewNop()).Generate(dataset)

		assert.NoError(t, err)
		assert.True(t, result.Permissive)
		assert.Len(t, result.Assignment, 4)
		assert.Len(t, result.Rows, 16)
	})
}

func TestGeneratorUnsolvableDetectedBeforeSearch(t *testing.T) {
	// Lecture course with only assistant staff: role compatibility never
	// relaxes, so the domain is empty at every tier.
	dataset := newDatasetBuilder().
		course("CSC101", "Intro", 1, "Lecture", false).
		assistant("A1", "CSC101").
		room("R1", model.RoomLecture).
		slot("Monday", "9:00 AM", "10:30 AM", 90).
		sections(1, 4).
		build()

	result, err := NewGenerator(DefaultOptions(), zap.NewNop()).Generate(dataset)

	assert.ErrorIs(t, err, ErrUnsolvable)
	assert.Equal(t, []string{"CSC101::G0::Lecture"}, result.Diagnostics.EmptyDomainVariables)
	assert.Zero(t, result.Metrics.BacktrackCalls)
}

func TestGeneratorValidatesDataset(t *testing.T) {
	dataset := solvableDataset()
	dataset.Rooms = nil

	result, err := NewGenerator(DefaultOptions(), zap.NewNop()).Generate(dataset)

	var dataErr *model.DatasetError
	assert.ErrorAs(t, err, &dataErr)
	assert.Equal(t, "rooms", dataErr.Table)
	assert.Nil(t, result)
}

func TestGeneratorSuccess(t *testing.T) {
	result, err := NewGenerator(DefaultOptions(), zap.NewNop()).Generate(solvableDataset())

	assert.NoError(t, err)
	assert.False(t, result.Permissive)
	assert.Equal(t, result.Metrics.TotalVariables, result.Metrics.AssignedVariables)
	// 4 sections in the lecture group of each course, 1 section per
	// tutorial group: 4 + 4 + 4 rows.
	assert.Len(t, result.Rows, 12)
	assert.Zero(t, result.Metrics.RelaxedAssignments)
}
