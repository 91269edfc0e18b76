package csp

import (
	"fmt"

	"github.com/csitlab/timetabling/pkg/model"
)

// Value is one candidate assignment for a variable: a concrete timeslot,
// room and instructor.
type Value struct {
	Slot         model.Timeslot
	RoomID       string
	InstructorID string
}

// RelaxTier identifies which constraint configuration produced a variable's
// domain. Tiers are tried in order and the first non-empty result wins.
// Instructor-role compatibility is enforced at every tier.
type RelaxTier uint8

const (
	TierStrict       RelaxTier = iota // qualified instructor, matching room type
	TierUnqualified                   // any role-compatible instructor
	TierRoomMismatch                  // any room, qualification still strict
	TierPermissive                    // both relaxed
	TierExhausted                     // all four tiers produced nothing
)

func (t RelaxTier) String() string {
	switch t {
	case TierStrict:
		return "strict"
	case TierUnqualified:
		return "allow-unqualified"
	case TierRoomMismatch:
		return "allow-room-mismatch"
	case TierPermissive:
		return "permissive"
	}
	return "exhausted"
}

// RejectReason tallies why candidate values were filtered out of a domain,
// kept for diagnostics even when the solve succeeds.
type RejectReason string

const (
	RejectUnqualified           RejectReason = "unqualified_instructor"
	RejectRoleMismatch          RejectReason = "role_mismatch"
	RejectRoomMismatch          RejectReason = "room_type_mismatch"
	RejectInstructorUnavailable RejectReason = "instructor_unavailable"
)

// RejectionTally counts rejected candidates per reason.
type RejectionTally map[RejectReason]int

// Variable is one schedulable unit: one session occurrence of one section
// group of one course. Identity is (course, group index, session type).
type Variable struct {
	ID         string
	CourseID   string
	CourseName string
	Year       int
	Session    model.SessionType
	GroupIndex int
	Sections   []string

	Tier       RelaxTier
	Rejections RejectionTally
}

// VariableID formats the canonical variable identity string,
// e.g. "CSC301::G0::Lecture".
func VariableID(courseID string, groupIndex int, session model.SessionType) string {
	return fmt.Sprintf("%v::G%v::%v", courseID, groupIndex, session)
}

// Assignment maps variable ids to their resolved values. It is owned by the
// search engine while solving and frozen once returned.
type Assignment map[string]Value
