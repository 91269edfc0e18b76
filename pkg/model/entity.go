package model

import (
	"strconv"
	"strings"
)

// SessionType is the kind of class meeting a course requires.
type SessionType uint8

const (
	Lecture SessionType = iota
	Lab
	Tutorial
)

func (s SessionType) String() string {
	switch s {
	case Lecture:
		return "Lecture"
	case Lab:
		return "Lab"
	case Tutorial:
		return "TUT"
	}
	return "Unknown"
}

// ParseSessionTypes extracts the session types a course offers from its
// free-form type descriptor (e.g. "Lecture+Lab+TUT"). A descriptor that
// names no known session type defaults to a lecture-only course.
func ParseSessionTypes(descriptor string) []SessionType {
	lower := strings.ToLower(descriptor)
	sessions := []SessionType{}
	if strings.Contains(lower, "lecture") {
		sessions = append(sessions, Lecture)
	}
	if strings.Contains(lower, "lab") {
		sessions = append(sessions, Lab)
	}
	if strings.Contains(lower, "tut") {
		sessions = append(sessions, Tutorial)
	}
	if len(sessions) == 0 {
		sessions = append(sessions, Lecture)
	}
	return sessions
}

// Role determines which session types an instructor may be matched to.
// This compatibility is a hard constraint and is never relaxed.
type Role uint8

const (
	RoleUnspecified Role = iota
	RoleProfessor        // senior staff: lectures only
	RoleAssistant        // teaching assistants: labs and tutorials only
)

func (r Role) String() string {
	switch r {
	case RoleProfessor:
		return "Professor"
	case RoleAssistant:
		return "Assistant"
	}
	return "Unspecified"
}

// ParseRole maps a free-form role string onto a Role. "assistant" wins over
// "professor" when both appear (e.g. "Assistant Professor" is treated as
// assistant staff, matching the source data conventions).
func ParseRole(role string) Role {
	lower := strings.ToLower(role)
	if strings.Contains(lower, "assistant") {
		return RoleAssistant
	}
	if strings.Contains(lower, "professor") || strings.Contains(lower, "senior") {
		return RoleProfessor
	}
	return RoleUnspecified
}

// Compatible reports whether the role may teach the given session type.
// Unspecified roles are unrestricted.
func (r Role) Compatible(session SessionType) bool {
	switch r {
	case RoleAssistant:
		return session == Lab || session == Tutorial
	case RoleProfessor:
		return session == Lecture
	}
	return true
}

// RoomType classifies rooms by the session type they host.
type RoomType uint8

const (
	RoomLecture RoomType = iota
	RoomLab
	RoomTutorial
)

func (r RoomType) String() string {
	switch r {
	case RoomLab:
		return "Lab"
	case RoomTutorial:
		return "TUT"
	}
	return "Lecture"
}

// ParseRoomType maps a free-form room type string onto a RoomType.
func ParseRoomType(roomType string) RoomType {
	lower := strings.ToLower(strings.TrimSpace(roomType))
	if strings.HasPrefix(lower, "lab") {
		return RoomLab
	}
	if strings.HasPrefix(lower, "tut") {
		return RoomTutorial
	}
	return RoomLecture
}

// Matches reports whether a room of this type can host the session type.
func (r RoomType) Matches(session SessionType) bool {
	switch session {
	case Lab:
		return r == RoomLab
	case Tutorial:
		return r == RoomTutorial
	default:
		return r == RoomLecture
	}
}

// Course is an offered course. Immutable after load.
type Course struct {
	ID       string
	Name     string
	Year     int
	Sessions []SessionType
	Shared   bool // year-3 only: offered jointly to multiple departments
}

// HasSession reports whether the course offers the given session type.
func (c Course) HasSession(session SessionType) bool {
	for _, s := range c.Sessions {
		if s == session {
			return true
		}
	}
	return false
}

// Department returns the leading identifier letters used for year-3/4
// section matching (e.g. "CSC" for "CSC301").
func (c Course) Department() string {
	if len(c.ID) < 3 {
		return ""
	}
	return strings.ToUpper(c.ID[:3])
}

// Instructor is a member of the teaching staff. Immutable after load.
type Instructor struct {
	ID             string
	Name           string
	Role           Role
	Qualified      []string // course ids the instructor is declared qualified for
	UnavailableDay string   // day name the instructor cannot teach on; empty if none
}

// QualifiedFor reports whether the instructor declares a qualification for
// the course. An empty qualification list means unrestricted.
func (i Instructor) QualifiedFor(courseID string) bool {
	if len(i.Qualified) == 0 {
		return true
	}
	for _, id := range i.Qualified {
		if id == courseID {
			return true
		}
	}
	return false
}

// Room is a physical room. Immutable after load.
type Room struct {
	ID       string
	Type     RoomType
	Capacity int
}

// Timeslot is a weekly meeting window. Two timeslots conflict if and only if
// their (day, start, end) triples are equal; no overlap detection is done
// between differently-bounded slots.
type Timeslot struct {
	Day      string
	Start    string
	End      string
	Duration int // nominal minutes: 45 or 90
}

// SlotKey is the identity of a timeslot for conflict purposes.
type SlotKey struct {
	Day   string
	Start string
	End   string
}

// Key returns the conflict identity of the timeslot.
func (t Timeslot) Key() SlotKey {
	return SlotKey{Day: t.Day, Start: t.Start, End: t.End}
}

// Section is a fixed student cohort. Immutable after load.
type Section struct {
	ID       string
	Capacity int
}

// ParseSectionID decodes a section identifier of the form "year/num"
// (years 1-2) or "year/DEPT/num" (years 3-4). ok is false when the id does
// not carry a parsable year, in which case the section matches any course.
func ParseSectionID(id string) (year int, dept string, ok bool) {
	parts := strings.Split(id, "/")
	if len(parts) < 2 {
		return 0, "", false
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, "", false
	}
	return year, strings.ToUpper(strings.TrimSpace(parts[1])), true
}
