package csp

import (
	"github.com/samber/lo"

	"github.com/csitlab/timetabling/pkg/model"
)

// Problem is the CSP instance handed to the search engine: the ordered
// variables, their domains and the section grouping they were derived from.
type Problem struct {
	Variables []*Variable
	Domains   map[string][]Value
	Groups    SectionGroups
}

// VariableByID returns the variable with the given id.
func (p *Problem) VariableByID(id string) (*Variable, bool) {
	return lo.Find(p.Variables, func(v *Variable) bool { return v.ID == id })
}

// EmptyDomainVariables returns the ids of variables whose domain is empty
// after all relaxation tiers. Any such variable makes the search a
// guaranteed failure.
func (p *Problem) EmptyDomainVariables() []string {
	empty := lo.Filter(p.Variables, func(v *Variable, _ int) bool { return len(p.Domains[v.ID]) == 0 })
	return lo.Map(empty, func(v *Variable, _ int) string { return v.ID })
}

type domainBuilder struct {
	dataset model.Dataset
	opts    Options
	slots45 []model.Timeslot
	slots90 []model.Timeslot
}

// BuildProblem constructs one CSP variable per (course, group, session type)
// and its candidate domain via progressive relaxation. When
// opts.ForcePermissive is set, domains start at the permissive tier
// directly (qualification and room type relaxed, role compatibility kept).
func BuildProblem(dataset model.Dataset, opts Options) *Problem {
	builder := &domainBuilder{dataset: dataset, opts: opts}
	for _, slot := range dataset.Timeslots {
		if slot.Duration == 45 {
			builder.slots45 = append(builder.slots45, slot)
		} else {
			builder.slots90 = append(builder.slots90, slot)
		}
	}

	groups := BuildSectionGroups(dataset.Courses, dataset.Sections)
	problem := &Problem{Domains: map[string][]Value{}, Groups: groups}

	// Iterate courses in table order so variable order is deterministic.
	for _, course := range dataset.Courses {
		perSession, ok := groups[course.ID]
		if !ok {
			continue
		}
		for _, session := range course.Sessions {
			for groupIndex, sectionGroup := range perSession[session] {
				variable := &Variable{
					ID:         VariableID(course.ID, groupIndex, session),
					CourseID:   course.ID,
					CourseName: course.Name,
					Year:       course.Year,
					Session:    session,
					GroupIndex: groupIndex,
					Sections:   sectionGroup,
					Rejections: RejectionTally{},
				}
				problem.Domains[variable.ID] = builder.buildDomain(course, variable)
				problem.Variables = append(problem.Variables, variable)
			}
		}
	}
	return problem
}

type tierFlags struct {
	tier              RelaxTier
	allowUnqualified  bool
	allowRoomMismatch bool
}

var relaxTiers = []tierFlags{
	{TierStrict, false, false},
	{TierUnqualified, true, false},
	{TierRoomMismatch, false, true},
	{TierPermissive, true, true},
}

func (b *domainBuilder) buildDomain(course model.Course, variable *Variable) []Value {
	tiers := relaxTiers
	if b.opts.ForcePermissive {
		tiers = []tierFlags{{TierPermissive, true, true}}
	}
	for _, flags := range tiers {
		values := b.generateValues(course, variable, flags)
		if len(values) > 0 {
			variable.Tier = flags.tier
			return values
		}
	}
	variable.Tier = TierExhausted
	return nil
}

// generateValues enumerates all (timeslot, room, instructor) combinations
// passing the constraint filters at one relaxation tier. Role compatibility
// never relaxes.
func (b *domainBuilder) generateValues(course model.Course, variable *Variable, flags tierFlags) []Value {
	instructors := lo.Filter(b.dataset.Instructors, func(instructor model.Instructor, _ int) bool {
		if !flags.allowUnqualified && !instructor.QualifiedFor(course.ID) {
			variable.Rejections[RejectUnqualified]++
			return false
		}
		if !instructor.Role.Compatible(variable.Session) {
			variable.Rejections[RejectRoleMismatch]++
			return false
		}
		return true
	})

	rooms := lo.Filter(b.dataset.Rooms, func(room model.Room, _ int) bool {
		if !flags.allowRoomMismatch && !room.Type.Matches(variable.Session) {
			variable.Rejections[RejectRoomMismatch]++
			return false
		}
		return true
	})

	values := []Value{}
	for _, slot := range b.eligibleSlots(course, variable.Session) {
		for _, instructor := range instructors {
			if b.unavailableOn(instructor, slot.Day, flags) {
				variable.Rejections[RejectInstructorUnavailable]++
				continue
			}
			for _, room := range rooms {
				values = append(values, Value{Slot: slot, RoomID: room.ID, InstructorID: instructor.ID})
			}
		}
	}
	return values
}

// unavailableOn applies the instructor's day-unavailability rule. The rule
// is a hard filter unless RelaxUnavailability couples it to the
// qualification relaxation, in which case tiers that admit unqualified
// instructors ignore it.
func (b *domainBuilder) unavailableOn(instructor model.Instructor, day string, flags tierFlags) bool {
	if instructor.UnavailableDay == "" || instructor.UnavailableDay != day {
		return false
	}
	return !(b.opts.RelaxUnavailability && flags.allowUnqualified)
}

// eligibleSlots picks the duration class for a session: tutorials of
// courses that also hold lectures and labs take 45-minute slots, everything
// else takes 90-minute slots. An empty preferred class falls back to the
// other one.
func (b *domainBuilder) eligibleSlots(course model.Course, session model.SessionType) []model.Timeslot {
	preferShort := session == model.Tutorial &&
		course.HasSession(model.Lab) && course.HasSession(model.Lecture)
	if preferShort {
		if len(b.slots45) > 0 {
			return b.slots45
		}
		return b.slots90
	}
	if len(b.slots90) > 0 {
		return b.slots90
	}
	return b.slots45
}
