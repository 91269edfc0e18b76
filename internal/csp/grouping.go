package csp

import (
	"github.com/samber/lo"

	"github.com/csitlab/timetabling/pkg/model"
)

// sharedDepartments is the allow-list a year-3 shared course matches
// against instead of its own department code.
var sharedDepartments = []string{"AID", "BIF", "CSC", "CNC"}

// SectionGroups maps course id -> session type -> ordered section groups.
type SectionGroups map[string]map[model.SessionType][][]string

// EligibleSections filters the section table down to the sections a course
// may be assigned to. Years 1-2 require only a year match; years 3-4 also
// require the department code embedded in the section id to match the
// course's leading identifier letters, or the shared allow-list for year-3
// shared courses. Sections whose id carries no parsable year match anything.
func EligibleSections(course model.Course, sections []model.Section) []string {
	matching := []string{}
	for _, section := range sections {
		year, dept, ok := model.ParseSectionID(section.ID)
		if !ok {
			matching = append(matching, section.ID)
			continue
		}
		if year != course.Year {
			continue
		}
		switch {
		case course.Year <= 2:
			matching = append(matching, section.ID)
		case course.Year == 3 && course.Shared:
			if lo.Contains(sharedDepartments, dept) {
				matching = append(matching, section.ID)
			}
		default:
			if dept == course.Department() {
				matching = append(matching, section.ID)
			}
		}
	}
	return matching
}

// PartitionSections splits eligible sections into session groups: tutorial
// groups are singletons, lab groups are pairs, and lecture groups take 4
// sections when the count is even, otherwise 3. The final group absorbs any
// remainder and may be short.
func PartitionSections(sections []string, session model.SessionType) [][]string {
	var size int
	switch session {
	case model.Tutorial:
		size = 1
	case model.Lab:
		size = 2
	default:
		size = 3
		if len(sections)%2 == 0 {
			size = 4
		}
	}
	return lo.Chunk(sections, size)
}

// BuildSectionGroups assigns every course its eligible sections and
// partitions them per offered session type. Courses with zero eligible
// sections are dropped silently; they surface later only through
// empty-domain diagnostics.
func BuildSectionGroups(courses []model.Course, sections []model.Section) SectionGroups {
	groups := SectionGroups{}
	for _, course := range courses {
		eligible := EligibleSections(course, sections)
		if len(eligible) == 0 {
			continue
		}
		perSession := map[model.SessionType][][]string{}
		for _, session := range course.Sessions {
			perSession[session] = PartitionSections(eligible, session)
		}
		groups[course.ID] = perSession
	}
	return groups
}
