package csp

import (
	"github.com/csitlab/timetabling/pkg/model"
)

// ConstraintGraph maps each variable id to the ids of variables it could
// collide with: those whose domains share at least one timeslot. It is
// computed once before search and stays static; it over-approximates as
// domains shrink, which only costs redundant consistency checks.
type ConstraintGraph map[string][]string

// BuildConstraintGraph precomputes the neighbor sets from the initial
// domains.
func BuildConstraintGraph(problem *Problem) ConstraintGraph {
	slotSets := make(map[string]map[model.SlotKey]bool, len(problem.Variables))
	for _, variable := range problem.Variables {
		set := map[model.SlotKey]bool{}
		for _, value := range problem.Domains[variable.ID] {
			set[value.Slot.Key()] = true
		}
		slotSets[variable.ID] = set
	}

	graph := ConstraintGraph{}
	for _, variable := range problem.Variables {
		neighbors := []string{}
		for _, other := range problem.Variables {
			if other.ID == variable.ID {
				continue
			}
			if intersects(slotSets[variable.ID], slotSets[other.ID]) {
				neighbors = append(neighbors, other.ID)
			}
		}
		graph[variable.ID] = neighbors
	}
	return graph
}

// AverageDegree reports the mean neighbor count, logged as a build
// milestone.
func (g ConstraintGraph) AverageDegree() float64 {
	if len(g) == 0 {
		return 0
	}
	total := 0
	for _, neighbors := range g {
		total += len(neighbors)
	}
	return float64(total) / float64(len(g))
}

func intersects(a, b map[model.SlotKey]bool) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for key := range a {
		if b[key] {
			return true
		}
	}
	return false
}
