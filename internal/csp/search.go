package csp

import (
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/csitlab/timetabling/pkg/model"
)

// ErrTimeout aborts the whole search when the wall-clock budget runs out.
// It is never retried automatically; callers may re-invoke with a larger
// budget.
var ErrTimeout = errors.New("search timed out")

// Metrics are the performance counters of one search invocation.
type Metrics struct {
	BacktrackCalls     int           `json:"backtrackCalls"`
	Backtracks         int           `json:"backtracks"`
	MaxDepth           int           `json:"maxDepth"`
	ConstraintChecks   int           `json:"constraintChecks"`
	Elapsed            time.Duration `json:"elapsed"`
	AssignedVariables  int           `json:"assignedVariables"`
	TotalVariables     int           `json:"totalVariables"`
	RelaxedAssignments int           `json:"relaxedAssignments"`
}

// slotOccupancy tracks which instructors, rooms and sections are already
// committed to one timeslot, giving O(1) amortized consistency checks.
type slotOccupancy struct {
	instructors map[string]bool
	rooms       map[string]bool
	sections    map[string]bool
}

func (o *slotOccupancy) empty() bool {
	return len(o.instructors) == 0 && len(o.rooms) == 0 && len(o.sections) == 0
}

// slotPin holds a timeslot shared by a set of coordinated variables along
// with how many of them are currently assigned to it.
type slotPin struct {
	key   model.SlotKey
	count int
}

type searcher struct {
	problem *Problem
	graph   ConstraintGraph
	opts    Options
	log     *zap.Logger

	assignment Assignment
	local      map[string][]Value
	occupancy  map[model.SlotKey]*slotOccupancy
	byID       map[string]*Variable

	electivePartner map[string]string   // course id -> paired course id
	pairPins        map[string]*slotPin // canonical pair key -> pinned slot
	lecturePins     map[string]*slotPin // course id -> pinned lecture slot

	metrics  Metrics
	deadline time.Time
}

// Search runs backtracking with forward checking over the problem. It
// returns the total assignment, or a nil assignment when every branch is
// exhausted, or ErrTimeout. Partial assignments are never returned.
func Search(problem *Problem, graph ConstraintGraph, opts Options, log *zap.Logger) (Assignment, Metrics, error) {
	s := &searcher{
		problem:         problem,
		graph:           graph,
		opts:            opts,
		log:             log,
		assignment:      Assignment{},
		local:           map[string][]Value{},
		occupancy:       map[model.SlotKey]*slotOccupancy{},
		electivePartner: map[string]string{},
		pairPins:        map[string]*slotPin{},
		lecturePins:     map[string]*slotPin{},
	}
	s.byID = make(map[string]*Variable, len(problem.Variables))
	for _, variable := range problem.Variables {
		s.local[variable.ID] = append([]Value{}, problem.Domains[variable.ID]...)
		s.byID[variable.ID] = variable
	}
	if opts.ElectivePairsEnabled {
		for _, pair := range opts.ElectivePairs {
			s.electivePartner[pair[0]] = pair[1]
			s.electivePartner[pair[1]] = pair[0]
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	start := time.Now()
	s.deadline = start.Add(timeout)
	s.metrics.TotalVariables = len(problem.Variables)

	solved, err := s.backtrack(0)
	s.metrics.Elapsed = time.Since(start)
	s.metrics.AssignedVariables = len(s.assignment)

	log.Info("search complete",
		zap.Bool("solved", solved),
		zap.Int("backtrackCalls", s.metrics.BacktrackCalls),
		zap.Int("backtracks", s.metrics.Backtracks),
		zap.Int("maxDepth", s.metrics.MaxDepth),
		zap.Duration("elapsed", s.metrics.Elapsed),
	)

	if err != nil {
		return nil, s.metrics, err
	}
	if !solved {
		return nil, s.metrics, nil
	}
	for _, variable := range problem.Variables {
		if variable.Tier != TierStrict {
			s.metrics.RelaxedAssignments++
		}
	}
	return s.assignment, s.metrics, nil
}

func (s *searcher) backtrack(depth int) (bool, error) {
	s.metrics.BacktrackCalls++
	if depth > s.metrics.MaxDepth {
		s.metrics.MaxDepth = depth
	}
	if time.Now().After(s.deadline) {
		return false, ErrTimeout
	}
	if len(s.assignment) == len(s.problem.Variables) {
		return true, nil
	}

	variable := s.selectUnassigned()
	values := s.orderValues(variable)
	if len(values) == 0 {
		return false, nil
	}

	for _, value := range values {
		s.metrics.ConstraintChecks++
		if !s.consistent(variable, value) {
			continue
		}

		s.assign(variable, value)

		pruned, wipeout := s.forwardCheck(variable, value)
		if !wipeout {
			solved, err := s.backtrack(depth + 1)
			if err != nil {
				return false, err
			}
			if solved {
				return true, nil
			}
		}

		for id, snapshot := range pruned {
			s.local[id] = snapshot
		}
		s.unassign(variable, value)
		s.metrics.Backtracks++
	}
	return false, nil
}

// selectUnassigned applies MRV with a degree tie-break: smallest local
// domain first, most still-unassigned neighbors second. Empty domains sort
// first so dead branches fail fast. Ties keep build order, which keeps the
// search deterministic.
func (s *searcher) selectUnassigned() *Variable {
	var best *Variable
	bestSize, bestDegree := 0, 0
	for _, variable := range s.problem.Variables {
		if _, ok := s.assignment[variable.ID]; ok {
			continue
		}
		size := len(s.local[variable.ID])
		degree := 0
		if size > 0 {
			for _, neighbor := range s.graph[variable.ID] {
				if _, ok := s.assignment[neighbor]; !ok {
					degree++
				}
			}
		}
		if best == nil || size < bestSize || (size == bestSize && degree > bestDegree) {
			best, bestSize, bestDegree = variable, size, degree
		}
	}
	return best
}

// orderValues applies the approximate least-constraining-value ordering:
// small domains are used as-is, larger ones are sorted ascending by how
// many instructor and room slots are already occupied at the value's
// timeslot.
func (s *searcher) orderValues(variable *Variable) []Value {
	values := s.local[variable.ID]
	if len(values) <= 10 {
		return values
	}
	ordered := append([]Value{}, values...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return s.slotUsage(ordered[i].Slot.Key()) < s.slotUsage(ordered[j].Slot.Key())
	})
	return ordered
}

func (s *searcher) slotUsage(key model.SlotKey) int {
	occ, ok := s.occupancy[key]
	if !ok {
		return 0
	}
	return len(occ.instructors) + len(occ.rooms)
}

// consistent checks the candidate against the occupancy cache for its
// timeslot and against the optional coordination constraints.
func (s *searcher) consistent(variable *Variable, value Value) bool {
	key := value.Slot.Key()
	if occ, ok := s.occupancy[key]; ok {
		if occ.instructors[value.InstructorID] || occ.rooms[value.RoomID] {
			return false
		}
		for _, section := range variable.Sections {
			if occ.sections[section] {
				return false
			}
		}
	}
	if pin := s.pinFor(variable); pin != nil && pin.count > 0 && pin.key != key {
		return false
	}
	if pin := s.lecturePinFor(variable); pin != nil && pin.count > 0 && pin.key != key {
		return false
	}
	return true
}

func (s *searcher) assign(variable *Variable, value Value) {
	s.assignment[variable.ID] = value
	key := value.Slot.Key()
	occ, ok := s.occupancy[key]
	if !ok {
		occ = &slotOccupancy{
			instructors: map[string]bool{},
			rooms:       map[string]bool{},
			sections:    map[string]bool{},
		}
		s.occupancy[key] = occ
	}
	occ.instructors[value.InstructorID] = true
	occ.rooms[value.RoomID] = true
	for _, section := range variable.Sections {
		occ.sections[section] = true
	}
	s.pinSlot(variable, key)
}

func (s *searcher) unassign(variable *Variable, value Value) {
	key := value.Slot.Key()
	if occ, ok := s.occupancy[key]; ok {
		delete(occ.instructors, value.InstructorID)
		delete(occ.rooms, value.RoomID)
		for _, section := range variable.Sections {
			delete(occ.sections, section)
		}
		if occ.empty() {
			delete(s.occupancy, key)
		}
	}
	s.unpinSlot(variable, key)
	delete(s.assignment, variable.ID)
}

// forwardCheck prunes values that now violate the occupancy invariants from
// every unassigned neighbor's local domain. It returns the pre-prune
// snapshots for restoration and whether some neighbor was wiped out.
func (s *searcher) forwardCheck(variable *Variable, value Value) (map[string][]Value, bool) {
	key := value.Slot.Key()
	sections := s.occupancy[key].sections
	pruned := map[string][]Value{}

	for _, neighborID := range s.graph[variable.ID] {
		if _, ok := s.assignment[neighborID]; ok {
			continue
		}
		neighbor := s.byID[neighborID]

		remaining := []Value{}
		for _, candidate := range s.local[neighborID] {
			if candidate.Slot.Key() != key {
				remaining = append(remaining, candidate)
				continue
			}
			if candidate.InstructorID != value.InstructorID &&
				candidate.RoomID != value.RoomID &&
				!intersectsSections(neighbor.Sections, sections) {
				remaining = append(remaining, candidate)
			}
		}
		if len(remaining) == 0 {
			return pruned, true
		}
		if len(remaining) < len(s.local[neighborID]) {
			pruned[neighborID] = s.local[neighborID]
			s.local[neighborID] = remaining
		}
	}
	return pruned, false
}

func intersectsSections(sections []string, occupied map[string]bool) bool {
	for _, section := range sections {
		if occupied[section] {
			return true
		}
	}
	return false
}

// pinFor returns the elective-pair pin covering the variable's course, or
// nil when the constraint is off or the course is unpaired.
func (s *searcher) pinFor(variable *Variable) *slotPin {
	partner, ok := s.electivePartner[variable.CourseID]
	if !ok {
		return nil
	}
	return s.pairPins[pairKey(variable.CourseID, partner)]
}

func (s *searcher) lecturePinFor(variable *Variable) *slotPin {
	if !s.opts.SharedLectureSlot || variable.Session != model.Lecture {
		return nil
	}
	return s.lecturePins[variable.CourseID]
}

func (s *searcher) pinSlot(variable *Variable, key model.SlotKey) {
	if partner, ok := s.electivePartner[variable.CourseID]; ok {
		pk := pairKey(variable.CourseID, partner)
		if s.pairPins[pk] == nil {
			s.pairPins[pk] = &slotPin{key: key}
		}
		s.pairPins[pk].count++
	}
	if s.opts.SharedLectureSlot && variable.Session == model.Lecture {
		if s.lecturePins[variable.CourseID] == nil {
			s.lecturePins[variable.CourseID] = &slotPin{key: key}
		}
		s.lecturePins[variable.CourseID].count++
	}
}

func (s *searcher) unpinSlot(variable *Variable, key model.SlotKey) {
	if partner, ok := s.electivePartner[variable.CourseID]; ok {
		pk := pairKey(variable.CourseID, partner)
		if pin := s.pairPins[pk]; pin != nil {
			if pin.count--; pin.count == 0 {
				delete(s.pairPins, pk)
			}
		}
	}
	if s.opts.SharedLectureSlot && variable.Session == model.Lecture {
		if pin := s.lecturePins[variable.CourseID]; pin != nil {
			if pin.count--; pin.count == 0 {
				delete(s.lecturePins, variable.CourseID)
			}
		}
	}
}

func pairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "|" + b
}
