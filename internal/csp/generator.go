package csp

import (
	"errors"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/csitlab/timetabling/pkg/model"
)

// DefaultTimeout bounds a single search invocation when no budget is given.
const DefaultTimeout = 120 * time.Second

// ErrNoSolution is returned when every branch is exhausted, including the
// permissive retry.
var ErrNoSolution = errors.New("no feasible timetable exists under the given constraints")

// ErrUnsolvable is returned before the search runs when some variable has
// an empty domain at every relaxation tier and therefore can never be
// assigned.
var ErrUnsolvable = errors.New("some variables cannot be assigned at any relaxation tier")

// Options configure one generation run.
type Options struct {
	// Timeout is the wall-clock budget per search invocation.
	Timeout time.Duration
	// ForcePermissive builds domains with qualification and room type
	// relaxed from the start. Role compatibility still holds.
	ForcePermissive bool
	// PermissiveRetry enables the single whole-system retry under forced
	// permissive domains after a strict-mode search failure.
	PermissiveRetry bool
	// RelaxUnavailability couples the instructor day-unavailability filter
	// to the qualification relaxation: tiers that admit unqualified
	// instructors ignore the rule. When false the rule is hard at every
	// tier.
	RelaxUnavailability bool
	// SharedLectureSlot forces all lecture groups of one course onto the
	// same timeslot.
	SharedLectureSlot bool
	// ElectivePairsEnabled turns on elective coordination: both courses of
	// each pair must occupy the identical timeslot.
	ElectivePairsEnabled bool
	ElectivePairs        [][2]string
}

// DefaultOptions mirror the canonical flow: strict first, one permissive
// retry, unavailability coupled to the qualification relaxation, optional
// coordination constraints off.
func DefaultOptions() Options {
	return Options{
		Timeout:             DefaultTimeout,
		PermissiveRetry:     true,
		RelaxUnavailability: true,
	}
}

// Diagnostics describe why domains shrank or emptied.
type Diagnostics struct {
	EmptyDomainVariables []string                  `json:"emptyDomainVariables,omitempty"`
	TiersUsed            map[string]string         `json:"tiersUsed,omitempty"`
	Rejections           map[string]RejectionTally `json:"rejections,omitempty"`
}

// Result is the outcome of a successful generation run.
type Result struct {
	Assignment  Assignment
	Rows        []model.TimetableRow
	Metrics     Metrics
	Diagnostics Diagnostics
	Permissive  bool // solved under forced permissive domains
}

// Generator runs the full pipeline: grouping, domain construction,
// constraint graph, search and projection. One Generate call is atomic and
// blocking; it either returns a complete assignment or an error.
type Generator struct {
	opts Options
	log  *zap.Logger
}

func NewGenerator(opts Options, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{opts: opts, log: log}
}

// Generate solves the dataset. Search failure triggers exactly one retry
// under forced permissive domains unless the run already was permissive.
// Timeouts are reported as-is without retrying.
func (g *Generator) Generate(dataset model.Dataset) (*Result, error) {
	if err := dataset.Validate(); err != nil {
		return nil, err
	}

	result, err := g.run(dataset, g.opts)
	if err == nil || g.opts.ForcePermissive || !g.opts.PermissiveRetry {
		return result, err
	}
	if !errors.Is(err, ErrNoSolution) {
		return result, err
	}

	g.log.Info("strict search failed, retrying with permissive domains")
	permissive := g.opts
	permissive.ForcePermissive = true
	result, retryErr := g.run(dataset, permissive)
	if retryErr != nil {
		return result, retryErr
	}
	result.Permissive = true
	return result, nil
}

func (g *Generator) run(dataset model.Dataset, opts Options) (*Result, error) {
	problem := BuildProblem(dataset, opts)
	g.log.Info("domains built",
		zap.Int("variables", len(problem.Variables)),
		zap.Bool("permissive", opts.ForcePermissive),
	)

	diagnostics := collectDiagnostics(problem)
	if len(diagnostics.EmptyDomainVariables) > 0 {
		// The search would only rediscover this the slow way.
		g.log.Warn("variables with empty domains after all relaxation tiers",
			zap.Strings("variables", diagnostics.EmptyDomainVariables),
		)
		return &Result{Diagnostics: diagnostics}, ErrUnsolvable
	}

	graph := BuildConstraintGraph(problem)
	g.log.Info("constraint graph built", zap.Float64("avgNeighbors", graph.AverageDegree()))

	assignment, metrics, err := Search(problem, graph, opts, g.log)
	if err != nil {
		return &Result{Metrics: metrics, Diagnostics: diagnostics}, err
	}
	if assignment == nil {
		return &Result{Metrics: metrics, Diagnostics: diagnostics}, ErrNoSolution
	}

	return &Result{
		Assignment:  assignment,
		Rows:        Project(assignment, problem, dataset),
		Metrics:     metrics,
		Diagnostics: diagnostics,
	}, nil
}

func collectDiagnostics(problem *Problem) Diagnostics {
	diagnostics := Diagnostics{
		EmptyDomainVariables: problem.EmptyDomainVariables(),
		TiersUsed:            map[string]string{},
		Rejections:           map[string]RejectionTally{},
	}
	relaxed := lo.Filter(problem.Variables, func(v *Variable, _ int) bool { return v.Tier != TierStrict })
	for _, variable := range relaxed {
		diagnostics.TiersUsed[variable.ID] = variable.Tier.String()
	}
	for _, variable := range problem.Variables {
		if len(variable.Rejections) > 0 {
			diagnostics.Rejections[variable.ID] = variable.Rejections
		}
	}
	return diagnostics
}
