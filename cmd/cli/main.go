package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/csitlab/timetabling/internal/csp"
	"github.com/csitlab/timetabling/internal/csvio"
	"github.com/csitlab/timetabling/pkg/config"
	"github.com/csitlab/timetabling/pkg/logger"
	"github.com/csitlab/timetabling/pkg/model"
)

func main() {
	// Define arguments
	coursesPtr := flag.String("courses", "", "Path to the courses CSV file")
	instructorsPtr := flag.String("instructors", "", "Path to the instructors CSV file")
	roomsPtr := flag.String("rooms", "", "Path to the rooms CSV file")
	timeslotsPtr := flag.String("timeslots", "", "Path to the timeslots CSV file")
	sectionsPtr := flag.String("sections", "", "Path to the sections CSV file")
	datasetPtr := flag.String("dataset", "", "Path to a JSON dataset bundle; replaces the five CSV flags")
	outPtr := flag.String("out", "", "Path to the file where the timetable will be written; if empty, it'll be written into the Standard Output")
	delimPtr := flag.String("delim", ",", "CSV delimiter used by the input files")
	timeoutPtr := flag.Duration("timeout", 0, "Wall-clock budget for the search; 0 uses the configured default")
	permissivePtr := flag.Bool("permissive", false, "Build domains with qualification and room type relaxed from the start")
	flag.Parse()

	// Validate arguments
	csvInput := *coursesPtr != "" || *instructorsPtr != "" || *roomsPtr != "" || *timeslotsPtr != "" || *sectionsPtr != ""
	if *datasetPtr == "" {
		if *coursesPtr == "" || *instructorsPtr == "" || *roomsPtr == "" || *timeslotsPtr == "" || *sectionsPtr == "" {
			log.Fatal("all five input files must be specified: -courses, -instructors, -rooms, -timeslots, -sections (or use -dataset)")
		}
	} else if csvInput {
		log.Fatal("-dataset cannot be combined with the CSV flags")
	}
	if len(*delimPtr) != 1 {
		log.Fatalf("%v is not a valid delimiter", *delimPtr)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}
	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer zl.Sync()

	var dataset model.Dataset
	if *datasetPtr != "" {
		dataset, err = model.DatasetFromJSON(*datasetPtr)
	} else {
		dataset, err = csvio.LoadDataset(csvio.DatasetPaths{
			Courses:     *coursesPtr,
			Instructors: *instructorsPtr,
			Rooms:       *roomsPtr,
			Timeslots:   *timeslotsPtr,
			Sections:    *sectionsPtr,
		}, rune((*delimPtr)[0]))
	}
	if err != nil {
		zl.Fatal("cannot load dataset", zap.Error(err))
	}

	opts := csp.Options{
		Timeout:             cfg.Solver.Timeout,
		ForcePermissive:     *permissivePtr,
		PermissiveRetry:     cfg.Solver.PermissiveRetry,
		RelaxUnavailability: cfg.Solver.RelaxUnavailability,
		SharedLectureSlot:   cfg.Solver.SharedLectureSlot,
	}
	if len(cfg.Solver.ElectivePairs) > 0 {
		opts.ElectivePairsEnabled = true
		opts.ElectivePairs = cfg.Solver.ElectivePairs
	}
	if *timeoutPtr > 0 {
		opts.Timeout = *timeoutPtr
	}

	start := time.Now()
	result, err := csp.NewGenerator(opts, zl).Generate(dataset)
	if err != nil {
		if errors.Is(err, csp.ErrTimeout) {
			zl.Fatal("search timed out; re-run with a larger -timeout", zap.Duration("budget", opts.Timeout))
		}
		if result != nil && len(result.Diagnostics.EmptyDomainVariables) > 0 {
			zl.Fatal("no timetable possible",
				zap.Error(err),
				zap.Strings("emptyDomains", result.Diagnostics.EmptyDomainVariables),
				zap.Any("rejections", result.Diagnostics.Rejections),
			)
		}
		zl.Fatal("no timetable found", zap.Error(err))
	}

	if *outPtr == "" {
		str, err := csvio.MarshalTimetable(result.Rows)
		if err != nil {
			zl.Fatal("cannot render timetable", zap.Error(err))
		}
		fmt.Println(str)
	} else if err := csvio.ExportTimetable(result.Rows, *outPtr); err != nil {
		zl.Fatal("cannot export timetable", zap.Error(err))
	}

	zl.Info("timetable generated",
		zap.Int("rows", len(result.Rows)),
		zap.Int("assigned", result.Metrics.AssignedVariables),
		zap.Int("total", result.Metrics.TotalVariables),
		zap.Int("backtracks", result.Metrics.Backtracks),
		zap.Int("constraintChecks", result.Metrics.ConstraintChecks),
		zap.Int("relaxedAssignments", result.Metrics.RelaxedAssignments),
		zap.Bool("permissive", result.Permissive),
		zap.Duration("elapsed", time.Since(start)),
	)
}
