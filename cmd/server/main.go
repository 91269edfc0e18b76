package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/csitlab/timetabling/internal/csp"
	"github.com/csitlab/timetabling/pkg/config"
	"github.com/csitlab/timetabling/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}
	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	defer zl.Sync()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := csp.Options{
		Timeout:             cfg.Solver.Timeout,
		PermissiveRetry:     cfg.Solver.PermissiveRetry,
		RelaxUnavailability: cfg.Solver.RelaxUnavailability,
		SharedLectureSlot:   cfg.Solver.SharedLectureSlot,
	}
	if len(cfg.Solver.ElectivePairs) > 0 {
		opts.ElectivePairsEnabled = true
		opts.ElectivePairs = cfg.Solver.ElectivePairs
	}

	if err := os.MkdirAll(generatedDir, os.ModePerm); err != nil {
		zl.Fatal("cannot create storage directories: " + err.Error())
	}

	h := &handler{
		generator: csp.NewGenerator(opts, zl),
		log:       zl,
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/timetable", h.listTimetables)
	r.GET("/timetable/:id", h.getTimetable)
	r.POST("/timetable", h.generateTimetable)

	if err := r.Run(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		zl.Fatal("server stopped: " + err.Error())
	}
}
