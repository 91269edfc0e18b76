package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/csitlab/timetabling/internal/csp"
	"github.com/csitlab/timetabling/internal/csvio"
	"github.com/csitlab/timetabling/pkg/model"
)

const (
	uploadDir    = "db"
	generatedDir = "db/generated"
)

type handler struct {
	generator *csp.Generator
	log       *zap.Logger
}

func (h *handler) listTimetables(ctx *gin.Context) {
	files, err := os.ReadDir(generatedDir)
	if err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}

	ids := []string{}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if id, ok := strings.CutSuffix(file.Name(), "-timetable.csv"); ok {
			ids = append(ids, id)
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"timetableIds": ids})
}

func (h *handler) getTimetable(ctx *gin.Context) {
	id := ctx.Param("id")
	content, err := os.ReadFile(filepath.Join(generatedDir, id+"-timetable.csv"))
	if err != nil {
		ctx.Status(http.StatusNotFound)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": string(content)})
}

// generateTimetable accepts the five dataset CSVs as one multipart form and
// runs the solver synchronously. One call is atomic: it responds with a
// complete timetable id or an error, never a partial schedule.
func (h *handler) generateTimetable(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.String(http.StatusBadRequest, err.Error())
		return
	}

	fields := []string{"courses", "instructors", "rooms", "timeslots", "sections"}
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	saved := map[string]string{}
	for _, field := range fields {
		files := form.File[field]
		if len(files) == 0 {
			ctx.String(http.StatusBadRequest, "missing %v file", field)
			return
		}
		path := filepath.Join(uploadDir, timestamp+"-"+field+".csv")
		if err := ctx.SaveUploadedFile(files[0], path); err != nil {
			ctx.Status(http.StatusInternalServerError)
			return
		}
		saved[field] = path
	}

	dataset, err := csvio.LoadDataset(csvio.DatasetPaths{
		Courses:     saved["courses"],
		Instructors: saved["instructors"],
		Rooms:       saved["rooms"],
		Timeslots:   saved["timeslots"],
		Sections:    saved["sections"],
	}, ',')
	if err != nil {
		var dataErr *model.DatasetError
		if errors.As(err, &dataErr) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": dataErr.Error()})
			return
		}
		ctx.Status(http.StatusInternalServerError)
		return
	}

	result, err := h.generator.Generate(dataset)
	if err != nil {
		h.log.Warn("generation failed", zap.Error(err))
		status := http.StatusUnprocessableEntity
		body := gin.H{"error": err.Error()}
		if result != nil {
			body["diagnostics"] = result.Diagnostics
			body["metrics"] = result.Metrics
		}
		var dataErr *model.DatasetError
		if errors.As(err, &dataErr) {
			status = http.StatusBadRequest
		}
		if errors.Is(err, csp.ErrTimeout) {
			status = http.StatusRequestTimeout
		}
		ctx.JSON(status, body)
		return
	}

	exportPath := filepath.Join(generatedDir, timestamp+"-timetable.csv")
	if err := csvio.ExportTimetable(result.Rows, exportPath); err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":         timestamp,
		"metrics":    result.Metrics,
		"permissive": result.Permissive,
	})
}
