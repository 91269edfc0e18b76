package csvio

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/csitlab/timetabling/pkg/model"
)

// ExportTimetable writes the projected rows to the CSV file at path,
// replacing any existing file.
func ExportTimetable(rows []model.TimetableRow, path string) error {
	if _, err := os.Stat(path); err == nil {
		os.Remove(path)
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, os.ModePerm)
	if err != nil {
		return fmt.Errorf("cannot create %v: %w", path, err)
	}
	defer out.Close()

	if err := gocsv.MarshalFile(&rows, out); err != nil {
		return fmt.Errorf("cannot write timetable: %w", err)
	}
	return nil
}

// MarshalTimetable renders the projected rows as a CSV string.
func MarshalTimetable(rows []model.TimetableRow) (string, error) {
	str, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("cannot marshal timetable: %w", err)
	}
	return str, nil
}
