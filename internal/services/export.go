package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/techmaa/portal/internal/apperr"
	"github.com/techmaa/portal/internal/storage"
	"github.com/techmaa/portal/types"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the media type of exported spreadsheets.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const exportSheet = "Students"

var exportHeaders = []string{
	"Roll No", "Name", "Email", "Phone", "Role", "Course", "Department",
	"Address", "Age", "Gender", "Year", "Semester", "Marks",
}

// Export is a generated spreadsheet.
type Export struct {
	Filename string
	Data     []byte
	// Location is where the file was archived, if archiving is enabled.
	Location string
}

// Exporter renders student lists to .xlsx and optionally archives them.
type Exporter struct {
	archive storage.ObjectStorage
	now     func() time.Time
}

// NewExporter builds an exporter. archive may be nil.
func NewExporter(archive storage.ObjectStorage) *Exporter {
	return &Exporter{archive: archive, now: time.Now}
}

// Students renders one row per student under a bold header row.
func (e *Exporter) Students(ctx context.Context, students []types.Student) (Export, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return Export{}, apperr.Internal("failed to build export", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return Export{}, apperr.Internal("failed to build export", err)
	}

	header := make([]any, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := writeRow(f, 1, header); err != nil {
		return Export{}, apperr.Internal("failed to build export", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, bold); err != nil {
		return Export{}, apperr.Internal("failed to build export", err)
	}

	for i, s := range students {
		if err := writeRow(f, i+2, studentRow(s)); err != nil {
			return Export{}, apperr.Internal("failed to build export", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return Export{}, apperr.Internal("failed to write export", err)
	}

	out := Export{Filename: exportFilename(e.now()), Data: buf.Bytes()}
	if e.archive != nil {
		key := fmt.Sprintf("exports/%s/%s", uuid.NewString(), out.Filename)
		location, err := e.archive.Put(ctx, key, bytes.NewReader(out.Data), int64(len(out.Data)), XLSXContentType)
		if err != nil {
			log.Printf("export: archive %s failed: %v", key, err)
		} else {
			out.Location = location
		}
	}
	return out, nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(exportSheet, cell, &values)
}

func studentRow(s types.Student) []any {
	return []any{
		s.RollNo,
		s.Name,
		s.Email,
		s.Phone,
		string(s.Role),
		s.CourseTitle(),
		string(s.Department),
		s.Address,
		optional(s.Age),
		string(s.Gender),
		optional(s.AcademicYear),
		optional(s.Semester),
		s.Marks,
	}
}

func optional(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

// exportFilename formats e.g. Students_05_Mar_2026_3-04_PM.xlsx.
func exportFilename(t time.Time) string {
	stamp := t.Format("02 Jan 2006 3:04 PM")
	stamp = strings.NewReplacer(" ", "_", ":", "-").Replace(stamp)
	return "Students_" + stamp + ".xlsx"
}
