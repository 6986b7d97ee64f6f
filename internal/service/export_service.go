package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/infoamous-source/kiosk-sub001/internal/backend"
	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

var (
	ErrExportEmpty        = errors.New("no enrollments to export")
	ErrExportGenerateFail = errors.New("failed to generate Excel file")
)

var rosterColumns = []struct {
	title string
	width float64
}{
	{"Name", 18},
	{"Email", 28},
	{"School", 16},
	{"Status", 14},
	{"Country", 14},
	{"Org code", 10},
	{"Enrolled at", 18},
	{"Activated at", 18},
	{"Suspended at", 18},
	{"Completed at", 18},
}

// ExportRoster renders the enrollments of schoolID, or of every school when
// empty, as an .xlsx sheet. Students missing a profile are listed by id.
//
// Layout:
//   - row 1: title
//   - row 2: header
//   - one row per enrollment, newest first
func (s *enrollmentService) ExportRoster(ctx context.Context, schoolID model.SchoolID) (*bytes.Buffer, string, error) {
	if err := s.client.Guard("enrollment.export"); err != nil {
		return nil, "", err
	}
	tables := s.client.Tables

	var (
		rows []model.Enrollment
		err  error
	)
	if schoolID == "" {
		rows, err = tables.Enrollment.ListAll(ctx)
	} else {
		rows, err = tables.Enrollment.ListBySchool(ctx, schoolID)
	}
	if err != nil {
		s.logger.Error("load enrollments for export failed", zap.Error(err))
		return nil, "", backend.Classify("enrollment.export", err)
	}
	if len(rows) == 0 {
		return nil, "", ErrExportEmpty
	}

	students, err := tables.Profile.ListStudents(ctx)
	if err != nil {
		readFailed(s.logger, s.metrics, "profiles", err)
	}
	byID := make(map[string]*model.Profile, len(students))
	for i := range students {
		byID[students[i].ID] = &students[i]
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Roster"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	for i, c := range rosterColumns {
		col := colName(i)
		f.SetColWidth(sheet, col, col, c.width)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2F855A"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	scope := "all schools"
	if schoolID != "" {
		scope = string(schoolID)
	}
	f.SetCellValue(sheet, "A1", fmt.Sprintf("Kkakdugi School roster (%s)", scope))
	f.MergeCell(sheet, "A1", cell(colName(len(rosterColumns)-1), 1))

	for i, c := range rosterColumns {
		f.SetCellValue(sheet, cell(colName(i), 2), c.title)
	}
	f.SetCellStyle(sheet, "A2", cell(colName(len(rosterColumns)-1), 2), headerStyle)

	row := 3
	for _, e := range rows {
		name, email, country, orgCode := e.StudentID, "", "", ""
		if p, ok := byID[e.StudentID]; ok {
			name, email, country, orgCode = p.Name, p.Email, p.Country, p.OrgCode
		}
		values := []interface{}{
			name,
			email,
			string(e.SchoolID),
			string(e.Status),
			country,
			orgCode,
			formatTime(&e.EnrolledAt),
			formatTime(e.ActivatedAt),
			formatTime(e.SuspendedAt),
			formatTime(e.CompletedAt),
		}
		for i, v := range values {
			f.SetCellValue(sheet, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write Excel failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("roster_%s_%s.xlsx", scopeSlug(schoolID), s.now().Format("20060102"))
	return buf, filename, nil
}

func scopeSlug(schoolID model.SchoolID) string {
	if schoolID == "" {
		return "all"
	}
	return string(schoolID)
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
