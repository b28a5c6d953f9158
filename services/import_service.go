package services

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"absensi_go/models"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// ImportService merges spreadsheet rosters into the Students dataset and
// produces the operator template workbook.
type ImportService struct {
	sync *SyncService
}

func NewImportService(sync *SyncService) *ImportService {
	return &ImportService{sync: sync}
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors,omitempty"`
}

var nonDigits = regexp.MustCompile(`\D`)

// Recognized header names; the first sheet's first row is matched
// case-insensitively against these.
var (
	idHeaders    = []string{"NIS", "ID"}
	nameHeaders  = []string{"Nama Lengkap", "Nama"}
	classHeaders = []string{"Kelas"}
	genderHeader = []string{"Gender"}
	phoneHeaders = []string{"No WA Ortu", "WA"}
)

// ImportStudents reads an xlsx roster, normalizes each row (uppercased name,
// P/L gender code, digits-only phone) and upserts it into the current roster
// by NIS. Malformed rows are skipped, never fatal. The merged roster is
// persisted through the sync layer.
func (s *ImportService) ImportStudents(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	col := buildColumnIndex(rows[0])
	idCol, ok := firstIndex(col, idHeaders)
	if !ok {
		return nil, fmt.Errorf("missing column: NIS")
	}
	nameCol, ok := firstIndex(col, nameHeaders)
	if !ok {
		return nil, fmt.Errorf("missing column: Nama Lengkap")
	}
	classCol, classOk := firstIndex(col, classHeaders)
	genderCol, genderOk := firstIndex(col, genderHeader)
	phoneCol, phoneOk := firstIndex(col, phoneHeaders)

	result := &ImportResult{Total: len(rows) - 1}
	var parsed []models.Student
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		get := func(idx int, ok bool) string {
			if ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}
		id := get(idCol, true)
		name := get(nameCol, true)
		if id == "" || name == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing NIS or name", i+1))
			continue
		}
		className := get(classCol, classOk)
		if className == "" {
			className = "IX A"
		}
		parsed = append(parsed, models.Student{
			ID:          id,
			Name:        strings.ToUpper(name),
			ClassName:   className,
			Gender:      models.NormalizeGender(get(genderCol, genderOk)),
			ParentPhone: nonDigits.ReplaceAllString(get(phoneCol, phoneOk), ""),
		})
	}

	if len(parsed) == 0 {
		return result, nil
	}

	// Merge by NIS: existing rows are replaced, new ones appended.
	merged := s.sync.LoadStudents(ctx)
	for _, student := range parsed {
		replaced := false
		for i := range merged {
			if merged[i].ID == student.ID {
				merged[i] = student
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, student)
		}
	}
	models.SortStudents(merged)

	if err := s.sync.SaveStudents(ctx, merged); err != nil {
		// cache already holds the merged roster; only the remote leg failed
		logrus.WithField("error", err.Error()).Warn("Imported roster saved locally, remote sync failed")
	}
	result.Imported = len(parsed)
	return result, nil
}

// TemplateWorkbook builds the two-example-row xlsx the operators fill in.
func (s *ImportService) TemplateWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Template"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	rows := [][]interface{}{
		{"NIS", "Nama Lengkap", "Kelas", "Gender", "No WA Ortu"},
		{"1001", "CONTOH SISWA 1", "IX A", "L", "08123456789"},
		{"1002", "CONTOH SISWA 2", "IX A", "P", "08123456788"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func buildColumnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return col
}

func firstIndex(col map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := col[strings.ToLower(name)]; ok {
			return idx, true
		}
	}
	return 0, false
}
