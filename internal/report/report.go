// Package report exports ranking results as CSV or XLSX tables.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-ranker/internal/analysis"
)

const (
	listSeparator = ", "
	sheetName     = "Results"
)

// Header is the column layout shared by every export format.
var Header = []string{"Filename", "Score (%)", "Matched Skills", "Matched Title", "Education", "Experience", "Languages"}

// Format is an export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat resolves a user supplied format name. An empty name is CSV.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", name)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Extension returns the file extension of the format including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Row is one ranked document flattened for export.
type Row struct {
	Filename          string
	Score             float64
	MatchedSkills     []string
	MatchedTitle      []string
	MatchedEducation  []string
	MatchedExperience []string
	MatchedLanguages  []string
}

// RowsFromBatch flattens a batch in ranking order.
func RowsFromBatch(b *analysis.Batch) []Row {
	rows := make([]Row, 0, b.Len())
	for _, doc := range b.Documents {
		rows = append(rows, Row{
			Filename:          doc.ID,
			Score:             doc.Score,
			MatchedSkills:     doc.Fields.Skills,
			MatchedTitle:      doc.Fields.JobTitles,
			MatchedEducation:  doc.Fields.Education,
			MatchedExperience: doc.Fields.Experience,
			MatchedLanguages:  doc.Fields.Languages,
		})
	}
	return rows
}

// Cells renders the row as strings in Header order.
func (r Row) Cells() []string {
	return []string{
		r.Filename,
		strconv.FormatFloat(r.Score, 'f', 2, 64),
		strings.Join(r.MatchedSkills, listSeparator),
		strings.Join(r.MatchedTitle, listSeparator),
		strings.Join(r.MatchedEducation, listSeparator),
		strings.Join(r.MatchedExperience, listSeparator),
		strings.Join(r.MatchedLanguages, listSeparator),
	}
}

// Write exports rows in the given format.
func Write(w io.Writer, format Format, rows []Row) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// WriteCSV writes the header followed by one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.Cells()); err != nil {
			return fmt.Errorf("writing csv row %q: %w", row.Filename, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single sheet workbook. Scores are stored as numbers.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, 0, len(Header))
	for _, h := range Header {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing xlsx header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		cells := row.Cells()
		values := []any{cells[0], row.Score, cells[2], cells[3], cells[4], cells[5], cells[6]}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("writing xlsx row %q: %w", row.Filename, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing xlsx: %w", err)
	}
	return nil
}
