package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spigell/resume-ranker/internal/analysis"
	"github.com/spigell/resume-ranker/internal/extract"
)

func rowsFixture() []Row {
	batch := &analysis.Batch{Documents: []analysis.ScoredDocument{
		{
			ID:    "backend.pdf",
			Score: 87.5,
			Fields: extract.Fields{
				Skills:     []string{"python", "docker"},
				JobTitles:  []string{"backend developer"},
				Education:  []string{"bachelor"},
				Experience: []string{"5 years"},
				Languages:  []string{"english"},
			},
		},
		{ID: "blank.pdf", Score: 0, Fields: extract.NewFields()},
	}}
	return RowsFromBatch(batch)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		expect  Format
		wantErr bool
	}{
		{name: "", expect: FormatCSV},
		{name: "CSV", expect: FormatCSV},
		{name: " xlsx ", expect: FormatXLSX},
		{name: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.name)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.expect, got)
	}

	assert.Equal(t, "text/csv", FormatCSV.ContentType())
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, rowsFixture()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"backend.pdf", "87.50", "python, docker", "backend developer", "bachelor", "5 years", "english"}, records[1])
	assert.Equal(t, []string{"blank.pdf", "0.00", "", "", "", "", ""}, records[2])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, rowsFixture()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "backend.pdf", rows[1][0])
	assert.Equal(t, "87.5", rows[1][1])
	assert.Equal(t, "python, docker", rows[1][2])
	assert.Equal(t, "blank.pdf", rows[2][0])
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Format("pdf"), nil))
}
