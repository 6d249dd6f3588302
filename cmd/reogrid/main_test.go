package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	json "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeBook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellFormula("Sheet1", "A1", "B1*2"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", 21))
	path := filepath.Join(t.TempDir(), "in.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestClassifyCommand(t *testing.T) {
	out, _, err := execute(t, "classify", "#N/A", "#foo")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, map[string]any{"text": "#N/A", "recognized": true, "value": "#N/A"}, got[0])
	assert.Equal(t, false, got[1]["recognized"])

	_, _, err = execute(t, "classify")
	assert.Error(t, err)
}

func TestRefsCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		texts []string
	}{
		{"a1", []string{"refs", "=SUM(A1, Sheet2!$B$3)"}, []string{"A1", "Sheet2!$B$3"}},
		{"r1c1", []string{"refs", "--dialect", "r1c1", "=R[1]C[-1]+R2C3"}, []string{"R[1]C[-1]", "R2C3"}},
		{"culture", []string{"refs", "--culture", "de", "=A1*1,5"}, []string{"A1"}},
		{"none", []string{"refs", "=1+2"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.NoError(t, err)

			var got []map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			var texts []string
			for _, ref := range got {
				texts = append(texts, ref["text"].(string))
			}
			assert.Equal(t, tt.texts, texts)
		})
	}
}

func TestRefsCommandErrors(t *testing.T) {
	_, _, err := execute(t, "refs", "--dialect", "xyz", "=A1")
	assert.ErrorContains(t, err, "invalid dialect")

	_, _, err = execute(t, "refs", "=1 + ~")
	assert.Error(t, err)

	_, _, err = execute(t, "refs", "--culture", "!!", "=A1")
	assert.ErrorContains(t, err, "invalid culture")
}

func TestRecalcCommand(t *testing.T) {
	in := writeBook(t)
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.json")
	xlsxPath := filepath.Join(dir, "out.xlsx")
	sheetsDir := filepath.Join(dir, "sheets")

	stdout, stderr, err := execute(t, "recalc", in, "-o", outPath, "--write", xlsxPath,
		"--sheets-dir", sheetsDir, "--verbose")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "workbook recalculated")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"c":{"1":42,"2":21}`)
	assert.FileExists(t, filepath.Join(sheetsDir, "Sheet1.json"))

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestRecalcCommandPrintAreas(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellFormula("Sheet1", "A1", "B1*2"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", 21))
	require.NoError(t, f.SetCellValue("Sheet1", "D1", "outside"))
	require.NoError(t, f.SetCellValue("Sheet1", "C5", 7))
	require.NoError(t, f.MergeCell("Sheet1", "A3", "C4"))
	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{
		Name: "_xlnm.Print_Area", RefersTo: "Sheet1!$A$1:$B$3", Scope: "Sheet1",
	}))
	in := filepath.Join(t.TempDir(), "areas.xlsx")
	require.NoError(t, f.SaveAs(in))
	require.NoError(t, f.Close())

	dir := filepath.Join(t.TempDir(), "areas")
	stdout, _, err := execute(t, "recalc", in, "--print-areas-dir", dir)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(filepath.Join(dir, "Sheet1_area1.json"))
	require.NoError(t, err)
	var view map[string]any
	require.NoError(t, json.Unmarshal(data, &view))

	assert.Equal(t, "areas.xlsx", view["book_name"])
	assert.Equal(t, map[string]any{"r1": 1.0, "c1": 1.0, "r2": 3.0, "c2": 2.0}, view["area"])
	assert.Equal(t, []any{map[string]any{
		"r":        1.0,
		"c":        map[string]any{"1": 42.0, "2": 21.0},
		"formulas": map[string]any{"1": "B1*2"},
	}}, view["rows"])
	assert.Equal(t, []any{"A3:C4"}, view["merged_ranges"])

	_, _, err = execute(t, "recalc", in, "--print-areas-dir", dir, "--no-print-areas")
	assert.ErrorContains(t, err, "--print-areas-dir")
}

func TestRecalcCommandStdout(t *testing.T) {
	stdout, _, err := execute(t, "recalc", writeBook(t), "--no-formulas")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"processed":1`)
	assert.NotContains(t, stdout, "formulas")
}

func TestRecalcCommandErrors(t *testing.T) {
	_, _, err := execute(t, "recalc", filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorContains(t, err, "file not found")

	_, _, err = execute(t, "recalc", writeBook(t), "--max-depth", "0")
	assert.ErrorContains(t, err, "invalid max depth")

	_, _, err = execute(t, "recalc")
	assert.Error(t, err)
}
