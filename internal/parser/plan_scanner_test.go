package parser

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"linechange/internal/model"
)

// mapResolver 测试用主管 -> 产线映射
type mapResolver map[string]string

func (m mapResolver) Resolve(supervisor string) string {
	if line, ok := m[strings.ToUpper(supervisor)]; ok {
		return line
	}
	return supervisor
}

// buildPlanWorkbook 构建排产表：cells 的 key 为 A1 坐标
func buildPlanWorkbook(t *testing.T, sheet string, rows map[string][]interface{}) *Workbook {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}
	for cell, values := range rows {
		vals := values
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			t.Fatalf("set row %s: %v", cell, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	wb, err := ReadWorkbook(&buf)
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	return wb
}

func utcLayout() PlanLayout {
	l := DefaultPlanLayout()
	l.Location = time.UTC
	return l
}

func TestPlanScanner_HolidayProductionScenario(t *testing.T) {
	t.Parallel()

	wb := buildPlanWorkbook(t, "Plan", map[string][]interface{}{
		"K3":  {45000, 45001},
		"K4":  {"Thu", "Fri"},
		"A9":  {"SOHRAB"},
		"K9":  {"STYLE-A", "200pcs"},
		"K10": {100, 50},
		"K11": {20, 20},
	})

	s := NewPlanScanner(utcLayout(), mapResolver{"SOHRAB": "S-02"})
	styles, err := s.ScanWorkbook(wb)
	require.NoError(t, err)
	require.Len(t, styles, 1)

	st := styles[0]
	assert.Equal(t, "Plan-R8-C10", st.ID)
	assert.Equal(t, "STYLE-A", st.StyleName)
	assert.Equal(t, "S-02", st.PhysicalLine)
	assert.Equal(t, "SOHRAB", st.Supervisor)
	assert.Equal(t, model.UnitMain, st.Unit)
	assert.Equal(t, "200pcs", st.Quantity)
	assert.Equal(t, 150, st.TotalTarget)
	assert.Equal(t, 40, st.TotalManpower)
	require.Len(t, st.DailyPlans, 2)
	assert.True(t, st.DailyPlans[1].IsHoliday)

	require.Len(t, st.Anomalies, 1)
	assert.Equal(t, model.AnomalyHolidayProduction, st.Anomalies[0].Kind)
	assert.Equal(t, model.SeverityMedium, st.Anomalies[0].Severity)
	assert.Equal(t, "Production planned on holiday (Fri)", st.Anomalies[0].Message)

	require.NotNil(t, st.StartDate)
	require.NotNil(t, st.EndDate)
	assert.Equal(t, "2023-03-15", st.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2023-03-16", st.EndDate.Format("2006-01-02"))
}

func TestPlanScanner_ConsecutiveStylesShareBoundaryDate(t *testing.T) {
	t.Parallel()

	wb := buildPlanWorkbook(t, "Plan", map[string][]interface{}{
		"K3":  {45000, 45001, 45002, 45003},
		"K4":  {"Sat", "Sun", "Mon", "Tue"},
		"A9":  {"Kamal", "OLD-STYLE"},
		"K9":  {"STYLE-A", "", "STYLE-B", "need to add extra operators"},
		"K10": {100, 110, 120, 130},
		"K11": {20, 21, 22, 23},
	})

	styles := NewPlanScanner(utcLayout(), nil).ScanSheet(wb.Sheets[0])
	require.Len(t, styles, 2)

	a, b := styles[0], styles[1]
	assert.Equal(t, "OLD-STYLE", a.CurrentRunningStyle)
	assert.Equal(t, "Kamal", a.PhysicalLine)
	assert.Equal(t, 210, a.TotalTarget)
	assert.Equal(t, "2023-03-15", a.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2023-03-17", a.EndDate.Format("2006-01-02"), "end date back-filled to the next style's start")
	assert.Equal(t, b.StartDate.Format("2006-01-02"), a.EndDate.Format("2006-01-02"))

	assert.Equal(t, 250, b.TotalTarget)
	assert.Equal(t, 45, b.TotalManpower)
	assert.Equal(t, []string{"2023-03-18: need to add extra operators"}, b.Remarks)
	assert.Empty(t, a.Remarks)
}

func TestPlanScanner_StyleAsLastCellOnRow(t *testing.T) {
	t.Parallel()

	// 款式行只有 K9 有值，目标行更长；扫描须延伸到 Sheet 最右列
	wb := buildPlanWorkbook(t, "Plan", map[string][]interface{}{
		"K3":  {45000, 45001, 45002},
		"K9":  {"STYLE-A"},
		"K10": {100, 100, 100},
	})

	styles := NewPlanScanner(utcLayout(), nil).ScanSheet(wb.Sheets[0])
	require.Len(t, styles, 1)

	st := styles[0]
	assert.Len(t, st.DailyPlans, 3)
	assert.Equal(t, 300, st.TotalTarget)
	assert.Equal(t, "2023-03-15", st.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2023-03-17", st.EndDate.Format("2006-01-02"))
}

func TestPlanScanner_DailyPlansOrderedAndTotalsConsistent(t *testing.T) {
	t.Parallel()

	wb := buildPlanWorkbook(t, "Plan", map[string][]interface{}{
		"K3":  {45000, 45001, 45002, 45003, 45004, 45005, 45006, 45007},
		"K4":  {"Wed", "Thu", "Fri", "Sat", "Sun", "Mon", "Tue", "Wed"},
		"A9":  {"SUMI"},
		"K9":  {"POLO-1", "300pcs", "", "TEE-2"},
		"K10": {100, 90, 0, 80, 80, 85, 85, 85},
		"K11": {20, 18, 0, 16, 16, 17, 17, 17},
		"A12": {"AKASH"},
		"K12": {"JACKET-9", "", "", "", "", "SHIRT-4", "change needle"},
		"K13": {60, 60, 10, 60, 60, 70, "NaN", 70},
		"K14": {30, 30, 5, 30, 30, "Inf", 35, 35},
		"A15": {"RAJKUMAR"},
		"M15": {"DRESS-7"},
		"K16": {0, 0, 40, 45, 45, 45, 45, 45},
		"K17": {0, 0, 9, 9, 9, 9, 9, 9},
	})

	styles := NewPlanScanner(utcLayout(), nil).ScanSheet(wb.Sheets[0])
	require.Len(t, styles, 5)

	for _, st := range styles {
		require.NotNil(t, st.StartDate, st.ID)
		require.NotNil(t, st.EndDate, st.ID)
		assert.False(t, st.EndDate.Before(*st.StartDate), st.ID)

		target, manpower := 0, 0
		for i, p := range st.DailyPlans {
			if i > 0 {
				assert.True(t, p.Date.After(st.DailyPlans[i-1].Date), "%s: plans must be strictly ascending", st.ID)
			}
			assert.False(t, p.Date.Before(*st.StartDate), st.ID)
			assert.False(t, p.Date.After(*st.EndDate), st.ID)
			target += p.Target
			manpower += p.Manpower
		}
		assert.Equal(t, target, st.TotalTarget, st.ID)
		assert.Equal(t, manpower, st.TotalManpower, st.ID)
	}

	byName := make(map[string]*model.StyleEntry)
	for _, st := range styles {
		byName[st.StyleName] = st
	}
	// 款式名为行内最后一个单元格时仍读取到 Sheet 最右列
	assert.Len(t, byName["TEE-2"].DailyPlans, 5)
	assert.Equal(t, 415, byName["TEE-2"].TotalTarget)
	assert.Len(t, byName["DRESS-7"].DailyPlans, 6)
	assert.Equal(t, 265, byName["DRESS-7"].TotalTarget)
	// 非有限数值按 0 计
	assert.Equal(t, 140, byName["SHIRT-4"].TotalTarget)
	assert.Equal(t, 70, byName["SHIRT-4"].TotalManpower)
	assert.Equal(t, []string{"2023-03-21: change needle"}, byName["SHIRT-4"].Remarks)
}

func TestPlanScanner_UnitsAndSkippedRows(t *testing.T) {
	t.Parallel()

	wb := buildPlanWorkbook(t, "Plan", map[string][]interface{}{
		"K3":  {45000},
		"K4":  {"Sat"},
		"A9":  {"MAIN UNIT"},
		"K9":  {"STYLE-A"},
		"K10": {10},
		"A12": {"TTL QTY"},
		"K12": {"STYLE-IGNORED"},
		"A15": {"SUB UNIT"},
		"A18": {"RUMA"},
		"K18": {"STYLE-C"},
		"K19": {"oops"},
		"K20": {5.5},
	})

	styles := NewPlanScanner(utcLayout(), nil).ScanSheet(wb.Sheets[0])
	require.Len(t, styles, 2)

	assert.Equal(t, model.UnitMain, styles[0].Unit)
	assert.Equal(t, model.UnassignedSupervisor, styles[0].Supervisor)

	assert.Equal(t, "STYLE-C", styles[1].StyleName)
	assert.Equal(t, model.UnitSub, styles[1].Unit)
	assert.Equal(t, "RUMA", styles[1].Supervisor)
	assert.Equal(t, 0, styles[1].TotalTarget, "non-numeric target coerced to 0")
	assert.Equal(t, 6, styles[1].TotalManpower, "5.5 rounds half up")
}

func TestPlanScanner_HolidayWithoutValuesIsNotRecorded(t *testing.T) {
	t.Parallel()

	wb := buildPlanWorkbook(t, "Plan", map[string][]interface{}{
		"K3":  {45000, 45001, 45002},
		"K4":  {"Thu", "Fri", "Sat"},
		"K9":  {"STYLE-A"},
		"K10": {100, 0, 100},
		"K11": {20, 0, 20},
	})

	styles := NewPlanScanner(utcLayout(), nil).ScanSheet(wb.Sheets[0])
	require.Len(t, styles, 1)

	st := styles[0]
	assert.Len(t, st.DailyPlans, 2)
	assert.Empty(t, st.Anomalies)
	assert.Equal(t, "2023-03-17", st.EndDate.Format("2006-01-02"), "span still covers the holiday")
}

func TestPlanScanner_ShortSheets(t *testing.T) {
	t.Parallel()

	short := NewGrid("Short", [][]string{{"a"}, {"b"}})
	s := NewPlanScanner(utcLayout(), nil)

	_, err := s.ScanWorkbook(&Workbook{Sheets: []*Grid{short}})
	if !errors.Is(err, ErrInsufficientRows) {
		t.Fatalf("expected ErrInsufficientRows, got %v", err)
	}

	_, err = s.ScanWorkbook(&Workbook{})
	if !errors.Is(err, ErrNoSheets) {
		t.Fatalf("expected ErrNoSheets, got %v", err)
	}

	rows := make([][]string, 12)
	rows[2] = make([]string, 11)
	rows[2][10] = "45000"
	rows[8] = make([]string, 11)
	rows[8][10] = "STYLE-A"
	ok := NewGrid("Plan", rows)

	styles, err := s.ScanWorkbook(&Workbook{Sheets: []*Grid{short, ok}})
	require.NoError(t, err)
	require.Len(t, styles, 1)
	assert.Equal(t, "Plan", styles[0].SheetName)
}

func TestReadWorkbook_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ReadWorkbook(strings.NewReader("not a workbook"))
	if !errors.Is(err, ErrOpenWorkbook) {
		t.Fatalf("expected ErrOpenWorkbook, got %v", err)
	}
}
