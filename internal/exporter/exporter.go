package exporter

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"linechange/internal/changeover"
	"linechange/internal/model"
	"linechange/internal/planning"
)

// 导出 Sheet 名称
const (
	SheetSummary  = "Machine Summary"
	SheetCurrent  = "Current OB"
	SheetUpcoming = "Upcoming OB"
	SheetPlan     = "Plan"
	SheetDaily    = "Daily Goals"
)

const dateLayout = "2006-01-02"

// ChangeoverSource 按 id 读取已保存的换款记录
type ChangeoverSource interface {
	GetChangeover(ctx context.Context, id string) (*model.QCOData, error)
}

// Exporter 换款记录 / 排产表导出器
type Exporter struct {
	source ChangeoverSource
}

// NewExporter 创建导出器；source 为空时仅支持直接导出内存数据
func NewExporter(source ChangeoverSource) *Exporter {
	return &Exporter{source: source}
}

// ProgressEvent 导出进度事件（用于 UI 展示）
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
}

func reportProgress(progress func(ProgressEvent), percent int, stage string) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{Percent: max(0, min(100, percent)), Stage: stage})
}

// ExportChangeover 读取已保存的换款记录并导出
func (e *Exporter) ExportChangeover(ctx context.Context, id string, progress func(ProgressEvent)) (*excelize.File, error) {
	if e.source == nil {
		return nil, fmt.Errorf("changeover source not configured")
	}
	reportProgress(progress, 5, "读取换款记录")
	data, err := e.source.GetChangeover(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("读取换款记录失败: %w", err)
	}
	return e.ExportQCO(data, progress)
}

// ExportQCO 导出换款记录：机器差异汇总 + 当前款/下一款工序顺序
func (e *Exporter) ExportQCO(data *model.QCOData, progress func(ProgressEvent)) (*excelize.File, error) {
	if data == nil {
		return nil, fmt.Errorf("changeover data is nil")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		_ = f.Close()
		return nil, err
	}

	reportProgress(progress, 20, "写入机器差异")
	if err := writeMachineSummary(f, data); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("写入 %s 失败: %w", SheetSummary, err)
	}

	reportProgress(progress, 50, "写入当前款工序")
	if err := writeOperations(f, SheetCurrent, data.CurrentStyle); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("写入 %s 失败: %w", SheetCurrent, err)
	}

	reportProgress(progress, 80, "写入下一款工序")
	if err := writeOperations(f, SheetUpcoming, data.UpcomingStyle); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("写入 %s 失败: %w", SheetUpcoming, err)
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, "完成")
	return f, nil
}

// ExportPlan 导出款式排产清单与全厂每日目标
func (e *Exporter) ExportPlan(styles []*model.StyleEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetPlan); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writePlanSheet(f, styles); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("写入 %s 失败: %w", SheetPlan, err)
	}
	if err := writeDailyGoals(f, planning.Summarize(styles).DailyGoals); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("写入 %s 失败: %w", SheetDaily, err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeMachineSummary(f *excelize.File, data *model.QCOData) error {
	sheet := SheetSummary
	cur, next := styleOf(data.CurrentStyle), styleOf(data.UpcomingStyle)

	header := [][]interface{}{
		{"QCO No.", data.QCONumber},
		{"Line", data.LineNumber},
		{"Current Style", cur.StyleNumber, "SMV", cur.TotalSMV, "Manpower", cur.Manpower},
		{"Upcoming Style", next.StyleNumber, "SMV", next.TotalSMV, "Manpower", next.Manpower},
		{"Total Needed", data.TotalNeeded, "Total Surplus", data.TotalSurplus},
	}
	for i, row := range header {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}
	if !data.Timestamp.IsZero() {
		if err := setRow(f, sheet, len(header)+1, []interface{}{"Created", data.Timestamp.Format("2006-01-02 15:04")}); err != nil {
			return err
		}
	}

	const tableRow = 8
	if err := setRow(f, sheet, tableRow, []interface{}{"Machine Type", "Current", "Upcoming", "Diff", "Status"}); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A6", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", tableRow), fmt.Sprintf("E%d", tableRow), bold); err != nil {
		return err
	}

	statusStyles, err := newStatusStyles(f)
	if err != nil {
		return err
	}
	for i, m := range changeover.SortByPriority(data.MachineSummary) {
		row := tableRow + 1 + i
		if err := setRow(f, sheet, row, []interface{}{m.MachineType, m.CurrentQty, m.UpcomingQty, m.Diff, string(m.Status)}); err != nil {
			return err
		}
		if id, ok := statusStyles[m.Status]; ok {
			if err := f.SetCellStyle(sheet, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), id); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(sheet, "A", "A", 22)
}

// newStatusStyles NEED 红底，SURPLUS 绿底
func newStatusStyles(f *excelize.File) (map[model.MachineStatus]int, error) {
	fills := map[model.MachineStatus]string{
		model.MachineNeed:    "#FFC7CE",
		model.MachineSurplus: "#C6EFCE",
	}
	out := make(map[model.MachineStatus]int, len(fills))
	for status, color := range fills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Font: &excelize.Font{Bold: true},
		})
		if err != nil {
			return nil, err
		}
		out[status] = id
	}
	return out, nil
}

func writeOperations(f *excelize.File, sheet string, d *model.ParsedOBData) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	d = styleOf(d)

	if err := setRow(f, sheet, 1, []interface{}{"Style", d.StyleNumber, "File", d.FileName}); err != nil {
		return err
	}
	if err := setRow(f, sheet, 2, []interface{}{"#", "Section", "Operation", "SMV", "Machine", "Qty", "Source", "Ref"}); err != nil {
		return err
	}

	row, seq := 3, 1
	for _, sec := range d.Sections {
		for _, op := range sec.Operations {
			if err := setRow(f, sheet, row, []interface{}{
				seq, sec.SectionName, op.Name, roundHalfUp(op.SMV, 2), op.MachineType, op.Quantity, string(op.Source), op.BiMachineRef,
			}); err != nil {
				return err
			}
			row++
			seq++
		}
	}
	if err := setRow(f, sheet, row, []interface{}{"", "", "Total", roundHalfUp(d.TotalSMV, 2), "", d.Manpower}); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "C", "C", 40)
}

func writePlanSheet(f *excelize.File, styles []*model.StyleEntry) error {
	sheet := SheetPlan
	if err := setRow(f, sheet, 1, []interface{}{
		"Line", "Supervisor", "Unit", "Style", "Running Style", "Quantity",
		"Start", "End", "Target", "Manpower", "Remarks", "Anomalies",
	}); err != nil {
		return err
	}
	for i, s := range styles {
		if err := setRow(f, sheet, i+2, []interface{}{
			s.PhysicalLine, s.Supervisor, string(s.Unit), s.StyleName, s.CurrentRunningStyle, s.Quantity,
			formatDate(s.StartDate), formatDate(s.EndDate), s.TotalTarget, s.TotalManpower,
			strings.Join(s.Remarks, "; "), len(s.Anomalies),
		}); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "D", "E", 18)
}

func writeDailyGoals(f *excelize.File, goals []planning.DailyGoal) error {
	if _, err := f.NewSheet(SheetDaily); err != nil {
		return err
	}
	if err := setRow(f, SheetDaily, 1, []interface{}{"Date", "Target", "Manpower"}); err != nil {
		return err
	}
	for i, g := range goals {
		if err := setRow(f, SheetDaily, i+2, []interface{}{g.Date.Format(dateLayout), g.Target, g.Manpower}); err != nil {
			return err
		}
	}
	return nil
}

// ---------- 通用工具函数 ----------

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleOf(d *model.ParsedOBData) *model.ParsedOBData {
	if d == nil {
		return &model.ParsedOBData{StyleNumber: "Unknown"}
	}
	return d
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func roundHalfUp(v float64, digits int) float64 {
	if digits < 0 {
		return v
	}
	scale := math.Pow10(digits)
	x := v * scale
	if x >= 0 {
		return math.Floor(x+0.5) / scale
	}
	return -math.Floor(-x+0.5) / scale
}
