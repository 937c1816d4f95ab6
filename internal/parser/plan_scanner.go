package parser

import (
	"fmt"

	"linechange/internal/model"
)

const remarkDateLayout = "2006-01-02"

// PlanScanner 排产表款式块扫描器
type PlanScanner struct {
	layout   PlanLayout
	resolver LineResolver
}

// NewPlanScanner 创建扫描器；resolver 为空时产线即主管名称
func NewPlanScanner(layout PlanLayout, resolver LineResolver) *PlanScanner {
	return &PlanScanner{layout: layout, resolver: resolver}
}

// Layout 当前布局
func (s *PlanScanner) Layout() PlanLayout {
	return s.layout
}

// Eligible Sheet 行数是否足以覆盖扫描窗口
func (s *PlanScanner) Eligible(g *Grid) bool {
	return g != nil && g.Len() >= s.layout.StyleStartRow
}

// ScanWorkbook 扫描所有 Sheet；行数不足的 Sheet 被跳过，全部不足时返回 ErrInsufficientRows
func (s *PlanScanner) ScanWorkbook(wb *Workbook) ([]*model.StyleEntry, error) {
	if wb == nil || len(wb.Sheets) == 0 {
		return nil, ErrNoSheets
	}

	var (
		all     []*model.StyleEntry
		scanned int
	)
	for _, g := range wb.Sheets {
		if !s.Eligible(g) {
			continue
		}
		scanned++
		all = append(all, s.ScanSheet(g)...)
	}
	if scanned == 0 {
		return nil, ErrInsufficientRows
	}
	return all, nil
}

// ScanSheet 按三行一组（款式/目标/人力）扫描单个 Sheet
func (s *PlanScanner) ScanSheet(g *Grid) []*model.StyleEntry {
	if !s.Eligible(g) {
		return nil
	}

	cal := ExtractCalendar(g, s.layout)
	width := g.Width()
	unit := model.UnitMain
	var out []*model.StyleEntry

	last := g.Len() - 1
	if s.layout.StyleEndRow < last {
		last = s.layout.StyleEndRow
	}
	stride := s.layout.RowStride
	if stride <= 0 {
		stride = 1
	}

	for r := s.layout.StyleStartRow; r <= last; r += stride {
		ctx := classifyLineContext(g.Text(r, s.layout.LineColumn))
		if ctx.unitHeader {
			unit = ctx.unit
		}
		if ctx.skip {
			continue
		}
		out = append(out, s.scanRow(g, r, width, cal, unit, ctx.supervisor)...)
	}
	return out
}

// scanRow 扫描单个款式行至 Sheet 最右列，返回该行出现的所有款式
func (s *PlanScanner) scanRow(g *Grid, r, width int, cal Calendar, unit model.UnitType, supervisor string) []*model.StyleEntry {
	line := supervisor
	if s.resolver != nil {
		line = s.resolver.Resolve(supervisor)
	}
	running := g.Text(r, s.layout.CurrentStyleColumn)

	var (
		out    []*model.StyleEntry
		active *model.StyleEntry
	)

	for c := s.layout.PlanStartColumn; c < width; c++ {
		text := g.Text(r, c)
		entry, hasDate := cal[c]

		class := ClassifyPlanCell(text)
		if class == PlanCellStyle {
			if active != nil {
				if hasDate {
					end := entry.Date
					active.EndDate = &end
				}
				out = append(out, active)
			}
			active = &model.StyleEntry{
				ID:                  fmt.Sprintf("%s-R%d-C%d", g.Name, r, c),
				StyleName:           text,
				SheetName:           g.Name,
				Unit:                unit,
				PhysicalLine:        line,
				Supervisor:          supervisor,
				CurrentRunningStyle: running,
				RowIndex:            r,
				ColIndex:            c,
				DailyPlans:          []model.DailyPlan{},
				Remarks:             []string{},
				Anomalies:           []model.Anomaly{},
			}
			if right := g.Text(r, c+1); right != "" && IsQuantity(right) {
				active.Quantity = right
			}
		}

		if active == nil {
			continue
		}

		if class == PlanCellRemark {
			when := "Unknown Date"
			if hasDate {
				when = entry.Date.Format(remarkDateLayout)
			}
			active.Remarks = append(active.Remarks, when+": "+text)
		}

		if !hasDate {
			continue
		}

		target := cellInt(g.Cell(r+1, c))
		manpower := cellInt(g.Cell(r+2, c))
		active.ExtendTo(entry.Date)

		if target != 0 || manpower != 0 || !entry.IsHoliday {
			active.AddDailyPlan(model.DailyPlan{
				Date:      entry.Date,
				DayLabel:  entry.DayLabel,
				IsHoliday: entry.IsHoliday,
				Target:    target,
				Manpower:  manpower,
			})
			if entry.IsHoliday && (target != 0 || manpower != 0) {
				active.Anomalies = append(active.Anomalies, model.Anomaly{
					Kind:     model.AnomalyHolidayProduction,
					Severity: model.SeverityMedium,
					Message:  fmt.Sprintf("Production planned on holiday (%s)", entry.DayLabel),
				})
			}
		}
	}

	if active != nil {
		out = append(out, active)
	}
	return out
}
