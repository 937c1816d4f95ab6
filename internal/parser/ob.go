package parser

import (
	"fmt"
	"strings"

	"linechange/internal/model"
)

const (
	unknownStyle        = "Unknown"
	unclassifiedSection = "UNCLASSIFIED"
)

// SelectOBSheet 名称含 "OB" 或 "MAIN" 的第一个 Sheet，否则第一个 Sheet
func SelectOBSheet(wb *Workbook) *Grid {
	if wb == nil || len(wb.Sheets) == 0 {
		return nil
	}
	if g := wb.FindSheet(func(name string) bool {
		upper := strings.ToUpper(name)
		return strings.Contains(upper, "OB") || strings.Contains(upper, "MAIN")
	}); g != nil {
		return g
	}
	return wb.Sheets[0]
}

// SelectSequenceSheet 名称含 "BI" 或 "HOURLY" 的第一个 Sheet；不存在返回 nil
func SelectSequenceSheet(wb *Workbook) *Grid {
	if wb == nil {
		return nil
	}
	return wb.FindSheet(func(name string) bool {
		upper := strings.ToUpper(name)
		return strings.Contains(upper, "BI") || strings.Contains(upper, "HOURLY")
	})
}

// ExtractOB 解析 OB 表：款号、工序列表、机器数量与人力
func ExtractOB(g *Grid, layout OBLayout) *OBSheet {
	out := &OBSheet{
		StyleNumber:   unknownStyle,
		HeaderRow:     -1,
		Operations:    []model.MergedOperation{},
		MachineCounts: map[string]int{},
	}
	if g == nil {
		return out
	}
	out.SheetName = g.Name
	out.StyleNumber = findStyleNumber(g, layout.HeaderScanRows)
	out.HeaderRow = findOBHeader(g, layout.HeaderScanRows)
	if out.HeaderRow < 0 {
		return out
	}

	terminators := make([]string, len(layout.TerminationKeywords))
	for i, k := range layout.TerminationKeywords {
		terminators[i] = NormalizeText(k)
	}

	var (
		manpower float64
		machines = map[string]float64{}
		section  = unclassifiedSection
	)

	for r := out.HeaderRow + 1; r < g.Len(); r++ {
		if g.RowIsEmpty(r) {
			continue
		}
		cellA := g.Text(r, layout.SectionColumn)
		cellB := g.Text(r, layout.NameColumn)

		if isTermination(cellA, terminators) {
			break
		}

		if cellA != "" && !IsNumericLike(cellA) {
			section = strings.ToUpper(cellA)
			if cellB == "" {
				continue
			}
		}
		if cellB == "" {
			continue
		}

		machine := g.Text(r, layout.MachineColumn)
		if machine == "" {
			machine = model.ManualMachine
		}
		qty := cellFloat(g.Cell(r, layout.QtyColumn))

		out.Operations = append(out.Operations, model.MergedOperation{
			ID:            fmt.Sprintf("OB-%d", r),
			Section:       section,
			Name:          cellB,
			SMV:           cellFloat(g.Cell(r, layout.SMVColumn)),
			MachineType:   machine,
			Quantity:      qty,
			SequenceIndex: r,
			Source:        model.SourceOB,
		})

		manpower += qty
		if !strings.EqualFold(machine, model.ManualMachine) {
			machines[machine] += qty
		}
	}

	out.Manpower = roundHalfUp(manpower)
	for k, v := range machines {
		out.MachineCounts[k] = roundHalfUp(v)
	}
	return out
}

// ExtractSequence 解析工序顺序表；g 为空时返回空序列
func ExtractSequence(g *Grid, layout OBLayout) []model.SequenceEntry {
	out := []model.SequenceEntry{}
	if g == nil {
		return out
	}

	start := 0
	for r := 0; r < g.Len() && r < layout.HeaderScanRows; r++ {
		if strings.Contains(strings.ToUpper(g.Text(r, layout.SeqNameColumn)), "OPERATION") {
			start = r + 1
			break
		}
	}

	for r := start; r < g.Len(); r++ {
		name := g.Text(r, layout.SeqNameColumn)
		if len([]rune(name)) < 2 || strings.Contains(strings.ToUpper(name), "OPERATION") {
			continue
		}
		out = append(out, model.SequenceEntry{
			Name:        name,
			Ref:         g.Text(r, layout.SeqRefColumn),
			OriginalIdx: r,
		})
	}
	return out
}

// findStyleNumber 前 N 行中第一个 "STYLE" 单元格右侧的非空值
func findStyleNumber(g *Grid, scanRows int) string {
	for r := 0; r < g.Len() && r < scanRows; r++ {
		for c := 0; c < g.RowLen(r); c++ {
			if !strings.Contains(strings.ToUpper(g.Text(r, c)), "STYLE") {
				continue
			}
			if v := g.Text(r, c+1); v != "" {
				return v
			}
			break
		}
	}
	return unknownStyle
}

// findOBHeader 前 N 行中优先匹配 "OPERATION"，其次 "SMV"；未找到返回 -1
func findOBHeader(g *Grid, scanRows int) int {
	for _, kw := range []string{"OPERATION", "SMV"} {
		for r := 0; r < g.Len() && r < scanRows; r++ {
			for c := 0; c < g.RowLen(r); c++ {
				if strings.Contains(strings.ToUpper(g.Text(r, c)), kw) {
					return r
				}
			}
		}
	}
	return -1
}

func isTermination(cell string, normalized []string) bool {
	if cell == "" {
		return false
	}
	n := NormalizeText(cell)
	for _, k := range normalized {
		if n == k {
			return true
		}
	}
	return false
}
