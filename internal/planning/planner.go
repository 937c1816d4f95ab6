package planning

import (
	"fmt"
	"io"

	"linechange/internal/model"
	"linechange/internal/parser"
)

// Planner 排产表解析管线：读取 -> 扫描 -> 款式衔接
type Planner struct {
	scanner *parser.PlanScanner
}

// NewPlanner 创建解析管线
func NewPlanner(layout parser.PlanLayout, resolver parser.LineResolver) *Planner {
	return &Planner{scanner: parser.NewPlanScanner(layout, resolver)}
}

// Scanner 底层扫描器
func (p *Planner) Scanner() *parser.PlanScanner {
	return p.scanner
}

// Parse 从字节流解析排产表
func (p *Planner) Parse(r io.Reader) ([]*model.StyleEntry, error) {
	wb, err := parser.ReadWorkbook(r)
	if err != nil {
		return nil, err
	}
	return p.ParseWorkbook(wb)
}

// ParseWorkbook 解析已加载的工作簿
func (p *Planner) ParseWorkbook(wb *parser.Workbook) ([]*model.StyleEntry, error) {
	styles, err := p.scanner.ScanWorkbook(wb)
	if err != nil {
		return nil, fmt.Errorf("scan plan workbook: %w", err)
	}
	return LinkProgression(styles), nil
}
