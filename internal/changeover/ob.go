package changeover

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"linechange/internal/model"
	"linechange/internal/parser"
	"linechange/internal/sequence"
)

// OBParser OB 文件解析：OB 表 + 工序顺序表对齐 + 部位分组
type OBParser struct {
	layout  parser.OBLayout
	matcher *sequence.Matcher
}

// NewOBParser 创建 OB 解析器
func NewOBParser(layout parser.OBLayout, threshold float64) *OBParser {
	return &OBParser{layout: layout, matcher: sequence.NewMatcher(threshold)}
}

// Parse 从字节流解析 OB 文件
func (p *OBParser) Parse(r io.Reader, fileName string) (*model.ParsedOBData, error) {
	wb, err := parser.ReadWorkbook(r)
	if err != nil {
		return nil, fmt.Errorf("parse ob %s: %w", fileName, err)
	}
	return p.ParseWorkbook(wb, fileName), nil
}

// ParseWorkbook 解析已加载的工作簿；缺失的结构以默认值代替
func (p *OBParser) ParseWorkbook(wb *parser.Workbook, fileName string) *model.ParsedOBData {
	ob := parser.ExtractOB(parser.SelectOBSheet(wb), p.layout)
	seq := parser.ExtractSequence(parser.SelectSequenceSheet(wb), p.layout)
	merged := p.matcher.Reconcile(ob.Operations, seq)

	ops := make([]model.Operation, 0, len(ob.Operations))
	total := decimal.Zero
	for _, op := range ob.Operations {
		ops = append(ops, model.Operation{
			Name:        op.Name,
			SMV:         op.SMV,
			MachineType: op.MachineType,
			Quantity:    op.Quantity,
		})
		total = total.Add(decimal.NewFromFloat(op.SMV))
	}

	return &model.ParsedOBData{
		FileName:      fileName,
		StyleNumber:   ob.StyleNumber,
		TotalSMV:      total.Round(2).InexactFloat64(),
		Operations:    ops,
		MachineCounts: ob.MachineCounts,
		Manpower:      ob.Manpower,
		Sections:      sequence.GroupSections(merged),
	}
}
