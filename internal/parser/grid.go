package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrNoSheets 工作簿没有任何 Sheet
	ErrNoSheets = errors.New("workbook has no sheets")
	// ErrInsufficientRows 没有任何 Sheet 达到扫描窗口所需的行数
	ErrInsufficientRows = errors.New("no sheet has enough rows for the scan window")
	// ErrOpenWorkbook 字节流不是可读取的 xlsx
	ErrOpenWorkbook = errors.New("failed to open excel")
)

// CellKind 单元格值类型
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell 归一化后的单元格
type Cell struct {
	Kind   CellKind
	Text   string // 去除首尾空白后的原文
	Number float64
	Time   time.Time
}

// IsEmpty 是否为空单元格
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// Grid 单个 Sheet 的行列矩阵（行可能长短不一）
type Grid struct {
	Name string
	Rows [][]Cell
}

// Workbook 按 Sheet 顺序排列的矩阵集合
type Workbook struct {
	Sheets []*Grid
}

// nativeDateLayouts 读取 t="d" 日期单元格时可能出现的文本格式
var nativeDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NewCell 将原始单元格文本解析为带类型的单元格
func NewCell(raw string) Cell {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Cell{Kind: CellEmpty}
	}
	// ParseFloat 接受 "NaN"/"Inf"，这类文本按普通文本处理
	if f, err := strconv.ParseFloat(text, 64); err == nil && isFinite(f) {
		return Cell{Kind: CellNumber, Text: text, Number: f}
	}
	for _, layout := range nativeDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return Cell{Kind: CellDate, Text: text, Time: t}
		}
	}
	return Cell{Kind: CellText, Text: text}
}

// NewGrid 由字符串矩阵构建 Grid
func NewGrid(name string, rows [][]string) *Grid {
	g := &Grid{Name: name, Rows: make([][]Cell, len(rows))}
	for r, row := range rows {
		cells := make([]Cell, len(row))
		for c, raw := range row {
			cells[c] = NewCell(raw)
		}
		g.Rows[r] = cells
	}
	return g
}

// Len 行数
func (g *Grid) Len() int {
	return len(g.Rows)
}

// RowLen 指定行的列数；越界返回 0
func (g *Grid) RowLen(r int) int {
	if r < 0 || r >= len(g.Rows) {
		return 0
	}
	return len(g.Rows[r])
}

// Width 最长行的列数；GetRows 会截掉行尾空单元格，按列扫描时以此为界
func (g *Grid) Width() int {
	w := 0
	for _, row := range g.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Cell 安全读取单元格；越界返回空单元格
func (g *Grid) Cell(r, c int) Cell {
	if r < 0 || r >= len(g.Rows) || c < 0 || c >= len(g.Rows[r]) {
		return Cell{}
	}
	return g.Rows[r][c]
}

// Text 读取单元格文本
func (g *Grid) Text(r, c int) string {
	return g.Cell(r, c).Text
}

// RowIsEmpty 整行是否没有任何内容
func (g *Grid) RowIsEmpty(r int) bool {
	for c := 0; c < g.RowLen(r); c++ {
		if !g.Rows[r][c].IsEmpty() {
			return false
		}
	}
	return true
}

// ReadWorkbook 从字节流读取工作簿
func ReadWorkbook(reader io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenWorkbook, err)
	}
	defer f.Close()

	return LoadWorkbook(f)
}

// LoadWorkbook 将 excelize 工作簿转换为矩阵集合（读取原始值，日期列保持序列号）
func LoadWorkbook(f *excelize.File) (*Workbook, error) {
	if f == nil {
		return nil, errors.New("workbook is nil")
	}

	names := f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}

	wb := &Workbook{Sheets: make([]*Grid, 0, len(names))}
	for _, name := range names {
		g, err := LoadGrid(f, name)
		if err != nil {
			return nil, err
		}
		wb.Sheets = append(wb.Sheets, g)
	}
	return wb, nil
}

// LoadGrid 读取单个 Sheet
func LoadGrid(f *excelize.File, sheet string) (*Grid, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return NewGrid(sheet, rows), nil
}

// Sheet 按名称查找 Sheet
func (w *Workbook) Sheet(name string) *Grid {
	for _, g := range w.Sheets {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// FindSheet 返回第一个名称满足条件的 Sheet
func (w *Workbook) FindSheet(match func(name string) bool) *Grid {
	for _, g := range w.Sheets {
		if match(g.Name) {
			return g
		}
	}
	return nil
}
