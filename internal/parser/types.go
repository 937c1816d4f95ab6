package parser

import (
	"time"

	"linechange/internal/model"
)

// PlanLayout 排产表的固定行列位置（0 起始）
type PlanLayout struct {
	DateRow            int // 日期行
	DayRow             int // 星期行
	StyleStartRow      int // 第一个款式行
	StyleEndRow        int // 最后一个可扫描的款式行
	RowStride          int // 款式/目标/人力 三行一组
	LineColumn         int // A 列：单元标题 / 主管
	CurrentStyleColumn int // B 列：当前在产款式
	PlanStartColumn    int // K 列：排产网格起始列
	Location           *time.Location
}

// DefaultPlanLayout 默认排产表布局
func DefaultPlanLayout() PlanLayout {
	return PlanLayout{
		DateRow:            2,
		DayRow:             3,
		StyleStartRow:      8,
		StyleEndRow:        114,
		RowStride:          3,
		LineColumn:         0,
		CurrentStyleColumn: 1,
		PlanStartColumn:    10,
		Location:           time.Local,
	}
}

func (l PlanLayout) location() *time.Location {
	if l.Location == nil {
		return time.Local
	}
	return l.Location
}

// OBLayout OB 表与工序顺序表的列位置
type OBLayout struct {
	SectionColumn int // A 列：部位
	NameColumn    int // B 列：工序名称
	SMVColumn     int // C 列：SMV
	MachineColumn int // G 列：机器类型
	QtyColumn     int // J 列：数量

	SeqNameColumn int // 顺序表 B 列：工序名称
	SeqRefColumn  int // 顺序表 E 列：机位编号

	HeaderScanRows      int
	TerminationKeywords []string
}

// DefaultOBLayout 默认 OB 布局
func DefaultOBLayout() OBLayout {
	return OBLayout{
		SectionColumn:       0,
		NameColumn:          1,
		SMVColumn:           2,
		MachineColumn:       6,
		QtyColumn:           9,
		SeqNameColumn:       1,
		SeqRefColumn:        4,
		HeaderScanRows:      20,
		TerminationKeywords: []string{"EOL-TB", "END OF LINE", "END OF LINE-TB", "EOLTB"},
	}
}

// LineResolver 主管名称 -> 物理产线
type LineResolver interface {
	Resolve(supervisor string) string
}

// Calendar 列索引 -> 日历
type Calendar map[int]model.CalendarEntry

// OBSheet OB 表解析结果（尚未与顺序表对齐）
type OBSheet struct {
	SheetName     string
	StyleNumber   string
	HeaderRow     int
	Operations    []model.MergedOperation
	MachineCounts map[string]int
	Manpower      int
}
