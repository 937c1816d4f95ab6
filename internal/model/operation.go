package model

import "time"

// OperationSource 工序来源
type OperationSource string

const (
	SourceOB       OperationSource = "OB"
	SourceBiHourly OperationSource = "BiHourly"
	SourceMerged   OperationSource = "Merged"
)

// ManualMachine 手工工序的机器类型，不计入机器需求
const ManualMachine = "MANUAL"

// Operation OB 平铺工序（用于统计）
type Operation struct {
	Name        string  `json:"name"`
	SMV         float64 `json:"smv"`
	MachineType string  `json:"machineType"`
	Quantity    float64 `json:"quantity"`
}

// MergedOperation OB 与工序顺序表对齐后的工序
type MergedOperation struct {
	ID            string          `json:"id"`
	Section       string          `json:"section"`
	Name          string          `json:"name"`
	SMV           float64         `json:"smv"`
	MachineType   string          `json:"machineType"`
	Quantity      float64         `json:"quantity"`
	BiMachineRef  string          `json:"biMachineRef,omitempty"`
	SequenceIndex int             `json:"sequenceIndex"`
	Source        OperationSource `json:"source"`
}

// SequenceEntry 工序顺序表（bi-hourly）中的一行
type SequenceEntry struct {
	Name        string `json:"name"`
	Ref         string `json:"ref"`
	OriginalIdx int    `json:"originalIdx"`
}

// SectionGroup 按部位连续分组的工序
type SectionGroup struct {
	SectionName string            `json:"sectionName"`
	Operations  []MergedOperation `json:"operations"`
}

// ParsedOBData 单个款式的 OB 解析结果
type ParsedOBData struct {
	FileName      string         `json:"filename"`
	StyleNumber   string         `json:"styleNumber"`
	TotalSMV      float64        `json:"totalSMV"`
	Operations    []Operation    `json:"operations"`
	MachineCounts map[string]int `json:"machineCounts"`
	Manpower      int            `json:"manpower"`
	Sections      []SectionGroup `json:"sections"`
}

// MachineStatus 机器差异状态
type MachineStatus string

const (
	MachineNeed    MachineStatus = "NEED"
	MachineSurplus MachineStatus = "SURPLUS"
	MachineOK      MachineStatus = "OK"
)

// MachineComparison 单个机器类型的换款差异
type MachineComparison struct {
	MachineType string        `json:"machineType"`
	CurrentQty  int           `json:"currentQty"`
	UpcomingQty int           `json:"upcomingQty"`
	Diff        int           `json:"diff"`
	Status      MachineStatus `json:"status"`
}

// MachineSummary 机器差异汇总
type MachineSummary struct {
	Comparisons  []MachineComparison `json:"comparisons"`
	TotalNeeded  int                 `json:"totalNeeded"`
	TotalSurplus int                 `json:"totalSurplus"`
}

// QCOData 快速换款记录
type QCOData struct {
	QCONumber      string              `json:"qcoNumber"`
	LineNumber     string              `json:"lineNumber"`
	CurrentStyle   *ParsedOBData       `json:"currentStyle"`
	UpcomingStyle  *ParsedOBData       `json:"upcomingStyle"`
	MachineSummary []MachineComparison `json:"machineSummary"`
	TotalNeeded    int                 `json:"totalNeeded"`
	TotalSurplus   int                 `json:"totalSurplus"`
	Timestamp      time.Time           `json:"timestamp"`
}

// SaveResult 持久化结果
type SaveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}
