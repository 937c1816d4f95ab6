package model

import "time"

// UnitType 生产单元（主厂 / 分厂）
type UnitType string

const (
	UnitMain UnitType = "Main Unit"
	UnitSub  UnitType = "Sub Unit"
)

// UnassignedSupervisor 未识别到主管时的占位名称
const UnassignedSupervisor = "Unassigned"

// AnomalyKind 异常类型
type AnomalyKind string

const (
	AnomalyHolidayProduction AnomalyKind = "holiday_production" // 节假日排产
	AnomalyOverlap           AnomalyKind = "overlap"
	AnomalyGap               AnomalyKind = "gap"
	AnomalyRegression        AnomalyKind = "regression"
	AnomalyPhantom           AnomalyKind = "phantom"
	AnomalyMissingDate       AnomalyKind = "missing_date"
	AnomalyTargetMismatch    AnomalyKind = "target_mismatch"
)

// Severity 异常级别
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// CalendarEntry 日历列（日期行 + 星期行）
type CalendarEntry struct {
	Date      time.Time `json:"date"`
	DayLabel  string    `json:"dayLabel"`
	IsHoliday bool      `json:"isHoliday"`
}

// DailyPlan 单日计划
type DailyPlan struct {
	Date      time.Time `json:"date"`
	DayLabel  string    `json:"dayLabel"`
	IsHoliday bool      `json:"isHoliday"`
	Target    int       `json:"target"`
	Manpower  int       `json:"manpower"`
}

// Anomaly 扫描时发现的异常
type Anomaly struct {
	Kind     AnomalyKind `json:"type"`
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`
}

// StyleEntry 某条产线上某个款式的一段连续排产
type StyleEntry struct {
	ID        string `json:"id"`
	StyleName string `json:"styleName"`

	SheetName           string   `json:"sheetName"`
	Unit                UnitType `json:"unit"`
	PhysicalLine        string   `json:"physicalLine"`
	Supervisor          string   `json:"supervisor"`
	CurrentRunningStyle string   `json:"currentRunningStyle"`

	// Quantity 保留单元格原文（如 "200pcs"），不做归一化
	Quantity      string `json:"quantity"`
	TotalTarget   int    `json:"totalTarget"`
	TotalManpower int    `json:"totalManpower"`

	StartDate  *time.Time  `json:"startDate,omitempty"`
	EndDate    *time.Time  `json:"endDate,omitempty"`
	DailyPlans []DailyPlan `json:"dailyPlans"`

	RowIndex  int       `json:"rowIndex"`
	ColIndex  int       `json:"colIndex"`
	Remarks   []string  `json:"remarks"`
	Anomalies []Anomaly `json:"anomalies"`
}

// AddDailyPlan 追加单日计划并累计合计值
func (s *StyleEntry) AddDailyPlan(p DailyPlan) {
	s.DailyPlans = append(s.DailyPlans, p)
	s.TotalTarget += p.Target
	s.TotalManpower += p.Manpower
}

// ExtendTo 将日期范围延伸到 d
func (s *StyleEntry) ExtendTo(d time.Time) {
	if s.StartDate == nil {
		start := d
		s.StartDate = &start
	}
	end := d
	s.EndDate = &end
}

// AverageManpower 单日平均人力（无计划日时为 0）
func (s *StyleEntry) AverageManpower() float64 {
	if len(s.DailyPlans) == 0 {
		return 0
	}
	return float64(s.TotalManpower) / float64(len(s.DailyPlans))
}
