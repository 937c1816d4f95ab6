package model

import "time"

// ImportReport 排产表导入报告
type ImportReport struct {
	ImportID      string        `json:"importId"`
	Filename      string        `json:"filename"`
	TotalSheets   int           `json:"totalSheets"`
	ScannedSheets int           `json:"scannedSheets"`
	SkippedSheets int           `json:"skippedSheets"`
	StyleCount    int           `json:"styleCount"`
	Duration      time.Duration `json:"duration"`
	Sheets        []SheetResult `json:"sheets"`
}

// SheetResult 单个 Sheet 的扫描结果
type SheetResult struct {
	SheetName  string `json:"sheetName"`
	Status     string `json:"status"` // scanned/skipped
	RowCount   int    `json:"rowCount"`
	StyleCount int    `json:"styleCount"`
	Reason     string `json:"reason,omitempty"`
}
