package parser

import (
	"math"
	"time"

	"linechange/internal/model"
)

// excelUnixEpochSerial 1970-01-01 对应的 Excel 序列号（含 1900 闰年偏差）
const excelUnixEpochSerial = 25569

const secondsPerDay = 86400

// ExcelSerialToDate Excel 序列号转本地零点日期；0 或非法值返回 false
func ExcelSerialToDate(serial float64, loc *time.Location) (time.Time, bool) {
	if serial == 0 || math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	days := int64(math.Floor(serial - excelUnixEpochSerial))
	utc := time.Unix(days*secondsPerDay, 0).UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, loc), true
}

// cellDate 单元格转日期：原生日期或序列号
func cellDate(c Cell, loc *time.Location) (time.Time, bool) {
	switch c.Kind {
	case CellDate:
		y, m, d := c.Time.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), true
	case CellNumber:
		return ExcelSerialToDate(c.Number, loc)
	default:
		return time.Time{}, false
	}
}

// ExtractCalendar 读取日期行与星期行，构建列 -> 日历映射；无法解析的列直接跳过
func ExtractCalendar(g *Grid, layout PlanLayout) Calendar {
	cal := make(Calendar)
	loc := layout.location()

	for c := layout.PlanStartColumn; c < g.RowLen(layout.DateRow); c++ {
		date, ok := cellDate(g.Cell(layout.DateRow, c), loc)
		if !ok {
			continue
		}
		day := g.Text(layout.DayRow, c)
		cal[c] = model.CalendarEntry{
			Date:      date,
			DayLabel:  day,
			IsHoliday: isHolidayLabel(day),
		}
	}
	return cal
}
