package parser

import (
	"strings"

	"linechange/internal/model"
)

// 以下判定均为针对本厂排产表格式调校的启发式规则，而非语义保证。

var remarkKeywords = []string{"add", "between", "need to", "change"}

// remarkMinWords 超过该词数且不含连字符的文本视为备注
const remarkMinWords = 4

// quantityMaxDigits 纯数字数量的最大位数（不含）
const quantityMaxDigits = 6

// PlanCellClass 排产行单元格分类
type PlanCellClass int

const (
	PlanCellEmpty PlanCellClass = iota
	PlanCellRemark
	PlanCellQuantity
	PlanCellStyle
)

// IsRemark 是否为备注文本
func IsRemark(s string) bool {
	lower := strings.ToLower(s)
	if ContainsAny(lower, remarkKeywords) {
		return true
	}
	return len(strings.Split(lower, " ")) > remarkMinWords && !strings.Contains(lower, "-")
}

// IsQuantity 是否为数量（"300" / "300pcs"）
func IsQuantity(s string) bool {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "pcs") {
		return true
	}
	return digitsOnlyRe.MatchString(lower) && len(lower) < quantityMaxDigits
}

// ClassifyPlanCell 按 备注 -> 数量 -> 款式 的顺序判定
func ClassifyPlanCell(s string) PlanCellClass {
	switch {
	case s == "":
		return PlanCellEmpty
	case IsRemark(s):
		return PlanCellRemark
	case IsQuantity(s):
		return PlanCellQuantity
	default:
		return PlanCellStyle
	}
}

// lineContext A 列上下文判定结果
type lineContext struct {
	unit       model.UnitType
	unitHeader bool
	supervisor string
	skip       bool
}

// classifyLineContext 判定 A 列：单元标题 / 合计行 / 主管名称
func classifyLineContext(cell string) lineContext {
	lower := strings.ToLower(cell)
	ctx := lineContext{supervisor: model.UnassignedSupervisor}

	switch {
	case strings.Contains(lower, "main unit"):
		ctx.unit, ctx.unitHeader = model.UnitMain, true
	case strings.Contains(lower, "sub unit"):
		ctx.unit, ctx.unitHeader = model.UnitSub, true
	}

	if cell != "" && !ContainsAny(lower, []string{"unit", "ttl", "budget"}) {
		ctx.supervisor = cell
	}
	ctx.skip = strings.Contains(lower, "ttl qty")
	return ctx
}

// isHolidayLabel 周五为本地区休息日
func isHolidayLabel(day string) bool {
	return strings.Contains(strings.ToLower(day), "fri")
}
