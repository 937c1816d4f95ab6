// Package planning 对扫描出的款式排产做后处理、检索与汇总。
package planning

import (
	"sort"

	"linechange/internal/model"
)

// LinkProgression 按 产线、开始日期（无日期在前）稳定排序，
// 并将同一产线上后一个款式的在产款式设为前一个款式名称。重复调用结果不变。
func LinkProgression(styles []*model.StyleEntry) []*model.StyleEntry {
	sort.SliceStable(styles, func(i, j int) bool {
		a, b := styles[i], styles[j]
		if a.PhysicalLine != b.PhysicalLine {
			return a.PhysicalLine < b.PhysicalLine
		}
		switch {
		case a.StartDate == nil:
			return b.StartDate != nil
		case b.StartDate == nil:
			return false
		default:
			return a.StartDate.Before(*b.StartDate)
		}
	})

	for i := 1; i < len(styles); i++ {
		if styles[i].PhysicalLine == styles[i-1].PhysicalLine {
			styles[i].CurrentRunningStyle = styles[i-1].StyleName
		}
	}
	return styles
}
