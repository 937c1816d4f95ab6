// Package changeover 计算两个款式之间的换款（QCO）机器差异。
package changeover

import (
	"sort"

	"linechange/internal/model"
)

// CompareMachines 逐机器类型比较当前款与下一款的机器数量，结果按机器类型升序
func CompareMachines(current, upcoming map[string]int) model.MachineSummary {
	types := make(map[string]struct{}, len(current)+len(upcoming))
	for k := range current {
		types[k] = struct{}{}
	}
	for k := range upcoming {
		types[k] = struct{}{}
	}

	summary := model.MachineSummary{Comparisons: make([]model.MachineComparison, 0, len(types))}
	for machine := range types {
		cur, next := current[machine], upcoming[machine]
		diff := next - cur

		status := model.MachineOK
		switch {
		case diff > 0:
			status = model.MachineNeed
			summary.TotalNeeded += diff
		case diff < 0:
			status = model.MachineSurplus
			summary.TotalSurplus += -diff
		}

		summary.Comparisons = append(summary.Comparisons, model.MachineComparison{
			MachineType: machine,
			CurrentQty:  cur,
			UpcomingQty: next,
			Diff:        diff,
			Status:      status,
		})
	}

	sort.Slice(summary.Comparisons, func(i, j int) bool {
		return summary.Comparisons[i].MachineType < summary.Comparisons[j].MachineType
	})
	return summary
}

var statusRank = map[model.MachineStatus]int{
	model.MachineNeed:    0,
	model.MachineSurplus: 1,
	model.MachineOK:      2,
}

// SortByPriority 展示顺序：NEED -> SURPLUS -> OK，同状态保持原顺序
func SortByPriority(rows []model.MachineComparison) []model.MachineComparison {
	out := make([]model.MachineComparison, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return statusRank[out[i].Status] < statusRank[out[j].Status]
	})
	return out
}
