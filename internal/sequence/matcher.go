package sequence

import (
	"linechange/internal/model"
)

// DefaultThreshold 默认匹配阈值
const DefaultThreshold = 0.45

// orphanIndexBase 未匹配 OB 工序的顺序号起点，排在所有已对齐工序之后
const orphanIndexBase = 9999

// Matcher 顺序对齐器
type Matcher struct {
	threshold float64
}

// NewMatcher 创建对齐器；threshold <= 0 时使用默认阈值
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold 当前阈值
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Reconcile 按顺序表重排 OB 工序。
// 每个顺序条目取得分最高且未被占用的 OB 工序（同分取先出现者），
// 达到阈值则占用；未出现在顺序表中的 OB 工序按原顺序追加到末尾。
func (m *Matcher) Reconcile(ops []model.MergedOperation, seq []model.SequenceEntry) []model.MergedOperation {
	out := make([]model.MergedOperation, 0, len(ops))

	// 候选池：按 OB 顺序保存，已占用的以 consumed 标记
	consumed := make(map[string]bool, len(ops))

	for idx, entry := range seq {
		best, bestScore := -1, 0.0
		for i := range ops {
			if consumed[ops[i].ID] {
				continue
			}
			if score := Similarity(entry.Name, ops[i].Name); score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 || bestScore < m.threshold {
			continue
		}

		consumed[ops[best].ID] = true
		op := ops[best]
		op.BiMachineRef = entry.Ref
		op.SequenceIndex = idx
		op.Source = model.SourceMerged
		out = append(out, op)
	}

	orphan := 0
	for _, op := range ops {
		if consumed[op.ID] {
			continue
		}
		op.SequenceIndex = orphanIndexBase + orphan
		op.Source = model.SourceOB
		out = append(out, op)
		orphan++
	}
	return out
}
