package sequence

import "linechange/internal/model"

// GroupSections 按部位变化切分连续分组；同名部位不相邻时形成多个分组
func GroupSections(ops []model.MergedOperation) []model.SectionGroup {
	groups := []model.SectionGroup{}
	for i, op := range ops {
		if i == 0 || op.Section != ops[i-1].Section {
			groups = append(groups, model.SectionGroup{SectionName: op.Section})
		}
		last := &groups[len(groups)-1]
		last.Operations = append(last.Operations, op)
	}
	return groups
}
