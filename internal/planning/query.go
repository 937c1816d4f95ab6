package planning

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"linechange/internal/model"
)

// GroupKey 分组维度
type GroupKey string

const (
	GroupByLine       GroupKey = "line"
	GroupBySupervisor GroupKey = "supervisor"
)

// ParseGroupKey 解析分组维度，空值按产线分组
func ParseGroupKey(s string) (GroupKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(GroupByLine):
		return GroupByLine, nil
	case string(GroupBySupervisor):
		return GroupBySupervisor, nil
	default:
		return "", fmt.Errorf("unknown group key %q", s)
	}
}

// Group 一个分组及其合计
type Group struct {
	Key         string              `json:"key"`
	Supervisor  string              `json:"supervisor"`
	Unit        model.UnitType      `json:"unit"`
	TotalTarget int                 `json:"totalTarget"`
	Styles      []*model.StyleEntry `json:"styles"`
}

// Filter 在款式名、产线、主管、在产款式中做不区分大小写的包含匹配；空查询返回全部
func Filter(styles []*model.StyleEntry, query string) []*model.StyleEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return styles
	}
	out := make([]*model.StyleEntry, 0, len(styles))
	for _, s := range styles {
		if containsFold(s.StyleName, q) ||
			containsFold(s.PhysicalLine, q) ||
			containsFold(s.Supervisor, q) ||
			containsFold(s.CurrentRunningStyle, q) {
			out = append(out, s)
		}
	}
	return out
}

func containsFold(s, lowerQuery string) bool {
	return s != "" && strings.Contains(strings.ToLower(s), lowerQuery)
}

// GroupBy 按产线或主管分组，分组键按自然顺序（S-2 < S-10）排列，组内保持输入顺序
func GroupBy(styles []*model.StyleEntry, key GroupKey) []Group {
	index := map[string]int{}
	var groups []Group

	for _, s := range styles {
		k := groupKeyOf(s, key)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k, Supervisor: s.Supervisor, Unit: s.Unit})
		}
		groups[i].Styles = append(groups[i].Styles, s)
		groups[i].TotalTarget += s.TotalTarget
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return NaturalLess(groups[i].Key, groups[j].Key)
	})
	return groups
}

func groupKeyOf(s *model.StyleEntry, key GroupKey) string {
	var k string
	if key == GroupBySupervisor {
		k = s.Supervisor
	} else {
		k = s.PhysicalLine
		if k == "" {
			k = s.Supervisor
		}
	}
	if k == "" {
		return model.UnassignedSupervisor
	}
	return k
}

// NaturalLess 不区分大小写的自然顺序比较：连续数字按数值比较
func NaturalLess(a, b string) bool {
	ra, rb := []rune(strings.ToLower(a)), []rune(strings.ToLower(b))
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		if unicode.IsDigit(ra[i]) && unicode.IsDigit(rb[j]) {
			si := i
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}
			sj := j
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}
			na := strings.TrimLeft(string(ra[si:i]), "0")
			nb := strings.TrimLeft(string(rb[sj:j]), "0")
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			if na != nb {
				return na < nb
			}
			continue
		}
		if ra[i] != rb[j] {
			return ra[i] < rb[j]
		}
		i++
		j++
	}
	return len(ra)-i < len(rb)-j
}
