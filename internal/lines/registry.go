// Package lines 维护产线编号与主管名称的对应关系。
package lines

import (
	"strings"

	"linechange/internal/model"
)

// Line 一条物理产线
type Line struct {
	Code       string `toml:"code" json:"code"`
	Supervisor string `toml:"supervisor" json:"supervisor"`
}

// defaultLines 工厂默认产线表（顺序即模糊匹配优先级）
var defaultLines = []Line{
	{"S-01", "WASANA-1"},
	{"S-01A", "WASANA-2"},
	{"S-02", "SOHRAB"},
	{"S-03", "SOHEL"},
	{"S-04", "AHMAD"},
	{"S-05", "OMAR FARUK"},
	{"S-06", "SUMI"},
	{"S-07", "NAGENDRA"},
	{"S-07A", "KAMAL-2"},
	{"S-08", "BALISTER"},
	{"S-09", "MONJURUL"},
	{"S-10", "RAJKUMAR"},
	{"S-11", "KAMAL-1"},
	{"S-12", "DARMENDRA"},
	{"S-13", "SUMON"},
	{"S-14", "SHARIF"},
	{"S-15", "MUNSEF"},
	{"S-16", "RAHAMAN"},
	{"S-17", "MASUM"},
	{"S-18", "DIANA"},
	{"S-19", "ALAMGIR"},
	{"S-20", "KAZAL"},
	{"S-21", "DEVRAJ"},
	{"S-22", "ASHRAFUL"},
	{"S-23", "RUMA"},
	{"S-24", "NASIR"},
	{"S-25", "AKBAR"},
	{"S-26", "HIMAYAT"},
	{"S-28", "ROOP NARAYAN"},
	{"S-29", "SUBA"},
	{"S-30", "RAJIB"},
	{"S-31", "AKASH"},
	{"S-32", "KALU CHARAN"},
}

// DefaultLines 返回默认产线表副本
func DefaultLines() []Line {
	out := make([]Line, len(defaultLines))
	copy(out, defaultLines)
	return out
}

// Registry 有序产线表，构建后只读
type Registry struct {
	lines []Line
	// keys 大写主管名称，与 lines 同序
	keys []string
	// exact 大写主管名称 -> 第一个出现的产线编号
	exact map[string]string
}

// NewRegistry 由产线表构建；空表时使用默认产线表
func NewRegistry(lines []Line) *Registry {
	if len(lines) == 0 {
		lines = defaultLines
	}
	r := &Registry{
		lines: make([]Line, 0, len(lines)),
		keys:  make([]string, 0, len(lines)),
		exact: make(map[string]string, len(lines)),
	}
	for _, l := range lines {
		key := strings.ToUpper(strings.TrimSpace(l.Supervisor))
		if key == "" || l.Code == "" {
			continue
		}
		r.lines = append(r.lines, l)
		r.keys = append(r.keys, key)
		if _, ok := r.exact[key]; !ok {
			r.exact[key] = l.Code
		}
	}
	return r
}

// Default 默认产线表的注册表
func Default() *Registry {
	return NewRegistry(nil)
}

// Lines 按注册顺序返回产线表
func (r *Registry) Lines() []Line {
	out := make([]Line, len(r.lines))
	copy(out, r.lines)
	return out
}

// Len 产线数量
func (r *Registry) Len() int {
	return len(r.lines)
}

// Resolve 主管名称 -> 产线编号：精确匹配优先，其次按注册顺序双向包含匹配，都失败返回原值
func (r *Registry) Resolve(supervisor string) string {
	if supervisor == "" {
		return model.UnassignedSupervisor
	}
	upper := strings.ToUpper(strings.TrimSpace(supervisor))
	if upper == "" {
		return model.UnassignedSupervisor
	}
	if code, ok := r.exact[upper]; ok {
		return code
	}
	for i, key := range r.keys {
		if strings.Contains(upper, key) || strings.Contains(key, upper) {
			return r.lines[i].Code
		}
	}
	return supervisor
}

// SupervisorOf 产线编号 -> 主管名称
func (r *Registry) SupervisorOf(code string) (string, bool) {
	for _, l := range r.lines {
		if strings.EqualFold(l.Code, code) {
			return l.Supervisor, true
		}
	}
	return "", false
}

// LineCode 产线编号原样返回（规范大小写），否则按主管名称解析
func (r *Registry) LineCode(s string) string {
	trimmed := strings.TrimSpace(s)
	for _, l := range r.lines {
		if strings.EqualFold(l.Code, trimmed) {
			return l.Code
		}
	}
	return r.Resolve(s)
}
