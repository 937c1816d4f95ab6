package api

import (
	"sync"
	"time"

	"linechange/internal/model"
)

// planState 最近一次成功导入的排产结果
type planState struct {
	mu         sync.RWMutex
	styles     []*model.StyleEntry
	report     *model.ImportReport
	importedAt time.Time
}

func (p *planState) set(styles []*model.StyleEntry, report *model.ImportReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.styles = styles
	p.report = report
	p.importedAt = time.Now()
}

// get 返回款式切片副本；未导入时 ok 为 false
func (p *planState) get() (styles []*model.StyleEntry, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.report == nil {
		return nil, false
	}
	out := make([]*model.StyleEntry, len(p.styles))
	copy(out, p.styles)
	return out, true
}

func (p *planState) meta() (report *model.ImportReport, importedAt time.Time) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.report, p.importedAt
}
