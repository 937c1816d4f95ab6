package changeover

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"linechange/internal/model"
)

// styleCodeLen QCO 编号中每个款号截取的字符数
const styleCodeLen = 4

// Source 待解析的 OB 文件
type Source struct {
	Name   string
	Reader io.Reader
}

// Saver 换款记录持久化
type Saver interface {
	Save(ctx context.Context, id string, data *model.QCOData) (model.SaveResult, error)
}

// QCONumber 生成换款编号：<产线>-<当前款前4位>-<下一款前4位>-<3位随机数>
func QCONumber(line, current, upcoming string, rnd *rand.Rand) string {
	var n int
	if rnd != nil {
		n = rnd.IntN(1000)
	} else {
		n = rand.IntN(1000)
	}
	return fmt.Sprintf("%s-%s-%s-%03d", line, prefix(current, styleCodeLen), prefix(upcoming, styleCodeLen), n)
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Builder 组装换款记录
type Builder struct {
	parser *OBParser
	now    func() time.Time

	mu  sync.Mutex // 保护 rnd
	rnd *rand.Rand
}

// NewBuilder 创建 Builder；rnd 为空时使用全局随机源
func NewBuilder(p *OBParser, rnd *rand.Rand) *Builder {
	return &Builder{parser: p, rnd: rnd, now: time.Now}
}

// Build 并发解析当前款与下一款 OB 文件并计算机器差异
func (b *Builder) Build(ctx context.Context, line string, current, upcoming Source) (*model.QCOData, error) {
	var cur, next *model.ParsedOBData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := b.parse(gctx, current)
		cur = d
		return err
	})
	g.Go(func() error {
		d, err := b.parse(gctx, upcoming)
		next = d
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return b.Assemble(line, cur, next), nil
}

// Assemble 由两个已解析的 OB 结果组装换款记录
func (b *Builder) Assemble(line string, cur, next *model.ParsedOBData) *model.QCOData {
	summary := CompareMachines(cur.MachineCounts, next.MachineCounts)

	b.mu.Lock()
	number := QCONumber(line, cur.StyleNumber, next.StyleNumber, b.rnd)
	b.mu.Unlock()

	return &model.QCOData{
		QCONumber:      number,
		LineNumber:     line,
		CurrentStyle:   cur,
		UpcomingStyle:  next,
		MachineSummary: summary.Comparisons,
		TotalNeeded:    summary.TotalNeeded,
		TotalSurplus:   summary.TotalSurplus,
		Timestamp:      b.now(),
	}
}

func (b *Builder) parse(ctx context.Context, src Source) (*model.ParsedOBData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.Reader == nil {
		return nil, fmt.Errorf("parse ob %s: %w", src.Name, ErrMissingFile)
	}
	return b.parser.Parse(src.Reader, src.Name)
}
