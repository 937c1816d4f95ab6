package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"linechange/internal/metrics"
	"linechange/internal/model"
	"linechange/internal/parser"
	"linechange/internal/planning"
	"linechange/internal/store"
)

// 进度事件类型
const (
	EventStart      = "start"
	EventInfo       = "info"
	EventSheetStart = "sheet_start"
	EventSheetDone  = "sheet_done"
	EventWarning    = "warning"
	EventDone       = "done"
	EventError      = "error"
)

// Coordinator 排产表导入协调器
type Coordinator struct {
	store   *store.Store
	planner *planning.Planner
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewCoordinator 创建导入协调器；store 为空时不记录导入日志
func NewCoordinator(st *store.Store, planner *planning.Planner, m *metrics.Metrics, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{store: st, planner: planner, metrics: m, log: log}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath string
	Filename string // 原始文件名，为空时取 FilePath 的文件名
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/sheet_start/sheet_done/warning/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// Result 导入结果，随 done 事件发送
type Result struct {
	Report *model.ImportReport  `json:"report"`
	Styles []*model.StyleEntry `json:"styles"`
}

// importContext 单次导入的上下文
type importContext struct {
	ctx          context.Context
	startTime    time.Time
	report       *model.ImportReport
	progressChan chan ProgressEvent
}

// Import 执行导入，返回进度通道；通道在导入结束后关闭
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(ctx, opts, progressChan)
	}()

	return progressChan
}

// Run 同步执行导入，返回最终结果
func (c *Coordinator) Run(ctx context.Context, opts ImportOptions) (*Result, error) {
	var (
		result *Result
		err    error
	)
	for evt := range c.Import(ctx, opts) {
		switch evt.Type {
		case EventDone:
			result, _ = evt.Data.(*Result)
		case EventError:
			if e, ok := evt.Data.(error); ok {
				err = e
			} else {
				err = errors.New(evt.Message)
			}
		}
	}
	if err == nil && result == nil {
		err = errors.New("import finished without result")
	}
	return result, err
}

// doImport 执行导入逻辑
func (c *Coordinator) doImport(ctx context.Context, opts ImportOptions, progressChan chan ProgressEvent) {
	filename := opts.Filename
	if filename == "" {
		filename = filepath.Base(opts.FilePath)
	}

	ic := &importContext{
		ctx:          ctx,
		startTime:    time.Now(),
		progressChan: progressChan,
		report: &model.ImportReport{
			ImportID: uuid.NewString(),
			Filename: filename,
			Sheets:   []model.SheetResult{},
		},
	}
	log := c.log.With(zap.String("import_id", ic.report.ImportID), zap.String("filename", filename))

	// 发送开始事件
	c.sendProgress(progressChan, ProgressEvent{
		Type:    EventStart,
		Message: "开始导入排产表",
		Data: map[string]string{
			"import_id": ic.report.ImportID,
			"filename":  filename,
		},
		Timestamp: time.Now(),
	})

	styles, err := c.scan(ic, opts.FilePath, filename)
	if err != nil {
		log.Warn("plan import failed", zap.Error(err))
		c.metrics.PlanImported(time.Since(ic.startTime), 0, err)
		if c.store != nil {
			if serr := c.store.FailImportLog(context.WithoutCancel(ctx), ic.report.ImportID, err.Error()); serr != nil {
				log.Warn("failed to update import log", zap.Error(serr))
			}
		}
		c.sendFinal(ic, ProgressEvent{
			Type:      EventError,
			Message:   fmt.Sprintf("导入失败: %v", err),
			Data:      err,
			Timestamp: time.Now(),
		})
		return
	}

	// 汇总统计
	ic.report.StyleCount = len(styles)
	ic.report.Duration = time.Since(ic.startTime)
	c.metrics.PlanImported(ic.report.Duration, len(styles), nil)
	c.persistReport(ic, log)

	log.Info("plan imported",
		zap.Int("sheets", ic.report.ScannedSheets),
		zap.Int("styles", len(styles)),
		zap.Duration("duration", ic.report.Duration))

	// 发送完成事件
	c.sendFinal(ic, ProgressEvent{
		Type:      EventDone,
		Message:   "导入完成",
		Data:      &Result{Report: ic.report, Styles: styles},
		Timestamp: time.Now(),
	})
}

// scan 读取文件并逐个 Sheet 扫描
func (c *Coordinator) scan(ic *importContext, filePath, filename string) ([]*model.StyleEntry, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}

	if c.store != nil {
		if err := c.store.CreateImportLog(ic.ctx, ic.report.ImportID, filename, filePath, size, hex.EncodeToString(h.Sum(nil))); err != nil {
			c.sendProgress(ic.progressChan, ProgressEvent{
				Type:      EventWarning,
				Message:   fmt.Sprintf("创建导入日志失败: %v", err),
				Timestamp: time.Now(),
			})
		}
	}

	wb, err := parser.ReadWorkbook(f)
	if err != nil {
		return nil, err
	}
	if len(wb.Sheets) == 0 {
		return nil, parser.ErrNoSheets
	}
	ic.report.TotalSheets = len(wb.Sheets)

	c.sendProgress(ic.progressChan, ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("发现 %d 个 Sheet", len(wb.Sheets)),
		Data: map[string]interface{}{
			"total_sheets": len(wb.Sheets),
		},
		Timestamp: time.Now(),
	})

	var all []*model.StyleEntry
	for _, g := range wb.Sheets {
		if err := ic.ctx.Err(); err != nil {
			return nil, err
		}
		all = append(all, c.processSheet(ic, g)...)
	}

	if ic.report.ScannedSheets == 0 {
		return nil, parser.ErrInsufficientRows
	}
	return planning.LinkProgression(all), nil
}

// processSheet 处理单个 Sheet
func (c *Coordinator) processSheet(ic *importContext, g *parser.Grid) []*model.StyleEntry {
	c.sendProgress(ic.progressChan, ProgressEvent{
		Type:    EventSheetStart,
		Message: fmt.Sprintf("正在扫描 Sheet: %s", g.Name),
		Data: map[string]string{
			"sheet_name": g.Name,
		},
		Timestamp: time.Now(),
	})

	scanner := c.planner.Scanner()
	if !scanner.Eligible(g) {
		c.recordSheetResult(ic, model.SheetResult{
			SheetName: g.Name,
			Status:    "skipped",
			RowCount:  g.Len(),
			Reason:    fmt.Sprintf("行数不足 %d", scanner.Layout().StyleStartRow),
		})
		return nil
	}

	styles := scanner.ScanSheet(g)
	c.recordSheetResult(ic, model.SheetResult{
		SheetName:  g.Name,
		Status:     "scanned",
		RowCount:   g.Len(),
		StyleCount: len(styles),
	})
	return styles
}

// persistReport 写入导入日志并记录最近一次导入
func (c *Coordinator) persistReport(ic *importContext, log *zap.Logger) {
	if c.store == nil {
		return
	}
	ctx := context.WithoutCancel(ic.ctx)
	if err := c.store.CompleteImportLog(ctx, ic.report); err != nil {
		log.Warn("failed to update import log", zap.Error(err))
	}
}

// recordSheetResult 记录 Sheet 处理结果
func (c *Coordinator) recordSheetResult(ic *importContext, result model.SheetResult) {
	ic.report.Sheets = append(ic.report.Sheets, result)

	switch result.Status {
	case "scanned":
		ic.report.ScannedSheets++
	case "skipped":
		ic.report.SkippedSheets++
	}

	c.sendProgress(ic.progressChan, ProgressEvent{
		Type:      EventSheetDone,
		Message:   fmt.Sprintf("Sheet %s: %s", result.SheetName, result.Status),
		Data:      result,
		Timestamp: time.Now(),
	})
}

// sendProgress 发送进度事件
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}

// sendFinal 发送结束事件；结束事件不丢弃，调用方取消时放弃
func (c *Coordinator) sendFinal(ic *importContext, event ProgressEvent) {
	select {
	case ic.progressChan <- event:
	case <-ic.ctx.Done():
	}
}
