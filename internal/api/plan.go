package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"linechange/internal/importer"
	"linechange/internal/parser"
	"linechange/internal/planning"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportResponse 同步导入响应
type ImportResponse struct {
	Report  interface{}      `json:"report"`
	Summary planning.Summary `json:"summary"`
}

// ImportPlan 导入排产表；stream=true 时以 SSE 推送进度
// POST /api/plan/import
func (h *Handler) ImportPlan(c *gin.Context) {
	if h.Importer == nil {
		errorResponse(c, http.StatusServiceUnavailable, CodeInternal, "导入功能不可用")
		return
	}

	uploaded, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, CodeMissingFile, "未找到上传文件")
		return
	}

	// 保存到上传目录
	dir := h.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("plan_%s_%s", uuid.NewString(), filepath.Base(uploaded.Filename)))
	if err := c.SaveUploadedFile(uploaded, path); err != nil {
		h.Log.Error("save upload failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, CodeInternal, "保存文件失败")
		return
	}
	defer os.Remove(path)

	opts := importer.ImportOptions{FilePath: path, Filename: uploaded.Filename}
	if c.Query("stream") == "true" || c.PostForm("stream") == "true" {
		h.streamImport(c, opts)
		return
	}

	res, err := h.Importer.Run(c.Request.Context(), opts)
	if err != nil {
		status, code := http.StatusInternalServerError, CodeInternal
		if isInputError(err) {
			status, code = http.StatusUnprocessableEntity, CodeParseFailed
		}
		errorResponse(c, status, code, err.Error())
		return
	}

	h.plan.set(res.Styles, res.Report)
	success(c, ImportResponse{Report: res.Report, Summary: planning.Summarize(res.Styles)})
}

// streamImport SSE 流式发送进度事件
func (h *Handler) streamImport(c *gin.Context, opts importer.ImportOptions) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		errorResponse(c, http.StatusInternalServerError, CodeInternal, "不支持流式响应")
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for event := range h.Importer.Import(c.Request.Context(), opts) {
		switch event.Type {
		case importer.EventDone:
			if res, ok := event.Data.(*importer.Result); ok {
				h.plan.set(res.Styles, res.Report)
				// 款式明细通过 /plan/styles 查询，流中只推送报告
				event.Data = res.Report
			}
		case importer.EventError:
			if err, ok := event.Data.(error); ok {
				event.Data = err.Error()
			}
		}

		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// ListStyles 检索款式；groupBy=line|supervisor 时返回分组
// GET /api/plan/styles?q=&groupBy=
func (h *Handler) ListStyles(c *gin.Context) {
	styles, ok := h.plan.get()
	if !ok {
		errorResponse(c, http.StatusConflict, CodePlanNotLoaded, "尚未导入排产表")
		return
	}

	filtered := planning.Filter(styles, c.Query("q"))
	groupBy := c.Query("groupBy")
	if groupBy == "" {
		success(c, filtered)
		return
	}

	key, err := planning.ParseGroupKey(groupBy)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, CodeInvalidParams, err.Error())
		return
	}
	success(c, planning.GroupBy(filtered, key))
}

// ListLines 产线注册表
// GET /api/plan/lines
func (h *Handler) ListLines(c *gin.Context) {
	if h.Registry == nil {
		success(c, []interface{}{})
		return
	}
	success(c, h.Registry.Lines())
}

// GetSummary 看板汇总
// GET /api/plan/summary
func (h *Handler) GetSummary(c *gin.Context) {
	styles, ok := h.plan.get()
	if !ok {
		errorResponse(c, http.StatusConflict, CodePlanNotLoaded, "尚未导入排产表")
		return
	}
	success(c, planning.Summarize(planning.Filter(styles, c.Query("q"))))
}

// ExportPlan 导出当前排产清单
// GET /api/plan/export
func (h *Handler) ExportPlan(c *gin.Context) {
	styles, ok := h.plan.get()
	if !ok {
		errorResponse(c, http.StatusConflict, CodePlanNotLoaded, "尚未导入排产表")
		return
	}

	f, err := h.Exporter.ExportPlan(planning.Filter(styles, c.Query("q")))
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	defer f.Close()

	name := fmt.Sprintf("plan-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", contentDisposition(name))
	c.Header("Content-Type", xlsxContentType)
	if err := f.Write(c.Writer); err != nil {
		h.Log.Warn("write plan export failed", zap.Error(err))
	}
}

// isInputError 输入文件本身不可用
func isInputError(err error) bool {
	return errors.Is(err, parser.ErrNoSheets) ||
		errors.Is(err, parser.ErrInsufficientRows) ||
		errors.Is(err, parser.ErrOpenWorkbook)
}

func contentDisposition(name string) string {
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", name, url.PathEscape(name))
}
