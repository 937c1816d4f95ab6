package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linechange/internal/changeover"
	"linechange/internal/model"
	"linechange/internal/store"
)

// SaveQCORequest 保存换款记录请求
type SaveQCORequest struct {
	ID   string         `json:"id"`
	Data *model.QCOData `json:"data"`
}

// BuildQCO 上传当前款与下一款 OB 文件，生成换款记录；save=true 时直接保存
// POST /api/qco
func (h *Handler) BuildQCO(c *gin.Context) {
	if h.Builder == nil {
		errorResponse(c, http.StatusServiceUnavailable, CodeInternal, "换款功能不可用")
		return
	}

	current, closeCur, err := formSource(c, "current")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, CodeMissingFile, err.Error())
		return
	}
	defer closeCur()
	upcoming, closeNext, err := formSource(c, "upcoming")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, CodeMissingFile, err.Error())
		return
	}
	defer closeNext()

	line := strings.TrimSpace(c.PostForm("line"))
	if line == "" {
		line = h.DefaultLine
	}
	if h.Registry != nil {
		line = h.Registry.LineCode(line)
	}

	data, err := h.Builder.Build(c.Request.Context(), line, current, upcoming)
	if err != nil {
		status, code := http.StatusInternalServerError, CodeInternal
		if isInputError(err) || errors.Is(err, changeover.ErrMissingFile) {
			status, code = http.StatusUnprocessableEntity, CodeParseFailed
		}
		h.Metrics.Changeover("failed")
		h.Log.Warn("build qco failed", zap.String("line", line), zap.Error(err))
		errorResponse(c, status, code, err.Error())
		return
	}

	h.Metrics.Changeover("built")

	if c.PostForm("save") != "true" {
		success(c, gin.H{"qco": data})
		return
	}
	res, ok := h.save(c, "", data)
	if !ok {
		return
	}
	success(c, gin.H{"qco": data, "saved": res})
}

// SaveQCO 保存（或覆盖）换款记录
// POST /api/qco/save
func (h *Handler) SaveQCO(c *gin.Context) {
	var req SaveQCORequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Data == nil {
		errorResponse(c, http.StatusBadRequest, CodeInvalidParams, "参数错误")
		return
	}
	if res, ok := h.save(c, req.ID, req.Data); ok {
		success(c, res)
	}
}

func (h *Handler) save(c *gin.Context, id string, data *model.QCOData) (model.SaveResult, bool) {
	if h.Saver == nil {
		errorResponse(c, http.StatusServiceUnavailable, CodeInternal, "存储不可用")
		return model.SaveResult{}, false
	}
	// 未指定 id 时以 QCO 编号作为记录 id
	if id == "" {
		id = data.QCONumber
	}
	res, err := h.Saver.Save(c.Request.Context(), id, data)
	if err != nil {
		h.Metrics.Changeover("failed")
		h.Log.Error("save qco failed", zap.String("qco", data.QCONumber), zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Code: CodeInternal, Message: res.Message, Data: res})
		return res, false
	}
	h.Metrics.Changeover("saved")
	return res, true
}

// ListQCO 已保存换款记录列表
// GET /api/qco?line=&limit=
func (h *Handler) ListQCO(c *gin.Context) {
	if h.Store == nil {
		errorResponse(c, http.StatusServiceUnavailable, CodeInternal, "存储不可用")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	line := c.Query("line")
	if line != "" && h.Registry != nil {
		line = h.Registry.LineCode(line)
	}

	items, err := h.Store.ListChangeovers(c.Request.Context(), line, limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	success(c, items)
}

// GetQCO 获取换款记录
// GET /api/qco/:id
func (h *Handler) GetQCO(c *gin.Context) {
	if h.Store == nil {
		errorResponse(c, http.StatusServiceUnavailable, CodeInternal, "存储不可用")
		return
	}
	data, err := h.Store.GetChangeover(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(c, http.StatusNotFound, CodeNotFound, "换款记录不存在")
		return
	}
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	success(c, data)
}

// ExportQCO 导出换款记录 xlsx
// GET /api/qco/:id/export
func (h *Handler) ExportQCO(c *gin.Context) {
	id := c.Param("id")
	f, err := h.Exporter.ExportChangeover(c.Request.Context(), id, nil)
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(c, http.StatusNotFound, CodeNotFound, "换款记录不存在")
		return
	}
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", contentDisposition(fmt.Sprintf("qco-%s.xlsx", id)))
	c.Header("Content-Type", xlsxContentType)
	if err := f.Write(c.Writer); err != nil {
		h.Log.Warn("write qco export failed", zap.String("id", id), zap.Error(err))
	}
}

// formSource 读取 multipart 文件字段；字段缺失返回错误
func formSource(c *gin.Context, field string) (changeover.Source, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return changeover.Source{}, func() {}, fmt.Errorf("缺少 %s 文件", field)
	}
	var f multipart.File
	if f, err = fh.Open(); err != nil {
		return changeover.Source{}, func() {}, fmt.Errorf("读取 %s 文件失败: %w", field, err)
	}
	return changeover.Source{Name: fh.Filename, Reader: f}, func() { _ = f.Close() }, nil
}
