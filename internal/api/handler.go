// Package api 提供排产看板与换款（QCO）的 HTTP 接口。
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linechange/internal/changeover"
	"linechange/internal/exporter"
	"linechange/internal/importer"
	"linechange/internal/lines"
	"linechange/internal/metrics"
	"linechange/internal/store"
)

// 业务错误码
const (
	CodeOK            = 0
	CodeInvalidParams = 1001
	CodeMissingFile   = 1002
	CodePlanNotLoaded = 2001
	CodeParseFailed   = 3001
	CodeNotFound      = 4004
	CodeInternal      = 5001
)

// Deps 处理器依赖
type Deps struct {
	Store       *store.Store
	Importer    *importer.Coordinator
	Builder     *changeover.Builder
	Saver       changeover.Saver
	Exporter    *exporter.Exporter
	Registry    *lines.Registry
	Metrics     *metrics.Metrics
	UploadDir   string
	DefaultLine string
	Log         *zap.Logger
}

// Handler API 处理器
type Handler struct {
	Deps
	plan *planState
}

// NewHandler 创建 API 处理器
func NewHandler(deps Deps) *Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Saver == nil && deps.Store != nil {
		deps.Saver = deps.Store
	}
	return &Handler{Deps: deps, plan: &planState{}}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 排产表
	router.POST("/plan/import", h.ImportPlan)
	router.GET("/plan/styles", h.ListStyles)
	router.GET("/plan/lines", h.ListLines)
	router.GET("/plan/summary", h.GetSummary)
	router.GET("/plan/export", h.ExportPlan)

	// 换款
	router.POST("/qco", h.BuildQCO)
	router.POST("/qco/save", h.SaveQCO)
	router.GET("/qco", h.ListQCO)
	router.GET("/qco/:id", h.GetQCO)
	router.GET("/qco/:id/export", h.ExportQCO)
}

// Response 通用响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, status, code int, message string) {
	c.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}
