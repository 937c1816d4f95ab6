package api

import (
	"github.com/gin-gonic/gin"

	"linechange/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	PlanLoaded     bool   `json:"planLoaded"`     // 是否已导入排产表
	PlanFile       string `json:"planFile"`       // 最近导入的文件名
	StyleCount     int    `json:"styleCount"`     // 款式数
	LineCount      int    `json:"lineCount"`      // 注册产线数
	LastImportID   string `json:"lastImportId"`   // 最近导入 id（含历史）
	LastImportTime string `json:"lastImportTime"` // 本进程内最后导入时间
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	resp := StatusResponse{}
	if h.Registry != nil {
		resp.LineCount = h.Registry.Len()
	}

	if report, at := h.plan.meta(); report != nil {
		resp.PlanLoaded = true
		resp.PlanFile = report.Filename
		resp.StyleCount = report.StyleCount
		resp.LastImportID = report.ImportID
		resp.LastImportTime = at.Format("2006-01-02 15:04:05")
	}

	if resp.LastImportID == "" && h.Store != nil {
		if id, err := h.Store.GetSetting(c.Request.Context(), store.SettingLastImportID); err == nil {
			resp.LastImportID = id
		}
	}

	success(c, resp)
}
