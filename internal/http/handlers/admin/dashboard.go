package admin

import (
	"time"

	"github.com/noormarket/internal/http/response"
	"github.com/noormarket/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDashboard 平台经营概览（range=today/7d/30d/custom）
func (h *Handler) GetDashboard(c *gin.Context) {
	input := service.DashboardQueryInput{
		Range:        c.Query("range"),
		ForceRefresh: c.Query("refresh") == "true",
	}
	if from, ok := parseDashboardTime(c.Query("from")); ok {
		input.From = from
	}
	if to, ok := parseDashboardTime(c.Query("to")); ok {
		input.To = to
	}
	dashboard, err := h.DashboardService.GetAdminOverview(c.Request.Context(), input)
	if err != nil {
		respondAdminError(c, err)
		return
	}
	response.Success(c, dashboard)
}

func parseDashboardTime(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	return nil, false
}
