package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dailyfocus/dailyfocus-backend/internal/http/response"
	"github.com/dailyfocus/dailyfocus-backend/internal/services"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

type AnalysisHandler struct {
	analysisService services.AnalysisService
}

func NewAnalysisHandler(analysisService services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

func (ah *AnalysisHandler) Generate(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	var req struct {
		PeriodType string `json:"periodType"`
		StartAt    string `json:"startAt"`
		EndAt      string `json:"endAt"`
	}
	_ = c.ShouldBindJSON(&req)

	in := services.GenerateReportInput{PeriodType: req.PeriodType}
	if req.StartAt != "" {
		start, err := time.Parse(time.RFC3339, req.StartAt)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "开始时间格式错误")
			return
		}
		in.StartAt = &start
	}
	if req.EndAt != "" {
		end, err := time.Parse(time.RFC3339, req.EndAt)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "结束时间格式错误")
			return
		}
		in.EndAt = &end
	}

	out, err := ah.analysisService.GenerateReport(c.Request.Context(), user.ID, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{
		"reportId": out.Report.ID.String(),
		"summary":  out.Report.Summary.Data(),
		"period": gin.H{
			"type":    out.Report.PeriodType,
			"startAt": out.Report.StartAt,
			"endAt":   out.Report.EndAt,
		},
		"messageCount": out.MessageCount,
	})
}

func (ah *AnalysisHandler) GetReport(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "报告ID格式错误")
		return
	}

	report, err := ah.analysisService.GetReport(c.Request.Context(), user.ID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": reportPayload(report)})
}

func (ah *AnalysisHandler) ListReports(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	result, err := ah.analysisService.ListReports(c.Request.Context(), user.ID, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(result.Reports))
	for _, report := range result.Reports {
		items = append(items, reportPayload(report))
	}
	response.RespondOK(c, gin.H{
		"reports":    items,
		"total":      result.Total,
		"page":       result.Page,
		"limit":      result.Limit,
		"totalPages": result.TotalPages,
	})
}

func (ah *AnalysisHandler) DeleteReport(c *gin.Context) {
	user := currentUserOrAbort(c)
	if user == nil {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "报告ID格式错误")
		return
	}

	if err := ah.analysisService.DeleteReport(c.Request.Context(), user.ID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func reportPayload(report *types.AnalysisReport) gin.H {
	summary := report.Summary.Data()
	return gin.H{
		"id":         report.ID.String(),
		"periodType": report.PeriodType,
		"startAt":    report.StartAt,
		"endAt":      report.EndAt,
		"title":      summary.Title,
		"summary":    summary,
		"createdAt":  report.CreatedAt,
	}
}
