package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/dailyfocus/dailyfocus-backend/internal/services"
	"github.com/dailyfocus/dailyfocus-backend/internal/types"
)

type fakeAnalysisService struct {
	out *services.GenerateReportOutput
	err error
}

func (f *fakeAnalysisService) GenerateReport(ctx context.Context, userID uuid.UUID, in services.GenerateReportInput) (*services.GenerateReportOutput, error) {
	return f.out, f.err
}

func (f *fakeAnalysisService) GetReport(ctx context.Context, userID, reportID uuid.UUID) (*types.AnalysisReport, error) {
	return nil, services.ErrReportNotFound
}

func (f *fakeAnalysisService) ListReports(ctx context.Context, userID uuid.UUID, page, limit int) (*services.ReportPage, error) {
	return &services.ReportPage{}, nil
}

func (f *fakeAnalysisService) DeleteReport(ctx context.Context, userID, reportID uuid.UUID) error {
	return nil
}

func TestGenerateResponseShape(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reportID := uuid.New()
	endAt := time.Now()
	report := &types.AnalysisReport{
		ID:         reportID,
		PeriodType: types.PeriodWeekly,
		StartAt:    endAt.AddDate(0, 0, -7),
		EndAt:      endAt,
		Summary: datatypes.NewJSONType(types.ReportSummary{
			Questions: []types.ReportQuestion{{Topic: "职业方向", Description: "纠结"}},
			Strengths: []string{"反思"},
			Title:     "一周思考",
		}),
	}
	fake := &fakeAnalysisService{out: &services.GenerateReportOutput{Report: report, MessageCount: 3}}

	r := gin.New()
	r.POST("/api/analysis/generate", withTestUser(testUser()), NewAnalysisHandler(fake).Generate)

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/generate", bytes.NewBufferString(`{"periodType": "weekly"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response not decodable: %v", err)
	}

	if resp.Data["reportId"] != reportID.String() {
		t.Fatalf("data.reportId must be top level, got %v", resp.Data["reportId"])
	}
	summary, ok := resp.Data["summary"].(map[string]any)
	if !ok {
		t.Fatalf("data.summary missing: %v", resp.Data)
	}
	if summary["title"] != "一周思考" {
		t.Fatalf("summary title wrong: %v", summary["title"])
	}
	period, ok := resp.Data["period"].(map[string]any)
	if !ok {
		t.Fatalf("data.period missing: %v", resp.Data)
	}
	if period["type"] != types.PeriodWeekly {
		t.Fatalf("period type wrong: %v", period["type"])
	}
	for _, key := range []string{"startAt", "endAt"} {
		if _, ok := period[key]; !ok {
			t.Fatalf("period missing %q: %v", key, period)
		}
	}
	if got, ok := resp.Data["messageCount"].(float64); !ok || int(got) != 3 {
		t.Fatalf("messageCount wrong: %v", resp.Data["messageCount"])
	}
}

func TestGenerateEmptyWindowMapsTo400(t *testing.T) {
	gin.SetMode(gin.TestMode)

	fake := &fakeAnalysisService{err: services.ErrNoMessagesInRange}
	r := gin.New()
	r.POST("/api/analysis/generate", withTestUser(testUser()), NewAnalysisHandler(fake).Generate)

	req := httptest.NewRequest(http.MethodPost, "/api/analysis/generate", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
