package diagnosis

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func newTestHandler() (*Handler, *mockSessionRepo, *echo.Echo) {
	svc, repo := newTestService()
	h := NewHandler(svc, zerolog.Nop())
	e := echo.New()
	return h, repo, e
}

func TestHandler_Diagnose_OK(t *testing.T) {
	h, repo, e := newTestHandler()

	body := `{"symptoms":"fever, headache, body pain","age":25,"gender":"male","location":"city with high dengue incidence"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/diagnose?userId=patient-1", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Diagnose(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success   bool             `json:"success"`
		Diagnosis *DiagnosisResult `json:"diagnosis"`
		Timestamp string           `json:"timestamp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Diagnosis == nil || resp.Diagnosis.PrimaryDiagnosis.Condition == "" {
		t.Fatal("expected a diagnosis payload")
	}
	if resp.Timestamp == "" {
		t.Error("expected a timestamp")
	}
	if repo.count() != 1 {
		t.Errorf("expected 1 persisted session, got %d", repo.count())
	}
}

func TestHandler_Diagnose_MissingSymptoms(t *testing.T) {
	h, repo, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/diagnose?userId=patient-1", strings.NewReader(`{"symptoms":"  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Diagnose(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
	if repo.count() != 0 {
		t.Errorf("expected no persisted session, got %d", repo.count())
	}
}

func TestHandler_Diagnose_InvalidBody(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/diagnose", strings.NewReader(`{"symptoms":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Diagnose(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_History_MissingUserID(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.History(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_History_OK(t *testing.T) {
	svc, _ := newMockHistoryFixture(t, 5)
	h := NewHandler(svc, zerolog.Nop())
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/history?userId=patient-h&limit=3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.History(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Patient struct {
			ID         string               `json:"id"`
			Conditions []ConditionFrequency `json:"conditions"`
		} `json:"patient"`
		DiagnosisHistory []*DiagnosisSession `json:"diagnosisHistory"`
		TotalSessions    int                 `json:"totalSessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Patient.ID != "patient-h" {
		t.Errorf("expected patient-h, got %s", resp.Patient.ID)
	}
	if len(resp.DiagnosisHistory) != 3 {
		t.Errorf("expected 3 sessions, got %d", len(resp.DiagnosisHistory))
	}
	if resp.TotalSessions != 5 {
		t.Errorf("expected total 5, got %d", resp.TotalSessions)
	}
	if len(resp.Patient.Conditions) == 0 {
		t.Error("expected condition summary for a patient with history")
	}
}

func TestHandler_Analytics_DefaultTimeframe(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Analytics(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var report AnalyticsReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if report.Timeframe != TimeframeDay {
		t.Errorf("expected day timeframe by default, got %s", report.Timeframe)
	}
	if report.TotalSessions != 0 {
		t.Errorf("expected empty window, got %d sessions", report.TotalSessions)
	}
}

func TestHandler_Analytics_InvalidTimeframe(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics?timeframe=decade", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Analytics(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_GetSession_InvalidID(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.GetSession(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
