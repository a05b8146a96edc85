package diagnosis

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestParseTimeframe(t *testing.T) {
	tests := []struct {
		in      string
		want    Timeframe
		wantErr bool
	}{
		{"", TimeframeDay, false},
		{"day", TimeframeDay, false},
		{"week", TimeframeWeek, false},
		{"month", TimeframeMonth, false},
		{"year", "", true},
		{"DAY", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTimeframe(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeframe(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeframe(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeframe(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTimeframe_Since(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	if got := TimeframeDay.Since(now); !got.Equal(now.AddDate(0, 0, -1)) {
		t.Errorf("day window start = %v", got)
	}
	if got := TimeframeWeek.Since(now); !got.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("week window start = %v", got)
	}
	if got := TimeframeMonth.Since(now); !got.Equal(now.AddDate(0, -1, 0)) {
		t.Errorf("month window start = %v", got)
	}
}

func TestReduceSessions_Empty(t *testing.T) {
	report := ReduceSessions(TimeframeWeek, nil)

	if report.TotalSessions != 0 || report.SuccessRate != 0 || report.AvgProcessingMS != 0 {
		t.Errorf("expected zeroed report, got %+v", report)
	}
	if len(report.Agents) != len(AllStages) {
		t.Errorf("expected a metric entry per stage, got %d", len(report.Agents))
	}
}

func TestReduceSessions_Metrics(t *testing.T) {
	created := time.Now().Add(-time.Minute)
	done := created.Add(400 * time.Millisecond)

	sessions := []*DiagnosisSession{
		{
			ID: uuid.New(), Status: StatusCompleted, CreatedAt: created, CompletedAt: &done,
			StageResults: []StageResult{
				{Stage: StageResearch, Success: true, DurationMS: 100},
				{Stage: StageRisk, Success: true, DurationMS: 50},
			},
		},
		{
			ID: uuid.New(), Status: StatusCompleted, CreatedAt: created, CompletedAt: &done,
			StageResults: []StageResult{
				{Stage: StageResearch, Success: false, DurationMS: 300},
			},
		},
		{
			ID: uuid.New(), Status: StatusFailed, CreatedAt: created,
		},
	}

	report := ReduceSessions(TimeframeDay, sessions)

	if report.TotalSessions != 3 || report.CompletedSessions != 2 || report.FailedSessions != 1 {
		t.Errorf("unexpected counts: %+v", report)
	}
	if report.SuccessRate < 0.66 || report.SuccessRate > 0.67 {
		t.Errorf("success rate = %f", report.SuccessRate)
	}
	if report.AvgProcessingMS != 400 {
		t.Errorf("avg processing = %f, want 400", report.AvgProcessingMS)
	}

	research := report.Agents[StageResearch]
	if research.Runs != 2 || research.SuccessRate != 0.5 || research.AvgDurationMS != 200 {
		t.Errorf("research metric = %+v", research)
	}
	risk := report.Agents[StageRisk]
	if risk.Runs != 1 || risk.SuccessRate != 1 || risk.AvgDurationMS != 50 {
		t.Errorf("risk metric = %+v", risk)
	}
	language := report.Agents[StageLanguage]
	if language.Runs != 0 || language.SuccessRate != 0 {
		t.Errorf("idle stage metric should be zeroed, got %+v", language)
	}
}
