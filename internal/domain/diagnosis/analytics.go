package diagnosis

import (
	"fmt"
	"time"
)

// Timeframe is the analytics window selector.
type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
)

// ParseTimeframe validates a timeframe string, defaulting to day.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case TimeframeDay, "":
		return TimeframeDay, nil
	case TimeframeWeek:
		return TimeframeWeek, nil
	case TimeframeMonth:
		return TimeframeMonth, nil
	default:
		return "", &ValidationError{Field: "timeframe", Message: fmt.Sprintf("must be day, week or month, got %q", s)}
	}
}

// Since returns the window start for the timeframe relative to now.
func (t Timeframe) Since(now time.Time) time.Time {
	switch t {
	case TimeframeWeek:
		return now.AddDate(0, 0, -7)
	case TimeframeMonth:
		return now.AddDate(0, -1, 0)
	default:
		return now.AddDate(0, 0, -1)
	}
}

// AgentMetric is the per-stage performance summary over a window.
type AgentMetric struct {
	Runs          int     `json:"runs"`
	SuccessRate   float64 `json:"success_rate"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

// AnalyticsReport summarizes diagnosis sessions over a timeframe.
type AnalyticsReport struct {
	Timeframe         Timeframe                 `json:"timeframe"`
	TotalSessions     int                       `json:"total_sessions"`
	CompletedSessions int                       `json:"completed_sessions"`
	FailedSessions    int                       `json:"failed_sessions"`
	PendingSessions   int                       `json:"pending_sessions"`
	SuccessRate       float64                   `json:"success_rate"`
	AvgProcessingMS   float64                   `json:"avg_processing_ms"`
	Agents            map[StageKind]AgentMetric `json:"agents"`
}

// ReduceSessions computes the analytics report from a session list. It is a
// pure aggregation: zero sessions produce zeroed metrics, not an error.
func ReduceSessions(timeframe Timeframe, sessions []*DiagnosisSession) *AnalyticsReport {
	report := &AnalyticsReport{
		Timeframe: timeframe,
		Agents:    make(map[StageKind]AgentMetric, len(AllStages)),
	}

	type agentAccum struct {
		runs      int
		successes int
		totalMS   int64
	}
	accums := make(map[StageKind]*agentAccum, len(AllStages))
	for _, kind := range AllStages {
		accums[kind] = &agentAccum{}
	}

	var totalProcessingMS int64
	var processed int

	for _, s := range sessions {
		report.TotalSessions++
		switch s.Status {
		case StatusCompleted:
			report.CompletedSessions++
		case StatusFailed:
			report.FailedSessions++
		case StatusPending:
			report.PendingSessions++
		}

		if s.CompletedAt != nil {
			totalProcessingMS += s.CompletedAt.Sub(s.CreatedAt).Milliseconds()
			processed++
		}

		for _, sr := range s.StageResults {
			acc, ok := accums[sr.Stage]
			if !ok {
				continue
			}
			acc.runs++
			acc.totalMS += sr.DurationMS
			if sr.Success {
				acc.successes++
			}
		}
	}

	if report.TotalSessions > 0 {
		report.SuccessRate = float64(report.CompletedSessions) / float64(report.TotalSessions)
	}
	if processed > 0 {
		report.AvgProcessingMS = float64(totalProcessingMS) / float64(processed)
	}

	for kind, acc := range accums {
		metric := AgentMetric{Runs: acc.runs}
		if acc.runs > 0 {
			metric.SuccessRate = float64(acc.successes) / float64(acc.runs)
			metric.AvgDurationMS = float64(acc.totalMS) / float64(acc.runs)
		}
		report.Agents[kind] = metric
	}

	return report
}
