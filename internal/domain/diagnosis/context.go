package diagnosis

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// DefaultContextSessions is how many recent sessions seed the continuity
// context when no explicit size is configured.
const DefaultContextSessions = 5

// MaxContextSessions bounds the history window so one chronic patient cannot
// make every request scan an unbounded session list.
const MaxContextSessions = 10

// ContextLoader derives a continuity Context from a patient's recent sessions.
type ContextLoader struct {
	repo SessionRepository
	n    int
}

func NewContextLoader(repo SessionRepository, n int) *ContextLoader {
	if n <= 0 {
		n = DefaultContextSessions
	}
	if n > MaxContextSessions {
		n = MaxContextSessions
	}
	return &ContextLoader{repo: repo, n: n}
}

// Load retrieves up to n most recent sessions for the patient and derives
// frequency-ranked prior conditions (ties broken by most recent occurrence)
// and a flattened risk-factor profile. A patient with no history yields an
// empty Context and nil error; only a storage failure returns an error.
func (l *ContextLoader) Load(ctx context.Context, patientID string) (Context, error) {
	if patientID == "" {
		return Context{}, nil
	}

	sessions, _, err := l.repo.ListByPatient(ctx, patientID, l.n, 0)
	if err != nil {
		return Context{}, fmt.Errorf("load patient history: %w", err)
	}
	if len(sessions) == 0 {
		return Context{}, nil
	}

	return DeriveContext(sessions), nil
}

// DeriveContext reduces a newest-first session list into a Context.
func DeriveContext(sessions []*DiagnosisSession) Context {
	freq := make(map[string]*ConditionFrequency)
	riskSeen := make(map[string]bool)
	var risks []string

	for _, s := range sessions {
		if s.Result != nil {
			for _, cand := range append([]Candidate{s.Result.PrimaryDiagnosis}, s.Result.Differential...) {
				if cand.Condition == "" {
					continue
				}
				key := strings.ToLower(cand.Condition)
				cf, ok := freq[key]
				if !ok {
					cf = &ConditionFrequency{Condition: cand.Condition}
					freq[key] = cf
				}
				cf.Count++
				if s.CreatedAt.After(cf.LastSeen) {
					cf.LastSeen = s.CreatedAt
				}
			}
		}
		for _, sr := range s.StageResults {
			if sr.Stage != StageRisk || sr.Risk == nil {
				continue
			}
			for _, f := range sr.Risk.Factors {
				key := strings.ToLower(f.Name)
				if !riskSeen[key] {
					riskSeen[key] = true
					risks = append(risks, f.Name)
				}
			}
		}
	}

	conditions := make([]ConditionFrequency, 0, len(freq))
	for _, cf := range freq {
		conditions = append(conditions, *cf)
	}
	sort.Slice(conditions, func(i, j int) bool {
		if conditions[i].Count != conditions[j].Count {
			return conditions[i].Count > conditions[j].Count
		}
		return conditions[i].LastSeen.After(conditions[j].LastSeen)
	})

	return Context{
		PriorSessions:   len(sessions),
		PriorConditions: conditions,
		RiskFactors:     risks,
	}
}

// HasPriorCondition reports whether the context contains the named condition.
func (c Context) HasPriorCondition(name string) bool {
	for _, cf := range c.PriorConditions {
		if strings.EqualFold(cf.Condition, name) {
			return true
		}
	}
	return false
}
