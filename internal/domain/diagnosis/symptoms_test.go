package diagnosis

import (
	"context"
	"reflect"
	"testing"
)

func TestTokenizeSymptoms(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "comma separated",
			in:   "fever, headache, body pain",
			want: []string{"fever", "headache", "body pain"},
		},
		{
			name: "connector words",
			in:   "fever and cough with tiredness",
			want: []string{"fever", "cough", "fatigue"},
		},
		{
			name: "synonyms collapse",
			in:   "body ache, high temperature, throwing up",
			want: []string{"body pain", "fever", "vomiting"},
		},
		{
			name: "duplicates removed keeping first occurrence",
			in:   "fever, cough, feverish, fever",
			want: []string{"fever", "cough"},
		},
		{
			name: "mixed case and whitespace",
			in:   "  Fever ;  HEAD ACHE \n body   pain ",
			want: []string{"fever", "headache", "body pain"},
		},
		{
			name: "empty input",
			in:   "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TokenizeSymptoms(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TokenizeSymptoms(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSymptomStructurer_RedFlags(t *testing.T) {
	a := NewSymptomStructurer()

	tests := []struct {
		in   string
		want UrgencyLevel
	}{
		{"fever, cough", UrgencyLow},
		{"fever, chest pain", UrgencyHigh},
		{"difficulty breathing", UrgencyHigh},
		{"fever, seizure", UrgencyCritical},
	}

	for _, tt := range tests {
		result := a.Run(context.Background(), PatientInput{Symptoms: tt.in}, Context{})
		if !result.Success {
			t.Fatalf("structuring %q failed: %s", tt.in, result.Error)
		}
		if result.Urgency != tt.want {
			t.Errorf("urgency for %q = %s, want %s", tt.in, result.Urgency, tt.want)
		}
	}
}

func TestSymptomStructurer_Payload(t *testing.T) {
	a := NewSymptomStructurer()

	result := a.Run(context.Background(), PatientInput{Symptoms: "fever and loose motions"}, Context{})
	if result.Symptoms == nil {
		t.Fatal("expected a symptom payload")
	}
	want := []string{"fever", "diarrhea"}
	if !reflect.DeepEqual(result.Symptoms.Symptoms, want) {
		t.Errorf("got %v, want %v", result.Symptoms.Symptoms, want)
	}
}
