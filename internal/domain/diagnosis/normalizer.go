package diagnosis

import (
	"fmt"
	"strings"
)

// ValidationError marks a caller mistake that should surface as a 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DiagnoseRequest is the raw request body accepted by the diagnose endpoint.
type DiagnoseRequest struct {
	Symptoms       string   `json:"symptoms"`
	Language       string   `json:"language,omitempty"`
	Age            int      `json:"age,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	Location       string   `json:"location,omitempty"`
	MedicalHistory []string `json:"medicalHistory,omitempty"`
	UploadedFiles  []string `json:"uploadedFiles,omitempty"`
}

// NormalizeInput validates a raw request and shapes it into the canonical
// PatientInput. Symptoms must be non-empty after trimming; language defaults
// to english; history and files default to empty lists. No side effects.
func NormalizeInput(req DiagnoseRequest) (PatientInput, error) {
	symptoms := strings.TrimSpace(req.Symptoms)
	if symptoms == "" {
		return PatientInput{}, &ValidationError{Field: "symptoms", Message: "symptoms are required"}
	}

	if req.Age < 0 || req.Age > 150 {
		return PatientInput{}, &ValidationError{Field: "age", Message: fmt.Sprintf("age %d is out of range", req.Age)}
	}

	language := strings.ToLower(strings.TrimSpace(req.Language))
	if language == "" {
		language = "english"
	}

	history := make([]string, 0, len(req.MedicalHistory))
	for _, h := range req.MedicalHistory {
		if h = strings.TrimSpace(h); h != "" {
			history = append(history, h)
		}
	}

	files := make([]string, 0, len(req.UploadedFiles))
	for _, f := range req.UploadedFiles {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}

	return PatientInput{
		Symptoms:       symptoms,
		Language:       language,
		Age:            req.Age,
		Gender:         strings.ToLower(strings.TrimSpace(req.Gender)),
		Location:       strings.TrimSpace(req.Location),
		MedicalHistory: history,
		UploadedFiles:  files,
	}, nil
}
